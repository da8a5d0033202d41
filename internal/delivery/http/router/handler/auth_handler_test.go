package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gatekeeper/internal/delivery/http/middleware"
	"gatekeeper/internal/delivery/http/validator"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// stubAuthUsecase lets each test script the usecase outcome per method.
type stubAuthUsecase struct {
	registerFn func(ctx context.Context, input *usecase.RegisterInput) (*usecase.Session, error)
	loginFn    func(ctx context.Context, input *usecase.LoginInput) (*usecase.Session, error)
	rotateFn   func(ctx context.Context, refreshToken string) (*usecase.Session, error)
	revokeFn   func(ctx context.Context, refreshToken string) error
}

func (s *stubAuthUsecase) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.Session, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.Session, error) {
	return s.loginFn(ctx, input)
}

func (s *stubAuthUsecase) Rotate(ctx context.Context, refreshToken string) (*usecase.Session, error) {
	return s.rotateFn(ctx, refreshToken)
}

func (s *stubAuthUsecase) Revoke(ctx context.Context, refreshToken string) error {
	return s.revokeFn(ctx, refreshToken)
}

func newTestServer(uc usecase.AuthUsecase) *echo.Echo {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError

	h := NewAuthHandler(uc, logger)
	auth := e.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)

	return e
}

func testSession() *usecase.Session {
	return &usecase.Session{
		AccessToken:          "signed-access-token",
		AccessTokenExpiresAt: time.Now().Add(15 * time.Minute),
		RefreshToken:         "opaque-refresh-token",
		Profile: &usecase.Profile{
			ID:        uuid.New(),
			FirstName: "Ann",
			LastName:  "Lee",
			Email:     "ann@example.com",
			CreatedAt: time.Now(),
		},
	}
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestAuthHandler_Register_Created(t *testing.T) {
	uc := &stubAuthUsecase{
		registerFn: func(ctx context.Context, input *usecase.RegisterInput) (*usecase.Session, error) {
			assert.Equal(t, "ann@example.com", input.Email)

			return testSession(), nil
		},
	}
	e := newTestServer(uc)

	rec := postJSON(e, "/auth/register", `{
		"firstName": "Ann",
		"lastName": "Lee",
		"email": "ann@example.com",
		"password": "correct horse"
	}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"success":true`)
	assert.Contains(t, body, "signed-access-token")
	assert.Contains(t, body, "opaque-refresh-token")
	assert.Contains(t, body, "ann@example.com")
	assert.NotContains(t, body, "password")
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	e := newTestServer(&stubAuthUsecase{})

	rec := postJSON(e, "/auth/register", `{
		"firstName": "Ann",
		"lastName": "Lee",
		"email": "not-an-email",
		"password": "short"
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	uc := &stubAuthUsecase{
		loginFn: func(ctx context.Context, input *usecase.LoginInput) (*usecase.Session, error) {
			return nil, domainerrors.ErrInvalidCredentials
		},
	}
	e := newTestServer(uc)

	rec := postJSON(e, "/auth/login", `{"email": "ann@example.com", "password": "wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "INVALID_CREDENTIALS")
	assert.Contains(t, body, "Invalid email or password")
}

func TestAuthHandler_Refresh_InvalidToken(t *testing.T) {
	uc := &stubAuthUsecase{
		rotateFn: func(ctx context.Context, refreshToken string) (*usecase.Session, error) {
			return nil, domainerrors.ErrInvalidToken
		},
	}
	e := newTestServer(uc)

	rec := postJSON(e, "/auth/refresh", `{"refreshToken": "burned-token"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	e := newTestServer(&stubAuthUsecase{})

	rec := postJSON(e, "/auth/refresh", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	revoked := ""
	uc := &stubAuthUsecase{
		revokeFn: func(ctx context.Context, refreshToken string) error {
			revoked = refreshToken

			return nil
		},
	}
	e := newTestServer(uc)

	rec := postJSON(e, "/auth/logout", `{"refreshToken": "current-token"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "current-token", revoked)
	assert.Contains(t, rec.Body.String(), "Logout successful")
}

func TestAuthHandler_UnknownErrorStaysGeneric(t *testing.T) {
	uc := &stubAuthUsecase{
		loginFn: func(ctx context.Context, input *usecase.LoginInput) (*usecase.Session, error) {
			return nil, assert.AnError
		},
	}
	e := newTestServer(uc)

	rec := postJSON(e, "/auth/login", `{"email": "ann@example.com", "password": "correct horse"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "INTERNAL_ERROR")
	assert.NotContains(t, body, assert.AnError.Error())
}
