// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "gatekeeper/internal/delivery/context"
	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	accountRepo      repository.AccountRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	AccountRepo      repository.AccountRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:        params.TxManager,
		accountRepo:      params.AccountRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// normalizeEmail lowercases and trims an email so lookups and uniqueness
// checks agree regardless of how the client typed it.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new active account and issues its first session.
// The account insert and the refresh token insert commit in one transaction
// so the token's owner reference is always valid.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.Session, error) {
	email := normalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	var session *usecase.Session
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		// Uniqueness spans inactive accounts too; deactivation does not free
		// up an email address.
		_, err := accountRepo.FindByEmail(ctx, email)
		if err == nil {
			return domainerrors.ErrEmailAlreadyExists.WrapMessage("email already registered")
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return errors.Wrap(err, "failed to check email uniqueness")
		}

		newAccount := &entity.Account{
			FirstName:    strings.TrimSpace(input.FirstName),
			LastName:     strings.TrimSpace(input.LastName),
			Email:        email,
			PasswordHash: hashedPassword,
			IsActive:     true,
		}
		if err := accountRepo.Create(ctx, newAccount); err != nil {
			return errors.Wrap(err, "failed to create account during registration")
		}

		session, err = srv.issueSession(ctx, repoFactory.RefreshTokenRepo(), newAccount)
		if err != nil {
			return errors.Wrap(err, "failed to issue session during registration")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("accountID", session.Profile.ID))

	return session, nil
}

// Login verifies credentials and issues a fresh session. Every pre-existing
// refresh token of the account is revoked first, keeping a single live
// refresh chain per login.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.Session, error) {
	email := normalizeEmail(input.Email)

	account, err := srv.accountRepo.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Same failure as a wrong password; never reveal whether the
			// email exists.
			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("no active account for email")
		}

		return nil, errors.Wrap(err, "failed to look up account for login")
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.log(ctx).Warn("Password mismatch during login", slog.Any("accountID", account.ID))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("password mismatch")
	}

	var session *usecase.Session
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.RefreshTokenRepo()

		revoked, err := tokenRepo.RevokeAllByAccountID(ctx, account.ID)
		if err != nil {
			return errors.Wrap(err, "failed to revoke prior sessions during login")
		}
		if revoked > 0 {
			srv.log(ctx).Info("Revoked prior sessions on login", slog.Any("accountID", account.ID), slog.Int("revoked", revoked))
		}

		session, err = srv.issueSession(ctx, tokenRepo, account)
		if err != nil {
			return errors.Wrap(err, "failed to issue session during login")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute login transaction", slog.Any("accountID", account.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Login completed", slog.Any("accountID", account.ID))

	return session, nil
}

// Rotate exchanges a still-active refresh token for a new session. The
// presented token is revoked and the replacement inserted in one transaction;
// when two rotations race on the same token, the conditional revoke lets
// exactly one of them through.
func (srv *authService) Rotate(ctx context.Context, refreshToken string) (*usecase.Session, error) {
	tokenHash := srv.tokenService.HashToken(refreshToken)
	now := time.Now()

	var session *usecase.Session
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.RefreshTokenRepo()

		token, err := tokenRepo.FindByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return domainerrors.ErrInvalidToken.WrapMessage("unknown refresh token")
			}

			return errors.Wrap(err, "failed to look up refresh token")
		}
		if token.Revoked {
			return domainerrors.ErrInvalidToken.WrapMessage("refresh token already revoked")
		}
		if token.Expired(now) {
			return domainerrors.ErrInvalidToken.WrapMessage("refresh token expired")
		}

		account, err := repoFactory.AccountRepo().FindByID(ctx, token.AccountID)
		if err != nil {
			return errors.Wrap(err, "failed to load token owner")
		}
		if !account.IsActive {
			return domainerrors.ErrAccountInactive.WrapMessage("token owner is deactivated")
		}

		// Conditional transition; the loser of a race sees flipped == false.
		flipped, err := tokenRepo.MarkRevoked(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return domainerrors.ErrInvalidToken.WrapMessage("refresh token disappeared during rotation")
			}

			return errors.Wrap(err, "failed to revoke refresh token during rotation")
		}
		if !flipped {
			return domainerrors.ErrInvalidToken.WrapMessage("refresh token rotated concurrently")
		}

		session, err = srv.issueSession(ctx, tokenRepo, account)
		if err != nil {
			return errors.Wrap(err, "failed to issue session during rotation")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Rotation rejected", slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Rotation completed", slog.Any("accountID", session.Profile.ID))

	return session, nil
}

// Revoke terminates the session identified by the refresh token. An unknown
// token is reported as not found; an already-revoked one is a no-op success.
func (srv *authService) Revoke(ctx context.Context, refreshToken string) error {
	tokenHash := srv.tokenService.HashToken(refreshToken)

	flipped, err := srv.refreshTokenRepo.MarkRevoked(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return domainerrors.ErrTokenNotFound.WrapMessage("unknown refresh token")
		}

		return errors.Wrap(err, "failed to revoke refresh token")
	}

	if !flipped {
		srv.log(ctx).Debug("Revoke was a no-op, token already revoked")
	}

	return nil
}

// issueSession mints the access/refresh pair for an account and persists the
// refresh token through the given repository, which may be transaction-bound.
func (srv *authService) issueSession(ctx context.Context, tokenRepo repository.RefreshTokenRepository, account *entity.Account) (*usecase.Session, error) {
	rawRefresh, err := srv.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	newToken := &entity.RefreshToken{
		AccountID: account.ID,
		TokenHash: srv.tokenService.HashToken(rawRefresh),
		ExpiresAt: time.Now().Add(srv.tokenService.RefreshTokenDuration()),
	}
	if err := tokenRepo.Create(ctx, newToken); err != nil {
		return nil, errors.Wrap(err, "failed to persist refresh token")
	}

	accessToken, accessExpiresAt, err := srv.tokenService.GenerateAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	return &usecase.Session{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: accessExpiresAt,
		RefreshToken:         rawRefresh,
		Profile:              usecase.ProfileFromAccount(account),
	}, nil
}
