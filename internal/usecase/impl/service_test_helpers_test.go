package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	mockRepo "gatekeeper/internal/mocks/repository"
	mockSvc "gatekeeper/internal/mocks/service"
	"gatekeeper/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// assertAppError checks that err unwraps to an AppError with the given business code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()

	require.Error(t, err)
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.ErrorCode())
}

// appErrorMessage returns the client-facing message carried by err.
func appErrorMessage(t *testing.T, err error) string {
	t.Helper()

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)

	return appErr.Message()
}

// authServiceFixture wires an authService against mocks for expectation-based tests.
type authServiceFixture struct {
	t           *testing.T
	txManager   *mockRepo.MockTransactionManager
	accountRepo *mockRepo.MockAccountRepository
	refreshRepo *mockRepo.MockRefreshTokenRepository
	hasher      *mockSvc.MockPasswordHasher
	tokenSvc    *mockSvc.MockTokenService
	service     usecase.AuthUsecase
}

func createTestAuthService(t *testing.T) *authServiceFixture {
	fx := &authServiceFixture{
		t:           t,
		txManager:   mockRepo.NewMockTransactionManager(t),
		accountRepo: mockRepo.NewMockAccountRepository(t),
		refreshRepo: mockRepo.NewMockRefreshTokenRepository(t),
		hasher:      mockSvc.NewMockPasswordHasher(t),
		tokenSvc:    mockSvc.NewMockTokenService(t),
	}

	fx.service = NewAuthService(AuthServiceParams{
		TxManager:        fx.txManager,
		AccountRepo:      fx.accountRepo,
		RefreshTokenRepo: fx.refreshRepo,
		Hasher:           fx.hasher,
		TokenService:     fx.tokenSvc,
		Logger:           newDiscardLogger(),
	})

	return fx
}

// onExecute stubs the transaction manager to run the callback against a fresh
// mock factory and propagate whatever the callback returns.
func (fx *authServiceFixture) onExecute(ctx context.Context, setup func(factory *mockRepo.MockRepositoryFactory)) {
	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(fx.t)
			setup(factory)

			return fn(factory)
		})
}

// accountServiceFixture wires an accountService against mocks.
type accountServiceFixture struct {
	t           *testing.T
	txManager   *mockRepo.MockTransactionManager
	accountRepo *mockRepo.MockAccountRepository
	service     usecase.AccountUsecase
}

func createTestAccountService(t *testing.T) *accountServiceFixture {
	fx := &accountServiceFixture{
		t:           t,
		txManager:   mockRepo.NewMockTransactionManager(t),
		accountRepo: mockRepo.NewMockAccountRepository(t),
	}

	fx.service = NewAccountService(AccountServiceParams{
		TxManager:   fx.txManager,
		AccountRepo: fx.accountRepo,
		Logger:      newDiscardLogger(),
	})

	return fx
}

func (fx *accountServiceFixture) onExecute(ctx context.Context, setup func(factory *mockRepo.MockRepositoryFactory)) {
	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(fx.t)
			setup(factory)

			return fn(factory)
		})
}
