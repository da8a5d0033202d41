package impl

import (
	"context"
	"testing"
	"time"

	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/domain/repository"
	mockRepo "gatekeeper/internal/mocks/repository"
	"gatekeeper/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	accountID := uuid.New()
	accessExpiry := time.Now().Add(15 * time.Minute)

	fx.hasher.EXPECT().Hash("Secret123!").Return("hashed-secret", nil)
	fx.tokenSvc.EXPECT().GenerateRefreshToken().Return("raw-refresh", nil)
	fx.tokenSvc.EXPECT().HashToken("raw-refresh").Return("hash-of-refresh")
	fx.tokenSvc.EXPECT().RefreshTokenDuration().Return(7 * 24 * time.Hour)
	fx.tokenSvc.EXPECT().GenerateAccessToken(mock.AnythingOfType("uuid.UUID"), "ann@x.com").Return("access-token", accessExpiry, nil)

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		accountRepo := mockRepo.NewMockAccountRepository(t)
		refreshRepo := mockRepo.NewMockRefreshTokenRepository(t)

		factory.EXPECT().AccountRepo().Return(accountRepo)
		factory.EXPECT().RefreshTokenRepo().Return(refreshRepo)

		accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(nil, repository.ErrAccountNotFound)
		accountRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).
			RunAndReturn(func(ctx context.Context, account *entity.Account) error {
				account.ID = accountID

				return nil
			})
		refreshRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.RefreshToken")).
			RunAndReturn(func(ctx context.Context, token *entity.RefreshToken) error {
				assert.Equal(t, accountID, token.AccountID)
				assert.Equal(t, "hash-of-refresh", token.TokenHash)
				assert.False(t, token.Revoked)

				return nil
			})
	})

	session, err := fx.service.Register(ctx, &usecase.RegisterInput{
		FirstName: "  Ann ",
		LastName:  "Lee",
		Email:     "Ann@X.com ",
		Password:  "Secret123!",
	})

	require.NoError(t, err)
	assert.Equal(t, "access-token", session.AccessToken)
	assert.Equal(t, "raw-refresh", session.RefreshToken)
	assert.Equal(t, accessExpiry, session.AccessTokenExpiresAt)
	assert.Equal(t, "ann@x.com", session.Profile.Email)
	assert.Equal(t, "Ann", session.Profile.FirstName)
	assert.Equal(t, accountID, session.Profile.ID)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	existing := &entity.Account{ID: uuid.New(), Email: "ann@x.com", IsActive: false}

	fx.hasher.EXPECT().Hash("Secret123!").Return("hashed-secret", nil)

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		accountRepo := mockRepo.NewMockAccountRepository(t)
		factory.EXPECT().AccountRepo().Return(accountRepo)

		// A deactivated account still occupies its email.
		accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(existing, nil)
	})

	session, err := fx.service.Register(ctx, &usecase.RegisterInput{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@x.com",
		Password:  "Secret123!",
	})

	assert.Nil(t, session)
	assertAppError(t, err, "EMAIL_ALREADY_EXISTS")
}

func TestAuthService_Login_Success_RevokesPriorSessions(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	account := &entity.Account{
		ID:           uuid.New(),
		Email:        "ann@x.com",
		PasswordHash: "stored-hash",
		IsActive:     true,
	}
	accessExpiry := time.Now().Add(15 * time.Minute)

	fx.accountRepo.EXPECT().FindActiveByEmail(ctx, "ann@x.com").Return(account, nil)
	fx.hasher.EXPECT().Check("Secret123!", "stored-hash").Return(true)
	fx.tokenSvc.EXPECT().GenerateRefreshToken().Return("raw-refresh-2", nil)
	fx.tokenSvc.EXPECT().HashToken("raw-refresh-2").Return("hash-2")
	fx.tokenSvc.EXPECT().RefreshTokenDuration().Return(7 * 24 * time.Hour)
	fx.tokenSvc.EXPECT().GenerateAccessToken(account.ID, "ann@x.com").Return("access-2", accessExpiry, nil)

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		refreshRepo := mockRepo.NewMockRefreshTokenRepository(t)
		factory.EXPECT().RefreshTokenRepo().Return(refreshRepo)

		refreshRepo.EXPECT().RevokeAllByAccountID(ctx, account.ID).Return(2, nil)
		refreshRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.RefreshToken")).Return(nil)
	})

	session, err := fx.service.Login(ctx, &usecase.LoginInput{
		Email:    "ANN@X.COM",
		Password: "Secret123!",
	})

	require.NoError(t, err)
	assert.Equal(t, "raw-refresh-2", session.RefreshToken)
	assert.Equal(t, account.ID, session.Profile.ID)
}

func TestAuthService_Login_IndistinguishableFailures(t *testing.T) {
	ctx := context.Background()

	// Unknown email.
	fxUnknown := createTestAuthService(t)
	fxUnknown.accountRepo.EXPECT().FindActiveByEmail(ctx, "nouser@x.com").Return(nil, repository.ErrAccountNotFound)

	_, errUnknown := fxUnknown.service.Login(ctx, &usecase.LoginInput{Email: "nouser@x.com", Password: "Whatever"})
	require.Error(t, errUnknown)

	// Wrong password for an existing account.
	fxWrong := createTestAuthService(t)
	account := &entity.Account{ID: uuid.New(), Email: "ann@x.com", PasswordHash: "stored-hash", IsActive: true}
	fxWrong.accountRepo.EXPECT().FindActiveByEmail(ctx, "ann@x.com").Return(account, nil)
	fxWrong.hasher.EXPECT().Check("WrongPass", "stored-hash").Return(false)

	_, errWrong := fxWrong.service.Login(ctx, &usecase.LoginInput{Email: "ann@x.com", Password: "WrongPass"})
	require.Error(t, errWrong)

	// Both failures surface the identical client-facing message.
	assert.Equal(t, appErrorMessage(t, errUnknown), appErrorMessage(t, errWrong))
	assertAppError(t, errUnknown, "INVALID_CREDENTIALS")
	assertAppError(t, errWrong, "INVALID_CREDENTIALS")
}

func TestAuthService_Rotate_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	account := &entity.Account{ID: uuid.New(), Email: "ann@x.com", IsActive: true}
	token := &entity.RefreshToken{
		ID:        uuid.New(),
		AccountID: account.ID,
		TokenHash: "old-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	accessExpiry := time.Now().Add(15 * time.Minute)

	fx.tokenSvc.EXPECT().HashToken("old-raw").Return("old-hash")
	fx.tokenSvc.EXPECT().GenerateRefreshToken().Return("new-raw", nil)
	fx.tokenSvc.EXPECT().HashToken("new-raw").Return("new-hash")
	fx.tokenSvc.EXPECT().RefreshTokenDuration().Return(7 * 24 * time.Hour)
	fx.tokenSvc.EXPECT().GenerateAccessToken(account.ID, "ann@x.com").Return("new-access", accessExpiry, nil)

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		accountRepo := mockRepo.NewMockAccountRepository(t)
		refreshRepo := mockRepo.NewMockRefreshTokenRepository(t)

		factory.EXPECT().AccountRepo().Return(accountRepo)
		factory.EXPECT().RefreshTokenRepo().Return(refreshRepo)

		refreshRepo.EXPECT().FindByHash(ctx, "old-hash").Return(token, nil)
		accountRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
		refreshRepo.EXPECT().MarkRevoked(ctx, "old-hash").Return(true, nil)
		refreshRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.RefreshToken")).
			RunAndReturn(func(ctx context.Context, created *entity.RefreshToken) error {
				assert.Equal(t, "new-hash", created.TokenHash)
				assert.Equal(t, account.ID, created.AccountID)

				return nil
			})
	})

	session, err := fx.service.Rotate(ctx, "old-raw")

	require.NoError(t, err)
	assert.Equal(t, "new-raw", session.RefreshToken)
	assert.Equal(t, "new-access", session.AccessToken)
}

func TestAuthService_Rotate_LosesRace(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	account := &entity.Account{ID: uuid.New(), Email: "ann@x.com", IsActive: true}
	token := &entity.RefreshToken{
		AccountID: account.ID,
		TokenHash: "old-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	fx.tokenSvc.EXPECT().HashToken("old-raw").Return("old-hash")

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		accountRepo := mockRepo.NewMockAccountRepository(t)
		refreshRepo := mockRepo.NewMockRefreshTokenRepository(t)

		factory.EXPECT().AccountRepo().Return(accountRepo)
		factory.EXPECT().RefreshTokenRepo().Return(refreshRepo)

		refreshRepo.EXPECT().FindByHash(ctx, "old-hash").Return(token, nil)
		accountRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
		// Another rotation flipped the flag between the read and the update.
		refreshRepo.EXPECT().MarkRevoked(ctx, "old-hash").Return(false, nil)
	})

	session, err := fx.service.Rotate(ctx, "old-raw")

	assert.Nil(t, session)
	assertAppError(t, err, "INVALID_TOKEN")
}

func TestAuthService_Rotate_InactiveOwner(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	account := &entity.Account{ID: uuid.New(), Email: "ann@x.com", IsActive: false}
	token := &entity.RefreshToken{
		AccountID: account.ID,
		TokenHash: "old-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	fx.tokenSvc.EXPECT().HashToken("old-raw").Return("old-hash")

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		accountRepo := mockRepo.NewMockAccountRepository(t)
		refreshRepo := mockRepo.NewMockRefreshTokenRepository(t)

		factory.EXPECT().AccountRepo().Return(accountRepo)
		factory.EXPECT().RefreshTokenRepo().Return(refreshRepo)

		refreshRepo.EXPECT().FindByHash(ctx, "old-hash").Return(token, nil)
		accountRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
	})

	session, err := fx.service.Rotate(ctx, "old-raw")

	assert.Nil(t, session)
	assertAppError(t, err, "ACCOUNT_INACTIVE")
}

func TestAuthService_Rotate_IndistinguishableFailures(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	cases := []struct {
		name  string
		setup func(fx *authServiceFixture)
	}{
		{
			name: "unknown token",
			setup: func(fx *authServiceFixture) {
				fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
					refreshRepo := mockRepo.NewMockRefreshTokenRepository(fx.t)
					factory.EXPECT().RefreshTokenRepo().Return(refreshRepo)
					refreshRepo.EXPECT().FindByHash(ctx, "presented-hash").Return(nil, repository.ErrRefreshTokenNotFound)
				})
			},
		},
		{
			name: "revoked token",
			setup: func(fx *authServiceFixture) {
				fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
					refreshRepo := mockRepo.NewMockRefreshTokenRepository(fx.t)
					factory.EXPECT().RefreshTokenRepo().Return(refreshRepo)
					refreshRepo.EXPECT().FindByHash(ctx, "presented-hash").Return(&entity.RefreshToken{
						AccountID: owner,
						TokenHash: "presented-hash",
						ExpiresAt: time.Now().Add(time.Hour),
						Revoked:   true,
					}, nil)
				})
			},
		},
		{
			name: "expired token",
			setup: func(fx *authServiceFixture) {
				fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
					refreshRepo := mockRepo.NewMockRefreshTokenRepository(fx.t)
					factory.EXPECT().RefreshTokenRepo().Return(refreshRepo)
					refreshRepo.EXPECT().FindByHash(ctx, "presented-hash").Return(&entity.RefreshToken{
						AccountID: owner,
						TokenHash: "presented-hash",
						ExpiresAt: time.Now().Add(-time.Minute),
					}, nil)
				})
			},
		},
	}

	var messages []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := createTestAuthService(t)
			fx.tokenSvc.EXPECT().HashToken("presented-raw").Return("presented-hash")
			tc.setup(fx)

			session, err := fx.service.Rotate(ctx, "presented-raw")

			assert.Nil(t, session)
			assertAppError(t, err, "INVALID_TOKEN")
			messages = append(messages, appErrorMessage(t, err))
		})
	}

	// All three rejections carry the same client-facing message.
	require.Len(t, messages, 3)
	assert.Equal(t, messages[0], messages[1])
	assert.Equal(t, messages[1], messages[2])
}

func TestAuthService_Revoke_Idempotent(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()

	fx.tokenSvc.EXPECT().HashToken("raw-token").Return("token-hash").Twice()
	// First call flips the flag, the second finds it already revoked.
	fx.refreshRepo.EXPECT().MarkRevoked(ctx, "token-hash").Return(true, nil).Once()
	fx.refreshRepo.EXPECT().MarkRevoked(ctx, "token-hash").Return(false, nil).Once()

	require.NoError(t, fx.service.Revoke(ctx, "raw-token"))
	require.NoError(t, fx.service.Revoke(ctx, "raw-token"))
}

func TestAuthService_Revoke_UnknownToken(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()

	fx.tokenSvc.EXPECT().HashToken("raw-token").Return("token-hash")
	fx.refreshRepo.EXPECT().MarkRevoked(ctx, "token-hash").Return(false, repository.ErrRefreshTokenNotFound)

	err := fx.service.Revoke(ctx, "raw-token")

	assertAppError(t, err, "TOKEN_NOT_FOUND")
}
