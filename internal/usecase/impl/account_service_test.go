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

func TestAccountService_GetProfile_Success(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{
		ID:           uuid.New(),
		FirstName:    "Ann",
		LastName:     "Lee",
		Email:        "ann@x.com",
		PasswordHash: "stored-hash",
		IsActive:     true,
		CreatedAt:    time.Now().Add(-time.Hour),
	}

	fx.accountRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)

	profile, err := fx.service.GetProfile(ctx, account.ID)

	require.NoError(t, err)
	assert.Equal(t, account.ID, profile.ID)
	assert.Equal(t, "Ann", profile.FirstName)
	assert.Equal(t, "ann@x.com", profile.Email)
}

func TestAccountService_GetProfile_MissingOrInactive(t *testing.T) {
	ctx := context.Background()

	fxMissing := createTestAccountService(t)
	missingID := uuid.New()
	fxMissing.accountRepo.EXPECT().FindByID(ctx, missingID).Return(nil, repository.ErrAccountNotFound)

	_, errMissing := fxMissing.service.GetProfile(ctx, missingID)
	assertAppError(t, errMissing, "ACCOUNT_NOT_FOUND")

	fxInactive := createTestAccountService(t)
	inactive := &entity.Account{ID: uuid.New(), Email: "gone@x.com", IsActive: false}
	fxInactive.accountRepo.EXPECT().FindByID(ctx, inactive.ID).Return(inactive, nil)

	_, errInactive := fxInactive.service.GetProfile(ctx, inactive.ID)
	assertAppError(t, errInactive, "ACCOUNT_NOT_FOUND")
}

func TestAccountService_UpdateProfile_Success(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{
		ID:        uuid.New(),
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@x.com",
		IsActive:  true,
	}
	newFirst := "Anna"
	newEmail := "Anna@X.com"

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		accountRepo := mockRepo.NewMockAccountRepository(t)
		factory.EXPECT().AccountRepo().Return(accountRepo)

		accountRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
		accountRepo.EXPECT().FindByEmail(ctx, "anna@x.com").Return(nil, repository.ErrAccountNotFound)
		accountRepo.EXPECT().Update(ctx, mock.AnythingOfType("*entity.Account")).
			RunAndReturn(func(ctx context.Context, updated *entity.Account) error {
				assert.Equal(t, "Anna", updated.FirstName)
				assert.Equal(t, "anna@x.com", updated.Email)

				return nil
			})
	})

	profile, err := fx.service.UpdateProfile(ctx, account.ID, &usecase.UpdateProfileInput{
		FirstName: &newFirst,
		Email:     &newEmail,
	})

	require.NoError(t, err)
	assert.Equal(t, "Anna", profile.FirstName)
	assert.Equal(t, "anna@x.com", profile.Email)
	assert.Equal(t, "Lee", profile.LastName)
}

func TestAccountService_UpdateProfile_EmailTaken(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{ID: uuid.New(), Email: "ann@x.com", IsActive: true}
	other := &entity.Account{ID: uuid.New(), Email: "bob@x.com", IsActive: true}
	newEmail := "bob@x.com"

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		accountRepo := mockRepo.NewMockAccountRepository(t)
		factory.EXPECT().AccountRepo().Return(accountRepo)

		accountRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
		accountRepo.EXPECT().FindByEmail(ctx, "bob@x.com").Return(other, nil)
	})

	profile, err := fx.service.UpdateProfile(ctx, account.ID, &usecase.UpdateProfileInput{Email: &newEmail})

	assert.Nil(t, profile)
	assertAppError(t, err, "EMAIL_ALREADY_EXISTS")
}

func TestAccountService_Deactivate_CascadesRevocation(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{ID: uuid.New(), Email: "ann@x.com", IsActive: true}

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		accountRepo := mockRepo.NewMockAccountRepository(t)
		refreshRepo := mockRepo.NewMockRefreshTokenRepository(t)

		factory.EXPECT().AccountRepo().Return(accountRepo)
		factory.EXPECT().RefreshTokenRepo().Return(refreshRepo)

		accountRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
		accountRepo.EXPECT().Update(ctx, mock.AnythingOfType("*entity.Account")).
			RunAndReturn(func(ctx context.Context, updated *entity.Account) error {
				assert.False(t, updated.IsActive)

				return nil
			})
		refreshRepo.EXPECT().RevokeAllByAccountID(ctx, account.ID).Return(3, nil)
	})

	require.NoError(t, fx.service.Deactivate(ctx, account.ID))
}

func TestAccountService_Deactivate_AlreadyInactive(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{ID: uuid.New(), Email: "ann@x.com", IsActive: false}

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		accountRepo := mockRepo.NewMockAccountRepository(t)
		factory.EXPECT().AccountRepo().Return(accountRepo)

		accountRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
	})

	require.NoError(t, fx.service.Deactivate(ctx, account.ID))
}

func TestAccountService_Deactivate_NotFound(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	missingID := uuid.New()

	fx.onExecute(ctx, func(factory *mockRepo.MockRepositoryFactory) {
		accountRepo := mockRepo.NewMockAccountRepository(t)
		factory.EXPECT().AccountRepo().Return(accountRepo)

		accountRepo.EXPECT().FindByID(ctx, missingID).Return(nil, repository.ErrAccountNotFound)
	})

	err := fx.service.Deactivate(ctx, missingID)

	assertAppError(t, err, "ACCOUNT_NOT_FOUND")
}

func TestAccountService_ListAccounts(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	accounts := []*entity.Account{
		{ID: uuid.New(), FirstName: "Ann", Email: "ann@x.com", IsActive: true},
		{ID: uuid.New(), FirstName: "Bob", Email: "bob@x.com", IsActive: true},
	}

	fx.accountRepo.EXPECT().ListActive(ctx).Return(accounts, nil)

	profiles, err := fx.service.ListAccounts(ctx)

	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "ann@x.com", profiles[0].Email)
	assert.Equal(t, "bob@x.com", profiles[1].Email)
}

func TestAccountService_GetStats(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()

	fx.accountRepo.EXPECT().CountByActive(ctx, true).Return(7, nil)
	fx.accountRepo.EXPECT().CountByActive(ctx, false).Return(2, nil)
	fx.accountRepo.EXPECT().CountCreatedSince(ctx, mock.AnythingOfType("time.Time")).Return(3, nil)

	stats, err := fx.service.GetStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 9, stats.TotalAccounts)
	assert.Equal(t, 7, stats.ActiveAccounts)
	assert.Equal(t, 2, stats.InactiveAccounts)
	assert.Equal(t, 3, stats.RegisteredLastWeek)
}
