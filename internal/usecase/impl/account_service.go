package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "gatekeeper/internal/delivery/context"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const statsRecentWindow = 7 * 24 * time.Hour

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager   repository.TransactionManager
	accountRepo repository.AccountRepository
	logger      *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	AccountRepo repository.AccountRepository
	Logger      *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:   params.TxManager,
		accountRepo: params.AccountRepo,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile returns the public projection of an active account. A missing
// and a deactivated account are both reported as not found.
func (srv *accountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*usecase.Profile, error) {
	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound.WrapMessage("account does not exist")
		}

		return nil, errors.Wrap(err, "failed to load account profile")
	}
	if !account.IsActive {
		return nil, domainerrors.ErrAccountNotFound.WrapMessage("account is deactivated")
	}

	return usecase.ProfileFromAccount(account), nil
}

// UpdateProfile applies partial changes to an active account's profile.
// When the email changes, uniqueness is re-checked inside the transaction to
// avoid racing a concurrent registration for the same address.
func (srv *accountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, input *usecase.UpdateProfileInput) (*usecase.Profile, error) {
	var profile *usecase.Profile
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := accountRepo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound.WrapMessage("account does not exist")
			}

			return errors.Wrap(err, "failed to load account for update")
		}
		if !account.IsActive {
			return domainerrors.ErrAccountNotFound.WrapMessage("account is deactivated")
		}

		if input.FirstName != nil {
			account.FirstName = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			account.LastName = strings.TrimSpace(*input.LastName)
		}
		if input.Email != nil {
			newEmail := normalizeEmail(*input.Email)
			if newEmail != account.Email {
				existing, err := accountRepo.FindByEmail(ctx, newEmail)
				if err == nil && existing.ID != account.ID {
					return domainerrors.ErrEmailAlreadyExists.WrapMessage("email already registered")
				}
				if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
					return errors.Wrap(err, "failed to check email uniqueness")
				}
				account.Email = newEmail
			}
		}

		if err := accountRepo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to update account profile")
		}

		profile = usecase.ProfileFromAccount(account)

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Profile update failed", slog.Any("accountID", accountID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Profile updated", slog.Any("accountID", accountID))

	return profile, nil
}

// ListAccounts returns the public projections of all active accounts.
func (srv *accountService) ListAccounts(ctx context.Context) ([]*usecase.Profile, error) {
	accounts, err := srv.accountRepo.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}

	profiles := make([]*usecase.Profile, 0, len(accounts))
	for _, account := range accounts {
		profiles = append(profiles, usecase.ProfileFromAccount(account))
	}

	return profiles, nil
}

// Deactivate soft-deletes the account and revokes every refresh token it
// owns. Both writes commit together so the account can never end up inactive
// while one of its tokens still validates.
func (srv *accountService) Deactivate(ctx context.Context, accountID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := accountRepo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound.WrapMessage("account does not exist")
			}

			return errors.Wrap(err, "failed to load account for deactivation")
		}
		if !account.IsActive {
			// Deactivating twice is a no-op.
			return nil
		}

		account.IsActive = false
		if err := accountRepo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to deactivate account")
		}

		revoked, err := repoFactory.RefreshTokenRepo().RevokeAllByAccountID(ctx, accountID)
		if err != nil {
			return errors.Wrap(err, "failed to revoke sessions during deactivation")
		}

		srv.log(ctx).Info("Account deactivated", slog.Any("accountID", accountID), slog.Int("revokedSessions", revoked))

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Deactivation failed", slog.Any("accountID", accountID), slog.Any("error", err))

		return err
	}

	return nil
}

// GetStats returns aggregate account counts.
func (srv *accountService) GetStats(ctx context.Context) (*usecase.AccountStats, error) {
	active, err := srv.accountRepo.CountByActive(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count active accounts")
	}

	inactive, err := srv.accountRepo.CountByActive(ctx, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count inactive accounts")
	}

	recent, err := srv.accountRepo.CountCreatedSince(ctx, time.Now().Add(-statsRecentWindow))
	if err != nil {
		return nil, errors.Wrap(err, "failed to count recent registrations")
	}

	return &usecase.AccountStats{
		TotalAccounts:      active + inactive,
		ActiveAccounts:     active,
		InactiveAccounts:   inactive,
		RegisteredLastWeek: recent,
	}, nil
}
