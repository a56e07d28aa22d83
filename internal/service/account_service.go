package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bookticket/user-service/internal/auth"
	"github.com/bookticket/user-service/internal/domain"
	"github.com/bookticket/user-service/internal/events"
	"github.com/bookticket/user-service/internal/repository"
	apperrors "github.com/bookticket/user-service/pkg/util"
)

// AccountService orchestrates account lifecycle against the store, applying
// normalization and uniqueness rules. The pre-checks here exist for clean
// errors; the store's unique indexes remain the arbiter under races.
type AccountService struct {
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// NewAccountService builds the service.
func NewAccountService(accounts repository.AccountRepository, dispatcher events.Dispatcher, logger *zap.Logger, bcryptCost int) *AccountService {
	return &AccountService{
		accounts:   accounts,
		dispatcher: dispatcher,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Create registers a new account with the default role set. The handle check
// runs first and short-circuits; both duplicate conditions may hold.
func (s *AccountService) Create(ctx context.Context, handle, email, secret, createdBy string) (*domain.Account, error) {
	if err := domain.ValidateHandle(handle); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "handle"})
	}
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "email"})
	}
	if err := domain.ValidateSecret(secret); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
	}

	if err := s.ensureHandleFree(ctx, handle, ""); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(secret, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Handle:       handle,
		Email:        email,
		PasswordHash: hash,
		Roles:        []domain.Role{domain.RoleUser},
		CreatedBy:    createdBy,
	}
	if err := s.accounts.Insert(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account created", zap.String("account_id", account.ID), zap.String("handle", account.Handle))
	s.publish(ctx, events.EventAccountCreated, account)
	return account, nil
}

// GetByEmail loads an account, normalizing the lookup key first.
func (s *AccountService) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.accounts.GetByEmail(ctx, domain.NormalizeEmail(email))
}

// GetByID loads an account by its id.
func (s *AccountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// UpdateIdentity applies a partial handle/email change to the account
// currently holding the given email. Omitted fields are untouched; changed
// fields are re-validated for uniqueness excluding the account itself, and
// the store persists once. Credential change is not supported on this path.
func (s *AccountService) UpdateIdentity(ctx context.Context, currentEmail string, patch domain.IdentityPatch) (*domain.Account, error) {
	account, err := s.GetByEmail(ctx, currentEmail)
	if err != nil {
		return nil, err
	}

	if patch.Handle != nil && *patch.Handle != account.Handle {
		if err := domain.ValidateHandle(*patch.Handle); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "handle"})
		}
		if err := s.ensureHandleFree(ctx, *patch.Handle, account.ID); err != nil {
			return nil, err
		}
		account.Handle = *patch.Handle
	}

	if patch.Email != nil {
		newEmail := domain.NormalizeEmail(*patch.Email)
		if newEmail != account.Email {
			if err := domain.ValidateEmail(newEmail); err != nil {
				return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "email"})
			}
			if err := s.ensureEmailFree(ctx, newEmail, account.ID); err != nil {
				return nil, err
			}
			account.Email = newEmail
		}
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account updated", zap.String("account_id", account.ID), zap.String("handle", account.Handle))
	s.publish(ctx, events.EventAccountUpdated, account)
	return account, nil
}

// DeleteByEmail removes the account holding the given email. Authorization
// is the caller's concern; deletion here is unconditional.
func (s *AccountService) DeleteByEmail(ctx context.Context, email string) error {
	account, err := s.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.accounts.DeleteByID(ctx, account.ID); err != nil {
		return err
	}

	s.logger.Info("account deleted", zap.String("account_id", account.ID))
	s.publish(ctx, events.EventAccountDeleted, account)
	return nil
}

func (s *AccountService) ensureHandleFree(ctx context.Context, handle, selfID string) error {
	existing, err := s.accounts.GetByHandle(ctx, handle)
	if err == nil {
		if existing.ID != selfID {
			return domain.ErrDuplicateHandle
		}
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		if existing.ID != selfID {
			return domain.ErrDuplicateEmail
		}
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (s *AccountService) publish(ctx context.Context, eventType events.EventType, account *domain.Account) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.NewEvent(eventType, account.ID, account.Handle))
}
