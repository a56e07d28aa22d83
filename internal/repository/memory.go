package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookticket/user-service/internal/domain"
)

// memoryAccountRepository is an in-process store used by tests and local
// runs without Postgres. Uniqueness is arbitrated under a single mutex, so
// concurrent conflicting inserts resolve exactly like the unique indexes do.
type memoryAccountRepository struct {
	mu       sync.Mutex
	byID     map[string]*domain.Account
	byEmail  map[string]string
	byHandle map[string]string
}

// NewMemoryAccountRepository returns an empty in-memory store.
func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{
		byID:     make(map[string]*domain.Account),
		byEmail:  make(map[string]string),
		byHandle: make(map[string]string),
	}
}

func (r *memoryAccountRepository) Insert(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byHandle[account.Handle]; exists {
		return domain.ErrDuplicateHandle
	}
	if _, exists := r.byEmail[account.Email]; exists {
		return domain.ErrDuplicateEmail
	}

	now := time.Now()
	account.ID = uuid.NewString()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	r.byID[account.ID] = &stored
	r.byHandle[account.Handle] = account.ID
	r.byEmail[account.Email] = account.ID
	return nil
}

func (r *memoryAccountRepository) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[account.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if id, exists := r.byHandle[account.Handle]; exists && id != account.ID {
		return domain.ErrDuplicateHandle
	}
	if id, exists := r.byEmail[account.Email]; exists && id != account.ID {
		return domain.ErrDuplicateEmail
	}

	delete(r.byHandle, current.Handle)
	delete(r.byEmail, current.Email)

	account.UpdatedAt = time.Now()
	stored := *account
	r.byID[account.ID] = &stored
	r.byHandle[account.Handle] = account.ID
	r.byEmail[account.Email] = account.ID
	return nil
}

func (r *memoryAccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyOf(r.byID[id])
}

func (r *memoryAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyOf(r.byID[r.byEmail[email]])
}

func (r *memoryAccountRepository) GetByHandle(_ context.Context, handle string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyOf(r.byID[r.byHandle[handle]])
}

func (r *memoryAccountRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byHandle, account.Handle)
	delete(r.byEmail, account.Email)
	delete(r.byID, id)
	return nil
}

func (r *memoryAccountRepository) copyOf(account *domain.Account) (*domain.Account, error) {
	if account == nil {
		return nil, domain.ErrNotFound
	}
	copied := *account
	copied.Roles = append([]domain.Role(nil), account.Roles...)
	return &copied, nil
}
