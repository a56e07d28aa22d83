package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookticket/user-service/internal/domain"
	"github.com/bookticket/user-service/internal/repository"
)

func newTestAccountService() *AccountService {
	return NewAccountService(repository.NewMemoryAccountRepository(), nil, zap.NewNop(), 4)
}

func TestCreate_DefaultsAndNormalization(t *testing.T) {
	svc := newTestAccountService()
	ctx := context.Background()

	account, err := svc.Create(ctx, "alice", "Alice@Example.com", "secret123", "alice")
	require.NoError(t, err)

	require.NotEmpty(t, account.ID)
	require.Equal(t, "alice@example.com", account.Email)
	require.Equal(t, []domain.Role{domain.RoleUser}, account.Roles)
	require.NotEqual(t, "secret123", account.PasswordHash)
	require.False(t, account.UpdatedAt.Before(account.CreatedAt))
}

func TestCreate_DuplicateHandleCheckedFirst(t *testing.T) {
	svc := newTestAccountService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "alice@example.com", "secret123", "alice")
	require.NoError(t, err)

	// same handle and same email: the handle check short-circuits
	_, err = svc.Create(ctx, "alice", "alice@example.com", "secret123", "alice")
	require.ErrorIs(t, err, domain.ErrDuplicateHandle)

	_, err = svc.Create(ctx, "alice", "other@example.com", "secret123", "alice")
	require.ErrorIs(t, err, domain.ErrDuplicateHandle)

	_, err = svc.Create(ctx, "bob", "alice@example.com", "secret123", "bob")
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestAccountService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "ab", "alice@example.com", "secret123", "ab")
	require.Error(t, err)

	_, err = svc.Create(ctx, "alice", "nope", "secret123", "alice")
	require.Error(t, err)

	_, err = svc.Create(ctx, "alice", "alice@example.com", "short", "alice")
	require.Error(t, err)
}

func TestGetByEmail_NormalizesLookup(t *testing.T) {
	svc := newTestAccountService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "alice@example.com", "secret123", "alice")
	require.NoError(t, err)

	found, err := svc.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = svc.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateIdentity_PartialPatch(t *testing.T) {
	svc := newTestAccountService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "alice@example.com", "secret123", "alice")
	require.NoError(t, err)

	newHandle := "alice2"
	updated, err := svc.UpdateIdentity(ctx, "alice@example.com", domain.IdentityPatch{Handle: &newHandle})
	require.NoError(t, err)
	require.Equal(t, "alice2", updated.Handle)
	require.Equal(t, "alice@example.com", updated.Email)
	require.Equal(t, created.ID, updated.ID)

	newEmail := "Alice2@Example.com"
	updated, err = svc.UpdateIdentity(ctx, "alice@example.com", domain.IdentityPatch{Email: &newEmail})
	require.NoError(t, err)
	require.Equal(t, "alice2@example.com", updated.Email)

	// old email no longer resolves
	_, err = svc.GetByEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateIdentity_SameValuesNoConflict(t *testing.T) {
	svc := newTestAccountService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "alice@example.com", "secret123", "alice")
	require.NoError(t, err)

	handle := "alice"
	email := "alice@example.com"
	updated, err := svc.UpdateIdentity(ctx, "alice@example.com", domain.IdentityPatch{Handle: &handle, Email: &email})
	require.NoError(t, err)
	require.Equal(t, "alice", updated.Handle)
}

func TestUpdateIdentity_DuplicateEmailLeavesOriginalUnchanged(t *testing.T) {
	svc := newTestAccountService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "alice@example.com", "secret123", "alice")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bob", "bob@example.com", "secret123", "bob")
	require.NoError(t, err)

	taken := "alice@example.com"
	_, err = svc.UpdateIdentity(ctx, "bob@example.com", domain.IdentityPatch{Email: &taken})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	bob, err := svc.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, "bob", bob.Handle)
	require.Equal(t, "bob@example.com", bob.Email)
}

func TestDeleteByEmail(t *testing.T) {
	svc := newTestAccountService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "alice@example.com", "secret123", "alice")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByEmail(ctx, "alice@example.com"))
	require.ErrorIs(t, svc.DeleteByEmail(ctx, "alice@example.com"), domain.ErrNotFound)

	// handle and email become reusable
	_, err = svc.Create(ctx, "alice", "alice@example.com", "secret123", "alice")
	require.NoError(t, err)
}
