package service

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookticket/user-service/internal/auth"
	"github.com/bookticket/user-service/internal/domain"
	"github.com/bookticket/user-service/internal/repository"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	tokens, err := auth.NewTokenManager(key, time.Hour)
	require.NoError(t, err)
	accounts := NewAccountService(repository.NewMemoryAccountRepository(), nil, zap.NewNop(), 4)
	return NewAuthService(accounts, tokens, nil, zap.NewNop())
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	account, issued, err := svc.Register(ctx, "alice", "Alice@Example.com", "secret123", "")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", account.Email)
	require.NotEmpty(t, issued.Token)
	require.Greater(t, issued.ExpiresAtMillis(), time.Now().UnixMilli())

	// registration token is bound to the new account
	claims, err := svc.TokenManager().Verify(issued.Token)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)
	require.Equal(t, account.Roles, claims.Roles)

	logged, err := svc.Login(ctx, "alice@example.com", "secret123", "")
	require.NoError(t, err)
	require.True(t, svc.TokenManager().IsValidFor(logged.Token, account.ID))
}

func TestLogin_WrongSecret(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret123", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong", "")
	require.ErrorIs(t, err, domain.ErrBadCredentials)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret123", "")
	require.NoError(t, err)

	_, errKnown := svc.Login(ctx, "alice@example.com", "wrong", "")
	_, errUnknown := svc.Login(ctx, "nobody@example.com", "wrong", "")

	// unknown account and wrong secret are indistinguishable
	require.ErrorIs(t, errKnown, domain.ErrBadCredentials)
	require.ErrorIs(t, errUnknown, domain.ErrBadCredentials)
	require.Equal(t, errKnown.Error(), errUnknown.Error())
}

func TestUpdateProfile_ReissuesToken(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	account, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret123", "")
	require.NoError(t, err)

	newHandle := "renamed"
	updated, issued, err := svc.UpdateProfile(ctx, "alice@example.com", domain.IdentityPatch{Handle: &newHandle})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Handle)

	// subject stays the account id across renames
	claims, err := svc.TokenManager().Verify(issued.Token)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)
}

func TestRegister_ConcurrentDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handle := string(rune('a'+i)) + "-runner"
			_, _, errs[i] = svc.Register(ctx, handle, "x@y.com", "secret123", "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, domain.ErrDuplicateEmail)
		}
	}
	require.Equal(t, 1, succeeded)
}
