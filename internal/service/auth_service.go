package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bookticket/user-service/internal/auth"
	"github.com/bookticket/user-service/internal/domain"
)

// IssuedToken is the compact signed token plus its expiry, exposed both as a
// timestamp and as epoch millis for client convenience.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// ExpiresAtMillis returns the expiry as epoch milliseconds.
func (t IssuedToken) ExpiresAtMillis() int64 {
	return t.ExpiresAt.UnixMilli()
}

// AuthService composes the account manager and token engine into stateless
// register/login flows. The signed token is the only authenticated state
// that survives between calls.
type AuthService struct {
	accounts *AccountService
	tokens   *auth.TokenManager
	limiter  *LoginLimiter
	logger   *zap.Logger
}

// NewAuthService builds the service. limiter may be nil when throttling is
// disabled.
func NewAuthService(accounts *AccountService, tokens *auth.TokenManager, limiter *LoginLimiter, logger *zap.Logger) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, limiter: limiter, logger: logger}
}

// Register creates the account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, handle, email, secret, clientIP string) (*domain.Account, IssuedToken, error) {
	if err := s.enforceLimit(ctx, email, clientIP); err != nil {
		return nil, IssuedToken{}, err
	}

	account, err := s.accounts.Create(ctx, handle, email, secret, handle)
	if err != nil {
		return nil, IssuedToken{}, err
	}

	issued, err := s.issue(account)
	if err != nil {
		return nil, IssuedToken{}, err
	}
	return account, issued, nil
}

// Login verifies the credential and issues a token carrying the current
// role set. Unknown email and wrong secret are indistinguishable to the
// caller, so account existence never leaks.
func (s *AuthService) Login(ctx context.Context, email, secret, clientIP string) (IssuedToken, error) {
	if err := s.enforceLimit(ctx, email, clientIP); err != nil {
		return IssuedToken{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return IssuedToken{}, domain.ErrBadCredentials
		}
		return IssuedToken{}, err
	}
	if !auth.VerifyPassword(secret, account.PasswordHash) {
		s.logger.Info("login rejected", zap.String("account_id", account.ID))
		return IssuedToken{}, domain.ErrBadCredentials
	}

	return s.issue(account)
}

// UpdateProfile applies an identity patch and re-issues a token, since
// identity claims may have changed.
func (s *AuthService) UpdateProfile(ctx context.Context, currentEmail string, patch domain.IdentityPatch) (*domain.Account, IssuedToken, error) {
	account, err := s.accounts.UpdateIdentity(ctx, currentEmail, patch)
	if err != nil {
		return nil, IssuedToken{}, err
	}
	issued, err := s.issue(account)
	if err != nil {
		return nil, IssuedToken{}, err
	}
	return account, issued, nil
}

func (s *AuthService) issue(account *domain.Account) (IssuedToken, error) {
	token, expiresAt, err := s.tokens.Issue(account.ID, account.Roles)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) enforceLimit(ctx context.Context, email, clientIP string) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Enforce(ctx, domain.NormalizeEmail(email), clientIP)
}

// TokenManager exposes the underlying token engine for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
