package dto

import (
	"github.com/bookticket/user-service/internal/domain"
	"github.com/bookticket/user-service/internal/service"
)

// RegisterRequest payload for account registration.
type RegisterRequest struct {
	Handle   string `json:"handle"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is a partial identity patch; omitted fields stay
// unchanged.
type UpdateProfileRequest struct {
	Handle *string `json:"handle,omitempty"`
	Email  *string `json:"email,omitempty"`
}

// AccountResponse is the outward account shape. The credential verifier is
// deliberately absent.
type AccountResponse struct {
	ID        string        `json:"id"`
	Handle    string        `json:"handle"`
	Email     string        `json:"email"`
	Roles     []domain.Role `json:"roles"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

// AuthResponse carries the bearer token and its expiry in epoch millis.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// FromAccount maps a domain account to its response shape.
func FromAccount(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Handle:    account.Handle,
		Email:     account.Email,
		Roles:     account.Roles,
		CreatedAt: account.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: account.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// FromIssuedToken maps an issued token to its response shape.
func FromIssuedToken(token service.IssuedToken) AuthResponse {
	return AuthResponse{Token: token.Token, ExpiresAt: token.ExpiresAtMillis()}
}
