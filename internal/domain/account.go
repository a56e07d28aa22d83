package domain

import "time"

// Role tags an account's authorization level.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account is the domain model for a registered identity.
type Account struct {
	ID           string
	Handle       string
	Email        string
	PasswordHash string
	Roles        []Role
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the account carries the given role.
func (a *Account) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IdentityPatch describes a partial identity update; nil fields are untouched.
type IdentityPatch struct {
	Handle *string
	Email  *string
}
