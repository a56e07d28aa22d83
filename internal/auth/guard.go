package auth

import "github.com/bookticket/user-service/internal/domain"

// Principal is the authenticated identity derived from a verified token.
// The HTTP boundary builds it once and passes it explicitly into calls that
// need authorization.
type Principal struct {
	AccountID string
	Roles     []domain.Role
}

// HasRole reports whether the principal carries the given role.
func (p *Principal) HasRole(role domain.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanModify allows profile mutation for the owning subject or an admin.
func CanModify(principal *Principal, ownerID string) bool {
	if principal == nil {
		return false
	}
	if principal.AccountID == ownerID {
		return true
	}
	return principal.HasRole(domain.RoleAdmin)
}
