package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/bookticket/user-service/pkg/util"
)

const principalKey = "auth_principal"

// Middleware validates bearer tokens and attaches the principal. Claims are
// self-contained, so no store lookup happens here.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs the bearer-token middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.Verify(parts[1])
	if err != nil {
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{AccountID: claims.Subject, Roles: claims.Roles})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
