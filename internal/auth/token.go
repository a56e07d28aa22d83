package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/bookticket/user-service/internal/domain"
)

// HS256 refuses anything shorter at construction time.
const minKeyBytes = 32

// Claims describes the JWT payload: subject is the account id, roles are a
// snapshot of the role set at issuance time.
type Claims struct {
	Roles []domain.Role `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed access tokens. The key is
// immutable after construction and safe for concurrent use.
type TokenManager struct {
	key []byte
	ttl time.Duration
}

// NewTokenManager decodes the base64 signing key and fails fast when it is
// too short for HS256.
func NewTokenManager(secretBase64 string, ttl time.Duration) (*TokenManager, error) {
	key, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("decode signing key: %w", err)
	}
	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("signing key too short: got %d bytes, need %d", len(key), minKeyBytes)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{key: key, ttl: ttl}, nil
}

// Issue builds and signs a token for the subject with a snapshot of its roles.
func (tm *TokenManager) Issue(subjectID string, roles []domain.Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses the token, checking signature before expiry. Any structural
// or signature problem maps to ErrBadSignature; a well-signed token past its
// lifetime maps to ErrTokenExpired.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrBadSignature
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrBadSignature
	}
	return claims, nil
}

// IsValidFor reports whether the token verifies and is bound to the expected
// subject.
func (tm *TokenManager) IsValidFor(tokenStr, expectedSubjectID string) bool {
	claims, err := tm.Verify(tokenStr)
	if err != nil {
		return false
	}
	return claims.Subject == expectedSubjectID
}
