package domain

import "errors"

// Typed failures returned by the account and token layers. Services return
// these verbatim; the transport layer maps them to status codes.
var (
	ErrDuplicateHandle  = errors.New("handle already exists")
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrNotFound         = errors.New("account not found")
	ErrBadCredentials   = errors.New("invalid credentials")
	ErrBadSignature     = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrStoreUnavailable = errors.New("account store unavailable")
	ErrRateLimited      = errors.New("too many attempts")
)
