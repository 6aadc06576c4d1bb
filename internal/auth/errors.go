package auth

import "errors"

var (
	// ErrTokenInvalid is returned for a token that fails signature, expiry
	// or claim checks.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrNoSecret is returned when signing without a secret.
	ErrNoSecret = errors.New("auth: no signing secret")
)
