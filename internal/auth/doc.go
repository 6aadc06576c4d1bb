// Package auth issues and checks the bearer tokens that guard the control
// API's mutating routes.
//
// Tokens are HS256 JWTs signed with security.jwt.secret and carry a single
// scope claim. There is no user database: whoever holds the secret mints
// tokens with `ledbetter token`.
package auth
