// Package auth provides user accounts and API token management.
//
// # Overview
//
// Accounts carry one of the platform roles (reader, writer, admin) and a
// bcrypt password hash. Authentication uses opaque bearer tokens of the
// form byline_<base64url(32 random bytes)>; only the SHA-256 hash of a
// token is persisted, and the plaintext is returned exactly once when the
// token is issued.
//
// The Store is backed by PostgreSQL and covers registration, login,
// token issuance, validation, revocation, and periodic cleanup of
// expired tokens.
package auth
