// Package signer produces and verifies timestamped CSRF tokens using HMAC-SHA256 JWTs
// keyed by an HKDF-derived signing key.
//
// # Token layout
//
// A token is a compact HS256 JWT whose claims carry the raw session token (tok), the
// issued-at time (iat), the salt as issuer and the form field name as audience. The
// signing key is HKDF-SHA256(secret, salt), so a secret shared with other subsystems
// never signs CSRF tokens directly.
//
// # Architecture boundaries
//
// This package owns token cryptography only. It does NOT read application settings,
// touch sessions, or decide whether CSRF protection is enabled. Those belong to goForms.
//
// # What this package must NOT do
//
//   - Import goForms or session (no upward imports).
//   - Log token material.
package signer
