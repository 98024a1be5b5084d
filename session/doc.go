// Package session provides the per-request session that holds raw CSRF tokens, together
// with Redis-backed and in-memory stores that persist sessions between requests.
//
// # Architecture boundaries
//
// This package owns the [Session] value, its context plumbing and the [Store]
// implementations. It does NOT sign tokens, read application settings or speak HTTP;
// cookie handling lives in the middleware package.
//
// # What this package must NOT do
//
//   - Import goForms, signer or middleware (no upward imports).
//   - Share a [Session] between requests; each request loads its own copy.
package session
