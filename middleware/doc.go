// Package middleware exposes HTTP middleware that binds goForms to net/http.
//
// # Middleware
//
//   - [Session] loads the cookie-identified session from a session.Store before the
//     handler runs and saves it when the handler modified it.
//   - [Protect] checks the CSRF token of every unsafe request and marks the request
//     context as pre-validated, so forms built later in the request skip re-validation.
//
// Protect reads the session from the request context, so Session must wrap it. With
// [WithRejectionLimit], clients that keep failing the check are throttled through a
// Redis counter.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into goForms calls. Token checks are delegated
// to goForms.FormConfig.ValidateCSRFToken; persistence is delegated to session.Store.
//
// # What this package must NOT do
//
//   - Parse or sign tokens directly.
//   - Keep per-request state outside of the request context.
//   - Reveal token material in error responses.
package middleware
