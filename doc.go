// Package goForms wires HTML form handling to an application's settings: it resolves
// CSRF and i18n configuration for each form and issues and validates CSRF tokens bound
// to the request's session.
//
// A [FormConfig] is built per form from an explicit request context and an [App]. Every
// setting is resolved once, at construction, and cached for the lifetime of that form.
// Tokens are produced by a [TokenSigner] (package signer by default) over a raw token
// kept in the request session (package session).
//
// Rejected tokens can be audited through an [AuditSink] set with
// [Builder.WithAuditSink]; events are delivered from a background goroutine until
// [App.Close].
//
// # Architecture boundaries
//
// goForms is the public surface. It exposes [App], [Builder], [FormConfig], [Form] and
// the [ValidationError] type. Token cryptography lives in signer, session persistence in
// session, settings loading in settings and HTTP adapters in middleware.
//
// # What this package must NOT do
//
//   - Read process-global state; all configuration arrives through [App] and the context.
//   - Perform I/O outside of form-data parsing; session loading and saving is the
//     middleware's job.
//   - Log token material. Validation failures are logged by reason only.
package goForms
