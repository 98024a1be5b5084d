// Package internal holds helpers shared by goForms packages that are not part of the
// public API: raw token generation and constant-time comparison.
package internal
