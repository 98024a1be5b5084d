// Package rate provides a Redis-backed fixed-window counter used to throttle clients
// that keep failing CSRF checks.
//
// # Window semantics
//
// INCR plus a conditional EXPIRE on the first hit. Keys are "<prefix>:rej:<client>".
package rate
