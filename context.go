package goForms

import "context"

type requestStateContextKey struct{}

// requestState is the mutable per-request scratch space: the pre-validated flag and
// the signed tokens already issued during this request, keyed by field name.
type requestState struct {
	csrfValid bool
	tokens    map[string]string
}

// NewRequestContext attaches fresh request state to ctx unless it already carries one.
// Middleware calls it once per request; without it, tokens are not cached between
// forms of the same request.
func NewRequestContext(ctx context.Context) context.Context {
	if stateFromContext(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, requestStateContextKey{}, &requestState{})
}

// MarkCSRFValid records that the request's CSRF token was already checked, so that
// [FormConfig.ValidateCSRFToken] succeeds without re-validating.
func MarkCSRFValid(ctx context.Context) context.Context {
	ctx = NewRequestContext(ctx)
	stateFromContext(ctx).csrfValid = true
	return ctx
}

// CSRFValidated reports whether ctx was marked by [MarkCSRFValid].
func CSRFValidated(ctx context.Context) bool {
	state := stateFromContext(ctx)
	return state != nil && state.csrfValid
}

func stateFromContext(ctx context.Context) *requestState {
	if ctx == nil {
		return nil
	}

	state, _ := ctx.Value(requestStateContextKey{}).(*requestState)
	return state
}

func (s *requestState) cachedToken(field string) (string, bool) {
	if s == nil || s.tokens == nil {
		return "", false
	}
	token, ok := s.tokens[field]
	return token, ok
}

func (s *requestState) cacheToken(field, token string) {
	if s == nil {
		return
	}
	if s.tokens == nil {
		s.tokens = make(map[string]string, 1)
	}
	s.tokens[field] = token
}
