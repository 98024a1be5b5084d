package session

import (
	"context"

	"github.com/google/uuid"
)

// Session is a request-scoped view over persisted session values.
//
// A Session is not safe for concurrent use; it belongs to a single request.
type Session struct {
	id       string
	values   map[string]string
	isNew    bool
	modified bool
}

// New returns a fresh, empty session with a random identifier.
func New() *Session {
	return &Session{
		id:     NewID(),
		values: map[string]string{},
		isNew:  true,
	}
}

// Restore wraps values loaded from a [Store] under an existing identifier.
func Restore(id string, values map[string]string) *Session {
	if values == nil {
		values = map[string]string{}
	}
	return &Session{id: id, values: values}
}

// NewID returns a random session identifier.
func NewID() string {
	return uuid.NewString()
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// IsNew reports whether the session was created during this request.
func (s *Session) IsNew() bool {
	return s.isNew
}

// Modified reports whether Set or Delete changed the session.
func (s *Session) Modified() bool {
	return s.modified
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and marks the session modified.
func (s *Session) Set(key, value string) {
	if cur, ok := s.values[key]; ok && cur == value {
		return
	}
	s.values[key] = value
	s.modified = true
}

// Delete removes key and marks the session modified when it existed.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.modified = true
}

// Values returns a copy of the stored values.
func (s *Session) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

type sessionContextKey struct{}

// NewContext returns a copy of ctx carrying sess.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*Session)
	return sess, ok && sess != nil
}
