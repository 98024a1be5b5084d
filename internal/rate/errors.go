package rate

import "errors"

var (
	// ErrRateLimited is returned once a client has used up its rejection budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis command failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
