package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "test", cfg), mr
}

func TestLimiterBudget(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxRejections: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Check(ctx, "203.0.113.9"); err != nil {
			t.Fatalf("attempt %d: unexpected %v", i, err)
		}
		if err := l.Record(ctx, "203.0.113.9"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	if err := l.Check(ctx, "203.0.113.9"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := l.Check(ctx, "198.51.100.1"); err != nil {
		t.Fatalf("other client must not be limited: %v", err)
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxRejections: 1, Window: 10 * time.Second})
	ctx := context.Background()

	if err := l.Record(ctx, "c"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if ttl := mr.TTL("test:rej:c"); ttl != 10*time.Second {
		t.Fatalf("expected 10s TTL, got %v", ttl)
	}
	if err := l.Check(ctx, "c"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	mr.FastForward(11 * time.Second)
	if err := l.Check(ctx, "c"); err != nil {
		t.Fatalf("expected window to reset, got %v", err)
	}
}

func TestLimiterResetAndCount(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxRejections: 5})
	ctx := context.Background()

	_ = l.Record(ctx, "c")
	_ = l.Record(ctx, "c")
	if n, err := l.Rejections(ctx, "c"); err != nil || n != 2 {
		t.Fatalf("expected 2, got %d (%v)", n, err)
	}
	if err := l.Reset(ctx, "c"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := l.Rejections(ctx, "c"); n != 0 {
		t.Fatalf("expected 0 after reset, got %d", n)
	}
}

func TestLimiterRedisDown(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxRejections: 1})
	mr.Close()

	if err := l.Check(context.Background(), "c"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if err := l.Record(context.Background(), "c"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
