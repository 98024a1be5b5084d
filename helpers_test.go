package goForms

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/goForms/session"
	"github.com/MrEthical07/goForms/settings"
	"github.com/MrEthical07/goForms/signer"
	"go.uber.org/zap"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func newTestApp(t *testing.T, s settings.Map, clock *testClock, logger *zap.Logger) *App {
	t.Helper()
	if clock == nil {
		clock = newTestClock()
	}
	b := New().
		WithSettings(s).
		WithSecretKey([]byte("app-secret-for-tests")).
		WithSigner(signer.New(signer.WithClock(clock.Now))).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true)
	if logger != nil {
		b = b.WithLogger(logger)
	}
	app, err := b.Build()
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

func newRequestCtx(sess *session.Session) context.Context {
	ctx := NewRequestContext(context.Background())
	if sess != nil {
		ctx = session.NewContext(ctx, sess)
	}
	return ctx
}

func mustFormConfig(t *testing.T, ctx context.Context, app *App) *FormConfig {
	t.Helper()
	fc, err := NewFormConfig(ctx, app)
	if err != nil {
		t.Fatalf("new form config: %v", err)
	}
	return fc
}
