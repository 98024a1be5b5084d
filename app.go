package goForms

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TokenSigner signs and verifies CSRF tokens. [signer.Signer] is the default.
type TokenSigner interface {
	Sign(secret []byte, field, payload string) (string, error)
	Verify(token string, secrets [][]byte, maxAge time.Duration, field string) (string, error)
}

// App is the application context shared by every form: settings view, secret key,
// signer, optional translator, logger and metrics.
//
// App is safe for concurrent use after [Builder.Build].
type App struct {
	settings   Settings
	secretKey  []byte
	signer     TokenSigner
	translator Translator
	logger     *zap.Logger
	metrics    *Metrics
	audit      *auditDispatcher
}

// Settings returns the settings view the App was built with.
func (a *App) Settings() Settings {
	return a.settings
}

// Signer returns the token signer.
func (a *App) Signer() TokenSigner {
	return a.signer
}

// Translator returns the injected translator, or nil when none was configured.
func (a *App) Translator() Translator {
	return a.translator
}

// Logger returns the App logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Metrics returns the App metrics.
func (a *App) Metrics() *Metrics {
	return a.metrics
}

// MetricsSnapshot returns a point-in-time copy of all counters and histograms.
func (a *App) MetricsSnapshot() MetricsSnapshot {
	return a.metrics.Snapshot()
}

// Config resolves the current settings into a typed [Config]. The result is checked
// with [Config.Validate] on every call, so a reloaded settings view is held to the same
// rules as [Builder.Build].
func (a *App) Config() (Config, error) {
	if a == nil {
		return Config{}, ErrAppNotReady
	}
	cfg, err := resolveConfig(a.settings, a.secretKey)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid form configuration: %w", err)
	}
	return cfg, nil
}

// EmitAudit queues event for the audit sink, stamping the time when unset. It is a
// no-op when auditing is off.
func (a *App) EmitAudit(ctx context.Context, event AuditEvent) {
	if a == nil || a.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	a.audit.Emit(ctx, event)
}

// AuditDropped returns how many audit events never reached the queue: buffer full in
// drop mode, request context ended while waiting, or emitted after [App.Close].
func (a *App) AuditDropped() uint64 {
	if a == nil {
		return 0
	}
	return a.audit.Dropped()
}

// Close flushes pending audit events. The App stays usable for token operations.
func (a *App) Close() {
	if a == nil {
		return
	}
	a.audit.Close()
}
