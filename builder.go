package goForms

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goForms/signer"
	"go.uber.org/zap"
)

// Builder assembles an [App]. Configure it during initialization, then call Build once.
type Builder struct {
	settings   Settings
	secretKey  []byte
	signer     TokenSigner
	translator Translator
	logger     *zap.Logger
	metrics    MetricsConfig
	auditSink  AuditSink
	audit      AuditConfig

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently.
func New() *Builder {
	return &Builder{}
}

// WithSettings sets the read-only settings view. The view is consulted again for every
// [FormConfig], so a live view picks up reloads for new forms.
func (b *Builder) WithSettings(s Settings) *Builder {
	b.settings = s
	return b
}

// WithSecretKey sets the application secret. CSRF_SECRET_KEY overrides it for tokens;
// when neither is given, the SECRET_KEY setting is used.
func (b *Builder) WithSecretKey(key []byte) *Builder {
	b.secretKey = cloneBytes(key)
	return b
}

// WithSigner replaces the default [signer.Signer].
func (b *Builder) WithSigner(s TokenSigner) *Builder {
	b.signer = s
	return b
}

// WithTranslator injects the optional i18n collaborator. Without one, forms use
// [DefaultTranslations].
func (b *Builder) WithTranslator(t Translator) *Builder {
	b.translator = t
	return b
}

// WithLogger sets the logger. The default discards everything.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.metrics.EnableLatencyHistograms = enabled
	return b
}

// WithAuditSink enables asynchronous audit of CSRF rejections into sink, with a
// 1024-event buffer that drops on overflow unless [Builder.WithAuditConfig] says otherwise.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if !b.audit.Enabled {
		b.audit = AuditConfig{Enabled: true, BufferSize: defaultAuditBuffer, DropIfFull: true}
	}
	return b
}

// WithAuditConfig sets audit buffering.
func (b *Builder) WithAuditConfig(cfg AuditConfig) *Builder {
	b.audit = cfg
	return b
}

// Build resolves the settings once and returns an error when they are malformed or
// fail [Config.Validate]. [Config.Lint] findings are logged at warn level. A Builder can be built only once.
func (b *Builder) Build() (*App, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	secret := b.secretKey
	if len(secret) == 0 && b.settings != nil {
		if v, ok := b.settings.Lookup(KeySecretKey); ok {
			s, err := asBytes(v)
			if err != nil {
				return nil, settingError(KeySecretKey, err)
			}
			secret = s
		}
	}

	cfg, err := resolveConfig(b.settings, secret)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid form configuration: %w", err)
	}

	app := &App{
		settings:   b.settings,
		secretKey:  secret,
		signer:     b.signer,
		translator: b.translator,
		logger:     b.logger,
		metrics:    NewMetrics(b.metrics),
		audit:      newAuditDispatcher(b.audit, b.auditSink),
	}
	if app.signer == nil {
		app.signer = signer.New()
	}
	if app.logger == nil {
		app.logger = zap.NewNop()
	}
	for _, w := range cfg.Lint() {
		app.logger.Warn(w.Message, zap.String("code", w.Code), zap.Stringer("severity", w.Severity))
	}

	b.built = true
	return app, nil
}
