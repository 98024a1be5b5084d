package goForms

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goForms/internal"
	"github.com/MrEthical07/goForms/session"
	"github.com/MrEthical07/goForms/signer"
	"go.uber.org/zap"
)

// FormConfig is the per-form view of the application configuration. Every value is
// resolved from the App's settings once, in [NewFormConfig], and then served from the
// cached copy for the lifetime of the form.
//
// A FormConfig belongs to one request and is not safe for concurrent use.
type FormConfig struct {
	ctx context.Context
	app *App
	cfg Config
}

// NewFormConfig resolves the configuration for one form rendered or submitted in ctx.
//
// NewFormConfig returns an error when app is nil, a setting cannot be coerced or the
// resolved values fail [Config.Validate].
func NewFormConfig(ctx context.Context, app *App) (*FormConfig, error) {
	if app == nil {
		return nil, ErrAppNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := app.Config()
	if err != nil {
		app.logger.Error("resolve form configuration", zap.Error(err))
		return nil, err
	}

	return &FormConfig{ctx: ctx, app: app, cfg: cfg}, nil
}

// Context returns the request context the form was built for.
func (f *FormConfig) Context() context.Context { return f.ctx }

// App returns the application context.
func (f *FormConfig) App() *App { return f.app }

// CSRFEnabled reports CSRF_ENABLED, default true.
func (f *FormConfig) CSRFEnabled() bool { return f.cfg.CSRF.Enabled }

// CSRFSecret returns CSRF_SECRET_KEY, falling back to the App secret key.
func (f *FormConfig) CSRFSecret() []byte { return cloneBytes(f.cfg.CSRF.SecretKey) }

// CSRFSecretFallbacks returns CSRF_SECRET_KEY_FALLBACKS: retired secrets still accepted
// during validation.
func (f *FormConfig) CSRFSecretFallbacks() [][]byte {
	out := make([][]byte, len(f.cfg.CSRF.SecretKeyFallbacks))
	for i, s := range f.cfg.CSRF.SecretKeyFallbacks {
		out[i] = cloneBytes(s)
	}
	return out
}

// CSRFFieldName returns CSRF_FIELD_NAME, default [DefaultCSRFFieldName].
func (f *FormConfig) CSRFFieldName() string { return f.cfg.CSRF.FieldName }

// CSRFTimeLimit returns CSRF_TIME_LIMIT, default [DefaultCSRFTimeLimit]. Zero means
// tokens never expire.
func (f *FormConfig) CSRFTimeLimit() time.Duration { return f.cfg.CSRF.TimeLimit }

// CSRFCheckDefault reports CSRF_CHECK_DEFAULT, default true.
func (f *FormConfig) CSRFCheckDefault() bool { return f.cfg.CSRF.CheckDefault }

// CSRFMethods returns CSRF_METHODS.
func (f *FormConfig) CSRFMethods() []string { return append([]string(nil), f.cfg.CSRF.Methods...) }

// CSRFHeaders returns CSRF_HEADERS.
func (f *FormConfig) CSRFHeaders() []string { return append([]string(nil), f.cfg.CSRF.Headers...) }

// CSRFSSLStrict reports CSRF_SSL_STRICT, default true.
func (f *FormConfig) CSRFSSLStrict() bool { return f.cfg.CSRF.SSLStrict }

// I18NEnabled reports I18N_ENABLED, default true.
func (f *FormConfig) I18NEnabled() bool { return f.cfg.I18N.Enabled }

// I18NDomain returns I18N_DOMAIN.
func (f *FormConfig) I18NDomain() Domain { return f.cfg.I18N.Domain }

// GenerateCSRFToken returns a token signed with the CSRF secret for the configured field
// name. The raw token is created in the request session on first use; within one request
// context the same signed token is returned every time. It fails with
// [ErrSecretKeyRequired] without a secret and [ErrNoSession] without a session.
func (f *FormConfig) GenerateCSRFToken() (string, error) {
	field := f.cfg.CSRF.FieldName
	state := stateFromContext(f.ctx)
	if token, ok := state.cachedToken(field); ok {
		f.app.metrics.Inc(MetricTokenReused)
		return token, nil
	}

	if len(f.cfg.CSRF.SecretKey) == 0 {
		return "", ErrSecretKeyRequired
	}

	sess, ok := session.FromContext(f.ctx)
	if !ok {
		return "", ErrNoSession
	}

	raw, ok := sess.Get(field)
	if !ok || raw == "" {
		var err error
		raw, err = internal.NewRawToken()
		if err != nil {
			return "", err
		}
		sess.Set(field, raw)
		f.app.metrics.Inc(MetricRawTokenCreated)
	}

	token, err := f.app.signer.Sign(f.cfg.CSRF.SecretKey, field, raw)
	if err != nil {
		return "", err
	}

	state.cacheToken(field, token)
	f.app.metrics.Inc(MetricTokenGenerated)
	return token, nil
}

// ValidateCSRFToken returns nil at once when the request context was marked by
// [MarkCSRFValid]. Otherwise it returns a [*ValidationError] when data is empty, the
// session holds no raw token, the signature does not verify under the CSRF secret or any
// fallback, the token belongs to another field, the token is older than the time limit,
// or the raw tokens differ. Validation failures are logged at info level and audited
// when an [AuditSink] is configured.
func (f *FormConfig) ValidateCSRFToken(data string) error {
	if CSRFValidated(f.ctx) {
		f.app.metrics.Inc(MetricValidatePrevalidated)
		return nil
	}

	start := time.Now()
	err := f.validate(data)
	f.app.metrics.Observe(MetricValidateLatency, time.Since(start))

	if err == nil {
		f.app.metrics.Inc(MetricValidateSuccess)
		return nil
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		f.app.metrics.Inc(validationMetric(ve.Err))
		f.app.logger.Info(ve.Message, zap.String("field", f.cfg.CSRF.FieldName))
		f.audit(ve)
	}
	return err
}

func (f *FormConfig) validate(data string) error {
	if len(f.cfg.CSRF.SecretKey) == 0 {
		return ErrSecretKeyRequired
	}
	if data == "" {
		return newValidationError(ErrCSRFTokenMissing, "The CSRF token is missing.")
	}

	field := f.cfg.CSRF.FieldName
	sess, ok := session.FromContext(f.ctx)
	if !ok {
		return newValidationError(ErrCSRFSessionTokenMissing, "The CSRF session token is missing.")
	}
	raw, ok := sess.Get(field)
	if !ok || raw == "" {
		return newValidationError(ErrCSRFSessionTokenMissing, "The CSRF session token is missing.")
	}

	secrets := make([][]byte, 0, 1+len(f.cfg.CSRF.SecretKeyFallbacks))
	secrets = append(secrets, f.cfg.CSRF.SecretKey)
	secrets = append(secrets, f.cfg.CSRF.SecretKeyFallbacks...)

	payload, err := f.app.signer.Verify(data, secrets, f.cfg.CSRF.TimeLimit, field)
	switch {
	case err == nil:
	case errors.Is(err, signer.ErrExpired):
		return newValidationError(ErrCSRFTokenExpired, "The CSRF token has expired.")
	case errors.Is(err, signer.ErrFieldMismatch):
		return newValidationError(ErrCSRFFieldMismatch, "The CSRF token does not belong to this field.")
	default:
		return newValidationError(ErrCSRFTokenInvalid, "The CSRF token is invalid.")
	}

	if !internal.Equal(raw, payload) {
		return newValidationError(ErrCSRFTokensMismatch, "The CSRF tokens do not match.")
	}
	return nil
}

func (f *FormConfig) audit(ve *ValidationError) {
	if f.app.audit == nil {
		return
	}
	event := AuditEvent{
		EventType: AuditCSRFRejected,
		Field:     f.cfg.CSRF.FieldName,
		Error:     ve.Err.Error(),
	}
	if sess, ok := session.FromContext(f.ctx); ok {
		event.SessionID = sess.ID()
	}
	f.app.EmitAudit(f.ctx, event)
}

func validationMetric(err error) MetricID {
	switch {
	case errors.Is(err, ErrCSRFTokenMissing):
		return MetricValidateMissing
	case errors.Is(err, ErrCSRFSessionTokenMissing):
		return MetricValidateSessionMissing
	case errors.Is(err, ErrCSRFTokenExpired):
		return MetricValidateExpired
	case errors.Is(err, ErrCSRFFieldMismatch):
		return MetricValidateFieldMismatch
	case errors.Is(err, ErrCSRFTokensMismatch):
		return MetricValidateMismatch
	default:
		return MetricValidateInvalid
	}
}

// GetTranslations returns the translator's provider bound to [FormConfig.I18NDomain]
// when i18n is enabled and a translator was injected, and [DefaultTranslations]
// otherwise.
func (f *FormConfig) GetTranslations() Translations {
	if !f.cfg.I18N.Enabled || f.app.translator == nil {
		return DefaultTranslations{}
	}
	t := f.app.translator.Translations(f.ctx, f.cfg.I18N.Domain)
	if t == nil {
		return DefaultTranslations{}
	}
	return t
}
