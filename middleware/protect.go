package middleware

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	goForms "github.com/MrEthical07/goForms"
	"github.com/MrEthical07/goForms/internal/rate"
	"github.com/MrEthical07/goForms/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrTooManyRejections is passed to the [ErrorHandler] when a client has exceeded the
// budget set by [WithRejectionLimit].
var ErrTooManyRejections = errors.New("too many rejected csrf checks")

// ErrorHandler writes the response for a request rejected by [Protect]. err is a
// *goForms.ValidationError for token and referrer failures.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ProtectOption configures [Protect].
type ProtectOption func(*protectOptions)

type protectOptions struct {
	exempt  map[string]struct{}
	onError ErrorHandler
	limiter *rate.Limiter
}

// WithExempt skips the check for the given request paths.
func WithExempt(paths ...string) ProtectOption {
	return func(o *protectOptions) {
		for _, p := range paths {
			o.exempt[p] = struct{}{}
		}
	}
}

// WithErrorHandler replaces the default 400 response.
func WithErrorHandler(h ErrorHandler) ProtectOption {
	return func(o *protectOptions) {
		if h != nil {
			o.onError = h
		}
	}
}

// WithRejectionLimit throttles clients, keyed by remote IP, that fail more than max
// checks within window. Throttled requests are rejected with [ErrTooManyRejections]
// before their token is looked at. Redis failures let the request through.
func WithRejectionLimit(client redis.UniversalClient, max int, window time.Duration) ProtectOption {
	return func(o *protectOptions) {
		if client == nil || max <= 0 {
			return
		}
		o.limiter = rate.New(client, "goforms", rate.Config{MaxRejections: max, Window: window})
	}
}

// Protect checks the CSRF token of requests whose method is listed in CSRF_METHODS,
// unless CSRF is disabled, CSRF_CHECK_DEFAULT is off or the path is exempt. The token is
// read from the form field, then from each of CSRF_HEADERS. Over TLS with CSRF_SSL_STRICT
// on, the Referer must name the same host over https.
//
// Every request gets fresh goForms request state; checked requests are marked with
// goForms.MarkCSRFValid.
func Protect(app *goForms.App, opts ...ProtectOption) func(http.Handler) http.Handler {
	o := protectOptions{
		exempt:  make(map[string]struct{}),
		onError: defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := goForms.NewRequestContext(r.Context())
			r = r.WithContext(ctx)

			fc, err := goForms.NewFormConfig(ctx, app)
			if err != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if !fc.CSRFEnabled() || !fc.CSRFCheckDefault() || !slices.Contains(fc.CSRFMethods(), r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := o.exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if o.limiter != nil {
				err := o.limiter.Check(ctx, clientIP(r))
				if errors.Is(err, rate.ErrRateLimited) {
					reject(app, o, w, r, ErrTooManyRejections)
					return
				}
				if err != nil {
					app.Logger().Warn("rejection limit unavailable", zap.Error(err))
				}
			}

			if err := fc.ValidateCSRFToken(requestToken(r, fc)); err != nil {
				o.record(app, r)
				reject(app, o, w, r, err)
				return
			}

			if r.TLS != nil && fc.CSRFSSLStrict() {
				if err := checkReferrer(r); err != nil {
					o.record(app, r)
					reject(app, o, w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(goForms.MarkCSRFValid(ctx)))
		})
	}
}

func (o protectOptions) record(app *goForms.App, r *http.Request) {
	if o.limiter == nil {
		return
	}
	if err := o.limiter.Record(r.Context(), clientIP(r)); err != nil {
		app.Logger().Warn("rejection limit unavailable", zap.Error(err))
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestToken(r *http.Request, fc *goForms.FormConfig) string {
	if token := r.PostFormValue(fc.CSRFFieldName()); token != "" {
		return token
	}
	for _, h := range fc.CSRFHeaders() {
		if token := strings.TrimSpace(r.Header.Get(h)); token != "" {
			return token
		}
	}
	return ""
}

func checkReferrer(r *http.Request) error {
	referrer := r.Referer()
	if referrer == "" {
		return &goForms.ValidationError{Message: "The referrer header is missing.", Err: goForms.ErrCSRFReferrer}
	}

	u, err := url.Parse(referrer)
	if err != nil || u.Scheme != "https" || !strings.EqualFold(u.Host, r.Host) {
		return &goForms.ValidationError{Message: "The referrer does not match the host.", Err: goForms.ErrCSRFReferrer}
	}
	return nil
}

func reject(app *goForms.App, o protectOptions, w http.ResponseWriter, r *http.Request, err error) {
	app.Metrics().Inc(goForms.MetricProtectRejected)
	if errors.Is(err, goForms.ErrCSRFReferrer) {
		app.Logger().Info(err.Error(), zap.String("path", r.URL.Path))
	}

	cause := err
	var ve *goForms.ValidationError
	if errors.As(err, &ve) && ve.Err != nil {
		cause = ve.Err
	}
	event := goForms.AuditEvent{
		EventType: goForms.AuditProtectRejected,
		Error:     cause.Error(),
		Metadata:  map[string]string{"method": r.Method, "path": r.URL.Path},
	}
	if sess, ok := session.FromContext(r.Context()); ok {
		event.SessionID = sess.ID()
	}
	app.EmitAudit(r.Context(), event)

	o.onError(w, r, err)
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrTooManyRejections) {
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		return
	}
	var ve *goForms.ValidationError
	if errors.As(err, &ve) {
		http.Error(w, "Bad Request: "+ve.Message, http.StatusBadRequest)
		return
	}
	http.Error(w, "Bad Request", http.StatusBadRequest)
}
