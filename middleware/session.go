package middleware

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goForms/session"
	"go.uber.org/zap"
)

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName string        // Default: "session"
	Path       string        // Default: "/"
	Domain     string        // Set only when non-empty
	TTL        time.Duration // Store TTL and cookie Max-Age. Zero means a browser-session cookie.
	Secure     bool
	SameSite   string // "lax" (default), "strict" or "none"
	// AllowScript clears the HttpOnly flag.
	AllowScript bool
}

// Session loads the session named by the request cookie, or starts a new one, and
// stores it in the request context. After the handler, a modified session is saved and
// its cookie written. A store outage answers 503.
func Session(store session.Store, cfg SessionConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.CookieName) == "" {
		cfg.CookieName = "session"
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	sameSite := parseSameSite(cfg.SameSite, logger)
	if sameSite == http.SameSiteNoneMode && !cfg.Secure {
		logger.Warn("SameSite=None session cookie without Secure may be rejected by browsers")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
				return
			}

			sess := session.New()
			if ck, err := r.Cookie(cfg.CookieName); err == nil && ck.Value != "" {
				values, err := store.Load(r.Context(), ck.Value)
				switch {
				case err == nil:
					sess = session.Restore(ck.Value, values)
				case errors.Is(err, session.ErrNotFound):
				default:
					logger.Error("session load failed", zap.Error(err))
					http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
					return
				}
			}

			sw := &sessionWriter{ResponseWriter: w}
			sw.commit = func() {
				if !sess.Modified() {
					return
				}
				if err := store.Save(r.Context(), sess.ID(), sess.Values(), cfg.TTL); err != nil {
					logger.Error("session save failed", zap.Error(err))
					return
				}
				http.SetCookie(w, buildCookie(cfg, sameSite, sess.ID()))
			}

			next.ServeHTTP(sw, r.WithContext(session.NewContext(r.Context(), sess)))
			sw.flushCommit()
		})
	}
}

// sessionWriter saves the session right before the first header write so the cookie
// still reaches the client.
type sessionWriter struct {
	http.ResponseWriter
	commit func()
	once   sync.Once
}

func (w *sessionWriter) flushCommit() {
	w.once.Do(w.commit)
}

func (w *sessionWriter) WriteHeader(code int) {
	w.flushCommit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.flushCommit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func buildCookie(cfg SessionConfig, sameSite http.SameSite, value string) *http.Cookie {
	ck := &http.Cookie{
		Name:     cfg.CookieName,
		Value:    value,
		Path:     cfg.Path,
		Secure:   cfg.Secure,
		HttpOnly: !cfg.AllowScript,
		SameSite: sameSite,
	}
	if cfg.Domain != "" {
		ck.Domain = cfg.Domain
	}
	if cfg.TTL > 0 {
		ck.Expires = time.Now().Add(cfg.TTL).UTC()
		ck.MaxAge = int(cfg.TTL.Seconds())
	}
	return ck
}

func parseSameSite(s string, logger *zap.Logger) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		logger.Warn("unknown SameSite value, using Lax", zap.String("value", s))
		return http.SameSiteLaxMode
	}
}
