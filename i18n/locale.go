package i18n

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// WithLocale returns a copy of ctx carrying tag as the request locale.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeContextKey{}, tag)
}

// LocaleFromContext returns the locale set by WithLocale.
func LocaleFromContext(ctx context.Context) (language.Tag, bool) {
	if ctx == nil {
		return language.Und, false
	}
	tag, ok := ctx.Value(localeContextKey{}).(language.Tag)
	return tag, ok
}

// LocaleMiddleware sets the request locale from the Accept-Language header. Requests
// without a parsable header keep no locale, so the catalog fallback applies.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
		if err == nil && len(tags) > 0 {
			r = r.WithContext(WithLocale(r.Context(), tags[0]))
		}
		next.ServeHTTP(w, r)
	})
}
