package middleware

import (
	"net/http"

	"imagen/internal/i18n"
)

// I18N negotiates the response language from X-Locale, then Accept-Language,
// and stores it on the request context. defaultLocale applies when neither
// header names a supported language.
func I18N(defaultLocale string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale)
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(i18n.ContextWithLocale(r.Context(), locale)))
		})
	}
}

func detectLocale(r *http.Request, fallback string) string {
	return i18n.Match(fallback, r.Header.Get("X-Locale"), r.Header.Get("Accept-Language"))
}
