// Package middleware holds the HTTP middleware shared by every route.
package middleware

import (
	"net/http"
	"strings"

	"github.com/mrs-ressorts/portail/i18n"
)

const langCookie = "lang"

// Prefs resolves the language (query > cookie > Accept-Language) and stores
// it in the request context. A language given in the query is persisted in
// a cookie for ~30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if ql := strings.ToLower(r.URL.Query().Get("lang")); i18n.IsSupported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: langCookie, Value: lang, Path: "/", MaxAge: 86400 * 30, SameSite: http.SameSiteLaxMode})
		} else if c, err := r.Cookie(langCookie); err == nil && i18n.IsSupported(c.Value) {
			lang = c.Value
		}
		if lang == "" {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		w.Header().Set("Content-Language", lang)
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

// LangFrom returns language preference from context or fallback.
func LangFrom(r *http.Request) string {
	return i18n.LangFrom(r.Context())
}
