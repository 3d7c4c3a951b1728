package middleware

import (
	"net/http"

	"github.com/mrs-ressorts/portail/httpx"
	"github.com/mrs-ressorts/portail/i18n"
	"go.uber.org/zap"
)

// Recover turns a panic into a 500 JSON response.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"),
					)
					httpx.JSONError(w, http.StatusInternalServerError, i18n.T(i18n.LangFrom(r.Context()), "internal_error"), nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
