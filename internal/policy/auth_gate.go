package policy

import (
	"errors"
	"net/http"
	"time"

	"github.com/mrs-ressorts/portail/auth"
	"github.com/mrs-ressorts/portail/gate"
	"github.com/mrs-ressorts/portail/httpx"
	"github.com/mrs-ressorts/portail/i18n"
	"go.uber.org/zap"
)

// AuthGate ties the request's user to the permission checker.
type AuthGate struct {
	Checker       *gate.Checker[string]
	CacheResolver *gate.CachedResolver[string]
	log           *zap.Logger
}

// NewAuthGate builds a gate over users' stored roles, caching resolved
// profiles for cacheTTL.
func NewAuthGate(users RoleLookup, cacheTTL time.Duration, log *zap.Logger) *AuthGate {
	cached := gate.NewCachedResolver[string](NewRoleResolver(users, nil), cacheTTL)
	return &AuthGate{
		Checker:       gate.NewChecker[string](cached),
		CacheResolver: cached,
		log:           log,
	}
}

// InvalidateUser drops a cached profile after a role change.
func (ag *AuthGate) InvalidateUser(userID string) {
	ag.CacheResolver.Invalidate(userID)
}

// RequirePermission answers 401 without a user, 403 without the permission
// and 500 when the role cannot be read.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	perm := gate.NewPermission(resourceType, action)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := i18n.LangFrom(r.Context())
			userID, _ := auth.UserIDFromContext(r.Context())
			err := ag.Checker.Authorize(r.Context(), userID, perm)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, gate.ErrUnauthorized):
				httpx.JSONError(w, http.StatusUnauthorized, i18n.T(lang, "unauthorized"), nil)
			case errors.Is(err, gate.ErrForbidden):
				httpx.JSONError(w, http.StatusForbidden, i18n.T(lang, "forbidden"), nil)
			default:
				ag.log.Error("authorization failed", zap.String("user", userID), zap.String("permission", string(perm)), zap.Error(err))
				httpx.JSONError(w, http.StatusInternalServerError, i18n.T(lang, "internal_error"), nil)
			}
		})
	}
}
