// Package auth reads the JSON Web Token issued by the backend API. The
// token travels in the HttpOnly "token" cookie set at login, or in an
// Authorization: Bearer header for API clients.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mrs-ressorts/portail/httpx"
	"github.com/mrs-ressorts/portail/i18n"
)

// TokenCookieName is the cookie holding the backend JWT.
const TokenCookieName = "token"

type ctxKey string

const userIDCtxKey = ctxKey("userID")

// ErrInvalidToken is returned for missing, malformed, expired or badly
// signed tokens.
var ErrInvalidToken = errors.New("invalid token")

var (
	secretMu sync.RWMutex
	secret   []byte
)

// SetSecret configures the HS256 key shared with the backend.
func SetSecret(s string) {
	secretMu.Lock()
	secret = []byte(s)
	secretMu.Unlock()
}

// Secret returns the configured key, JWT_SECRET, or a development value.
func Secret() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	if len(secret) > 0 {
		return secret
	}
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("devjwtsecret")
}

// SignToken issues a token for userID. The backend normally does this; the
// portal uses it for development logins and tests.
func SignToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(Secret())
}

// ParseToken validates tokenStr and returns the user id from the "id"
// claim, or "sub" when "id" is absent.
func ParseToken(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrInvalidToken
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return Secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if id := claimString(claims["id"]); id != "" {
		return id, nil
	}
	if sub, _ := claims.GetSubject(); sub != "" {
		return sub, nil
	}
	return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
}

func claimString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}

// TokenFromRequest returns the raw token from the cookie or the
// Authorization header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	scheme, tok, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok)
	}
	return ""
}

// SetTokenCookie stores the backend token for the browser.
func SetTokenCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearTokenCookie deletes the token cookie.
func ClearTokenCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDCtxKey).(string)
	return id, ok && id != ""
}

// Middleware attaches the user id to the request context when a valid
// token is present. Invalid tokens are ignored here; RequireAuth rejects.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, err := ParseToken(TokenFromRequest(r)); err == nil {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth answers 401 JSON when no user is attached to the request.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			httpx.JSONError(w, http.StatusUnauthorized, i18n.T(i18n.LangFrom(r.Context()), "unauthorized"), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
