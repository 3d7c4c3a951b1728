package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func withSecret(t *testing.T, s string) {
	t.Helper()
	SetSecret(s)
	t.Cleanup(func() { SetSecret("") })
}

func TestSignAndParse(t *testing.T) {
	withSecret(t, "test-secret")
	tok, err := SignToken("665f1c2e9b1d", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	uid, err := ParseToken(tok)
	if err != nil || uid != "665f1c2e9b1d" {
		t.Fatalf("got %q, %v", uid, err)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	withSecret(t, "test-secret")
	expired, _ := SignToken("u1", -time.Minute)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u1"})
	wrongKey, _ := other.SignedString([]byte("other-secret"))

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"id": "u1"})
	wrongAlg, _ := hs512.SignedString([]byte("test-secret"))

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"})
	anonymous, _ := noSubject.SignedString([]byte("test-secret"))

	for name, tok := range map[string]string{
		"empty":      "",
		"garbage":    "not.a.jwt",
		"expired":    expired,
		"wrong key":  wrongKey,
		"wrong alg":  wrongAlg,
		"no subject": anonymous,
	} {
		if _, err := ParseToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestParseToken_SubjectAndNumericID(t *testing.T) {
	withSecret(t, "test-secret")
	sub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "abc"}).SignedString([]byte("test-secret"))
	if uid, err := ParseToken(sub); err != nil || uid != "abc" {
		t.Fatalf("sub: got %q, %v", uid, err)
	}
	num, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 42}).SignedString([]byte("test-secret"))
	if uid, err := ParseToken(num); err != nil || uid != "42" {
		t.Fatalf("numeric id: got %q, %v", uid, err)
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "bearer abc")
	if got := TokenFromRequest(r); got != "abc" {
		t.Fatalf("header: got %q", got)
	}
	r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "fromcookie"})
	if got := TokenFromRequest(r); got != "fromcookie" {
		t.Fatalf("cookie should win, got %q", got)
	}
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic xyz")
	if got := TokenFromRequest(r); got != "" {
		t.Fatalf("basic auth should be ignored, got %q", got)
	}
}

func TestMiddlewareAndRequireAuth(t *testing.T) {
	withSecret(t, "test-secret")
	var seen string
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/client/devis", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"success":false`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}

	tok, _ := SignToken("u7", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/client/devis", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tok})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent || seen != "u7" {
		t.Fatalf("expected 204 for u7, got %d (%q)", rr.Code, seen)
	}
}

func TestTokenCookies(t *testing.T) {
	rr := httptest.NewRecorder()
	SetTokenCookie(rr, "abc", time.Hour, true)
	ClearTokenCookie(rr, true)
	cookies := rr.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	if c := cookies[0]; c.Value != "abc" || !c.HttpOnly || !c.Secure || c.MaxAge != 3600 {
		t.Fatalf("unexpected set cookie %+v", c)
	}
	if c := cookies[1]; c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("unexpected clear cookie %+v", c)
	}
}
