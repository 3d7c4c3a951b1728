package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/mrs-ressorts/portail/auth"
	"github.com/mrs-ressorts/portail/httpx"
	"github.com/mrs-ressorts/portail/i18n"
	"github.com/mrs-ressorts/portail/internal/backend"
	"github.com/mrs-ressorts/portail/internal/middleware"
	"github.com/mrs-ressorts/portail/validation"
	"go.uber.org/zap"
)

// maxJSONBody bounds the credential payloads read by the portal.
const maxJSONBody = 64 << 10

// Upstream is the part of backend.Client the auth flows need.
type Upstream interface {
	Do(ctx context.Context, req backend.Request) (*http.Response, error)
	Fail(w http.ResponseWriter, r *http.Request, err error)
}

var _ Upstream = (*backend.Client)(nil)

// AuthHandler validates credential forms, relays them to the backend and
// keeps the issued token in an HttpOnly cookie.
type AuthHandler struct {
	backend   Upstream
	cookieTTL time.Duration
	secure    bool
	log       *zap.Logger
}

func NewAuthHandler(b Upstream, cookieTTL time.Duration, secure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{backend: b, cookieTTL: cookieTTL, secure: secure, log: log}
}

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailForm struct {
	Email string `json:"email"`
}

type tokenPasswordForm struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type changePasswordForm struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login serves POST /api/auth/login. On success the token returned by the
// backend moves from the JSON body to the cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var f loginForm
	if !h.decode(w, r, &f) {
		return
	}
	v := validation.Violations{}
	validation.Required("email", f.Email, v)
	validation.Email("email", f.Email, v)
	validation.Required("password", f.Password, v)
	if !h.valid(w, r, v) {
		return
	}

	resp, err := h.send(r, "/api/auth/login", f)
	if err != nil {
		h.backend.Fail(w, r, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		backend.CopyResponse(w, resp)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		h.backend.Fail(w, r, errors.Join(backend.ErrUpstream, err))
		return
	}
	// The body is re-encoded, so its length and type are not the backend's.
	backend.CopyHeaders(w, resp, "Content-Length", "Content-Type")
	if tok, ok := body["token"].(string); ok && tok != "" {
		auth.SetTokenCookie(w, tok, h.cookieTTL, h.secure)
		delete(body, "token")
	}
	httpx.JSON(w, resp.StatusCode, body)
}

// Logout clears the cookie even when the backend cannot be told.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	req := backend.RequestFrom(r, "/api/auth/logout")
	req.Body = http.NoBody
	req.ContentLength = 0
	if resp, err := h.backend.Do(r.Context(), req); err != nil {
		h.log.Warn("backend logout failed", zap.String("request_id", middleware.RequestIDFrom(r.Context())), zap.Error(err))
	} else {
		resp.Body.Close()
	}
	auth.ClearTokenCookie(w, h.secure)
	httpx.Success(w, http.StatusOK, map[string]any{"message": i18n.T(middleware.LangFrom(r), "logged_out")})
}

// ForgotPassword serves POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var f emailForm
	if !h.decode(w, r, &f) {
		return
	}
	v := validation.Violations{}
	validation.Required("email", f.Email, v)
	validation.Email("email", f.Email, v)
	if !h.valid(w, r, v) {
		return
	}
	h.relay(w, r, "/api/auth/forgot-password", f)
}

// ResetPassword serves POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	h.tokenPassword(w, r, "/api/auth/reset-password")
}

// SetPassword serves POST /api/auth/set-password, used by accounts created
// from a quote request.
func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	h.tokenPassword(w, r, "/api/auth/set-password")
}

func (h *AuthHandler) tokenPassword(w http.ResponseWriter, r *http.Request, path string) {
	var f tokenPasswordForm
	if !h.decode(w, r, &f) {
		return
	}
	v := validation.Violations{}
	validation.Required("token", f.Token, v)
	validation.Password("password", f.Password, v)
	validation.Required("confirmPassword", f.ConfirmPassword, v)
	validation.Match("confirmPassword", f.Password, f.ConfirmPassword, v)
	if !h.valid(w, r, v) {
		return
	}
	h.relay(w, r, path, f)
}

// ChangePassword serves POST /api/auth/change-password for a signed-in user.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var f changePasswordForm
	if !h.decode(w, r, &f) {
		return
	}
	v := validation.Violations{}
	validation.Required("currentPassword", f.CurrentPassword, v)
	validation.Password("newPassword", f.NewPassword, v)
	validation.Required("confirmPassword", f.ConfirmPassword, v)
	validation.Match("confirmPassword", f.NewPassword, f.ConfirmPassword, v)
	if !h.valid(w, r, v) {
		return
	}
	h.relay(w, r, "/api/auth/change-password", f)
}

func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, i18n.T(middleware.LangFrom(r), "invalid_request"), nil)
		return false
	}
	return true
}

func (h *AuthHandler) valid(w http.ResponseWriter, r *http.Request, v validation.Violations) bool {
	if v.Empty() {
		return true
	}
	lang := middleware.LangFrom(r)
	httpx.JSONError(w, http.StatusBadRequest, i18n.T(lang, "validation_failed"), v.Translate(func(code string) string {
		return i18n.T(lang, code)
	}))
	return false
}

// send re-encodes payload as the JSON body of a backend call.
func (h *AuthHandler) send(r *http.Request, path string, payload any) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req := backend.RequestFrom(r, path)
	req.Method = http.MethodPost
	req.Body = bytes.NewReader(b)
	req.ContentLength = int64(len(b))
	req.Header.Set("Content-Type", "application/json")
	return h.backend.Do(r.Context(), req)
}

func (h *AuthHandler) relay(w http.ResponseWriter, r *http.Request, path string, payload any) {
	resp, err := h.send(r, path, payload)
	if err != nil {
		h.backend.Fail(w, r, err)
		return
	}
	defer resp.Body.Close()
	backend.CopyResponse(w, resp)
}
