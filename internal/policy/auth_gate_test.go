package policy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mrs-ressorts/portail/auth"
	"github.com/mrs-ressorts/portail/gate"
	"go.uber.org/zap"
)

type roles struct {
	byID  map[string]string
	err   error
	calls int
}

func (r *roles) UserRole(_ context.Context, id string) (string, error) {
	r.calls++
	return r.byID[id], r.err
}

func TestRoleResolver(t *testing.T) {
	rr := NewRoleResolver(&roles{byID: map[string]string{"a": "admin", "c": " Commercial ", "u": "client"}}, nil)
	ctx := context.Background()

	p, _ := rr.Resolve(ctx, "a")
	if p == nil || !p.HasPermission("reclamation:update") {
		t.Fatal("admin should have every permission")
	}
	p, _ = rr.Resolve(ctx, "c")
	if p == nil || !p.HasPermission("devis:list") || p.HasPermission("user:list") {
		t.Fatalf("unexpected commercial profile %v", p)
	}
	if p, _ = rr.Resolve(ctx, "u"); p != nil {
		t.Fatal("client role should have no profile")
	}
	if p, _ = rr.Resolve(ctx, "missing"); p != nil {
		t.Fatal("unknown user should have no profile")
	}
}

func serve(g *AuthGate, userID string) *httptest.ResponseRecorder {
	h := g.RequirePermission(ResourceDevis, gate.ActionList)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/admin/devis", nil)
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRequirePermission(t *testing.T) {
	store := &roles{byID: map[string]string{"a": "admin", "u": "client"}}
	g := NewAuthGate(store, time.Minute, zap.NewNop())

	if rr := serve(g, ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: %d", rr.Code)
	}
	if rr := serve(g, "u"); rr.Code != http.StatusForbidden {
		t.Errorf("client: %d", rr.Code)
	}
	if rr := serve(g, "a"); rr.Code != http.StatusOK {
		t.Errorf("admin: %d", rr.Code)
	}
	serve(g, "a")
	if store.calls != 2 {
		t.Errorf("expected cached profiles, got %d lookups", store.calls)
	}

	store.byID["u"] = "commercial"
	g.InvalidateUser("u")
	if rr := serve(g, "u"); rr.Code != http.StatusOK {
		t.Errorf("promoted user: %d", rr.Code)
	}
}

func TestRequirePermission_StoreError(t *testing.T) {
	g := NewAuthGate(&roles{err: errors.New("db down")}, time.Minute, zap.NewNop())
	if rr := serve(g, "a"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
