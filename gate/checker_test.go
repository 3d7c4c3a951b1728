package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mrs-ressorts/portail/gate"
)

func TestChecker_Authorize(t *testing.T) {
	r := gate.NewStaticResolver[string]()
	r.Set("admin", gate.NewStaticProfile("admin", gate.PermissionSuperAdmin))
	r.Set("sales", gate.NewStaticProfile("commercial", "devis:*"))
	c := gate.NewChecker[string](r)
	ctx := context.Background()

	if err := c.Authorize(ctx, "", "devis:list"); !errors.Is(err, gate.ErrUnauthorized) {
		t.Errorf("empty user: got %v", err)
	}
	if err := c.Authorize(ctx, "admin", "reclamation:update"); err != nil {
		t.Errorf("admin: got %v", err)
	}
	if err := c.Authorize(ctx, "sales", "devis:list"); err != nil {
		t.Errorf("sales devis: got %v", err)
	}
	if err := c.Authorize(ctx, "sales", "reclamation:list"); !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("sales reclamation: got %v", err)
	}
	if err := c.Authorize(ctx, "nobody", "devis:list"); !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("no profile: got %v", err)
	}
}

func TestChecker_ResolverError(t *testing.T) {
	boom := errors.New("boom")
	c := gate.NewChecker[string](gate.ResolverFunc[string](func(context.Context, string) (gate.Profile, error) {
		return nil, boom
	}))
	err := c.Authorize(context.Background(), "u", "devis:list")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped resolver error, got %v", err)
	}
	if c.Can(context.Background(), "u", "devis:list") {
		t.Fatal("Can should be false on error")
	}
}
