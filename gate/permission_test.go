package gate_test

import (
	"testing"

	"github.com/mrs-ressorts/portail/gate"
)

func TestPermission_NewPermission(t *testing.T) {
	perm := gate.NewPermission("devis", gate.ActionList)
	if perm != "devis:list" {
		t.Errorf("expected 'devis:list', got '%s'", perm)
	}
}

func TestPermission_Parse(t *testing.T) {
	res, act := gate.Permission("reclamation:update").Parse()
	if res != "reclamation" || act != gate.ActionUpdate {
		t.Errorf("got %q %q", res, act)
	}
	res, act = gate.Permission("invalid").Parse()
	if res != "" || act != "" {
		t.Errorf("expected empty strings, got '%s' and '%s'", res, act)
	}
}

func TestPermission_Matches(t *testing.T) {
	cases := []struct {
		granted   gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"devis:list", "devis:list", true},
		{"devis:list", "devis:view", false},
		{"devis:list", "reclamation:list", false},
		{"devis:*", "devis:download", true},
		{"devis:*", "reclamation:list", false},
		{gate.PermissionSuperAdmin, "reclamation:update", true},
		{"invalid", "invalid:list", false},
	}
	for _, c := range cases {
		if got := c.granted.Matches(c.requested); got != c.want {
			t.Errorf("%s matches %s = %v, want %v", c.granted, c.requested, got, c.want)
		}
	}
}
