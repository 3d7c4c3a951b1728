// Package policy maps the roles stored with users to gate profiles and
// exposes the permission middleware used by the router.
package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrs-ressorts/portail/gate"
)

// Resources guarded by the gate.
const (
	ResourceDevis       = "devis"
	ResourceReclamation = "reclamation"
)

// RoleLookup reads the stored role of a user. Both stores implement it.
type RoleLookup interface {
	UserRole(ctx context.Context, userID string) (string, error)
}

// DefaultProfiles maps stored roles to their permissions. Roles not listed
// have no permission.
func DefaultProfiles() map[string]gate.Profile {
	return map[string]gate.Profile{
		"admin": gate.NewStaticProfile("admin", gate.PermissionSuperAdmin),
		"commercial": gate.NewStaticProfile("commercial",
			gate.NewPermission(ResourceDevis, gate.WildcardAll),
			gate.NewPermission(ResourceReclamation, gate.WildcardAll),
		),
	}
}

// RoleResolver resolves a user id to the profile of their stored role.
type RoleResolver struct {
	users    RoleLookup
	profiles map[string]gate.Profile
}

// NewRoleResolver uses DefaultProfiles when profiles is nil.
func NewRoleResolver(users RoleLookup, profiles map[string]gate.Profile) *RoleResolver {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	return &RoleResolver{users: users, profiles: profiles}
}

// Resolve returns nil for unknown users and roles without a profile.
func (r *RoleResolver) Resolve(ctx context.Context, userID string) (gate.Profile, error) {
	role, err := r.users.UserRole(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user role: %w", err)
	}
	return r.profiles[strings.ToLower(strings.TrimSpace(role))], nil
}
