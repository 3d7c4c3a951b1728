package gate

import "context"

// Profile is a role with a set of permissions.
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver resolves a user to their profile. A nil profile with a
// nil error means the user has no permission at all.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// ResolverFunc adapts a function to ProfileResolver.
type ResolverFunc[U any] func(ctx context.Context, user U) (Profile, error)

func (f ResolverFunc[U]) Resolve(ctx context.Context, user U) (Profile, error) {
	return f(ctx, user)
}

// StaticProfile is an in-memory profile.
type StaticProfile struct {
	name        string
	permissions []Permission
}

// NewStaticProfile creates a profile with the given permissions.
func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{name: name}
	for _, perm := range permissions {
		if !p.has(perm) {
			p.permissions = append(p.permissions, perm)
		}
	}
	return p
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns a copy of the granted permissions in declaration order.
func (p *StaticProfile) Permissions() []Permission {
	return append([]Permission(nil), p.permissions...)
}

// HasPermission checks the requested permission, wildcards included.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	for _, perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

func (p *StaticProfile) has(perm Permission) bool {
	for _, existing := range p.permissions {
		if existing == perm {
			return true
		}
	}
	return false
}

// StaticResolver is an in-memory resolver, mostly for tests.
type StaticResolver[U comparable] struct {
	profiles map[U]Profile
}

func NewStaticResolver[U comparable]() *StaticResolver[U] {
	return &StaticResolver[U]{profiles: make(map[U]Profile)}
}

// Set assigns a profile to a user.
func (r *StaticResolver[U]) Set(user U, profile Profile) {
	r.profiles[user] = profile
}

func (r *StaticResolver[U]) Resolve(_ context.Context, user U) (Profile, error) {
	return r.profiles[user], nil
}
