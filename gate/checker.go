package gate

import (
	"context"
	"fmt"
)

// Checker authorises a user against the permissions of their profile.
type Checker[U comparable] struct {
	resolver ProfileResolver[U]
}

func NewChecker[U comparable](resolver ProfileResolver[U]) *Checker[U] {
	return &Checker[U]{resolver: resolver}
}

// Authorize returns ErrUnauthorized for the zero user and ErrForbidden when
// the profile is missing or lacks the permission. Resolver failures are
// wrapped.
func (c *Checker[U]) Authorize(ctx context.Context, user U, perm Permission) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	profile, err := c.resolver.Resolve(ctx, user)
	if err != nil {
		return fmt.Errorf("resolve profile: %w", err)
	}
	if profile == nil || !profile.HasPermission(perm) {
		return ErrForbidden
	}
	return nil
}

// Can is Authorize as a bool.
func (c *Checker[U]) Can(ctx context.Context, user U, perm Permission) bool {
	return c.Authorize(ctx, user, perm) == nil
}
