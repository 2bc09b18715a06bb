package authz

import "context"

type permissionsContextKey struct{}

// ContextWithPermissions stashes a resolved permission set in the request
// context so downstream handlers reuse it instead of resolving again.
func ContextWithPermissions(ctx context.Context, perms EffectivePermissions) context.Context {
	return context.WithValue(ctx, permissionsContextKey{}, perms)
}

// PermissionsFromContext extracts a previously resolved permission set.
func PermissionsFromContext(ctx context.Context) (EffectivePermissions, bool) {
	perms, ok := ctx.Value(permissionsContextKey{}).(EffectivePermissions)
	return perms, ok
}
