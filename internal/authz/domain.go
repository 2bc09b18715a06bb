package authz

import "time"

// User is the slice of the account record the engine needs: identity plus
// the super-admin flag that bypasses every scoped check.
type User struct {
	ID           int64
	Email        string
	Name         string
	IsSuperAdmin bool
	IsActive     bool
}

// Role represents a named bundle of permission keys. System roles are not
// user-deletable; that rule is enforced by the roles module, not here.
type Role struct {
	ID          int64
	Name        string
	Description string
	IsSystem    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Assignment binds a user to a role, optionally scoped to one property.
// A nil PropertyID means the grant is global. Inactive assignments are
// invisible to resolution; they are never deleted by this package.
type Assignment struct {
	ID         int64
	UserID     int64
	RoleID     int64
	PropertyID *int64
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PermissionSet is a deduplicated set of permission keys.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from the given keys.
func NewPermissionSet(keys ...string) PermissionSet {
	set := make(PermissionSet, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

// Add unions a key into the set.
func (s PermissionSet) Add(key string) {
	s[key] = struct{}{}
}

// Contains reports set membership.
func (s PermissionSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the members in unspecified order.
func (s PermissionSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	return keys
}

// EffectivePermissions is the resolved capability structure for one user:
// a global set that applies everywhere and per-property sets that apply only
// to their property. It is freshly built on every resolution and never
// mutated afterwards.
type EffectivePermissions struct {
	Global     PermissionSet
	ByProperty map[int64]PermissionSet
}

// NewEffectivePermissions returns an empty structure.
func NewEffectivePermissions() EffectivePermissions {
	return EffectivePermissions{
		Global:     make(PermissionSet),
		ByProperty: make(map[int64]PermissionSet),
	}
}

// Has reports whether the capability is granted. A propertyID <= 0 means the
// check carries no property context. Global grants dominate: a globally held
// key passes for every property. Scoped grants never satisfy a scope-less
// check.
func (p EffectivePermissions) Has(key string, propertyID int64) bool {
	if p.Global.Contains(key) {
		return true
	}
	if propertyID <= 0 {
		return false
	}
	scoped, ok := p.ByProperty[propertyID]
	return ok && scoped.Contains(key)
}

// HasAny reports whether at least one of the keys is granted.
func (p EffectivePermissions) HasAny(keys []string, propertyID int64) bool {
	for _, key := range keys {
		if p.Has(key, propertyID) {
			return true
		}
	}
	return false
}

// HasAll reports whether every key is granted.
func (p EffectivePermissions) HasAll(keys []string, propertyID int64) bool {
	for _, key := range keys {
		if !p.Has(key, propertyID) {
			return false
		}
	}
	return true
}

// PropertyScope is the answer to "which properties can this user see".
// All=true means every property without enumerating them; otherwise IDs
// holds the explicit list.
type PropertyScope struct {
	All bool
	IDs []int64
}
