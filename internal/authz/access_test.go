package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lodgeline/lodgeline/internal/authz"
	"github.com/lodgeline/lodgeline/internal/shared"
)

func TestCanAccessPropertyOwnerBypass(t *testing.T) {
	store := newMemoryStore()
	store.users[10] = authz.User{ID: 10}
	store.owners[5] = 10
	svc := authz.NewService(store)

	// Ownership grants access with zero assignments.
	ok, err := svc.CanAccessProperty(context.Background(), 10, 5)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.CanAccessProperty(context.Background(), 10, 6)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanAccessPropertySuperAdmin(t *testing.T) {
	store := newMemoryStore()
	store.users[11] = authz.User{ID: 11, IsSuperAdmin: true}
	svc := authz.NewService(store)

	ok, err := svc.CanAccessProperty(context.Background(), 11, 999)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCanAccessPropertyScopedGrant(t *testing.T) {
	store := newMemoryStore()
	store.users[12] = authz.User{ID: 12}
	store.owners[7] = 99
	store.owners[8] = 99
	store.assignments = []authz.Assignment{{ID: 1, UserID: 12, RoleID: 1, PropertyID: ptr(7), IsActive: true}}
	store.rolePerms[1] = []string{shared.PermPropertyView}
	svc := authz.NewService(store)

	ok, err := svc.CanAccessProperty(context.Background(), 12, 7)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.CanAccessProperty(context.Background(), 12, 8)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFilterAccessiblePropertiesOwnerOnly(t *testing.T) {
	store := newMemoryStore()
	store.users[13] = authz.User{ID: 13}
	store.owners[5] = 13
	store.owners[6] = 99
	store.owners[7] = 99
	svc := authz.NewService(store)

	got, err := svc.FilterAccessibleProperties(context.Background(), 13, []int64{5, 6, 7})
	require.NoError(t, err)
	require.Equal(t, []int64{5}, got)
}

func TestFilterAccessiblePropertiesSuperAdmin(t *testing.T) {
	store := newMemoryStore()
	store.users[14] = authz.User{ID: 14, IsSuperAdmin: true}
	svc := authz.NewService(store)

	got, err := svc.FilterAccessibleProperties(context.Background(), 14, []int64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, got)
}

func TestFilterAccessiblePropertiesGlobalView(t *testing.T) {
	store := newMemoryStore()
	store.users[15] = authz.User{ID: 15}
	store.assignments = []authz.Assignment{{ID: 1, UserID: 15, RoleID: 1, IsActive: true}}
	store.rolePerms[1] = []string{shared.PermPropertyView}
	svc := authz.NewService(store)

	got, err := svc.FilterAccessibleProperties(context.Background(), 15, []int64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, got)
}

func TestFilterAccessiblePropertiesUnionOwnedAndScoped(t *testing.T) {
	store := newMemoryStore()
	store.users[16] = authz.User{ID: 16}
	store.owners[2] = 16
	store.owners[9] = 16 // owned but not a candidate
	store.assignments = []authz.Assignment{{ID: 1, UserID: 16, RoleID: 1, PropertyID: ptr(3), IsActive: true}}
	store.rolePerms[1] = []string{shared.PermPropertyView}
	svc := authz.NewService(store)

	got, err := svc.FilterAccessibleProperties(context.Background(), 16, []int64{1, 2, 3})
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{2, 3}, got)
}
