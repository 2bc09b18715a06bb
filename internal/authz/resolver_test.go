package authz_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lodgeline/lodgeline/internal/authz"
	"github.com/lodgeline/lodgeline/internal/shared"
	_ "github.com/lodgeline/lodgeline/testing"
)

type memoryStore struct {
	users       map[int64]authz.User
	assignments []authz.Assignment
	rolePerms   map[int64][]string
	owners      map[int64]int64
	catalog     []string

	failUsers       error
	failAssignments error
	failRolePerms   error

	// When set, GetUser blocks until the channel is closed.
	gate chan struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:     make(map[int64]authz.User),
		rolePerms: make(map[int64][]string),
		owners:    make(map[int64]int64),
		catalog:   shared.CatalogKeys(),
	}
}

func (m *memoryStore) GetUser(ctx context.Context, id int64) (authz.User, error) {
	if m.gate != nil {
		<-m.gate
	}
	if m.failUsers != nil {
		return authz.User{}, m.failUsers
	}
	user, ok := m.users[id]
	if !ok {
		return authz.User{}, shared.ErrNotFound
	}
	return user, nil
}

func (m *memoryStore) ListActiveAssignments(ctx context.Context, userID int64) ([]authz.Assignment, error) {
	if m.failAssignments != nil {
		return nil, m.failAssignments
	}
	var out []authz.Assignment
	for _, a := range m.assignments {
		if a.UserID == userID && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryStore) ListRolePermissions(ctx context.Context, roleIDs []int64) (map[int64][]string, error) {
	if m.failRolePerms != nil {
		return nil, m.failRolePerms
	}
	out := make(map[int64][]string, len(roleIDs))
	for _, id := range roleIDs {
		if keys, ok := m.rolePerms[id]; ok {
			out[id] = keys
		}
	}
	return out, nil
}

func (m *memoryStore) GetPropertyOwner(ctx context.Context, propertyID int64) (int64, error) {
	owner, ok := m.owners[propertyID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return owner, nil
}

func (m *memoryStore) ListOwnedPropertyIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for propertyID, owner := range m.owners {
		if owner == userID {
			ids = append(ids, propertyID)
		}
	}
	return ids, nil
}

func (m *memoryStore) ListCatalogKeys(ctx context.Context) ([]string, error) {
	return m.catalog, nil
}

func ptr(id int64) *int64 { return &id }

func TestResolveSuperAdminGetsFullCatalog(t *testing.T) {
	store := newMemoryStore()
	store.users[1] = authz.User{ID: 1, IsSuperAdmin: true}
	// Contradictory assignment data must not matter; the shortcut never
	// reads it.
	store.assignments = append(store.assignments, authz.Assignment{ID: 1, UserID: 1, RoleID: 99, IsActive: false})
	svc := authz.NewService(store)

	perms, err := svc.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, perms.ByProperty)

	got := perms.Global.Keys()
	want := shared.CatalogKeys()
	sort.Strings(got)
	sort.Strings(want)
	require.Equal(t, want, got)

	scope := authz.AccessibleProperties(perms)
	require.True(t, scope.All)
}

func TestResolveUnknownUserIsEmpty(t *testing.T) {
	svc := authz.NewService(newMemoryStore())

	perms, err := svc.Resolve(context.Background(), 404)
	require.NoError(t, err)
	require.Empty(t, perms.Global)
	require.Empty(t, perms.ByProperty)
}

func TestResolveNoActiveAssignments(t *testing.T) {
	store := newMemoryStore()
	store.users[2] = authz.User{ID: 2}
	store.assignments = append(store.assignments, authz.Assignment{ID: 1, UserID: 2, RoleID: 1, IsActive: false})
	store.rolePerms[1] = []string{shared.PermExpenseView}
	svc := authz.NewService(store)

	perms, err := svc.Resolve(context.Background(), 2)
	require.NoError(t, err)
	require.Empty(t, perms.Global)
	require.Empty(t, perms.ByProperty)
	require.False(t, perms.Has(shared.PermExpenseView, 0))
	require.False(t, perms.Has(shared.PermExpenseView, 7))
}

func TestResolveGlobalGrantDominates(t *testing.T) {
	store := newMemoryStore()
	store.users[3] = authz.User{ID: 3}
	store.assignments = append(store.assignments, authz.Assignment{ID: 1, UserID: 3, RoleID: 1, IsActive: true})
	store.rolePerms[1] = []string{shared.PermExpenseView}
	svc := authz.NewService(store)

	perms, err := svc.Resolve(context.Background(), 3)
	require.NoError(t, err)
	// A global grant answers scoped checks for any property id, including
	// ids with no entry in ByProperty.
	require.True(t, perms.Has(shared.PermExpenseView, 0))
	require.True(t, perms.Has(shared.PermExpenseView, 42))
	require.Empty(t, perms.ByProperty)
}

func TestResolveScopedGrantDoesNotLeak(t *testing.T) {
	store := newMemoryStore()
	store.users[4] = authz.User{ID: 4}
	store.assignments = append(store.assignments, authz.Assignment{ID: 1, UserID: 4, RoleID: 1, PropertyID: ptr(7), IsActive: true})
	store.rolePerms[1] = []string{shared.PermPropertyView}
	svc := authz.NewService(store)

	perms, err := svc.Resolve(context.Background(), 4)
	require.NoError(t, err)
	require.True(t, perms.Has(shared.PermPropertyView, 7))
	require.False(t, perms.Has(shared.PermPropertyView, 8))
	require.False(t, perms.Has(shared.PermPropertyView, 0))

	scope := authz.AccessibleProperties(perms)
	require.False(t, scope.All)
	require.Equal(t, []int64{7}, scope.IDs)
}

func TestResolveDeduplicatesAcrossRoles(t *testing.T) {
	store := newMemoryStore()
	store.users[5] = authz.User{ID: 5}
	store.assignments = append(store.assignments,
		authz.Assignment{ID: 1, UserID: 5, RoleID: 1, IsActive: true},
		authz.Assignment{ID: 2, UserID: 5, RoleID: 2, IsActive: true},
		authz.Assignment{ID: 3, UserID: 5, RoleID: 1, IsActive: true},
	)
	store.rolePerms[1] = []string{shared.PermExpenseView, shared.PermExpenseEdit}
	store.rolePerms[2] = []string{shared.PermExpenseView}
	svc := authz.NewService(store)

	perms, err := svc.Resolve(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, perms.Global, 2)
	require.True(t, perms.Has(shared.PermExpenseView, 0))
	require.True(t, perms.Has(shared.PermExpenseEdit, 0))
}

func TestResolveReflectsAssignmentToggle(t *testing.T) {
	store := newMemoryStore()
	store.users[6] = authz.User{ID: 6}
	store.assignments = []authz.Assignment{{ID: 1, UserID: 6, RoleID: 1, IsActive: true}}
	store.rolePerms[1] = []string{shared.PermLeaseView}
	svc := authz.NewService(store)

	perms, err := svc.Resolve(context.Background(), 6)
	require.NoError(t, err)
	require.True(t, perms.Has(shared.PermLeaseView, 0))

	store.assignments[0].IsActive = false
	perms, err = svc.Resolve(context.Background(), 6)
	require.NoError(t, err)
	require.False(t, perms.Has(shared.PermLeaseView, 0))

	store.assignments[0].IsActive = true
	perms, err = svc.Resolve(context.Background(), 6)
	require.NoError(t, err)
	require.True(t, perms.Has(shared.PermLeaseView, 0))
}

func TestResolvePropagatesStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.users[7] = authz.User{ID: 7}
	store.failAssignments = errors.New("connection refused")
	svc := authz.NewService(store)

	_, err := svc.Resolve(context.Background(), 7)
	require.ErrorContains(t, err, "connection refused")
}

func TestResolveCancelledCallerDoesNotFailOthers(t *testing.T) {
	store := newMemoryStore()
	store.users[9] = authz.User{ID: 9}
	store.assignments = []authz.Assignment{{ID: 1, UserID: 9, RoleID: 1, IsActive: true}}
	store.rolePerms[1] = []string{shared.PermExpenseView}
	store.gate = make(chan struct{})
	svc := authz.NewService(store)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Resolve(ctxA, 9)
		errA <- err
	}()

	type result struct {
		perms authz.EffectivePermissions
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		perms, err := svc.Resolve(context.Background(), 9)
		resB <- result{perms, err}
	}()

	// The first caller gives up while the store is still answering. Only
	// that caller sees the cancellation.
	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(store.gate)
	got := <-resB
	require.NoError(t, got.err)
	require.True(t, got.perms.Has(shared.PermExpenseView, 0))
}

func TestHasAnyHasAll(t *testing.T) {
	store := newMemoryStore()
	store.users[8] = authz.User{ID: 8}
	store.assignments = []authz.Assignment{{ID: 1, UserID: 8, RoleID: 1, IsActive: true}}
	store.rolePerms[1] = []string{shared.PermExpenseView}
	svc := authz.NewService(store)

	perms, err := svc.Resolve(context.Background(), 8)
	require.NoError(t, err)

	require.True(t, perms.HasAny([]string{shared.PermExpenseEdit, shared.PermExpenseView}, 0))
	require.False(t, perms.HasAny([]string{shared.PermExpenseEdit, shared.PermLeaseView}, 0))
	require.True(t, perms.HasAll([]string{shared.PermExpenseView}, 0))
	require.False(t, perms.HasAll([]string{shared.PermExpenseView, shared.PermExpenseEdit}, 0))
}
