package assignments_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lodgeline/lodgeline/internal/assignments"
	"github.com/lodgeline/lodgeline/internal/shared"
)

type memoryRepo struct {
	users      map[int64]struct{}
	roles      map[int64]struct{}
	properties map[int64]struct{}

	rows   map[int64]assignments.Assignment
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:      make(map[int64]struct{}),
		roles:      make(map[int64]struct{}),
		properties: make(map[int64]struct{}),
		rows:       make(map[int64]assignments.Assignment),
		nextID:     1,
	}
}

func (m *memoryRepo) ListByUser(ctx context.Context, userID int64) ([]assignments.Assignment, error) {
	out := make([]assignments.Assignment, 0)
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memoryRepo) Create(ctx context.Context, userID, roleID int64, propertyID *int64) (assignments.Assignment, error) {
	row := assignments.Assignment{
		ID:         m.nextID,
		UserID:     userID,
		RoleID:     roleID,
		PropertyID: propertyID,
		IsActive:   true,
	}
	m.nextID++
	m.rows[row.ID] = row
	return row, nil
}

func (m *memoryRepo) SetActive(ctx context.Context, id int64, active bool) error {
	row, ok := m.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	row.IsActive = active
	m.rows[id] = row
	return nil
}

func (m *memoryRepo) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	_, ok := m.roles[roleID]
	return ok, nil
}

func (m *memoryRepo) UserExists(ctx context.Context, userID int64) (bool, error) {
	_, ok := m.users[userID]
	return ok, nil
}

func (m *memoryRepo) PropertyExists(ctx context.Context, propertyID int64) (bool, error) {
	_, ok := m.properties[propertyID]
	return ok, nil
}

func ptr(id int64) *int64 { return &id }

func TestGrantGlobal(t *testing.T) {
	repo := newMemoryRepo()
	repo.users[1] = struct{}{}
	repo.roles[2] = struct{}{}
	svc := assignments.NewService(repo)

	row, err := svc.Grant(context.Background(), 1, 2, nil)
	require.NoError(t, err)
	require.Nil(t, row.PropertyID)
	require.True(t, row.IsActive)
}

func TestGrantScoped(t *testing.T) {
	repo := newMemoryRepo()
	repo.users[1] = struct{}{}
	repo.roles[2] = struct{}{}
	repo.properties[7] = struct{}{}
	svc := assignments.NewService(repo)

	row, err := svc.Grant(context.Background(), 1, 2, ptr(7))
	require.NoError(t, err)
	require.NotNil(t, row.PropertyID)
	require.Equal(t, int64(7), *row.PropertyID)
}

func TestGrantValidatesReferences(t *testing.T) {
	repo := newMemoryRepo()
	repo.users[1] = struct{}{}
	repo.roles[2] = struct{}{}
	svc := assignments.NewService(repo)

	_, err := svc.Grant(context.Background(), 99, 2, nil)
	require.ErrorIs(t, err, assignments.ErrUnknownUser)

	_, err = svc.Grant(context.Background(), 1, 99, nil)
	require.ErrorIs(t, err, assignments.ErrUnknownRole)

	_, err = svc.Grant(context.Background(), 1, 2, ptr(99))
	require.ErrorIs(t, err, assignments.ErrUnknownProperty)
	require.Empty(t, repo.rows)
}

func TestDeactivateKeepsRow(t *testing.T) {
	repo := newMemoryRepo()
	repo.users[1] = struct{}{}
	repo.roles[2] = struct{}{}
	svc := assignments.NewService(repo)

	row, err := svc.Grant(context.Background(), 1, 2, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), row.ID))
	stored := repo.rows[row.ID]
	require.False(t, stored.IsActive)

	require.NoError(t, svc.Reactivate(context.Background(), row.ID))
	stored = repo.rows[row.ID]
	require.True(t, stored.IsActive)
}

func TestDeactivateUnknownAssignment(t *testing.T) {
	svc := assignments.NewService(newMemoryRepo())
	require.ErrorIs(t, svc.Deactivate(context.Background(), 42), shared.ErrNotFound)
}
