package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeline/lodgeline/internal/shared"
)

// Store defines the read contracts the resolver and guard consume. The
// engine never writes through it.
type Store interface {
	GetUser(ctx context.Context, id int64) (User, error)
	ListActiveAssignments(ctx context.Context, userID int64) ([]Assignment, error)
	ListRolePermissions(ctx context.Context, roleIDs []int64) (map[int64][]string, error)
	GetPropertyOwner(ctx context.Context, propertyID int64) (int64, error)
	ListOwnedPropertyIDs(ctx context.Context, userID int64) ([]int64, error)
	ListCatalogKeys(ctx context.Context) ([]string, error)
}

// Repository provides PostgreSQL backed reads for permission resolution.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetUser fetches a user by ID. Returns shared.ErrNotFound for unknown ids.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, is_super_admin, is_active FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.IsSuperAdmin, &user.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// ListActiveAssignments returns the user's active role assignments only.
// Inactive rows stay in the table untouched.
func (r *Repository) ListActiveAssignments(ctx context.Context, userID int64) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, role_id, property_id, is_active, created_at, updated_at
		 FROM role_assignments
		 WHERE user_id = $1 AND is_active`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.RoleID, &a.PropertyID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListRolePermissions fetches permission keys for a batch of role ids in one
// round trip, keyed by role id.
func (r *Repository) ListRolePermissions(ctx context.Context, roleIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(roleIDs))
	if len(roleIDs) == 0 {
		return result, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT role_id, permission_key FROM role_permissions WHERE role_id = ANY($1)`, roleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var roleID int64
		var key string
		if err := rows.Scan(&roleID, &key); err != nil {
			return nil, err
		}
		result[roleID] = append(result[roleID], key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetPropertyOwner returns the owning user of a property.
func (r *Repository) GetPropertyOwner(ctx context.Context, propertyID int64) (int64, error) {
	var ownerID int64
	err := r.pool.QueryRow(ctx,
		`SELECT owner_user_id FROM properties WHERE id = $1`, propertyID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

// ListOwnedPropertyIDs returns ids of properties owned by the user.
func (r *Repository) ListOwnedPropertyIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM properties WHERE owner_user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListCatalogKeys returns every permission key known to the platform.
func (r *Repository) ListCatalogKeys(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key FROM permissions ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
