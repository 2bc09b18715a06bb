package assignments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeline/lodgeline/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByUser returns every assignment for a user, active or not, with the
// role name joined in for display.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.user_id, a.role_id, r.name, a.property_id, a.is_active, a.created_at, a.updated_at
		 FROM role_assignments a
		 JOIN roles r ON r.id = a.role_id
		 WHERE a.user_id = $1
		 ORDER BY a.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.RoleID, &a.RoleName, &a.PropertyID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// Create inserts a new active assignment.
func (r *Repository) Create(ctx context.Context, userID, roleID int64, propertyID *int64) (Assignment, error) {
	var a Assignment
	err := r.pool.QueryRow(ctx,
		`INSERT INTO role_assignments (user_id, role_id, property_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, true, now(), now())
		 RETURNING id, user_id, role_id, property_id, is_active, created_at, updated_at`,
		userID, roleID, propertyID).
		Scan(&a.ID, &a.UserID, &a.RoleID, &a.PropertyID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Assignment{}, err
	}
	return a, nil
}

// SetActive flips the soft active flag. There is no delete.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE role_assignments SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RoleExists reports whether the role id is known.
func (r *Repository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM roles WHERE id = $1`, roleID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UserExists reports whether the user id is known.
func (r *Repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1`, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PropertyExists reports whether the property id is known.
func (r *Repository) PropertyExists(ctx context.Context, propertyID int64) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM properties WHERE id = $1`, propertyID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
