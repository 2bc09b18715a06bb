package properties

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeline/lodgeline/internal/platform/httpx"
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

const propertyColumns = `id, name, address, owner_user_id, created_at, updated_at`

// ListPropertyIDs returns every property id.
func (r *Repository) ListPropertyIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM properties ORDER BY id`)
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

// ListByIDs fetches properties for the given ids, preserving id order.
func (r *Repository) ListByIDs(ctx context.Context, ids []int64) ([]Property, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var props []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.OwnerUserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return props, nil
}

// GetProperty fetches a property by id.
func (r *Repository) GetProperty(ctx context.Context, id int64) (Property, error) {
	var p Property
	err := r.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Address, &p.OwnerUserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, shared.ErrNotFound
		}
		return Property{}, err
	}
	return p, nil
}

// CreateProperty inserts a new property.
func (r *Repository) CreateProperty(ctx context.Context, name, address string, ownerUserID int64) (Property, error) {
	var p Property
	err := r.pool.QueryRow(ctx,
		`INSERT INTO properties (name, address, owner_user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 RETURNING `+propertyColumns, name, address, ownerUserID).
		Scan(&p.ID, &p.Name, &p.Address, &p.OwnerUserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Property{}, httpx.ErrDuplicate
		}
		return Property{}, err
	}
	return p, nil
}

// UpdateProperty updates the mutable fields of a property.
func (r *Repository) UpdateProperty(ctx context.Context, id int64, name, address string, ownerUserID int64) (Property, error) {
	var p Property
	err := r.pool.QueryRow(ctx,
		`UPDATE properties SET name = $2, address = $3, owner_user_id = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+propertyColumns, id, name, address, ownerUserID).
		Scan(&p.ID, &p.Name, &p.Address, &p.OwnerUserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, shared.ErrNotFound
		}
		return Property{}, err
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
