package expenses

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByProperty returns expenses for one property, newest first.
func (r *Repository) ListByProperty(ctx context.Context, propertyID int64) ([]Expense, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, property_id, description, amount, incurred_on, created_by, created_at
		 FROM expenses WHERE property_id = $1 ORDER BY incurred_on DESC, id DESC`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.Description, &e.Amount, &e.IncurredOn, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}

// Create inserts a new expense entry.
func (r *Repository) Create(ctx context.Context, propertyID int64, description string, amount float64, incurredOn time.Time, createdBy int64) (Expense, error) {
	var e Expense
	err := r.pool.QueryRow(ctx,
		`INSERT INTO expenses (property_id, description, amount, incurred_on, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 RETURNING id, property_id, description, amount, incurred_on, created_by, created_at`,
		propertyID, description, amount, incurredOn, createdBy).
		Scan(&e.ID, &e.PropertyID, &e.Description, &e.Amount, &e.IncurredOn, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return Expense{}, err
	}
	return e, nil
}
