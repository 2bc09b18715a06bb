package properties

import "time"

// Property represents a managed property. Every property has exactly one
// owning user; ownership grants the owner access independent of any role
// assignment.
type Property struct {
	ID          int64
	Name        string
	Address     string
	OwnerUserID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
