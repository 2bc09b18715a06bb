package roles

import "time"

// Role represents a named bundle of permission keys. System roles ship with
// the platform and cannot be renamed or deleted.
type Role struct {
	ID          int64
	Name        string
	Description string
	IsSystem    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
