package assignments

import "time"

// Assignment grants a role to a user, optionally scoped to one property.
// PropertyID nil means the grant is global. Assignments are never hard
// deleted; administrators flip IsActive instead, which keeps the grant
// history queryable.
type Assignment struct {
	ID         int64
	UserID     int64
	RoleID     int64
	RoleName   string
	PropertyID *int64
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
