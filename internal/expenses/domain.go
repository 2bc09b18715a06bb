package expenses

import "time"

// Expense is a cost entry recorded against one property.
type Expense struct {
	ID          int64
	PropertyID  int64
	Description string
	Amount      float64
	IncurredOn  time.Time
	CreatedBy   int64
	CreatedAt   time.Time
}
