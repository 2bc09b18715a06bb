package assignments

import (
	"context"
	"errors"
)

var (
	// ErrUnknownUser indicates the grant target does not exist.
	ErrUnknownUser = errors.New("assignments: unknown user")
	// ErrUnknownRole indicates the granted role does not exist.
	ErrUnknownRole = errors.New("assignments: unknown role")
	// ErrUnknownProperty indicates the scope property does not exist.
	ErrUnknownProperty = errors.New("assignments: unknown property")
)

// RepositoryPort defines data access methods for assignments.
type RepositoryPort interface {
	ListByUser(ctx context.Context, userID int64) ([]Assignment, error)
	Create(ctx context.Context, userID, roleID int64, propertyID *int64) (Assignment, error)
	SetActive(ctx context.Context, id int64, active bool) error
	RoleExists(ctx context.Context, roleID int64) (bool, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	PropertyExists(ctx context.Context, propertyID int64) (bool, error)
}

// Service manages the assignment lifecycle: grant, deactivate, reactivate.
// Hard deletion is deliberately absent.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListByUser returns all assignments for a user.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Assignment, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Grant assigns a role to a user. A nil propertyID creates a global grant;
// otherwise the grant is scoped to that single property.
func (s *Service) Grant(ctx context.Context, userID, roleID int64, propertyID *int64) (Assignment, error) {
	ok, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return Assignment{}, err
	}
	if !ok {
		return Assignment{}, ErrUnknownUser
	}
	ok, err = s.repo.RoleExists(ctx, roleID)
	if err != nil {
		return Assignment{}, err
	}
	if !ok {
		return Assignment{}, ErrUnknownRole
	}
	if propertyID != nil {
		ok, err = s.repo.PropertyExists(ctx, *propertyID)
		if err != nil {
			return Assignment{}, err
		}
		if !ok {
			return Assignment{}, ErrUnknownProperty
		}
	}
	return s.repo.Create(ctx, userID, roleID, propertyID)
}

// Deactivate soft-disables an assignment; the row stays in place.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

// Reactivate re-enables a previously deactivated assignment.
func (s *Service) Reactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, true)
}
