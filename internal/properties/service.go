package properties

import (
	"context"
	"errors"
	"strings"
)

// RepositoryPort defines data access methods for properties.
type RepositoryPort interface {
	ListPropertyIDs(ctx context.Context) ([]int64, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Property, error)
	GetProperty(ctx context.Context, id int64) (Property, error)
	CreateProperty(ctx context.Context, name, address string, ownerUserID int64) (Property, error)
	UpdateProperty(ctx context.Context, id int64, name, address string, ownerUserID int64) (Property, error)
}

// AccessFilter narrows a candidate id list to what a user may access.
type AccessFilter interface {
	FilterAccessibleProperties(ctx context.Context, userID int64, candidates []int64) ([]int64, error)
	CanAccessProperty(ctx context.Context, userID, propertyID int64) (bool, error)
}

// Service handles property business logic. Visibility always flows through
// the access filter so listing and detail share one authorization path.
type Service struct {
	repo   RepositoryPort
	access AccessFilter
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, access AccessFilter) *Service {
	return &Service{repo: repo, access: access}
}

// ListAccessible returns the properties the user may see.
func (s *Service) ListAccessible(ctx context.Context, userID int64) ([]Property, error) {
	ids, err := s.repo.ListPropertyIDs(ctx)
	if err != nil {
		return nil, err
	}
	accessible, err := s.access.FilterAccessibleProperties(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByIDs(ctx, accessible)
}

// GetAccessible fetches one property if the user may access it. The bool
// result distinguishes denial from lookup failure.
func (s *Service) GetAccessible(ctx context.Context, userID, propertyID int64) (Property, bool, error) {
	ok, err := s.access.CanAccessProperty(ctx, userID, propertyID)
	if err != nil {
		return Property{}, false, err
	}
	if !ok {
		return Property{}, false, nil
	}
	p, err := s.repo.GetProperty(ctx, propertyID)
	if err != nil {
		return Property{}, false, err
	}
	return p, true, nil
}

// Create registers a property with its owner.
func (s *Service) Create(ctx context.Context, name, address string, ownerUserID int64) (Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Property{}, errors.New("properties: name required")
	}
	return s.repo.CreateProperty(ctx, name, strings.TrimSpace(address), ownerUserID)
}

// Update rewrites the mutable fields of a property.
func (s *Service) Update(ctx context.Context, id int64, name, address string, ownerUserID int64) (Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Property{}, errors.New("properties: name required")
	}
	return s.repo.UpdateProperty(ctx, id, name, strings.TrimSpace(address), ownerUserID)
}
