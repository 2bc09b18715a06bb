package roles

import (
	"context"
	"errors"
	"strings"

	"github.com/lodgeline/lodgeline/internal/shared"
)

// ErrSystemRole indicates an attempt to modify or delete a system role.
var ErrSystemRole = errors.New("roles: system role is immutable")

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, name, description string) (Role, error)
	UpdateRole(ctx context.Context, id int64, name, description string) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
	ListRolePermissionKeys(ctx context.Context, roleID int64) ([]string, error)
	AttachPermission(ctx context.Context, roleID int64, key string) error
	DetachPermission(ctx context.Context, roleID int64, key string) error
}

// Service orchestrates role management.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role by id.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(description))
}

// UpdateRole updates an existing non-system role.
func (s *Service) UpdateRole(ctx context.Context, id int64, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	existing, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if existing.IsSystem {
		return Role{}, ErrSystemRole
	}
	return s.repo.UpdateRole(ctx, id, name, strings.TrimSpace(description))
}

// DeleteRole removes a non-system role.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	existing, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return ErrSystemRole
	}
	return s.repo.DeleteRole(ctx, id)
}

// ListRolePermissions returns the permission keys attached to a role.
func (s *Service) ListRolePermissions(ctx context.Context, roleID int64) ([]string, error) {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return nil, err
	}
	return s.repo.ListRolePermissionKeys(ctx, roleID)
}

// SetRolePermissions replaces the role's permission set by diffing against
// the stored set: unknown catalog keys are rejected, missing keys attached,
// surplus keys detached.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, keys []string) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}

	catalog := make(map[string]struct{})
	for _, key := range shared.CatalogKeys() {
		catalog[key] = struct{}{}
	}

	keep := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(strings.ToLower(key))
		if key == "" {
			continue
		}
		if _, ok := catalog[key]; !ok {
			return errors.New("roles: unknown permission key " + key)
		}
		keep[key] = struct{}{}
	}

	current, err := s.repo.ListRolePermissionKeys(ctx, roleID)
	if err != nil {
		return err
	}
	existing := make(map[string]struct{}, len(current))
	for _, key := range current {
		existing[key] = struct{}{}
	}

	for key := range keep {
		if _, ok := existing[key]; !ok {
			if err := s.repo.AttachPermission(ctx, roleID, key); err != nil {
				return err
			}
		}
	}
	for key := range existing {
		if _, ok := keep[key]; !ok {
			if err := s.repo.DetachPermission(ctx, roleID, key); err != nil {
				return err
			}
		}
	}
	return nil
}
