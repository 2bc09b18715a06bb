package authz

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/lodgeline/lodgeline/internal/shared"
)

// Service resolves role assignments into effective capability sets and
// answers property-access questions. It holds no mutable state: every
// resolution reads fresh and concurrent identical resolutions are merely
// collapsed in flight.
type Service struct {
	store Store
	group singleflight.Group
}

// NewService constructs a Service backed by the provided store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Resolve computes the effective permission set for a user. An unknown user
// id yields an empty result rather than an error; callers are expected to
// have authenticated the id upstream. Store failures propagate unchanged.
//
// Concurrent resolutions for the same user share one store round trip. The
// shared flight runs detached from any single caller's context, so each
// caller observes only its own cancellation: one request giving up never
// fails the others waiting on the same result.
func (s *Service) Resolve(ctx context.Context, userID int64) (EffectivePermissions, error) {
	ch := s.group.DoChan(strconv.FormatInt(userID, 10), func() (any, error) {
		return s.resolve(context.WithoutCancel(ctx), userID)
	})
	select {
	case <-ctx.Done():
		return EffectivePermissions{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return EffectivePermissions{}, res.Err
		}
		return res.Val.(EffectivePermissions), nil
	}
}

func (s *Service) resolve(ctx context.Context, userID int64) (EffectivePermissions, error) {
	perms := NewEffectivePermissions()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return perms, nil
		}
		return EffectivePermissions{}, err
	}

	if user.IsSuperAdmin {
		keys, err := s.store.ListCatalogKeys(ctx)
		if err != nil {
			return EffectivePermissions{}, err
		}
		for _, key := range keys {
			perms.Global.Add(key)
		}
		return perms, nil
	}

	assignments, err := s.store.ListActiveAssignments(ctx, userID)
	if err != nil {
		return EffectivePermissions{}, err
	}
	if len(assignments) == 0 {
		return perms, nil
	}

	roleIDs := distinctRoleIDs(assignments)
	grants, err := s.store.ListRolePermissions(ctx, roleIDs)
	if err != nil {
		return EffectivePermissions{}, err
	}

	for _, assignment := range assignments {
		for _, key := range grants[assignment.RoleID] {
			if assignment.PropertyID == nil {
				perms.Global.Add(key)
				continue
			}
			scoped, ok := perms.ByProperty[*assignment.PropertyID]
			if !ok {
				scoped = make(PermissionSet)
				perms.ByProperty[*assignment.PropertyID] = scoped
			}
			scoped.Add(key)
		}
	}
	return perms, nil
}

// IsSuperAdmin reports the user's super-admin flag without touching
// assignment data.
func (s *Service) IsSuperAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsSuperAdmin, nil
}

// AccessibleProperties reduces a resolved set to the property visibility it
// implies. A global property.view grant means every property, returned as
// All=true without enumeration.
func AccessibleProperties(perms EffectivePermissions) PropertyScope {
	if perms.Global.Contains(shared.PermPropertyView) {
		return PropertyScope{All: true}
	}
	var ids []int64
	for propertyID, scoped := range perms.ByProperty {
		if scoped.Contains(shared.PermPropertyView) {
			ids = append(ids, propertyID)
		}
	}
	return PropertyScope{IDs: ids}
}

func distinctRoleIDs(assignments []Assignment) []int64 {
	seen := make(map[int64]struct{}, len(assignments))
	ids := make([]int64, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := seen[a.RoleID]; ok {
			continue
		}
		seen[a.RoleID] = struct{}{}
		ids = append(ids, a.RoleID)
	}
	return ids
}
