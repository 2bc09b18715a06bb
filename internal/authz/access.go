package authz

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/lodgeline/lodgeline/internal/shared"
)

// CanAccessProperty decides whether the user may access one property.
// Precedence is fixed: super-admin, then recorded ownership, then scoped
// RBAC via the resolver. The first matching source wins and later ones are
// not consulted.
func (s *Service) CanAccessProperty(ctx context.Context, userID, propertyID int64) (bool, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if user.IsSuperAdmin {
		return true, nil
	}

	ownerID, err := s.store.GetPropertyOwner(ctx, propertyID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}
	if err == nil && ownerID == userID {
		return true, nil
	}

	perms, err := s.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	return perms.Has(shared.PermPropertyView, propertyID), nil
}

// FilterAccessibleProperties reduces the candidate list to the subset the
// user may access. Super-admins and holders of a global property.view grant
// get the input back unchanged; everyone else gets the union of owned and
// scoped-view ids restricted to the candidates.
func (s *Service) FilterAccessibleProperties(ctx context.Context, userID int64, candidates []int64) ([]int64, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if user.IsSuperAdmin {
		return candidates, nil
	}

	var (
		perms EffectivePermissions
		owned []int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		perms, err = s.Resolve(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		owned, err = s.store.ListOwnedPropertyIDs(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if perms.Global.Contains(shared.PermPropertyView) {
		return candidates, nil
	}

	accessible := make(map[int64]struct{}, len(owned))
	for _, id := range owned {
		accessible[id] = struct{}{}
	}
	for propertyID, scoped := range perms.ByProperty {
		if scoped.Contains(shared.PermPropertyView) {
			accessible[propertyID] = struct{}{}
		}
	}

	var result []int64
	for _, id := range candidates {
		if _, ok := accessible[id]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}
