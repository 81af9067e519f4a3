package services

import (
	"context"

	"planboard.com/planboard/internal/cache"
	"planboard.com/planboard/internal/constants"
	apperrors "planboard.com/planboard/internal/errors"
	model "planboard.com/planboard/internal/models"
	repository "planboard.com/planboard/internal/repositories"
)

// AccessService resolves a user's effective role on a workspace:
// direct membership first, then organization membership with role
// elevation. Resolutions may be cached for a short TTL; the cache is
// strictly best-effort and may be nil.
type AccessService struct {
	memberships *repository.MembershipRepository
	workspaces  *repository.WorkspaceRepository
	cache       cache.AccessCache
}

func NewAccessService(
	memberships *repository.MembershipRepository,
	workspaces *repository.WorkspaceRepository,
	roleCache cache.AccessCache,
) *AccessService {
	return &AccessService{
		memberships: memberships,
		workspaces:  workspaces,
		cache:       roleCache,
	}
}

const noAccessMarker = "-"

// Resolve returns the user's effective role on the workspace and
// whether the user has access at all.
func (s *AccessService) Resolve(ctx context.Context, userID, workspaceID string) (constants.Role, bool, error) {
	if cached, ok := s.cacheGet(ctx, userID, workspaceID); ok {
		if cached == noAccessMarker {
			return "", false, nil
		}
		return constants.Role(cached), true, nil
	}

	role, ok, err := s.resolveUncached(ctx, userID, workspaceID)
	if err != nil {
		return "", false, err
	}

	if ok {
		s.cachePut(ctx, userID, workspaceID, string(role))
	} else {
		s.cachePut(ctx, userID, workspaceID, noAccessMarker)
	}
	return role, ok, nil
}

func (s *AccessService) resolveUncached(ctx context.Context, userID, workspaceID string) (constants.Role, bool, error) {
	direct, err := s.memberships.FindMembership(ctx, userID, workspaceID)
	if err != nil {
		return "", false, err
	}
	if direct != nil {
		return direct.Role, true, nil
	}

	org, err := s.orgMembership(ctx, userID, workspaceID)
	if err != nil || org == nil {
		return "", false, err
	}

	if org.Role.Elevated() {
		return constants.RoleAdmin, true, nil
	}
	return constants.RoleMember, true, nil
}

// ResolveManage reports whether the user may manage the workspace's
// categories and memberships: direct admin, or an elevated role in the
// owning organization.
func (s *AccessService) ResolveManage(ctx context.Context, userID, workspaceID string) (bool, error) {
	direct, err := s.memberships.FindMembership(ctx, userID, workspaceID)
	if err != nil {
		return false, err
	}
	if direct != nil && direct.Role == constants.RoleAdmin {
		return true, nil
	}

	org, err := s.orgMembership(ctx, userID, workspaceID)
	if err != nil || org == nil {
		return false, err
	}
	return org.Role.Elevated(), nil
}

// CanTransfer is the symmetric dual-workspace check guarding data
// transfers: both workspaces must share shape (type and organization)
// and the user needs admin-level access on both sides.
func (s *AccessService) CanTransfer(ctx context.Context, userID, fromID, toID string) error {
	if fromID == toID {
		return apperrors.ErrSameWorkspace
	}

	from, err := s.workspaces.FindByID(ctx, fromID)
	if err != nil {
		return err
	}
	to, err := s.workspaces.FindByID(ctx, toID)
	if err != nil {
		return err
	}

	if from.Type != to.Type || !sameOrg(from.OrgID, to.OrgID) {
		return apperrors.ErrTransferMismatch
	}

	for _, wsID := range []string{fromID, toID} {
		ok, err := s.ResolveManage(ctx, userID, wsID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrForbidden
		}
	}
	return nil
}

// orgMembership returns the user's active org membership for the
// workspace's owning organization, nil for personal workspaces,
// missing memberships, and non-active statuses.
func (s *AccessService) orgMembership(ctx context.Context, userID, workspaceID string) (*model.OrgMembership, error) {
	ws, err := s.workspaces.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws.OrgID == nil {
		return nil, nil
	}

	org, err := s.memberships.FindOrgMembership(ctx, *ws.OrgID, userID)
	if err != nil {
		return nil, err
	}
	if org == nil || org.Status != constants.OrgStatusActive {
		return nil, nil
	}
	return org, nil
}

func sameOrg(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *AccessService) cacheGet(ctx context.Context, userID, workspaceID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	return s.cache.Get(ctx, userID, workspaceID)
}

func (s *AccessService) cachePut(ctx context.Context, userID, workspaceID, value string) {
	if s.cache == nil {
		return
	}
	s.cache.Put(ctx, userID, workspaceID, value)
}
