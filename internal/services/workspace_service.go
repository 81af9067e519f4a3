package services

import (
	"context"

	repository "planboard.com/planboard/internal/repositories"
)

// WorkspaceService hosts the admin-level workspace actions the core
// exposes; creation and invites live outside this service.
type WorkspaceService struct {
	workspaces *repository.WorkspaceRepository
	access     *AccessService
}

func NewWorkspaceService(workspaces *repository.WorkspaceRepository, access *AccessService) *WorkspaceService {
	return &WorkspaceService{workspaces: workspaces, access: access}
}

// Transfer moves all plans, tasks and categories from one workspace to
// another. The symmetric CanTransfer predicate guards it: same shape
// on both sides, admin-level access on both sides.
func (s *WorkspaceService) Transfer(ctx context.Context, userID, fromID, toID string) error {
	if err := s.access.CanTransfer(ctx, userID, fromID, toID); err != nil {
		return err
	}
	return s.workspaces.TransferContents(ctx, fromID, toID)
}
