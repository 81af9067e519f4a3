package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"planboard.com/planboard/internal/constants"
	dto "planboard.com/planboard/internal/data_models"
	apperrors "planboard.com/planboard/internal/errors"
	model "planboard.com/planboard/internal/models"
	repository "planboard.com/planboard/internal/repositories"
)

// PlanService covers the daily-plan surface: lazy creation, the
// submit/review workflow and plan comments.
type PlanService struct {
	plans    *repository.PlanRepository
	tasks    *repository.TaskRepository
	comments *repository.CommentRepository
	access   *AccessService
}

func NewPlanService(
	plans *repository.PlanRepository,
	tasks *repository.TaskRepository,
	comments *repository.CommentRepository,
	access *AccessService,
) *PlanService {
	return &PlanService{plans: plans, tasks: tasks, comments: comments, access: access}
}

// EnsurePlan is the idempotent get-or-create keyed by the (user,
// workspace, date) triple.
func (s *PlanService) EnsurePlan(ctx context.Context, userID, workspaceID string, date time.Time) (*model.DailyPlan, error) {
	if _, ok, err := s.access.Resolve(ctx, userID, workspaceID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.ErrForbidden
	}
	return s.plans.GetOrCreate(ctx, userID, workspaceID, date)
}

// GetPlan returns a plan with its tasks for anyone allowed to see it.
func (s *PlanService) GetPlan(ctx context.Context, userID, planID string) (*model.DailyPlan, []model.Task, error) {
	plan, err := s.authorizeView(ctx, userID, planID)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := s.tasks.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, nil, err
	}
	return plan, tasks, nil
}

// TeamPlans lists the workspace's plans for one date. Supervisors and
// admins see every team-visible plan plus their own; members see only
// their own.
func (s *PlanService) TeamPlans(ctx context.Context, userID, workspaceID string, date time.Time) ([]model.DailyPlan, error) {
	role, ok, err := s.access.Resolve(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrForbidden
	}

	plans, err := s.plans.ListForDate(ctx, workspaceID, date)
	if err != nil {
		return nil, err
	}

	oversight := role == constants.RoleSupervisor || role == constants.RoleAdmin
	visible := plans[:0]
	for _, plan := range plans {
		if plan.UserID == userID || (oversight && plan.Visibility == constants.VisibilityTeam) {
			visible = append(visible, plan)
		}
	}
	return visible, nil
}

// Submit marks the owner's plan as handed in for review.
func (s *PlanService) Submit(ctx context.Context, userID, planID string) (*model.DailyPlan, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, apperrors.ErrNotPlanOwner
	}

	plan.Submitted = true
	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Review marks a submitted plan as reviewed. Reviewing needs a
// supervisor or admin role and never applies to one's own plan.
func (s *PlanService) Review(ctx context.Context, userID, planID string) (*model.DailyPlan, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	role, ok, err := s.access.Resolve(ctx, userID, plan.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !ok || (role != constants.RoleSupervisor && role != constants.RoleAdmin) {
		return nil, apperrors.ErrForbidden
	}
	if plan.UserID == userID {
		return nil, apperrors.ErrReviewOwnPlan
	}
	if !plan.Submitted {
		return nil, apperrors.ErrPlanNotSubmitted
	}

	plan.Reviewed = true
	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// SetVisibility switches a plan between team and private.
func (s *PlanService) SetVisibility(ctx context.Context, userID, planID string, visibility string) (*model.DailyPlan, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, apperrors.ErrNotPlanOwner
	}

	v := constants.PlanVisibility(visibility)
	if v != constants.VisibilityTeam && v != constants.VisibilityPrivate {
		return nil, apperrors.New(http.StatusBadRequest, "visibility must be team or private")
	}

	plan.Visibility = v
	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// AddComment attaches an immutable comment to a plan, optionally
// pinned to one of the plan's tasks.
func (s *PlanService) AddComment(ctx context.Context, userID, planID string, req dto.CreateCommentRequest) (*model.Comment, error) {
	plan, err := s.authorizeView(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if req.Body == "" {
		return nil, apperrors.New(http.StatusBadRequest, "comment body is required")
	}

	if req.TaskID != nil {
		task, err := s.tasks.FindByID(ctx, *req.TaskID)
		if err != nil {
			return nil, err
		}
		if task.DailyPlanID == nil || *task.DailyPlanID != plan.ID {
			return nil, apperrors.ErrTaskNotInPlan
		}
	}

	comment := &model.Comment{
		ID:       uuid.NewString(),
		PlanID:   plan.ID,
		TaskID:   req.TaskID,
		AuthorID: userID,
		Body:     req.Body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *PlanService) Comments(ctx context.Context, userID, planID string) ([]model.Comment, error) {
	plan, err := s.authorizeView(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	return s.comments.ListByPlan(ctx, plan.ID)
}

// authorizeView allows the owner always, and other workspace members
// only when the plan is team-visible.
func (s *PlanService) authorizeView(ctx context.Context, userID, planID string) (*model.DailyPlan, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID == userID {
		return plan, nil
	}

	if _, ok, err := s.access.Resolve(ctx, userID, plan.WorkspaceID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.ErrForbidden
	}
	if plan.Visibility != constants.VisibilityTeam {
		return nil, apperrors.ErrForbidden
	}
	return plan, nil
}
