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
	"planboard.com/planboard/internal/patch"
	repository "planboard.com/planboard/internal/repositories"
)

// TaskService is the single entry point for task mutations. Every
// request runs the same gauntlet: permission, then lock state, then
// the plan-transfer or recurrence branch, then scalar updates with a
// schedule recompute.
type TaskService struct {
	tasks      *repository.TaskRepository
	subtasks   *repository.SubtaskRepository
	plans      *repository.PlanRepository
	access     *AccessService
	recurrence *RecurrenceService
}

func NewTaskService(
	tasks *repository.TaskRepository,
	subtasks *repository.SubtaskRepository,
	plans *repository.PlanRepository,
	access *AccessService,
	recurrence *RecurrenceService,
) *TaskService {
	return &TaskService{
		tasks:      tasks,
		subtasks:   subtasks,
		plans:      plans,
		access:     access,
		recurrence: recurrence,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, userID string, req dto.CreateTaskRequest) (*model.Task, error) {
	if _, ok, err := s.access.Resolve(ctx, userID, req.WorkspaceID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.ErrForbidden
	}

	task := &model.Task{
		ID:               uuid.NewString(),
		UserID:           userID,
		WorkspaceID:      req.WorkspaceID,
		Title:            req.Title,
		Category:         req.Category,
		Notes:            req.Notes,
		EstimatedMinutes: req.EstimatedMinutes,
		Status:           constants.StatusUnplanned,
		Priority:         constants.PriorityNone,
	}

	if req.Priority != "" {
		p := constants.Priority(req.Priority)
		if !p.Valid() {
			return nil, apperrors.New(http.StatusBadRequest, "invalid priority")
		}
		task.Priority = p
	}
	if req.EstimatedMinutes != nil && (*req.EstimatedMinutes < 0 || *req.EstimatedMinutes > 24*60) {
		return nil, apperrors.ErrInvalidMinutes
	}
	if req.DueDate != nil {
		due, err := ParseDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = &due
	}

	var planDate *time.Time
	if req.PlanDate != nil {
		date, err := ParseDate(*req.PlanDate)
		if err != nil {
			return nil, err
		}
		plan, err := s.plans.GetOrCreate(ctx, userID, req.WorkspaceID, date)
		if err != nil {
			return nil, err
		}
		task.DailyPlanID = &plan.ID
		task.Status = constants.StatusPlanned
		planDate = &plan.Date

		start, end, err := ComputeSchedule(ScheduleInput{
			PlanDate:   plan.Date,
			StartClock: fieldFromPtr(req.StartTime),
			Estimated:  fieldFromPtr(req.EstimatedMinutes),
		})
		if err != nil {
			return nil, err
		}
		task.StartTime, task.EndTime = start, end
	} else if req.StartTime != nil {
		return nil, apperrors.ErrTaskUnscheduled
	}

	if req.RecurrenceRule != nil {
		if err := applyTemplateFields(task, req, planDate); err != nil {
			return nil, err
		}
	}

	if err := s.tasks.InsertAt(ctx, task, req.Position); err != nil {
		return nil, err
	}
	return task, nil
}

// applyTemplateFields marks a freshly created task as a recurrence
// template.
func applyTemplateFields(task *model.Task, req dto.CreateTaskRequest, planDate *time.Time) error {
	rule := constants.RecurrenceRule(*req.RecurrenceRule)
	if !rule.Valid() {
		return apperrors.ErrInvalidRule
	}
	if req.RecurrenceTime != nil {
		if _, _, err := ParseClock(*req.RecurrenceTime); err != nil {
			return err
		}
	}

	start := repository.Midnight(time.Now())
	if planDate != nil {
		start = *planDate
	}

	task.RecurrenceRule = &rule
	task.RecurrenceTime = req.RecurrenceTime
	task.RecurrenceActive = true
	task.RecurrenceStartDate = &start
	if req.RepeatTill != nil {
		till, err := ParseDate(*req.RepeatTill)
		if err != nil {
			return err
		}
		task.RepeatTill = &till
	}
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	_, workspaceID, _, err := s.taskContext(ctx, task)
	if err != nil {
		return nil, err
	}
	if _, ok, err := s.access.Resolve(ctx, userID, workspaceID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.ErrForbidden
	}
	return task, nil
}

// ListIdeas returns the caller's unscheduled tasks in a workspace.
func (s *TaskService) ListIdeas(ctx context.Context, userID, workspaceID string) ([]model.Task, error) {
	if _, ok, err := s.access.Resolve(ctx, userID, workspaceID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.ErrForbidden
	}
	return s.tasks.ListIdeas(ctx, userID, workspaceID)
}

// UpdateTask applies a sparse patch to one task, in precondition
// order: permission, lock state, plan transfer, recurrence, scalars.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, req dto.UpdateTaskRequest) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	ownerID, workspaceID, plan, err := s.taskContext(ctx, task)
	if err != nil {
		return nil, err
	}
	if _, ok, err := s.access.Resolve(ctx, userID, workspaceID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.ErrForbidden
	}
	if userID != ownerID {
		return nil, apperrors.ErrNotTaskOwner
	}

	if task.Locked() {
		if !req.ReinstateOnly() {
			return nil, apperrors.ErrTaskLocked
		}
		err := s.tasks.UpdateFields(ctx, task.ID, map[string]interface{}{
			"status": constants.StatusPlanned,
		})
		if err != nil {
			return nil, err
		}
		return s.tasks.FindByID(ctx, task.ID)
	}

	if req.DailyPlanID.Present() {
		return s.moveTask(ctx, userID, task, req.DailyPlanID)
	}

	if req.TouchesRecurrence() {
		if err := s.applyRecurrence(ctx, task, req); err != nil {
			return nil, err
		}
		// Scalar fields in the same patch still apply, against the
		// post-cascade state.
		task, err = s.tasks.FindByID(ctx, task.ID)
		if err != nil {
			return nil, err
		}
	}

	fields, err := s.scalarFields(task, plan, req)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.UpdateFields(ctx, task.ID, fields); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, task.ID)
}

// moveTask handles the plan-transfer branch: a null plan id sends the
// task back to the idea pool, a concrete one appends the task to the
// target plan. The schedule never survives a move.
func (s *TaskService) moveTask(ctx context.Context, userID string, task *model.Task, planID patch.Field[string]) (*model.Task, error) {
	if planID.IsNull() {
		err := s.tasks.UpdateFields(ctx, task.ID, map[string]interface{}{
			"daily_plan_id": nil,
			"status":        constants.StatusUnplanned,
			"start_time":    nil,
			"end_time":      nil,
			"position":      0,
		})
		if err != nil {
			return nil, err
		}
		return s.tasks.FindByID(ctx, task.ID)
	}

	target, err := s.plans.FindByID(ctx, planID.Value())
	if err != nil {
		return nil, err
	}
	if target.UserID != userID {
		return nil, apperrors.ErrNotPlanOwner
	}
	if err := s.tasks.MoveToPlan(ctx, task, target); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, task.ID)
}

// applyRecurrence routes recurrence-affecting fields through the
// recurrence manager so their cascades stay atomic.
func (s *TaskService) applyRecurrence(ctx context.Context, task *model.Task, req dto.UpdateTaskRequest) error {
	if req.RecurrenceAction.Present() {
		switch req.RecurrenceAction.Value() {
		case "stop":
			return s.recurrence.Stop(ctx, task)
		default:
			return apperrors.New(http.StatusBadRequest, "unknown recurrence action")
		}
	}

	if req.RecurrenceRule.Present() {
		var rule *constants.RecurrenceRule
		if !req.RecurrenceRule.IsNull() && req.RecurrenceRule.Value() != "none" {
			r := constants.RecurrenceRule(req.RecurrenceRule.Value())
			rule = &r
		}
		if err := s.recurrence.SetRule(ctx, task, rule, req.RecurrenceTime); err != nil {
			return err
		}
	} else if req.RecurrenceTime.Present() {
		template, err := s.recurrence.Template(ctx, task)
		if err != nil {
			return err
		}
		if template.RecurrenceRule == nil {
			return apperrors.ErrNotRecurring
		}
		if err := s.recurrence.SetRule(ctx, task, template.RecurrenceRule, req.RecurrenceTime); err != nil {
			return err
		}
	}

	if req.RepeatTill.Present() {
		if req.RepeatTill.IsNull() {
			return apperrors.ErrInvalidDate
		}
		till, err := ParseDate(req.RepeatTill.Value())
		if err != nil {
			return err
		}
		return s.recurrence.SetRepeatTill(ctx, task, till)
	}
	return nil
}

// scalarFields validates the plain field edits and folds in the
// schedule recompute when a time-affecting field is present.
func (s *TaskService) scalarFields(task *model.Task, plan *model.DailyPlan, req dto.UpdateTaskRequest) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	if req.Title.Present() {
		if req.Title.IsNull() || req.Title.Value() == "" {
			return nil, apperrors.New(http.StatusBadRequest, "title must not be empty")
		}
		fields["title"] = req.Title.Value()
	}
	if req.Category.Present() {
		fields["category"] = req.Category.Value()
	}
	if req.Notes.Present() {
		fields["notes"] = req.Notes.Value()
	}
	if req.Priority.Present() {
		p := constants.Priority(req.Priority.Value())
		if req.Priority.IsNull() {
			p = constants.PriorityNone
		}
		if !p.Valid() {
			return nil, apperrors.New(http.StatusBadRequest, "invalid priority")
		}
		fields["priority"] = p
	}
	if req.Status.Present() {
		next := constants.TaskStatus(req.Status.Value())
		if req.Status.IsNull() || !validTransition(task.Status, next) {
			return nil, apperrors.ErrInvalidStatus
		}
		fields["status"] = next
	}
	if req.ActualMinutes.Present() {
		if v := req.ActualMinutes.Ptr(); v != nil && (*v < 0 || *v > 24*60) {
			return nil, apperrors.ErrInvalidMinutes
		}
		fields["actual_minutes"] = req.ActualMinutes.Ptr()
	}
	if req.DueDate.Present() {
		if req.DueDate.IsNull() {
			fields["due_date"] = nil
		} else {
			due, err := ParseDate(req.DueDate.Value())
			if err != nil {
				return nil, err
			}
			fields["due_date"] = due
		}
	}
	if req.Position.Present() {
		if req.Position.IsNull() || req.Position.Value() < 1 {
			return nil, apperrors.New(http.StatusBadRequest, "position must be positive")
		}
		fields["position"] = req.Position.Value()
	}

	// The estimate range holds regardless of whether a schedule gets
	// computed; an idea or startless task must not store a bad value.
	if req.EstimatedMinutes.Present() {
		if v := req.EstimatedMinutes.Ptr(); v != nil && (*v < 0 || *v > 24*60) {
			return nil, apperrors.ErrInvalidMinutes
		}
		fields["estimated_minutes"] = req.EstimatedMinutes.Ptr()
	}

	if req.StartTime.Present() || req.EstimatedMinutes.Present() {
		if plan == nil {
			if req.StartTime.Present() && !req.StartTime.IsNull() {
				return nil, apperrors.ErrTaskUnscheduled
			}
		} else {
			start, end, err := ComputeSchedule(ScheduleInput{
				PlanDate:      plan.Date,
				StartClock:    req.StartTime,
				Estimated:     req.EstimatedMinutes,
				PrevStart:     task.StartTime,
				PrevEstimated: task.EstimatedMinutes,
			})
			if err != nil {
				return nil, err
			}
			fields["start_time"] = start
			fields["end_time"] = end
		}
	}

	return fields, nil
}

// DeleteTask removes one task, or — for recurring tasks with
// all=true — the whole template/instance family.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string, all bool) error {
	task, _, err := s.authorizeOwner(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if all {
		if !task.IsTemplate() && !task.IsInstance() {
			return apperrors.ErrNotRecurring
		}
		return s.recurrence.DeleteAll(ctx, task)
	}
	return s.tasks.Delete(ctx, task.ID)
}

func (s *TaskService) CreateSubtask(ctx context.Context, userID, taskID string, req dto.CreateSubtaskRequest) (*model.Subtask, error) {
	task, plan, err := s.authorizeOwner(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Locked() {
		return nil, apperrors.ErrTaskLocked
	}
	if req.Title == "" {
		return nil, apperrors.New(http.StatusBadRequest, "title is required")
	}
	if req.EstimatedMinutes != nil && (*req.EstimatedMinutes < 0 || *req.EstimatedMinutes > 24*60) {
		return nil, apperrors.ErrInvalidMinutes
	}

	subtask := &model.Subtask{
		ID:               uuid.NewString(),
		TaskID:           task.ID,
		Title:            req.Title,
		EstimatedMinutes: req.EstimatedMinutes,
	}
	if plan != nil {
		start, end, err := ComputeSchedule(ScheduleInput{
			PlanDate:   plan.Date,
			StartClock: fieldFromPtr(req.StartTime),
			Estimated:  fieldFromPtr(req.EstimatedMinutes),
		})
		if err != nil {
			return nil, err
		}
		subtask.StartTime, subtask.EndTime = start, end
	} else if req.StartTime != nil {
		return nil, apperrors.ErrTaskUnscheduled
	}

	if err := s.subtasks.Create(ctx, subtask); err != nil {
		return nil, err
	}
	return subtask, nil
}

// UpdateSubtask applies a sparse patch to a subtask. The schedule math
// is the task computation against the parent plan's date.
func (s *TaskService) UpdateSubtask(ctx context.Context, userID, taskID, subtaskID string, req dto.UpdateSubtaskRequest) (*model.Subtask, error) {
	task, plan, err := s.authorizeOwner(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Locked() {
		return nil, apperrors.ErrTaskLocked
	}

	subtask, err := s.subtasks.FindByID(ctx, task.ID, subtaskID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title.Present() {
		if req.Title.IsNull() || req.Title.Value() == "" {
			return nil, apperrors.New(http.StatusBadRequest, "title must not be empty")
		}
		fields["title"] = req.Title.Value()
	}
	if req.Done.Present() {
		fields["done"] = !req.Done.IsNull() && req.Done.Value()
	}
	if req.ActualMinutes.Present() {
		if v := req.ActualMinutes.Ptr(); v != nil && (*v < 0 || *v > 24*60) {
			return nil, apperrors.ErrInvalidMinutes
		}
		fields["actual_minutes"] = req.ActualMinutes.Ptr()
	}

	if req.EstimatedMinutes.Present() {
		if v := req.EstimatedMinutes.Ptr(); v != nil && (*v < 0 || *v > 24*60) {
			return nil, apperrors.ErrInvalidMinutes
		}
		fields["estimated_minutes"] = req.EstimatedMinutes.Ptr()
	}

	if req.StartTime.Present() || req.EstimatedMinutes.Present() {
		if plan == nil {
			if req.StartTime.Present() && !req.StartTime.IsNull() {
				return nil, apperrors.ErrTaskUnscheduled
			}
		} else {
			start, end, err := ComputeSchedule(ScheduleInput{
				PlanDate:      plan.Date,
				StartClock:    req.StartTime,
				Estimated:     req.EstimatedMinutes,
				PrevStart:     subtask.StartTime,
				PrevEstimated: subtask.EstimatedMinutes,
			})
			if err != nil {
				return nil, err
			}
			fields["start_time"] = start
			fields["end_time"] = end
		}
	}

	if err := s.subtasks.UpdateFields(ctx, subtask.ID, fields); err != nil {
		return nil, err
	}
	return s.subtasks.FindByID(ctx, task.ID, subtaskID)
}

func (s *TaskService) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID string) error {
	task, _, err := s.authorizeOwner(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if task.Locked() {
		return apperrors.ErrTaskLocked
	}
	return s.subtasks.Delete(ctx, task.ID, subtaskID)
}

// authorizeOwner loads the task and checks workspace access plus
// ownership, the precondition shared by all task mutations.
func (s *TaskService) authorizeOwner(ctx context.Context, userID, taskID string) (*model.Task, *model.DailyPlan, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	ownerID, workspaceID, plan, err := s.taskContext(ctx, task)
	if err != nil {
		return nil, nil, err
	}
	if _, ok, err := s.access.Resolve(ctx, userID, workspaceID); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, apperrors.ErrForbidden
	}
	if userID != ownerID {
		return nil, nil, apperrors.ErrNotTaskOwner
	}
	return task, plan, nil
}

// taskContext derives the task's effective owner and workspace. For
// scheduled tasks the owning plan is the source of truth; ideas carry
// their own fields.
func (s *TaskService) taskContext(ctx context.Context, task *model.Task) (ownerID, workspaceID string, plan *model.DailyPlan, err error) {
	if task.DailyPlanID == nil {
		return task.UserID, task.WorkspaceID, nil, nil
	}
	plan, err = s.plans.FindByID(ctx, *task.DailyPlanID)
	if err != nil {
		return "", "", nil, err
	}
	return plan.UserID, plan.WorkspaceID, plan, nil
}

func validTransition(from, to constants.TaskStatus) bool {
	switch to {
	case constants.StatusPlanned:
		return true
	case constants.StatusDone, constants.StatusSkipped, constants.StatusCancelled:
		return from == constants.StatusPlanned
	default:
		return false
	}
}

func fieldFromPtr[T any](p *T) patch.Field[T] {
	if p == nil {
		return patch.Field[T]{}
	}
	return patch.Of(*p)
}
