package services

import (
	"context"
	"time"

	"planboard.com/planboard/internal/constants"
	apperrors "planboard.com/planboard/internal/errors"
	model "planboard.com/planboard/internal/models"
	"planboard.com/planboard/internal/patch"
	repository "planboard.com/planboard/internal/repositories"
)

// RecurrenceService owns the template/instance family semantics:
// rule changes, the repeat-till boundary, stopping generation and
// deleting the whole family. Operations addressed at an instance are
// resolved to its template first, and every cascade is atomic.
type RecurrenceService struct {
	tasks *repository.TaskRepository
	plans *repository.PlanRepository
}

func NewRecurrenceService(tasks *repository.TaskRepository, plans *repository.PlanRepository) *RecurrenceService {
	return &RecurrenceService{tasks: tasks, plans: plans}
}

// Template resolves the family template for a task: the task itself
// unless it is a generated instance.
func (s *RecurrenceService) Template(ctx context.Context, task *model.Task) (*model.Task, error) {
	if task.RecurrenceParentID == nil {
		return task, nil
	}
	return s.tasks.FindByID(ctx, *task.RecurrenceParentID)
}

// SetRule installs or replaces the recurrence rule. A nil rule clears
// recurrence from the template and all of its instances. The clock
// field keeps the template's stored time when absent and clears it on
// an explicit null.
func (s *RecurrenceService) SetRule(ctx context.Context, task *model.Task, rule *constants.RecurrenceRule, clockField patch.Field[string]) error {
	template, err := s.Template(ctx, task)
	if err != nil {
		return err
	}

	if rule == nil {
		return s.tasks.ClearRecurrence(ctx, template.ID)
	}
	if !rule.Valid() {
		return apperrors.ErrInvalidRule
	}

	clock := template.RecurrenceTime
	switch {
	case clockField.IsNull():
		clock = nil
	case clockField.Present():
		if _, _, err := ParseClock(clockField.Value()); err != nil {
			return err
		}
		clock = clockField.Ptr()
	}

	start, err := s.anchorDate(ctx, template)
	if err != nil {
		return err
	}
	if template.RecurrenceStartDate != nil {
		start = *template.RecurrenceStartDate
	}
	return s.tasks.SetRecurrenceRule(ctx, template.ID, *rule, clock, start)
}

// SetRepeatTill moves the inclusive end boundary, pruning instances
// already generated past it.
func (s *RecurrenceService) SetRepeatTill(ctx context.Context, task *model.Task, till time.Time) error {
	template, err := s.Template(ctx, task)
	if err != nil {
		return err
	}
	if template.RecurrenceRule == nil {
		return apperrors.ErrNotRecurring
	}
	return s.tasks.SetRepeatTill(ctx, template.ID, till)
}

// Stop halts future generation at the task's plan date (today when
// the task is unscheduled); existing instances stay.
func (s *RecurrenceService) Stop(ctx context.Context, task *model.Task) error {
	template, err := s.Template(ctx, task)
	if err != nil {
		return err
	}
	if template.RecurrenceRule == nil {
		return apperrors.ErrNotRecurring
	}

	till, err := s.anchorDate(ctx, task)
	if err != nil {
		return err
	}
	return s.tasks.StopRecurrence(ctx, template.ID, till)
}

// DeleteAll removes the template and every generated instance.
func (s *RecurrenceService) DeleteAll(ctx context.Context, task *model.Task) error {
	template, err := s.Template(ctx, task)
	if err != nil {
		return err
	}
	return s.tasks.DeleteFamily(ctx, template.ID)
}

// anchorDate is the task's plan date, falling back to today for
// unscheduled tasks.
func (s *RecurrenceService) anchorDate(ctx context.Context, task *model.Task) (time.Time, error) {
	if task.DailyPlanID == nil {
		return repository.Midnight(time.Now()), nil
	}
	plan, err := s.plans.FindByID(ctx, *task.DailyPlanID)
	if err != nil {
		return time.Time{}, err
	}
	return plan.Date, nil
}
