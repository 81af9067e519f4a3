package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"planboard.com/planboard/internal/constants"
	model "planboard.com/planboard/internal/models"
	"planboard.com/planboard/internal/patch"
	repository "planboard.com/planboard/internal/repositories"
)

// GeneratorService is the batch job that materializes dated instances
// from active recurrence templates. It runs once per day (and on
// demand) and is idempotent: a template never gets two instances on
// the same date.
type GeneratorService struct {
	tasks *repository.TaskRepository
	plans *repository.PlanRepository
}

func NewGeneratorService(tasks *repository.TaskRepository, plans *repository.PlanRepository) *GeneratorService {
	return &GeneratorService{tasks: tasks, plans: plans}
}

// GenerateForDate creates an instance for every active template due on
// the given date. A failing template is logged and skipped so one bad
// row cannot stall the batch. Returns the number of instances created.
func (g *GeneratorService) GenerateForDate(ctx context.Context, date time.Time) (int, error) {
	date = repository.Midnight(date)

	templates, err := g.tasks.ListActiveTemplates(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range templates {
		template := &templates[i]
		if !dueOn(template, date) {
			continue
		}

		exists, err := g.tasks.InstanceExistsOn(ctx, template.ID, date)
		if err != nil {
			log.Printf("generator: check template %s: %v", template.ID, err)
			continue
		}
		if exists {
			continue
		}

		if err := g.materialize(ctx, template, date); err != nil {
			log.Printf("generator: template %s: %v", template.ID, err)
			continue
		}
		created++
	}
	return created, nil
}

func (g *GeneratorService) materialize(ctx context.Context, template *model.Task, date time.Time) error {
	plan, err := g.plans.GetOrCreate(ctx, template.UserID, template.WorkspaceID, date)
	if err != nil {
		return err
	}

	instance := &model.Task{
		ID:               uuid.NewString(),
		DailyPlanID:      &plan.ID,
		UserID:           template.UserID,
		WorkspaceID:      template.WorkspaceID,
		Title:            template.Title,
		Category:         template.Category,
		Notes:            template.Notes,
		Priority:         template.Priority,
		EstimatedMinutes: template.EstimatedMinutes,
		Status:           constants.StatusPlanned,

		RecurrenceRule:      template.RecurrenceRule,
		RecurrenceTime:      template.RecurrenceTime,
		RecurrenceParentID:  &template.ID,
		RecurrenceStartDate: template.RecurrenceStartDate,
		RepeatTill:          template.RepeatTill,
	}

	if template.RecurrenceTime != nil {
		start, end, err := ComputeSchedule(ScheduleInput{
			PlanDate:   plan.Date,
			StartClock: patch.Of(*template.RecurrenceTime),
			Estimated:  fieldFromPtr(template.EstimatedMinutes),
		})
		if err != nil {
			return err
		}
		instance.StartTime, instance.EndTime = start, end
	}

	return g.tasks.InsertAt(ctx, instance, nil)
}

// dueOn decides whether a template produces an occurrence on the
// given date. The start date anchors weekday and ordinal rules; the
// repeat-till boundary is inclusive.
func dueOn(template *model.Task, date time.Time) bool {
	if template.RecurrenceRule == nil {
		return false
	}

	start := repository.Midnight(template.CreatedAt)
	if template.RecurrenceStartDate != nil {
		start = repository.Midnight(*template.RecurrenceStartDate)
	}
	if date.Before(start) {
		return false
	}
	if template.RepeatTill != nil && date.After(repository.Midnight(*template.RepeatTill)) {
		return false
	}

	switch *template.RecurrenceRule {
	case constants.RecurDaily:
		return true
	case constants.RecurWeekdays:
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case constants.RecurWeekly:
		return date.Weekday() == start.Weekday()
	case constants.RecurBiweekly:
		if date.Weekday() != start.Weekday() {
			return false
		}
		weeks := int(date.Sub(start).Hours()/24) / 7
		return weeks%2 == 0
	case constants.RecurMonthly:
		return date.Day() == clampDay(start.Day(), date.Month(), date.Year())
	case constants.RecurMonthlyNthWeekday:
		if date.Weekday() != start.Weekday() {
			return false
		}
		nth := (start.Day()-1)/7 + 1
		got := (date.Day()-1)/7 + 1
		if got == nth {
			return true
		}
		// The 5th occurrence means the last one of the month.
		if nth >= 5 {
			return date.AddDate(0, 0, 7).Month() != date.Month()
		}
		return false
	}
	return false
}

// clampDay pins a day-of-month to the target month's length, so a
// "31st of every month" rule fires on the 30th or 28th when needed.
func clampDay(day int, month time.Month, year int) int {
	last := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Day()
	if day > last {
		return last
	}
	return day
}
