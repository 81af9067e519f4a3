package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"planboard.com/planboard/internal/constants"
	apperrors "planboard.com/planboard/internal/errors"
	model "planboard.com/planboard/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Preload("Subtasks").Preload("Attachments").
		First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) ListByPlan(ctx context.Context, planID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("daily_plan_id = ?", planID).
		Order("position asc, created_at asc").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list plan tasks: %w", err)
	}
	return tasks, nil
}

// ListIdeas returns the user's unscheduled tasks in a workspace.
func (r *TaskRepository) ListIdeas(ctx context.Context, userID, workspaceID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND workspace_id = ? AND daily_plan_id IS NULL", userID, workspaceID).
		Order("created_at desc").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	return tasks, nil
}

// InsertAt creates the task inside its plan at the requested position,
// shifting later tasks up by one; with no requested position it
// appends after the current maximum. Shift and insert run in one
// transaction so concurrent inserts cannot hand out the same slot.
func (r *TaskRepository) InsertAt(ctx context.Context, task *model.Task, requested *int) error {
	if task.DailyPlanID == nil {
		return r.Create(ctx, task)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if requested != nil && *requested > 0 {
			if err := tx.Model(&model.Task{}).
				Where("daily_plan_id = ? AND position >= ?", *task.DailyPlanID, *requested).
				Update("position", gorm.Expr("position + 1")).Error; err != nil {
				return fmt.Errorf("shift positions: %w", err)
			}
			task.Position = *requested
		} else {
			pos, err := nextPosition(tx, *task.DailyPlanID)
			if err != nil {
				return err
			}
			task.Position = pos
		}

		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	})
}

// MoveToPlan reassigns the task to the target plan's owner and
// workspace, appends it at the end of the target ordering, resets the
// status to planned and clears the computed schedule.
func (r *TaskRepository) MoveToPlan(ctx context.Context, task *model.Task, target *model.DailyPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := nextPosition(tx, target.ID)
		if err != nil {
			return err
		}

		res := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
			"daily_plan_id": target.ID,
			"user_id":       target.UserID,
			"workspace_id":  target.WorkspaceID,
			"position":      pos,
			"status":        constants.StatusPlanned,
			"start_time":    nil,
			"end_time":      nil,
		})
		if res.Error != nil {
			return fmt.Errorf("move task: %w", res.Error)
		}

		task.DailyPlanID = &target.ID
		task.UserID = target.UserID
		task.WorkspaceID = target.WorkspaceID
		task.Position = pos
		task.Status = constants.StatusPlanned
		task.StartTime = nil
		task.EndTime = nil
		return nil
	})
}

// UpdateFields applies a sparse column map to one task.
func (r *TaskRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// Delete removes the task together with its subtasks and attachments.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteTasks(tx, "id = ?", id)
	})
}

// ListInstances returns every generated occurrence of a template.
func (r *TaskRepository) ListInstances(ctx context.Context, templateID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("recurrence_parent_id = ?", templateID).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	return tasks, nil
}

// ClearRecurrence wipes the rule, time, active flag and boundary on
// the template and every instance in one transaction. The instances
// keep their parent pointer so the family stays browsable.
func (r *TaskRepository) ClearRecurrence(ctx context.Context, templateID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cleared := map[string]interface{}{
			"recurrence_rule":       nil,
			"recurrence_time":       nil,
			"recurrence_active":     false,
			"recurrence_start_date": nil,
			"repeat_till":           nil,
		}
		if err := tx.Model(&model.Task{}).
			Where("id = ? OR recurrence_parent_id = ?", templateID, templateID).
			Updates(cleared).Error; err != nil {
			return fmt.Errorf("clear recurrence: %w", err)
		}
		return nil
	})
}

// SetRecurrenceRule writes a new rule (and optional clock time) on
// the template, reactivates generation, and mirrors the rule metadata
// onto every instance in the same transaction.
func (r *TaskRepository) SetRecurrenceRule(ctx context.Context, templateID string, rule constants.RecurrenceRule, clock *string, startDate time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).Where("id = ?", templateID).Updates(map[string]interface{}{
			"recurrence_rule":       rule,
			"recurrence_time":       clock,
			"recurrence_active":     true,
			"recurrence_start_date": Midnight(startDate),
		})
		if res.Error != nil {
			return fmt.Errorf("set recurrence rule: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrTaskNotFound
		}

		if err := tx.Model(&model.Task{}).
			Where("recurrence_parent_id = ?", templateID).
			Updates(map[string]interface{}{
				"recurrence_rule": rule,
				"recurrence_time": clock,
			}).Error; err != nil {
			return fmt.Errorf("mirror rule to instances: %w", err)
		}
		return nil
	})
}

// SetRepeatTill stamps the boundary on the template and the surviving
// instances, reactivates generation, and prunes instances whose plan
// date lies strictly after the boundary.
func (r *TaskRepository) SetRepeatTill(ctx context.Context, templateID string, till time.Time) error {
	till = Midnight(till)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var beyond []string
		err := tx.Model(&model.DailyPlan{}).Where("date > ?", till).Pluck("id", &beyond).Error
		if err != nil {
			return fmt.Errorf("find plans past boundary: %w", err)
		}
		if len(beyond) > 0 {
			if err := deleteTasks(tx, "recurrence_parent_id = ? AND daily_plan_id IN ?", templateID, beyond); err != nil {
				return err
			}
		}

		stamp := map[string]interface{}{
			"repeat_till":       till,
			"recurrence_active": true,
		}
		if err := tx.Model(&model.Task{}).
			Where("id = ? OR recurrence_parent_id = ?", templateID, templateID).
			Updates(stamp).Error; err != nil {
			return fmt.Errorf("set repeat till: %w", err)
		}
		return nil
	})
}

// StopRecurrence halts generation at the given boundary; already
// generated instances are kept.
func (r *TaskRepository) StopRecurrence(ctx context.Context, templateID string, till time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", templateID).
		Updates(map[string]interface{}{
			"recurrence_active": false,
			"repeat_till":       Midnight(till),
		})
	if res.Error != nil {
		return fmt.Errorf("stop recurrence: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// DeleteFamily removes the template and all of its instances in one
// transaction.
func (r *TaskRepository) DeleteFamily(ctx context.Context, templateID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteTasks(tx, "id = ? OR recurrence_parent_id = ?", templateID, templateID)
	})
}

// ListActiveTemplates returns the templates the generator should
// consider: rule set, active, not themselves instances.
func (r *TaskRepository) ListActiveTemplates(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("recurrence_rule IS NOT NULL AND recurrence_active = ? AND recurrence_parent_id IS NULL", true).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return tasks, nil
}

// InstanceExistsOn reports whether the template already has an
// instance scheduled on the given date. Generation keys on this to
// stay idempotent.
func (r *TaskRepository) InstanceExistsOn(ctx context.Context, templateID string, date time.Time) (bool, error) {
	var planIDs []string
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.DailyPlan{}).Where("date = ?", Midnight(date)).Pluck("id", &planIDs).Error; err != nil {
		return false, fmt.Errorf("find plans for date: %w", err)
	}
	if len(planIDs) == 0 {
		return false, nil
	}

	var count int64
	err := db.Model(&model.Task{}).
		Where("recurrence_parent_id = ? AND daily_plan_id IN ?", templateID, planIDs).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count instances: %w", err)
	}
	return count > 0, nil
}

func nextPosition(tx *gorm.DB, planID string) (int, error) {
	var max int
	err := tx.Model(&model.Task{}).
		Where("daily_plan_id = ?", planID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("max position: %w", err)
	}
	return max + 1, nil
}

// deleteTasks removes the tasks matched by the condition plus their
// subtasks and attachments, inside the caller's transaction.
func deleteTasks(tx *gorm.DB, query string, args ...interface{}) error {
	var ids []string
	if err := tx.Model(&model.Task{}).Where(query, args...).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("collect task ids: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	if err := tx.Where("task_id IN ?", ids).Delete(&model.Subtask{}).Error; err != nil {
		return fmt.Errorf("delete subtasks: %w", err)
	}
	if err := tx.Where("task_id IN ?", ids).Delete(&model.Attachment{}).Error; err != nil {
		return fmt.Errorf("delete attachments: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}
