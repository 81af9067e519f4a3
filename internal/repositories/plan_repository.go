package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"planboard.com/planboard/internal/constants"
	apperrors "planboard.com/planboard/internal/errors"
	model "planboard.com/planboard/internal/models"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*model.DailyPlan, error) {
	var plan model.DailyPlan
	err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return &plan, nil
}

// GetOrCreate returns the plan for the (user, workspace, date) triple,
// creating it on first use. The unique index backs the idempotency; a
// concurrent insert loses the race and falls back to the lookup.
func (r *PlanRepository) GetOrCreate(ctx context.Context, userID, workspaceID string, date time.Time) (*model.DailyPlan, error) {
	db := r.db.WithContext(ctx)
	day := Midnight(date)

	var plan model.DailyPlan
	err := db.Where("user_id = ? AND workspace_id = ? AND date = ?", userID, workspaceID, day).
		First(&plan).Error
	switch {
	case err == nil:
		return &plan, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		plan = model.DailyPlan{
			ID:          uuid.NewString(),
			UserID:      userID,
			WorkspaceID: workspaceID,
			Date:        day,
			Visibility:  constants.VisibilityTeam,
		}
		if createErr := db.Create(&plan).Error; createErr != nil {
			if findErr := db.Where("user_id = ? AND workspace_id = ? AND date = ?", userID, workspaceID, day).
				First(&plan).Error; findErr == nil {
				return &plan, nil
			}
			return nil, fmt.Errorf("create plan: %w", createErr)
		}
		return &plan, nil
	default:
		return nil, fmt.Errorf("find plan: %w", err)
	}
}

func (r *PlanRepository) Save(ctx context.Context, plan *model.DailyPlan) error {
	if err := r.db.WithContext(ctx).Save(plan).Error; err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// ListForDate returns every plan in the workspace for one date, used
// by the team oversight view.
func (r *PlanRepository) ListForDate(ctx context.Context, workspaceID string, date time.Time) ([]model.DailyPlan, error) {
	var plans []model.DailyPlan
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND date = ?", workspaceID, Midnight(date)).
		Order("user_id asc").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// Midnight truncates a timestamp to its calendar date in UTC, the
// canonical representation for plan dates.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
