package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "planboard.com/planboard/internal/errors"
	model "planboard.com/planboard/internal/models"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) FindByID(ctx context.Context, id string) (*model.Workspace, error) {
	var ws model.Workspace
	err := r.db.WithContext(ctx).First(&ws, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find workspace: %w", err)
	}
	return &ws, nil
}

// TransferContents moves every plan, task and category from one
// workspace to another in a single transaction. Unique category names
// in the target abort the whole transfer.
func (r *WorkspaceRepository) TransferContents(ctx context.Context, fromID, toID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Category{}).
			Where("workspace_id = ?", fromID).
			Update("workspace_id", toID).Error; err != nil {
			return fmt.Errorf("transfer categories: %w", err)
		}
		if err := tx.Model(&model.DailyPlan{}).
			Where("workspace_id = ?", fromID).
			Update("workspace_id", toID).Error; err != nil {
			return fmt.Errorf("transfer plans: %w", err)
		}
		if err := tx.Model(&model.Task{}).
			Where("workspace_id = ?", fromID).
			Update("workspace_id", toID).Error; err != nil {
			return fmt.Errorf("transfer tasks: %w", err)
		}
		return nil
	})
}
