package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "planboard.com/planboard/internal/errors"
	model "planboard.com/planboard/internal/models"
)

type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *model.Subtask) error {
	if err := r.db.WithContext(ctx).Create(subtask).Error; err != nil {
		return fmt.Errorf("create subtask: %w", err)
	}
	return nil
}

func (r *SubtaskRepository) FindByID(ctx context.Context, taskID, id string) (*model.Subtask, error) {
	var subtask model.Subtask
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND id = ?", taskID, id).
		First(&subtask).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrSubtaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find subtask: %w", err)
	}
	return &subtask, nil
}

func (r *SubtaskRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Subtask{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update subtask: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrSubtaskNotFound
	}
	return nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, taskID, id string) error {
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND id = ?", taskID, id).
		Delete(&model.Subtask{}).Error; err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}
	return nil
}
