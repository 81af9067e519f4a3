package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "planboard.com/planboard/internal/errors"
	model "planboard.com/planboard/internal/models"
)

// CategoryRepository manages per-workspace categories. Tasks refer to
// categories by name, which is why Rename cascades.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, workspaceID, name string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND name = ?", workspaceID, name).
		First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("name asc").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Rename changes the category name and rewrites tasks.category in the
// same transaction, since the reference is by name not id.
func (r *CategoryRepository) Rename(ctx context.Context, category *model.Category, newName string) error {
	oldName := category.Name
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(category).Update("name", newName).Error; err != nil {
			return fmt.Errorf("rename category: %w", err)
		}
		if err := tx.Model(&model.Task{}).
			Where("workspace_id = ? AND category = ?", category.WorkspaceID, oldName).
			Update("category", newName).Error; err != nil {
			return fmt.Errorf("cascade rename to tasks: %w", err)
		}
		return nil
	})
}

func (r *CategoryRepository) SetColor(ctx context.Context, category *model.Category, color string) error {
	if err := r.db.WithContext(ctx).Model(category).Update("color", color).Error; err != nil {
		return fmt.Errorf("set category color: %w", err)
	}
	category.Color = color
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Category{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
