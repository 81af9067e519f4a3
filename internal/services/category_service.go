package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	dto "planboard.com/planboard/internal/data_models"
	apperrors "planboard.com/planboard/internal/errors"
	model "planboard.com/planboard/internal/models"
	repository "planboard.com/planboard/internal/repositories"
)

// CategoryService gates category management behind workspace-manage
// permission and keeps the name reference on tasks consistent.
type CategoryService struct {
	categories *repository.CategoryRepository
	access     *AccessService
}

func NewCategoryService(categories *repository.CategoryRepository, access *AccessService) *CategoryService {
	return &CategoryService{categories: categories, access: access}
}

func (s *CategoryService) List(ctx context.Context, userID, workspaceID string) ([]model.Category, error) {
	if _, ok, err := s.access.Resolve(ctx, userID, workspaceID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.ErrForbidden
	}
	return s.categories.ListByWorkspace(ctx, workspaceID)
}

func (s *CategoryService) Create(ctx context.Context, userID, workspaceID string, req dto.CreateCategoryRequest) (*model.Category, error) {
	if err := s.authorizeManage(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperrors.New(http.StatusBadRequest, "category name is required")
	}

	existing, err := s.categories.FindByName(ctx, workspaceID, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &model.Category{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Color:       req.Color,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update renames and/or recolors a category. A rename cascades to all
// tasks referencing the old name.
func (s *CategoryService) Update(ctx context.Context, userID, workspaceID, categoryID string, req dto.UpdateCategoryRequest) (*model.Category, error) {
	if err := s.authorizeManage(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.WorkspaceID != workspaceID {
		return nil, apperrors.ErrCategoryNotFound
	}

	if req.Name != nil && *req.Name != category.Name {
		if *req.Name == "" {
			return nil, apperrors.New(http.StatusBadRequest, "category name is required")
		}
		existing, err := s.categories.FindByName(ctx, workspaceID, *req.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperrors.ErrDuplicateCategory
		}
		if err := s.categories.Rename(ctx, category, *req.Name); err != nil {
			return nil, err
		}
	}

	if req.Color != nil {
		if err := s.categories.SetColor(ctx, category, *req.Color); err != nil {
			return nil, err
		}
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, userID, workspaceID, categoryID string) error {
	if err := s.authorizeManage(ctx, userID, workspaceID); err != nil {
		return err
	}
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category.WorkspaceID != workspaceID {
		return apperrors.ErrCategoryNotFound
	}
	return s.categories.Delete(ctx, category.ID)
}

func (s *CategoryService) authorizeManage(ctx context.Context, userID, workspaceID string) error {
	ok, err := s.access.ResolveManage(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrForbidden
	}
	return nil
}
