package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "planboard.com/planboard/internal/data_models"
	middleware "planboard.com/planboard/internal/http/middlewares"
	"planboard.com/planboard/internal/http/validators"
	"planboard.com/planboard/internal/services"
)

// ListTeamPlans serves the oversight view: every plan the caller may
// see in the workspace for one date.
func (h *Handler) ListTeamPlans(c echo.Context) error {
	date, err := services.ParseDate(c.QueryParam("date"))
	if err != nil {
		return httpError(err)
	}

	plans, err := h.planService.TeamPlans(c.Request().Context(), middleware.UserID(c), c.Param("id"), date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(plans),
		"plans": plans,
	})
}

func (h *Handler) ListIdeas(c echo.Context) error {
	tasks, err := h.taskService.ListIdeas(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.categoryService.List(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count":      len(categories),
		"categories": categories,
	})
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req dto.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	category, err := h.categoryService.Create(c.Request().Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	var req dto.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	category, err := h.categoryService.Update(
		c.Request().Context(), middleware.UserID(c), c.Param("id"), c.Param("categoryId"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	err := h.categoryService.Delete(
		c.Request().Context(), middleware.UserID(c), c.Param("id"), c.Param("categoryId"))
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// TransferWorkspace moves a workspace's contents into another
// workspace of the same shape.
func (h *Handler) TransferWorkspace(c echo.Context) error {
	var req dto.TransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateTransferRequest(&req); err != nil {
		return err
	}

	err := h.workspaceService.Transfer(
		c.Request().Context(), middleware.UserID(c), c.Param("id"), req.TargetWorkspaceID)
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
