package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "planboard.com/planboard/internal/data_models"
	middleware "planboard.com/planboard/internal/http/middlewares"
)

func (h *Handler) GetPlan(c echo.Context) error {
	plan, tasks, err := h.planService.GetPlan(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"plan":  plan,
		"tasks": tasks,
	})
}

func (h *Handler) SubmitPlan(c echo.Context) error {
	plan, err := h.planService.Submit(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) ReviewPlan(c echo.Context) error {
	plan, err := h.planService.Review(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) SetPlanVisibility(c echo.Context) error {
	var req dto.SetVisibilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	plan, err := h.planService.SetVisibility(c.Request().Context(), middleware.UserID(c), c.Param("id"), req.Visibility)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) CreateComment(c echo.Context) error {
	var req dto.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	comment, err := h.planService.AddComment(c.Request().Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListComments(c echo.Context) error {
	comments, err := h.planService.Comments(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count":    len(comments),
		"comments": comments,
	})
}
