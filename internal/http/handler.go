package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "planboard.com/planboard/internal/data_models"
	apperrors "planboard.com/planboard/internal/errors"
	middleware "planboard.com/planboard/internal/http/middlewares"
	"planboard.com/planboard/internal/http/validators"
	"planboard.com/planboard/internal/services"
)

type Handler struct {
	taskService      *services.TaskService
	planService      *services.PlanService
	categoryService  *services.CategoryService
	workspaceService *services.WorkspaceService
}

func NewHandler(
	taskService *services.TaskService,
	planService *services.PlanService,
	categoryService *services.CategoryService,
	workspaceService *services.WorkspaceService,
) *Handler {
	return &Handler{
		taskService:      taskService,
		planService:      planService,
		categoryService:  categoryService,
		workspaceService: workspaceService,
	}
}

// httpError translates service errors to echo responses, hiding
// anything that is not a deliberate Exception.
func httpError(err error) *echo.HTTPError {
	code := apperrors.StatusCode(err)
	if code == http.StatusInternalServerError {
		return echo.NewHTTPError(code, "internal error")
	}
	return echo.NewHTTPError(code, err.Error())
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return httpError(apperrors.ErrTaskIDRequired)
	}

	task, err := h.taskService.GetTask(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return httpError(apperrors.ErrTaskIDRequired)
	}

	var req dto.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), middleware.UserID(c), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return httpError(apperrors.ErrTaskIDRequired)
	}
	all := c.QueryParam("scope") == "all"

	if err := h.taskService.DeleteTask(c.Request().Context(), middleware.UserID(c), id, all); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateSubtask(c echo.Context) error {
	var req dto.CreateSubtaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	subtask, err := h.taskService.CreateSubtask(c.Request().Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, subtask)
}

func (h *Handler) UpdateSubtask(c echo.Context) error {
	var req dto.UpdateSubtaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	subtask, err := h.taskService.UpdateSubtask(
		c.Request().Context(), middleware.UserID(c), c.Param("id"), c.Param("subtaskId"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, subtask)
}

func (h *Handler) DeleteSubtask(c echo.Context) error {
	err := h.taskService.DeleteSubtask(
		c.Request().Context(), middleware.UserID(c), c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
