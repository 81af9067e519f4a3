package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "planboard.com/planboard/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))
	e.Use(middleware.Identity())

	e.POST("/tasks", h.CreateTask)
	e.GET("/tasks/:id", h.GetTask)
	e.PATCH("/tasks/:id", h.UpdateTask)
	e.DELETE("/tasks/:id", h.DeleteTask)

	e.POST("/tasks/:id/subtasks", h.CreateSubtask)
	e.PATCH("/tasks/:id/subtasks/:subtaskId", h.UpdateSubtask)
	e.DELETE("/tasks/:id/subtasks/:subtaskId", h.DeleteSubtask)

	e.GET("/plans/:id", h.GetPlan)
	e.PATCH("/plans/:id", h.SetPlanVisibility)
	e.POST("/plans/:id/submit", h.SubmitPlan)
	e.POST("/plans/:id/review", h.ReviewPlan)
	e.GET("/plans/:id/comments", h.ListComments)
	e.POST("/plans/:id/comments", h.CreateComment)

	e.GET("/workspaces/:id/plans", h.ListTeamPlans)
	e.GET("/workspaces/:id/ideas", h.ListIdeas)
	e.GET("/workspaces/:id/categories", h.ListCategories)
	e.POST("/workspaces/:id/categories", h.CreateCategory)
	e.PATCH("/workspaces/:id/categories/:categoryId", h.UpdateCategory)
	e.DELETE("/workspaces/:id/categories/:categoryId", h.DeleteCategory)
	e.POST("/workspaces/:id/transfer", h.TransferWorkspace)
}
