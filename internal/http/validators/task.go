package validators

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "planboard.com/planboard/internal/data_models"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if r.WorkspaceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workspace_id is required")
	}
	if r.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if r.Position != nil && *r.Position < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "position must be positive")
	}
	return nil
}

func ValidateTransferRequest(r *dto.TransferRequest) error {
	if r.TargetWorkspaceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "target_workspace_id is required")
	}
	return nil
}
