package dto

type SetVisibilityRequest struct {
	Visibility string `json:"visibility"`
}

type CreateCommentRequest struct {
	TaskID *string `json:"task_id,omitempty"`
	Body   string  `json:"body"`
}

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

type TransferRequest struct {
	TargetWorkspaceID string `json:"target_workspace_id"`
}
