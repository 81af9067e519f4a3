package model

import (
	"time"

	"planboard.com/planboard/internal/constants"
)

type Workspace struct {
	ID        string                  `gorm:"primaryKey;size:36" json:"id"`
	Name      string                  `gorm:"not null" json:"name"`
	Type      constants.WorkspaceType `gorm:"type:varchar(20);not null" json:"type"`
	OrgID     *string                 `gorm:"size:36;index" json:"org_id,omitempty"`
	IsDefault bool                    `gorm:"default:false" json:"is_default"`
	CreatedAt time.Time               `json:"created_at"`
}

// Membership is the direct (user, workspace) role assignment. It wins
// over any organization-level elevation when present.
type Membership struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	UserID      string         `gorm:"size:36;index:idx_user_workspace,unique" json:"user_id"`
	WorkspaceID string         `gorm:"size:36;index:idx_user_workspace,unique" json:"workspace_id"`
	Role        constants.Role `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt   time.Time      `json:"created_at"`
}
