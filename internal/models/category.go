package model

import "time"

// Category groups tasks inside a workspace. Tasks reference it by
// name, so a rename must cascade to tasks.category.
type Category struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	WorkspaceID string    `gorm:"size:36;index:idx_workspace_category,unique" json:"workspace_id"`
	Name        string    `gorm:"index:idx_workspace_category,unique;not null" json:"name"`
	Color       string    `gorm:"type:varchar(9)" json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}
