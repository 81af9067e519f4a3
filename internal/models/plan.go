package model

import (
	"time"

	"planboard.com/planboard/internal/constants"
)

// DailyPlan holds the tasks one user scheduled for one date in one
// workspace. Created lazily the first time a task lands on that date.
type DailyPlan struct {
	ID          string                   `gorm:"primaryKey;size:36" json:"id"`
	UserID      string                   `gorm:"size:36;index:idx_plan_owner_date,unique" json:"user_id"`
	WorkspaceID string                   `gorm:"size:36;index:idx_plan_owner_date,unique" json:"workspace_id"`
	Date        time.Time                `gorm:"type:date;index:idx_plan_owner_date,unique" json:"date"`
	Visibility  constants.PlanVisibility `gorm:"type:varchar(10);not null;default:team" json:"visibility"`
	Submitted   bool                     `gorm:"default:false" json:"submitted"`
	Reviewed    bool                     `gorm:"default:false" json:"reviewed"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// Comment is attached to a plan, optionally pinned to one of its
// tasks. Immutable once created.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PlanID    string    `gorm:"size:36;index;not null" json:"plan_id"`
	TaskID    *string   `gorm:"size:36;index" json:"task_id,omitempty"`
	AuthorID  string    `gorm:"size:36;not null" json:"author_id"`
	Body      string    `gorm:"not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
