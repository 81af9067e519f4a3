package model

import (
	"time"

	"planboard.com/planboard/internal/constants"
)

// Task is the central planner entity. A task with no plan is an
// "idea"; its user/workspace fields are then authoritative, otherwise
// they mirror the owning plan.
type Task struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	DailyPlanID *string `gorm:"size:36;index" json:"daily_plan_id,omitempty"`
	UserID      string  `gorm:"size:36;index;not null" json:"user_id"`
	WorkspaceID string  `gorm:"size:36;index;not null" json:"workspace_id"`

	Title            string               `gorm:"not null" json:"title"`
	Category         string               `json:"category,omitempty"`
	EstimatedMinutes *int                 `json:"estimated_minutes,omitempty"`
	ActualMinutes    *int                 `json:"actual_minutes,omitempty"`
	Status           constants.TaskStatus `gorm:"type:varchar(20);not null" json:"status"`
	Notes            string               `json:"notes,omitempty"`
	Priority         constants.Priority   `gorm:"type:varchar(10);not null;default:none" json:"priority"`
	DueDate          *time.Time           `gorm:"type:date" json:"due_date,omitempty"`
	StartTime        *time.Time           `json:"start_time,omitempty"`
	EndTime          *time.Time           `json:"end_time,omitempty"`
	Position         int                  `gorm:"default:0" json:"position"`

	RecurrenceRule      *constants.RecurrenceRule `gorm:"type:varchar(30)" json:"recurrence_rule,omitempty"`
	RecurrenceTime      *string                   `gorm:"type:varchar(5)" json:"recurrence_time,omitempty"`
	RecurrenceActive    bool                      `gorm:"default:false" json:"recurrence_active"`
	RecurrenceParentID  *string                   `gorm:"size:36;index" json:"recurrence_parent_id,omitempty"`
	RecurrenceStartDate *time.Time                `gorm:"type:date" json:"recurrence_start_date,omitempty"`
	RepeatTill          *time.Time                `gorm:"type:date" json:"repeat_till,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Subtasks    []Subtask    `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"subtasks,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// Locked reports whether the task sits in a terminal status. A locked
// task accepts no edit other than reinstatement to planned.
func (t *Task) Locked() bool {
	return t.Status.Terminal()
}

func (t *Task) IsTemplate() bool {
	return t.RecurrenceParentID == nil && t.RecurrenceRule != nil
}

func (t *Task) IsInstance() bool {
	return t.RecurrenceParentID != nil
}

// Subtask mirrors the parent task's scheduling fields at a finer
// grain; its start/end derive from the parent plan's date.
type Subtask struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	TaskID           string     `gorm:"size:36;index;not null" json:"task_id"`
	Title            string     `gorm:"not null" json:"title"`
	Done             bool       `gorm:"default:false" json:"done"`
	EstimatedMinutes *int       `json:"estimated_minutes,omitempty"`
	ActualMinutes    *int       `json:"actual_minutes,omitempty"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Attachment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    string    `gorm:"size:36;index;not null" json:"task_id"`
	FileName  string    `gorm:"not null" json:"file_name"`
	FileURL   string    `gorm:"not null" json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
}
