package model

import (
	"time"

	"planboard.com/planboard/internal/constants"
)

type Organization struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// OrgMembership links a user to an organization. Only an active
// membership grants access to the organization's workspaces.
type OrgMembership struct {
	ID        string              `gorm:"primaryKey;size:36" json:"id"`
	OrgID     string              `gorm:"size:36;index:idx_org_user,unique" json:"org_id"`
	UserID    string              `gorm:"size:36;index:idx_org_user,unique" json:"user_id"`
	Role      constants.OrgRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status    constants.OrgStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}
