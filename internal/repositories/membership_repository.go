package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	model "planboard.com/planboard/internal/models"
)

// MembershipRepository serves the read-only lookups the permission
// resolver needs. Invites and role management live outside the core.
type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// FindMembership returns the direct workspace membership, or nil when
// the user has none.
func (r *MembershipRepository) FindMembership(ctx context.Context, userID, workspaceID string) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &m, nil
}

// FindOrgMembership returns the org membership regardless of status,
// or nil when the user is not in the organization at all.
func (r *MembershipRepository) FindOrgMembership(ctx context.Context, orgID, userID string) (*model.OrgMembership, error) {
	var m model.OrgMembership
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find org membership: %w", err)
	}
	return &m, nil
}
