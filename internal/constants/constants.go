package constants

type TaskStatus string

const (
	StatusUnplanned TaskStatus = "unplanned"
	StatusPlanned   TaskStatus = "planned"
	StatusDone      TaskStatus = "done"
	StatusSkipped   TaskStatus = "skipped"
	StatusCancelled TaskStatus = "cancelled"
)

// Terminal statuses lock the task against further edits.
func (s TaskStatus) Terminal() bool {
	return s == StatusDone || s == StatusSkipped || s == StatusCancelled
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusUnplanned, StatusPlanned, StatusDone, StatusSkipped, StatusCancelled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Role string

const (
	RoleMember     Role = "member"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

type OrgRole string

const (
	OrgRoleOwner      OrgRole = "owner"
	OrgRoleAdmin      OrgRole = "admin"
	OrgRoleSupervisor OrgRole = "supervisor"
	OrgRoleMember     OrgRole = "member"
)

// Elevated reports whether the org role grants admin access on the
// organization's workspaces.
func (r OrgRole) Elevated() bool {
	return r == OrgRoleOwner || r == OrgRoleAdmin || r == OrgRoleSupervisor
}

type OrgStatus string

const (
	OrgStatusActive   OrgStatus = "active"
	OrgStatusInvited  OrgStatus = "invited"
	OrgStatusDisabled OrgStatus = "disabled"
)

type WorkspaceType string

const (
	WorkspacePersonal     WorkspaceType = "personal"
	WorkspaceOrganization WorkspaceType = "organization"
)

type PlanVisibility string

const (
	VisibilityTeam    PlanVisibility = "team"
	VisibilityPrivate PlanVisibility = "private"
)

type RecurrenceRule string

const (
	RecurDaily             RecurrenceRule = "daily"
	RecurWeekdays          RecurrenceRule = "weekdays"
	RecurWeekly            RecurrenceRule = "weekly"
	RecurBiweekly          RecurrenceRule = "biweekly"
	RecurMonthly           RecurrenceRule = "monthly"
	RecurMonthlyNthWeekday RecurrenceRule = "monthly_nth_weekday"
)

func (r RecurrenceRule) Valid() bool {
	switch r {
	case RecurDaily, RecurWeekdays, RecurWeekly, RecurBiweekly, RecurMonthly, RecurMonthlyNthWeekday:
		return true
	}
	return false
}
