package dto

import "planboard.com/planboard/internal/patch"

type CreateTaskRequest struct {
	WorkspaceID      string  `json:"workspace_id"`
	PlanDate         *string `json:"plan_date,omitempty"`
	Title            string  `json:"title"`
	Category         string  `json:"category,omitempty"`
	Notes            string  `json:"notes,omitempty"`
	Priority         string  `json:"priority,omitempty"`
	EstimatedMinutes *int    `json:"estimated_minutes,omitempty"`
	StartTime        *string `json:"start_time,omitempty"`
	DueDate          *string `json:"due_date,omitempty"`
	Position         *int    `json:"position,omitempty"`
	RecurrenceRule   *string `json:"recurrence_rule,omitempty"`
	RecurrenceTime   *string `json:"recurrence_time,omitempty"`
	RepeatTill       *string `json:"repeat_till,omitempty"`
}

// UpdateTaskRequest is a sparse patch: only fields present in the JSON
// payload are applied, and an explicit null is distinct from absence.
type UpdateTaskRequest struct {
	Title            patch.Field[string] `json:"title"`
	Category         patch.Field[string] `json:"category"`
	Notes            patch.Field[string] `json:"notes"`
	Priority         patch.Field[string] `json:"priority"`
	Status           patch.Field[string] `json:"status"`
	EstimatedMinutes patch.Field[int]    `json:"estimated_minutes"`
	ActualMinutes    patch.Field[int]    `json:"actual_minutes"`
	DueDate          patch.Field[string] `json:"due_date"`
	StartTime        patch.Field[string] `json:"start_time"`
	Position         patch.Field[int]    `json:"position"`
	DailyPlanID      patch.Field[string] `json:"daily_plan_id"`
	RecurrenceRule   patch.Field[string] `json:"recurrence_rule"`
	RecurrenceTime   patch.Field[string] `json:"recurrence_time"`
	RepeatTill       patch.Field[string] `json:"repeat_till"`
	RecurrenceAction patch.Field[string] `json:"recurrence_action"`
}

// TouchesRecurrence reports whether the patch carries any field owned
// by the recurrence manager.
func (r *UpdateTaskRequest) TouchesRecurrence() bool {
	return r.RecurrenceAction.Present() ||
		r.RecurrenceRule.Present() ||
		r.RecurrenceTime.Present() ||
		r.RepeatTill.Present()
}

// ReinstateOnly reports whether the patch is exactly {status:
// "planned"} — the single edit a locked task accepts.
func (r *UpdateTaskRequest) ReinstateOnly() bool {
	if !r.Status.Present() || r.Status.IsNull() || r.Status.Value() != "planned" {
		return false
	}
	others := []bool{
		r.Title.Present(), r.Category.Present(), r.Notes.Present(),
		r.Priority.Present(), r.EstimatedMinutes.Present(), r.ActualMinutes.Present(),
		r.DueDate.Present(), r.StartTime.Present(), r.Position.Present(),
		r.DailyPlanID.Present(), r.RecurrenceRule.Present(), r.RecurrenceTime.Present(),
		r.RepeatTill.Present(), r.RecurrenceAction.Present(),
	}
	for _, present := range others {
		if present {
			return false
		}
	}
	return true
}

type CreateSubtaskRequest struct {
	Title            string  `json:"title"`
	EstimatedMinutes *int    `json:"estimated_minutes,omitempty"`
	StartTime        *string `json:"start_time,omitempty"`
}

type UpdateSubtaskRequest struct {
	Title            patch.Field[string] `json:"title"`
	Done             patch.Field[bool]   `json:"done"`
	EstimatedMinutes patch.Field[int]    `json:"estimated_minutes"`
	ActualMinutes    patch.Field[int]    `json:"actual_minutes"`
	StartTime        patch.Field[string] `json:"start_time"`
}
