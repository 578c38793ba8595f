package wbs

import "slices"

// Patch is a partial edit of one task. Nil fields leave the current value
// untouched.
type Patch struct {
	Name           *string   `json:"name,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Assignee       *string   `json:"assignee,omitempty"`
	Progress       *float64  `json:"progress,omitempty"`
	StartDate      *Date     `json:"start_date,omitempty"`
	EndDate        *Date     `json:"end_date,omitempty"`
	Duration       *int      `json:"duration,omitempty"`
	EstimatedHours *float64  `json:"estimated_hours,omitempty"`
	ActualHours    *float64  `json:"actual_hours,omitempty"`
	Priority       *Priority `json:"priority,omitempty"`
	Status         *Status   `json:"status,omitempty"`
	Dependencies   *[]string `json:"dependencies,omitempty"`
	IsMilestone    *bool     `json:"is_milestone,omitempty"`
}

// Apply returns t with the patch applied. A progress value on a task with
// children is accepted but is replaced by the next Recalc.
func (p Patch) Apply(t Task) Task {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
	if p.ActualHours != nil {
		t.ActualHours = *p.ActualHours
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Dependencies != nil {
		t.Dependencies = slices.Clone(*p.Dependencies)
	}
	if p.IsMilestone != nil {
		t.IsMilestone = *p.IsMilestone
	}
	return t
}

// Validate checks the patched fields in isolation. Cross-field rules such as
// the date order are checked by Validate on the resulting forest.
func (p Patch) Validate(taskID string) error {
	var v violations
	if p.Name != nil && *p.Name == "" {
		v.add(taskID, "name", "must not be empty")
	}
	if p.Progress != nil {
		v.checkProgress(taskID, *p.Progress)
	}
	if p.StartDate != nil && !p.StartDate.Valid() {
		v.add(taskID, "start_date", "must be a date in YYYY-MM-DD form")
	}
	if p.EndDate != nil && !p.EndDate.Valid() {
		v.add(taskID, "end_date", "must be a date in YYYY-MM-DD form")
	}
	if p.Duration != nil && *p.Duration < 0 {
		v.add(taskID, "duration", "must not be negative")
	}
	if p.EstimatedHours != nil && *p.EstimatedHours < 0 {
		v.add(taskID, "estimated_hours", "must not be negative")
	}
	if p.ActualHours != nil && *p.ActualHours < 0 {
		v.add(taskID, "actual_hours", "must not be negative")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		v.add(taskID, "priority", "must be one of high, medium, low")
	}
	if p.Status != nil && !p.Status.Valid() {
		v.add(taskID, "status", "must be one of not-started, in-progress, completed")
	}
	if p.Dependencies != nil && slices.Contains(*p.Dependencies, taskID) {
		v.add(taskID, "dependencies", "a task cannot depend on itself")
	}
	return v.err()
}
