package wbs

import "time"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Comment struct {
	ID        string    `yaml:"id" json:"id"`
	Author    string    `yaml:"author" json:"author"`
	Content   string    `yaml:"content" json:"content"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
}

// Task is one node of a work breakdown structure. A Task owns its Children;
// Dependencies only reference other tasks by id and may dangle.
//
// Progress is authoritative for leaves only. For a task with children it is
// overwritten by Recalc, as is the overdue flag of every task.
type Task struct {
	ID             string    `yaml:"id" json:"id"`
	Name           string    `yaml:"name" json:"name"`
	Description    string    `yaml:"description,omitempty" json:"description,omitempty"`
	Assignee       string    `yaml:"assignee,omitempty" json:"assignee,omitempty"`
	Progress       float64   `yaml:"progress" json:"progress"`
	StartDate      Date      `yaml:"start_date" json:"start_date"`
	EndDate        Date      `yaml:"end_date" json:"end_date"`
	Duration       int       `yaml:"duration" json:"duration"`
	EstimatedHours float64   `yaml:"estimated_hours,omitempty" json:"estimated_hours,omitempty"`
	ActualHours    float64   `yaml:"actual_hours,omitempty" json:"actual_hours,omitempty"`
	Priority       Priority  `yaml:"priority,omitempty" json:"priority,omitempty"`
	Status         Status    `yaml:"status,omitempty" json:"status,omitempty"`
	Dependencies   []string  `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Children       []Task    `yaml:"children,omitempty" json:"children,omitempty"`
	Expanded       bool      `yaml:"expanded,omitempty" json:"expanded,omitempty"`
	IsMilestone    bool      `yaml:"is_milestone,omitempty" json:"is_milestone,omitempty"`
	Level          int       `yaml:"level" json:"level"`
	Comments       []Comment `yaml:"comments,omitempty" json:"comments,omitempty"`

	overdue bool
}

func (t Task) IsLeaf() bool {
	return len(t.Children) == 0
}

// IsOverdue reports the flag computed by the last MarkOverdue pass.
func (t Task) IsOverdue() bool {
	return t.overdue
}
