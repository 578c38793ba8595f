package project

import (
	"time"

	"github.com/kazz187/wbsgantt/internal/wbs"
)

// Project is one persisted WBS with its timeline settings. Tasks are stored
// with their rolled-up progress. Overdue flags are recomputed on load; only
// the ids already announced as overdue are kept, in NotifiedOverdue.
type Project struct {
	ID             string     `yaml:"id"`
	Name           string     `yaml:"name"`
	Description    string     `yaml:"description,omitempty"`
	WindowStart    wbs.Date   `yaml:"window_start,omitempty"`
	WindowSpanDays int        `yaml:"window_span_days,omitempty"`
	Tasks          []wbs.Task `yaml:"tasks"`
	CreatedAt      time.Time  `yaml:"created_at"`
	UpdatedAt      time.Time  `yaml:"updated_at"`

	// NotifiedOverdue lists the still-overdue tasks a task.overdue event was
	// published for.
	NotifiedOverdue []string `yaml:"notified_overdue,omitempty"`
}

// Window returns the project's timeline, filling unset parts from fallback.
func (p *Project) Window(fallback wbs.Window) wbs.Window {
	w := fallback
	if start, ok := p.WindowStart.Time(); ok {
		w.Start = start
	}
	if p.WindowSpanDays > 0 {
		w.SpanDays = p.WindowSpanDays
	}
	return w
}
