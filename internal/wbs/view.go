package wbs

import (
	"fmt"
	"time"
)

// Row is one visible line of the flattened tree. Its index in the slice
// returned by Flatten is the only vertical coordinate used downstream.
type Row struct {
	Task        Task
	Depth       int
	HasChildren bool
}

// Flatten lists the visible tasks in pre-order. The children of a task are
// listed only when the task is expanded, so collapsing a task hides its
// entire subtree whatever the flags below it say.
func Flatten(forest []Task) []Row {
	var rows []Row
	var visit func(tasks []Task, depth int)
	visit = func(tasks []Task, depth int) {
		for _, t := range tasks {
			rows = append(rows, Row{Task: t, Depth: depth, HasChildren: !t.IsLeaf()})
			if t.Expanded {
				visit(t.Children, depth+1)
			}
		}
	}
	visit(forest, 0)
	return rows
}

// Window is the horizontal range of the timeline, SpanDays days starting at
// Start.
type Window struct {
	Start    time.Time
	SpanDays int
}

var DefaultWindow = Window{
	Start:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	SpanDays: 90,
}

// Position is a bar on the timeline in percent of the window width. Values
// are not clamped: bars outside the window are negative or above 100.
type Position struct {
	Left      float64 `json:"left"`
	Width     float64 `json:"width"`
	Milestone bool    `json:"milestone,omitempty"`
}

func (p Position) Right() float64 {
	return p.Left + p.Width
}

// TaskPosition maps the task's start date and duration onto the window.
// Milestones are points and have zero width. ok is false when the start date
// does not parse or the window is empty.
func (w Window) TaskPosition(t Task) (Position, bool) {
	start, ok := t.StartDate.Time()
	if !ok || w.SpanDays <= 0 {
		return Position{}, false
	}
	pos := Position{
		Left:      w.percent(float64(daysBetween(midnight(w.Start), start))),
		Milestone: t.IsMilestone,
	}
	if !t.IsMilestone {
		pos.Width = w.percent(float64(t.Duration))
	}
	return pos, true
}

// TodayPosition maps the calendar day of today onto the window.
func (w Window) TodayPosition(today time.Time) float64 {
	if w.SpanDays <= 0 {
		return 0
	}
	return w.percent(float64(daysBetween(midnight(w.Start), midnight(today))))
}

func (w Window) percent(days float64) float64 {
	return days / float64(w.SpanDays) * 100
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a dependency drawn from the predecessor row From to the successor
// row To. Points holds the corners of the elbow: predecessor right edge,
// the two ends of the vertical segment, successor left edge.
type Edge struct {
	From   int      `json:"from"`
	To     int      `json:"to"`
	FromID string   `json:"from_id"`
	ToID   string   `json:"to_id"`
	Points [4]Point `json:"points"`
	Path   string   `json:"path"`
}

// EdgeLayout holds the vertical metrics of the rows edges are drawn over.
type EdgeLayout struct {
	RowHeight float64
}

var DefaultEdgeLayout = EdgeLayout{RowHeight: 48}

func (l EdgeLayout) rowCenter(index int) float64 {
	return float64(index)*l.RowHeight + l.RowHeight/2
}

// ResolveEdges routes one elbow path per declared dependency between two
// visible rows. Predecessors that are missing or hidden behind a collapsed
// ancestor, and rows without a position, produce no edge. Circular
// dependencies are drawn like any other pair.
func ResolveEdges(rows []Row, w Window, layout EdgeLayout) []Edge {
	var edges []Edge
	for to, row := range rows {
		toPos, ok := w.TaskPosition(row.Task)
		if !ok {
			continue
		}
		seen := make(map[string]struct{}, len(row.Task.Dependencies))
		for _, depID := range row.Task.Dependencies {
			if _, dup := seen[depID]; dup {
				continue
			}
			seen[depID] = struct{}{}

			from := rowIndex(rows, depID)
			if from < 0 {
				continue
			}
			fromPos, ok := w.TaskPosition(rows[from].Task)
			if !ok {
				continue
			}
			edges = append(edges, elbow(from, to, depID, row.Task.ID, fromPos, toPos, layout))
		}
	}
	return edges
}

func rowIndex(rows []Row, id string) int {
	for i, r := range rows {
		if r.Task.ID == id {
			return i
		}
	}
	return -1
}

func elbow(from, to int, fromID, toID string, fromPos, toPos Position, layout EdgeLayout) Edge {
	x1, y1 := fromPos.Right(), layout.rowCenter(from)
	x2, y2 := toPos.Left, layout.rowCenter(to)
	xm := (x1 + x2) / 2
	return Edge{
		From:   from,
		To:     to,
		FromID: fromID,
		ToID:   toID,
		Points: [4]Point{{x1, y1}, {xm, y1}, {xm, y2}, {x2, y2}},
		Path:   fmt.Sprintf("M %s %s H %s V %s H %s", num(x1), num(y1), num(xm), num(y2), num(x2)),
	}
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
