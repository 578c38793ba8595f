package wbs

import (
	"math"
	"time"
)

// RollupProgress recomputes the progress of task and every descendant with
// children as the weighted mean of its children's progress. Leaves are
// returned unchanged.
//
// The weight source is chosen once per parent from its rolled-up children:
// estimated hours if any child has some, else duration if any child has
// some, else one per child.
func RollupProgress(task Task) Task {
	if task.IsLeaf() {
		return task
	}
	children := make([]Task, len(task.Children))
	for i, c := range task.Children {
		children[i] = RollupProgress(c)
	}

	weight := uniformWeight
	switch {
	case anyChild(children, func(c Task) bool { return c.EstimatedHours > 0 }):
		weight = hoursWeight
	case anyChild(children, func(c Task) bool { return c.Duration > 0 }):
		weight = durationWeight
	}

	var sum, total float64
	for _, c := range children {
		w := weight(c)
		sum += c.Progress * w
		total += w
	}
	task.Progress = 0
	if total > 0 {
		task.Progress = round2(sum / total)
	}
	task.Children = children
	return task
}

func hoursWeight(t Task) float64    { return t.EstimatedHours }
func durationWeight(t Task) float64 { return float64(t.Duration) }
func uniformWeight(Task) float64    { return 1 }

func anyChild(children []Task, pred func(Task) bool) bool {
	for _, c := range children {
		if pred(c) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MarkOverdue sets the overdue flag of task and all of its descendants. A
// task is overdue when its end date parses, its progress is below 100 and
// its end date is strictly before the calendar day of today. Each task is
// classified on its own; flags do not propagate between levels.
func MarkOverdue(task Task, today time.Time) Task {
	return markOverdue(task, midnight(today))
}

func markOverdue(task Task, today time.Time) Task {
	end, ok := task.EndDate.Time()
	task.overdue = ok && task.Progress < 100 && end.Before(today)
	if task.IsLeaf() {
		return task
	}
	children := make([]Task, len(task.Children))
	for i, c := range task.Children {
		children[i] = markOverdue(c, today)
	}
	task.Children = children
	return task
}

// Recalc rolls up progress and then classifies overdue tasks for every root
// of the forest. It must run after every edit before the forest is stored
// or rendered.
func Recalc(forest []Task, today time.Time) []Task {
	out := make([]Task, len(forest))
	for i, t := range forest {
		out[i] = MarkOverdue(RollupProgress(t), today)
	}
	return out
}

// OverdueIDs lists the ids of overdue tasks in pre-order.
func OverdueIDs(forest []Task) []string {
	var ids []string
	Walk(forest, func(t Task, _ int) bool {
		if t.overdue {
			ids = append(ids, t.ID)
		}
		return true
	})
	return ids
}
