package wbs

import (
	"container/heap"
	"fmt"
	"strings"
)

// Violation describes one rejected field of one task.
type Violation struct {
	TaskID  string
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.TaskID == "" {
		return fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return fmt.Sprintf("task %s: %s: %s", v.TaskID, v.Field, v.Message)
}

// ValidationError collects every violation found in one pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "invalid task tree: " + strings.Join(msgs, "; ")
}

// FieldViolations yields each violation keyed "<task id>.<field>", or just
// the field for rules that apply to the whole forest.
func (e *ValidationError) FieldViolations(yield func(ruleID, msg string)) {
	for _, v := range e.Violations {
		ruleID := v.Field
		if v.TaskID != "" {
			ruleID = v.TaskID + "." + v.Field
		}
		yield(ruleID, v.Message)
	}
}

type violations []Violation

func (v *violations) add(taskID, field, msg string) {
	*v = append(*v, Violation{TaskID: taskID, Field: field, Message: msg})
}

func (v *violations) checkProgress(taskID string, p float64) {
	if p < 0 || p > 100 {
		v.add(taskID, "progress", "must be between 0 and 100")
	}
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Violations: v}
}

// Validate checks a forest at ingestion. The engine itself never calls it:
// it assumes unique ids and tolerates everything else.
//
// Empty priority, status and dates are allowed. Dangling dependencies are
// allowed.
func Validate(forest []Task) error {
	var v violations
	seen := make(map[string]struct{})
	Walk(forest, func(t Task, _ int) bool {
		if t.ID == "" {
			v.add("", "id", "must not be empty")
		} else if _, dup := seen[t.ID]; dup {
			v.add(t.ID, "id", "is not unique")
		}
		seen[t.ID] = struct{}{}

		if t.Name == "" {
			v.add(t.ID, "name", "must not be empty")
		}
		v.checkProgress(t.ID, t.Progress)
		if t.Duration < 0 {
			v.add(t.ID, "duration", "must not be negative")
		}
		if t.EstimatedHours < 0 {
			v.add(t.ID, "estimated_hours", "must not be negative")
		}
		if t.ActualHours < 0 {
			v.add(t.ID, "actual_hours", "must not be negative")
		}
		if t.Priority != "" && !t.Priority.Valid() {
			v.add(t.ID, "priority", fmt.Sprintf("unknown priority %q", t.Priority))
		}
		if t.Status != "" && !t.Status.Valid() {
			v.add(t.ID, "status", fmt.Sprintf("unknown status %q", t.Status))
		}

		start, startOK := t.StartDate.Time()
		end, endOK := t.EndDate.Time()
		if t.StartDate != "" && !startOK {
			v.add(t.ID, "start_date", fmt.Sprintf("cannot parse %q", t.StartDate))
		}
		if t.EndDate != "" && !endOK {
			v.add(t.ID, "end_date", fmt.Sprintf("cannot parse %q", t.EndDate))
		}
		if startOK && endOK && end.Before(start) {
			v.add(t.ID, "end_date", "must not be before start_date")
		}
		for _, dep := range t.Dependencies {
			if dep == t.ID {
				v.add(t.ID, "dependencies", "a task cannot depend on itself")
			}
		}
		return true
	})
	return v.err()
}

// DependencyCycle returns one cycle among the dependency references of the
// forest as a path of task ids that starts and ends with the same id, or nil
// when the dependencies form a DAG. References to missing ids are ignored.
// The witness is deterministic for a given forest.
func DependencyCycle(forest []Task) []string {
	g := newDepGraph(forest)
	if len(g.topoOrder()) == len(g.ids) {
		return nil
	}
	return g.findCycle()
}

// depGraph indexes tasks in pre-order; outgoing edges run from a
// predecessor to the tasks that depend on it.
type depGraph struct {
	ids      []string
	outgoing [][]int
	indeg    []int
}

func newDepGraph(forest []Task) *depGraph {
	g := &depGraph{}
	index := make(map[string]int)
	var deps [][]string
	Walk(forest, func(t Task, _ int) bool {
		if _, dup := index[t.ID]; dup {
			return true
		}
		index[t.ID] = len(g.ids)
		g.ids = append(g.ids, t.ID)
		deps = append(deps, t.Dependencies)
		return true
	})
	g.outgoing = make([][]int, len(g.ids))
	g.indeg = make([]int, len(g.ids))
	for to, ds := range deps {
		seen := make(map[int]struct{})
		for _, d := range ds {
			from, ok := index[d]
			if !ok {
				continue
			}
			if _, dup := seen[from]; dup {
				continue
			}
			seen[from] = struct{}{}
			g.outgoing[from] = append(g.outgoing[from], to)
			g.indeg[to]++
		}
	}
	return g
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrder is Kahn's algorithm with a min-heap ready queue.
func (g *depGraph) topoOrder() []int {
	indeg := make([]int, len(g.indeg))
	copy(indeg, g.indeg)

	ready := &intMinHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}
	out := make([]int, 0, len(indeg))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range g.outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

func (g *depGraph) findCycle() []string {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(g.ids))
	parent := make([]int, len(g.ids))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.outgoing[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// back edge u -> v closes v ... u -> v
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}
	for i := range g.ids {
		if color[i] == white && dfs(i) {
			break
		}
	}
	if len(cycle) == 0 {
		return nil
	}

	// cycle was collected backwards along parent links
	path := make([]string, len(cycle))
	for i, n := range cycle {
		path[len(cycle)-1-i] = g.ids[n]
	}
	return path
}
