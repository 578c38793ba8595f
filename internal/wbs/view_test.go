package wbs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Task.ID
	}
	return ids
}

func TestFlatten_PreOrderOfExpandedNodes(t *testing.T) {
	forest := []Task{
		{ID: "a", Expanded: true, Children: []Task{
			{ID: "a1"},
			{ID: "a2", Expanded: true, Children: []Task{{ID: "a2x"}}},
		}},
		{ID: "b"},
	}
	rows := Flatten(forest)
	assert.Equal(t, []string{"a", "a1", "a2", "a2x", "b"}, rowIDs(rows))
	assert.Equal(t, 0, rows[0].Depth)
	assert.Equal(t, 1, rows[2].Depth)
	assert.Equal(t, 2, rows[3].Depth)
	assert.True(t, rows[0].HasChildren)
	assert.False(t, rows[1].HasChildren)
}

func TestFlatten_CollapseHidesAllDescendants(t *testing.T) {
	forest := []Task{
		{ID: "a", Expanded: false, Children: []Task{
			{ID: "a1", Expanded: true, Children: []Task{
				{ID: "a1x", Expanded: true},
			}},
		}},
		{ID: "b"},
	}
	assert.Equal(t, []string{"a", "b"}, rowIDs(Flatten(forest)))
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
}

func TestWindow_TaskPosition(t *testing.T) {
	w := DefaultWindow

	pos, ok := w.TaskPosition(Task{StartDate: "2025-01-10", Duration: 18})
	require.True(t, ok)
	assert.InDelta(t, 10.0, pos.Left, 1e-9)
	assert.InDelta(t, 20.0, pos.Width, 1e-9)
	assert.InDelta(t, 30.0, pos.Right(), 1e-9)

	pos, ok = w.TaskPosition(Task{StartDate: "2024-12-23", Duration: 180})
	require.True(t, ok)
	assert.InDelta(t, -10.0, pos.Left, 1e-9)
	assert.InDelta(t, 200.0, pos.Width, 1e-9)

	pos, ok = w.TaskPosition(Task{StartDate: "2025-03-31", Duration: 5, IsMilestone: true})
	require.True(t, ok)
	assert.True(t, pos.Milestone)
	assert.Zero(t, pos.Width)
	assert.InDelta(t, 89.0/90*100, pos.Left, 1e-9)

	_, ok = w.TaskPosition(Task{StartDate: "not a date", Duration: 3})
	assert.False(t, ok)

	_, ok = Window{Start: w.Start}.TaskPosition(Task{StartDate: "2025-01-10"})
	assert.False(t, ok)
}

func TestWindow_TodayPosition(t *testing.T) {
	w := DefaultWindow
	assert.InDelta(t, 0.0, w.TodayPosition(time.Date(2025, time.January, 1, 23, 0, 0, 0, time.UTC)), 1e-9)
	assert.InDelta(t, 50.0, w.TodayPosition(time.Date(2025, time.February, 15, 8, 0, 0, 0, time.UTC)), 1e-9)
	assert.InDelta(t, -100.0/90, w.TodayPosition(time.Date(2024, time.December, 31, 12, 0, 0, 0, time.UTC)), 1e-9)
}

func TestResolveEdges_ElbowPath(t *testing.T) {
	rows := Flatten([]Task{
		{ID: "a", StartDate: "2025-01-01", Duration: 9},
		{ID: "b", StartDate: "2025-01-19", Duration: 9, Dependencies: []string{"a"}},
	})
	edges := ResolveEdges(rows, DefaultWindow, DefaultEdgeLayout)
	require.Len(t, edges, 1)

	e := edges[0]
	assert.Equal(t, 0, e.From)
	assert.Equal(t, 1, e.To)
	assert.Equal(t, "a", e.FromID)
	assert.Equal(t, "b", e.ToID)
	assert.InDelta(t, 10.0, e.Points[0].X, 1e-9)
	assert.InDelta(t, 24.0, e.Points[0].Y, 1e-9)
	assert.InDelta(t, 15.0, e.Points[1].X, 1e-9)
	assert.InDelta(t, 72.0, e.Points[2].Y, 1e-9)
	assert.InDelta(t, 20.0, e.Points[3].X, 1e-9)
	assert.Equal(t, "M 10.00 24.00 H 15.00 V 72.00 H 20.00", e.Path)
}

func TestResolveEdges_DanglingDependency(t *testing.T) {
	rows := Flatten([]Task{
		{ID: "a", StartDate: "2025-01-01", Duration: 9, Dependencies: []string{"ghost"}},
	})
	assert.Empty(t, ResolveEdges(rows, DefaultWindow, DefaultEdgeLayout))
}

func TestResolveEdges_HiddenPredecessor(t *testing.T) {
	rows := Flatten([]Task{
		{ID: "a", StartDate: "2025-01-01", Duration: 9, Children: []Task{
			{ID: "a1", StartDate: "2025-01-01", Duration: 3},
		}},
		{ID: "b", StartDate: "2025-01-19", Duration: 9, Dependencies: []string{"a1", "a"}},
	})
	edges := ResolveEdges(rows, DefaultWindow, DefaultEdgeLayout)
	require.Len(t, edges, 1)
	assert.Equal(t, "a", edges[0].FromID)
}

func TestResolveEdges_DuplicatesAndCycles(t *testing.T) {
	rows := Flatten([]Task{
		{ID: "a", StartDate: "2025-01-01", Duration: 2, Dependencies: []string{"b"}},
		{ID: "b", StartDate: "2025-01-05", Duration: 2, Dependencies: []string{"a", "a"}},
	})
	edges := ResolveEdges(rows, DefaultWindow, DefaultEdgeLayout)
	require.Len(t, edges, 2)
	assert.Equal(t, 1, edges[0].From)
	assert.Equal(t, 0, edges[0].To)
	assert.Equal(t, 0, edges[1].From)
	assert.Equal(t, 1, edges[1].To)
}

func TestResolveEdges_SkipsUnpositionedRows(t *testing.T) {
	rows := Flatten([]Task{
		{ID: "a", Duration: 2},
		{ID: "b", StartDate: "2025-01-05", Duration: 2, Dependencies: []string{"a"}},
	})
	assert.Empty(t, ResolveEdges(rows, DefaultWindow, DefaultEdgeLayout))
}
