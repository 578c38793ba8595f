package wbs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	out := make([]string, len(verr.Violations))
	for i, v := range verr.Violations {
		out[i] = v.TaskID + "." + v.Field
	}
	return out
}

func TestValidate_SampleForestIsValid(t *testing.T) {
	assert.NoError(t, Validate(SampleForest()))
}

func TestValidate_Violations(t *testing.T) {
	forest := []Task{
		{ID: "a", Name: "a", Progress: 120, StartDate: "2025-02-01", EndDate: "2025-01-01", Children: []Task{
			{ID: "a", Name: "dup"},
			{ID: "b", Name: "", Duration: -1, Priority: "urgent", Status: "done", Dependencies: []string{"b", "missing"}},
			{ID: "c", Name: "c", StartDate: "yesterday", EstimatedHours: -2},
		}},
	}
	got := fields(t, Validate(forest))
	assert.ElementsMatch(t, []string{
		"a.progress",
		"a.end_date",
		"a.id",
		"b.name",
		"b.duration",
		"b.priority",
		"b.status",
		"b.dependencies",
		"c.start_date",
		"c.estimated_hours",
	}, got)
}

func TestPatch_ApplyKeepsAbsentFields(t *testing.T) {
	orig := Task{
		ID: "a", Name: "name", Assignee: "tanaka", Progress: 30,
		StartDate: "2025-01-01", EndDate: "2025-01-10", Duration: 10,
		EstimatedHours: 8, Priority: PriorityLow, Status: StatusNotStarted,
		Dependencies: []string{"x"},
	}
	progress := 60.0
	status := StatusInProgress
	deps := []string{"y", "z"}
	got := Patch{Progress: &progress, Status: &status, Dependencies: &deps}.Apply(orig)

	assert.Equal(t, 60.0, got.Progress)
	assert.Equal(t, StatusInProgress, got.Status)
	assert.Equal(t, []string{"y", "z"}, got.Dependencies)
	assert.Equal(t, "name", got.Name)
	assert.Equal(t, "tanaka", got.Assignee)
	assert.Equal(t, Date("2025-01-10"), got.EndDate)
	assert.Equal(t, PriorityLow, got.Priority)
	assert.Equal(t, 8.0, got.EstimatedHours)

	deps[0] = "mutated"
	assert.Equal(t, "y", got.Dependencies[0])
}

func TestPatch_ProgressOnParentIsOverwrittenByRecalc(t *testing.T) {
	forest := []Task{{ID: "p", Children: []Task{{ID: "c", Progress: 20}}}}
	progress := 90.0
	forest = UpdateTaskByID(forest, "p", Patch{Progress: &progress}.Apply)
	assert.Equal(t, 90.0, forest[0].Progress)
	assert.Equal(t, 20.0, Recalc(forest, testToday)[0].Progress)
}

func TestPatch_Validate(t *testing.T) {
	empty := ""
	progress := -1.0
	bad := Date("2025/01/01")
	prio := Priority("urgent")
	deps := []string{"a"}
	err := Patch{Name: &empty, Progress: &progress, EndDate: &bad, Priority: &prio, Dependencies: &deps}.Validate("a")
	assert.ElementsMatch(t, []string{"a.name", "a.progress", "a.end_date", "a.priority", "a.dependencies"}, fields(t, err))

	ok := 100.0
	assert.NoError(t, Patch{Progress: &ok}.Validate("a"))
}

func TestDependencyCycle(t *testing.T) {
	assert.Nil(t, DependencyCycle(SampleForest()))

	forest := []Task{
		{ID: "a", Dependencies: []string{"c"}},
		{ID: "b", Dependencies: []string{"a", "ghost"}},
		{ID: "c", Dependencies: []string{"b"}},
		{ID: "d", Dependencies: []string{"a"}},
	}
	assert.Equal(t, []string{"a", "b", "c", "a"}, DependencyCycle(forest))

	self := []Task{{ID: "x", Dependencies: []string{"x"}}}
	assert.Equal(t, []string{"x", "x"}, DependencyCycle(self))
}

func TestValidationError_FieldViolations(t *testing.T) {
	verr := &ValidationError{Violations: []Violation{
		{TaskID: "1.2", Field: "progress", Message: "must be between 0 and 100"},
		{Field: "tasks", Message: "forest is empty"},
	}}
	var got [][2]string
	verr.FieldViolations(func(ruleID, msg string) {
		got = append(got, [2]string{ruleID, msg})
	})
	assert.Equal(t, [][2]string{
		{"1.2.progress", "must be between 0 and 100"},
		{"tasks", "forest is empty"},
	}, got)
}
