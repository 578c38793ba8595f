package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/kazz187/wbsgantt/internal/project"
	"github.com/kazz187/wbsgantt/internal/wbs"
	"github.com/kazz187/wbsgantt/pkg/storage"
)

var errInvalid = errors.New("project file is invalid")

type cli struct {
	out   io.Writer
	today time.Time
}

func loadProject(file string) (*project.Project, []byte, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	var p project.Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}
	p.Tasks = wbs.Relevel(p.Tasks)
	return &p, data, nil
}

func (c *cli) recalc(ctx context.Context, file string, diff, write bool) error {
	p, before, err := loadProject(file)
	if err != nil {
		return err
	}
	p.Tasks = wbs.Recalc(p.Tasks, c.today)
	after, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	if diff {
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(before)),
			B:        difflib.SplitLines(string(after)),
			FromFile: file,
			ToFile:   file + " (recalculated)",
			Context:  3,
		})
		if err != nil {
			return fmt.Errorf("failed to diff: %w", err)
		}
		printDiff(c.out, text)
	} else if !write {
		if _, err := c.out.Write(after); err != nil {
			return err
		}
	}

	if write {
		dir, err := storage.NewLocalStorage(filepath.Dir(file))
		if err != nil {
			return err
		}
		if err := dir.Write(ctx, filepath.Base(file), after); err != nil {
			return err
		}
		fmt.Fprintln(c.out, color.GreenString("wrote %s", file))
	}
	return nil
}

func printDiff(w io.Writer, text string) {
	if text == "" {
		return
	}
	for _, line := range difflib.SplitLines(text) {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(w, color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(w, color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(w, color.RedString("%s", line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprint(w, color.CyanString("%s", line))
		default:
			fmt.Fprint(w, line)
		}
	}
}

func rowMarker(row wbs.Row) string {
	switch {
	case !row.HasChildren:
		return " "
	case row.Task.Expanded:
		return "-"
	default:
		return "+"
	}
}

func rowName(row wbs.Row) string {
	name := fmt.Sprintf("%s%s %s %s", strings.Repeat("  ", row.Depth), rowMarker(row), row.Task.ID, row.Task.Name)
	if row.Task.IsMilestone {
		name += " ◆"
	}
	return name
}

func (c *cli) flatten(file string) error {
	p, _, err := loadProject(file)
	if err != nil {
		return err
	}
	p.Tasks = wbs.Recalc(p.Tasks, c.today)
	for _, row := range wbs.Flatten(p.Tasks) {
		progress := fmt.Sprintf("%6.2f%%", row.Task.Progress)
		if row.Task.IsOverdue() {
			progress = color.RedString("%s overdue", progress)
		}
		fmt.Fprintf(c.out, "%-40s %s\n", rowName(row), progress)
	}
	return nil
}

func (c *cli) gantt(file string, width int, edges bool) error {
	if width <= 0 {
		return fmt.Errorf("width must be positive, got %d", width)
	}
	p, _, err := loadProject(file)
	if err != nil {
		return err
	}
	p.Tasks = wbs.Recalc(p.Tasks, c.today)
	window := p.Window(wbs.DefaultWindow)
	rows := wbs.Flatten(p.Tasks)

	fmt.Fprintf(c.out, "%-40s %s .. %d days\n", "", wbs.DateOf(window.Start), window.SpanDays)
	todayCol := column(window.TodayPosition(c.today), width)
	for _, row := range rows {
		pos, ok := window.TaskPosition(row.Task)
		fmt.Fprintf(c.out, "%-40s |%s|\n", rowName(row), bar(row.Task, pos, ok, width, todayCol))
	}
	if edges {
		for _, e := range wbs.ResolveEdges(rows, window, wbs.DefaultEdgeLayout) {
			fmt.Fprintf(c.out, "%s -> %s  %s\n", e.FromID, e.ToID, e.Path)
		}
	}
	return nil
}

// column maps a percentage of the window onto a chart column. Values outside
// the window map outside [0, width).
func column(percent float64, width int) int {
	return int(math.Floor(percent / 100 * float64(width)))
}

func bar(t wbs.Task, pos wbs.Position, ok bool, width, todayCol int) string {
	cells := make([]string, width)
	for i := range cells {
		cells[i] = " "
	}
	if todayCol >= 0 && todayCol < width {
		cells[todayCol] = color.YellowString("¦")
	}
	if !ok {
		return strings.Join(cells, "")
	}

	paint := color.BlueString
	if t.IsOverdue() {
		paint = color.RedString
	}
	from := column(pos.Left, width)
	if pos.Milestone {
		if from >= 0 && from < width {
			cells[from] = paint("◆")
		}
		return strings.Join(cells, "")
	}
	to := column(pos.Right(), width)
	if to <= from {
		to = from + 1
	}
	done := from + int(math.Round(float64(to-from)*t.Progress/100))
	for i := max(from, 0); i < min(to, width); i++ {
		if i < done {
			cells[i] = paint("█")
		} else {
			cells[i] = paint("░")
		}
	}
	return strings.Join(cells, "")
}

func (c *cli) validate(file string, strict bool) error {
	p, _, err := loadProject(file)
	if err != nil {
		return err
	}
	invalid := false
	if err := wbs.Validate(p.Tasks); err != nil {
		var verr *wbs.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for _, v := range verr.Violations {
			fmt.Fprintln(c.out, color.RedString("✗ %s", v))
		}
		invalid = true
	}
	if cycle := wbs.DependencyCycle(p.Tasks); cycle != nil {
		msg := "dependency cycle: " + strings.Join(cycle, " -> ")
		if strict {
			fmt.Fprintln(c.out, color.RedString("✗ %s", msg))
			invalid = true
		} else {
			fmt.Fprintln(c.out, color.YellowString("! %s", msg))
		}
	}
	if invalid {
		return errInvalid
	}
	fmt.Fprintln(c.out, color.GreenString("✓ %s is valid", file))
	return nil
}

func (c *cli) sample() error {
	p := &project.Project{
		ID:             "sample",
		Name:           "System development",
		WindowStart:    wbs.DateOf(wbs.DefaultWindow.Start),
		WindowSpanDays: wbs.DefaultWindow.SpanDays,
		Tasks:          wbs.Recalc(wbs.SampleForest(), c.today),
		CreatedAt:      c.today,
		UpdatedAt:      c.today,
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	_, err = c.out.Write(data)
	return err
}
