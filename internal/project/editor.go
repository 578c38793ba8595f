package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/wbsgantt/internal/eventbus"
	"github.com/kazz187/wbsgantt/internal/wbs"
	"github.com/kazz187/wbsgantt/pkg/cerr"
)

// EditFunc edits a task forest. Returning an error aborts the edit without
// saving anything.
type EditFunc func(forest []wbs.Task) ([]wbs.Task, error)

type EditorOption func(*Editor)

// WithStrictDependencies rejects forests whose dependencies form a cycle.
func WithStrictDependencies(strict bool) EditorOption {
	return func(e *Editor) {
		e.strictDeps = strict
	}
}

// WithClock replaces time.Now for the current day and timestamps.
func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) {
		e.now = now
	}
}

// Editor serializes edits per project. Every edit loads the stored project,
// applies the edit, recalculates the whole forest and saves it back, so
// stored progress is always rolled up.
type Editor struct {
	repo       Repository
	bus        *eventbus.Bus
	strictDeps bool
	now        func() time.Time

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	savedAt map[string]time.Time
}

func NewEditor(repo Repository, bus *eventbus.Bus, opts ...EditorOption) *Editor {
	e := &Editor{
		repo:    repo,
		bus:     bus,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
		savedAt: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) Now() time.Time {
	return e.now()
}

func (e *Editor) lock(id string) func() {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (e *Editor) markSaved(p *Project) {
	e.mu.Lock()
	e.savedAt[p.ID] = p.UpdatedAt
	e.mu.Unlock()
}

func (e *Editor) forget(id string) {
	e.mu.Lock()
	delete(e.savedAt, id)
	delete(e.locks, id)
	e.mu.Unlock()
}

// Create validates, recalculates and stores a new project. Tasks without an
// id get one.
func (e *Editor) Create(ctx context.Context, p *Project) (*Project, error) {
	now := e.now()
	p.ID = ulid.Make().String()
	p.Tasks = wbs.Relevel(assignIDs(p.Tasks))
	if err := e.validate(p.Tasks); err != nil {
		return nil, err
	}
	p.Tasks = wbs.Recalc(p.Tasks, now)
	p.NotifiedOverdue = nil
	overdue, _ := overdueTransitions(p)
	p.CreatedAt = now
	p.UpdatedAt = now

	unlock := e.lock(p.ID)
	defer unlock()
	if err := e.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	e.markSaved(p)
	e.bus.PublishNew(eventbus.EventTypeProjectCreated, p.ID, map[string]string{"project_id": p.ID})
	e.publishOverdue(p, overdue)
	return p, nil
}

// Get returns the stored project recalculated for today. Nothing is saved.
func (e *Editor) Get(ctx context.Context, id string) (*Project, error) {
	p, err := e.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Tasks = wbs.Recalc(p.Tasks, e.now())
	return p, nil
}

func (e *Editor) List(ctx context.Context, limit, offset int) ([]*Project, int, error) {
	projects, total, err := e.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	today := e.now()
	for _, p := range projects {
		p.Tasks = wbs.Recalc(p.Tasks, today)
	}
	return projects, total, nil
}

// Edit applies fn to the project's forest under the project lock.
func (e *Editor) Edit(ctx context.Context, id string, fn EditFunc) (*Project, error) {
	unlock := e.lock(id)
	defer unlock()

	p, err := e.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := e.now()

	forest, err := fn(slices.Clone(p.Tasks))
	if err != nil {
		return nil, err
	}
	forest = wbs.Relevel(forest)
	if err := e.validate(forest); err != nil {
		return nil, err
	}
	p.Tasks = wbs.Recalc(forest, now)
	overdue, _ := overdueTransitions(p)
	p.UpdatedAt = now
	if err := e.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	e.markSaved(p)
	e.bus.PublishNew(eventbus.EventTypeProjectUpdated, p.ID, map[string]string{"project_id": p.ID})
	e.publishOverdue(p, overdue)
	return p, nil
}

// SweepOverdue recalculates every stored project for the current day and
// publishes the tasks that went overdue since their project was last saved.
// Projects deleted during the sweep are skipped.
func (e *Editor) SweepOverdue(ctx context.Context) error {
	projects, _, err := e.repo.List(ctx, 0, 0)
	if err != nil {
		return err
	}
	var errs []error
	for _, listed := range projects {
		if err := e.sweepProject(ctx, listed.ID); err != nil && !cerr.IsCode(err, cerr.NotFound) {
			errs = append(errs, fmt.Errorf("project %s: %w", listed.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Editor) sweepProject(ctx context.Context, id string) error {
	unlock := e.lock(id)
	defer unlock()

	p, err := e.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	p.Tasks = wbs.Recalc(p.Tasks, e.now())
	overdue, changed := overdueTransitions(p)
	if !changed {
		return nil
	}
	// UpdatedAt is kept: only the notification bookkeeping changed.
	if err := e.repo.Update(ctx, p); err != nil {
		return err
	}
	e.markSaved(p)
	e.publishOverdue(p, overdue)
	return nil
}

func (e *Editor) Delete(ctx context.Context, id string) error {
	unlock := e.lock(id)
	defer unlock()

	if err := e.repo.Delete(ctx, id); err != nil {
		return err
	}
	e.forget(id)
	e.bus.PublishNew(eventbus.EventTypeProjectDeleted, id, map[string]string{"project_id": id})
	return nil
}

// Reloaded handles a project document changed by someone other than this
// Editor. Changes the Editor saved itself are ignored.
func (e *Editor) Reloaded(ctx context.Context, id string) error {
	unlock := e.lock(id)
	defer unlock()

	p, err := e.repo.Get(ctx, id)
	if cerr.IsCode(err, cerr.NotFound) {
		e.mu.Lock()
		_, known := e.savedAt[id]
		e.mu.Unlock()
		if known {
			e.forget(id)
			e.bus.PublishNew(eventbus.EventTypeProjectDeleted, id, map[string]string{"project_id": id})
		}
		return nil
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	saved, known := e.savedAt[id]
	e.mu.Unlock()
	if known && saved.Equal(p.UpdatedAt) {
		return nil
	}
	e.markSaved(p)

	if err := e.validate(p.Tasks); err != nil {
		slog.WarnContext(ctx, "project changed on disk is invalid", "project_id", id, "error", err)
	}
	p.Tasks = wbs.Recalc(p.Tasks, e.now())
	slog.InfoContext(ctx, "project changed on disk", "project_id", id)
	e.bus.PublishNew(eventbus.EventTypeProjectChangedOnDisk, id, map[string]string{"project_id": id})

	overdue, changed := overdueTransitions(p)
	if changed {
		if err := e.repo.Update(ctx, p); err != nil {
			return err
		}
		e.markSaved(p)
	}
	e.publishOverdue(p, overdue)
	return nil
}

// overdueTransitions returns the overdue tasks of p that are not in
// p.NotifiedOverdue and replaces p.NotifiedOverdue with the current overdue
// set. A task that stops being overdue is dropped from the set, so it is
// reported again if it goes overdue later. changed reports whether the set
// differs from the stored one.
func overdueTransitions(p *Project) (overdue []string, changed bool) {
	notified := make(map[string]bool, len(p.NotifiedOverdue))
	for _, id := range p.NotifiedOverdue {
		notified[id] = true
	}
	current := wbs.OverdueIDs(p.Tasks)
	for _, id := range current {
		if !notified[id] {
			overdue = append(overdue, id)
		}
	}
	changed = len(overdue) > 0 || len(current) != len(notified)
	p.NotifiedOverdue = current
	return overdue, changed
}

// publishOverdue emits one task.overdue event per id.
func (e *Editor) publishOverdue(p *Project, ids []string) {
	for _, id := range ids {
		t, _ := wbs.FindTaskByID(p.Tasks, id)
		e.bus.PublishNew(eventbus.EventTypeTaskOverdue, id, map[string]string{
			"project_id":   p.ID,
			"project_name": p.Name,
			"task_name":    t.Name,
			"end_date":     string(t.EndDate),
		})
	}
}

func (e *Editor) validate(forest []wbs.Task) error {
	if err := wbs.Validate(forest); err != nil {
		return validationError(err)
	}
	if !e.strictDeps {
		return nil
	}
	if cycle := wbs.DependencyCycle(forest); cycle != nil {
		return cerr.NewError(cerr.InvalidArgument, "invalid task tree",
			fmt.Errorf("dependency cycle: %s", strings.Join(cycle, " -> "))).
			AddViolation("tasks.dependencies", "dependency cycle: "+strings.Join(cycle, " -> "))
	}
	return nil
}

// validationError converts engine validation failures into an
// InvalidArgument error with one "tasks.<task id>.<field>" violation each.
func validationError(err error) error {
	var verr *wbs.ValidationError
	if !errors.As(err, &verr) {
		return cerr.NewError(cerr.Internal, "server error", err)
	}
	return cerr.NewViolationError("invalid task tree", "tasks", verr)
}

func assignIDs(tasks []wbs.Task) []wbs.Task {
	if len(tasks) == 0 {
		return tasks
	}
	out := make([]wbs.Task, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			t.ID = ulid.Make().String()
		}
		t.Children = assignIDs(t.Children)
		out[i] = t
	}
	return out
}
