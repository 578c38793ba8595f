package project

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/wbsgantt/internal/wbs"
	"github.com/kazz187/wbsgantt/pkg/cerr"
)

type Server struct {
	editor *Editor
	window wbs.Window
	layout wbs.EdgeLayout
}

func NewServer(editor *Editor, window wbs.Window, layout wbs.EdgeLayout) *Server {
	return &Server{editor: editor, window: window, layout: layout}
}

// Routes mounts the JSON API. Handlers report through cerr, so r must use
// cerr.NewJSONResponseChiMiddleware.
func (s *Server) Routes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.listProjects)
		r.Post("/", s.createProject)
		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", s.getProject)
			r.Delete("/", s.deleteProject)
			r.Get("/gantt", s.getGantt)
			r.Post("/tasks", s.addTask)
			r.Route("/tasks/{taskID}", func(r chi.Router) {
				r.Patch("/", s.updateTask)
				r.Delete("/", s.removeTask)
				r.Post("/toggle", s.toggleTask)
				r.Post("/comments", s.addComment)
			})
		})
	})
}

type projectResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	WindowStart    wbs.Date   `json:"window_start,omitempty"`
	WindowSpanDays int        `json:"window_span_days,omitempty"`
	Tasks          []taskView `json:"tasks"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// taskView adds the computed overdue flag to the stored task fields.
type taskView struct {
	wbs.Task
	Children  []taskView `json:"children,omitempty"`
	IsOverdue bool       `json:"is_overdue"`
}

func toTaskViews(tasks []wbs.Task) []taskView {
	views := make([]taskView, len(tasks))
	for i, t := range tasks {
		views[i] = taskView{Task: t, Children: toTaskViews(t.Children), IsOverdue: t.IsOverdue()}
	}
	return views
}

func toResponse(p *Project) *projectResponse {
	return &projectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		WindowStart:    p.WindowStart,
		WindowSpanDays: p.WindowSpanDays,
		Tasks:          toTaskViews(p.Tasks),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type listProjectsResponse struct {
	Projects []*projectResponse `json:"projects"`
	Total    int                `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := 50, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	projects, total, err := s.editor.List(ctx, limit, offset)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	resp := &listProjectsResponse{
		Projects: make([]*projectResponse, len(projects)),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}
	for i, p := range projects {
		resp.Projects[i] = toResponse(p)
	}
	cerr.SetJSONResponse(ctx, resp)
}

type createProjectRequest struct {
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	WindowStart    wbs.Date   `json:"window_start"`
	WindowSpanDays int        `json:"window_span_days"`
	Tasks          []wbs.Task `json:"tasks"`
	// Sample seeds the project with the example system development WBS
	// when Tasks is empty.
	Sample bool `json:"sample"`
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createProjectRequest
	if !decode(r, &req) {
		return
	}
	if req.Name == "" {
		cerr.SetJSONError(ctx, cerr.NewError(cerr.InvalidArgument, "name is required", nil).
			AddViolation("name", "must not be empty"))
		return
	}
	if req.WindowStart != "" && !req.WindowStart.Valid() {
		cerr.SetJSONError(ctx, cerr.NewError(cerr.InvalidArgument, "invalid window", nil).
			AddViolation("window_start", "must be a date in YYYY-MM-DD form"))
		return
	}
	if req.WindowSpanDays < 0 {
		cerr.SetJSONError(ctx, cerr.NewError(cerr.InvalidArgument, "invalid window", nil).
			AddViolation("window_span_days", "must not be negative"))
		return
	}
	tasks := req.Tasks
	if len(tasks) == 0 && req.Sample {
		tasks = wbs.SampleForest()
	}
	p, err := s.editor.Create(ctx, &Project{
		Name:           req.Name,
		Description:    req.Description,
		WindowStart:    req.WindowStart,
		WindowSpanDays: req.WindowSpanDays,
		Tasks:          tasks,
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseStatus(ctx, http.StatusCreated, toResponse(p))
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.editor.Get(ctx, chi.URLParam(r, "projectID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, toResponse(p))
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.editor.Delete(ctx, chi.URLParam(r, "projectID")); err != nil {
		cerr.SetJSONError(ctx, err)
	}
}

type ganttWindow struct {
	Start    wbs.Date `json:"start"`
	SpanDays int      `json:"span_days"`
}

type ganttRow struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Assignee    string        `json:"assignee,omitempty"`
	Depth       int           `json:"depth"`
	HasChildren bool          `json:"has_children"`
	Expanded    bool          `json:"expanded"`
	IsMilestone bool          `json:"is_milestone"`
	IsOverdue   bool          `json:"is_overdue"`
	Progress    float64       `json:"progress"`
	Status      wbs.Status    `json:"status,omitempty"`
	Priority    wbs.Priority  `json:"priority,omitempty"`
	StartDate   wbs.Date      `json:"start_date"`
	EndDate     wbs.Date      `json:"end_date"`
	Position    *wbs.Position `json:"position,omitempty"`
}

type ganttResponse struct {
	ProjectID string      `json:"project_id"`
	Window    ganttWindow `json:"window"`
	Today     wbs.Date    `json:"today"`
	TodayLeft float64     `json:"today_left"`
	RowHeight float64     `json:"row_height"`
	Rows      []ganttRow  `json:"rows"`
	Edges     []wbs.Edge  `json:"edges"`
}

// getGantt renders the visible rows of a project on its timeline. The
// optional today query parameter overrides the current day.
func (s *Server) getGantt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.editor.Get(ctx, chi.URLParam(r, "projectID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	today := s.editor.Now()
	if v := r.URL.Query().Get("today"); v != "" {
		t, ok := wbs.Date(v).Time()
		if !ok {
			cerr.SetJSONError(ctx, cerr.NewError(cerr.InvalidArgument, "invalid today", nil).
				AddViolation("today", "must be a date in YYYY-MM-DD form"))
			return
		}
		today = t
		p.Tasks = wbs.Recalc(p.Tasks, today)
	}

	window := p.Window(s.window)
	flat := wbs.Flatten(p.Tasks)
	rows := make([]ganttRow, len(flat))
	for i, row := range flat {
		t := row.Task
		rows[i] = ganttRow{
			ID:          t.ID,
			Name:        t.Name,
			Assignee:    t.Assignee,
			Depth:       row.Depth,
			HasChildren: row.HasChildren,
			Expanded:    t.Expanded,
			IsMilestone: t.IsMilestone,
			IsOverdue:   t.IsOverdue(),
			Progress:    t.Progress,
			Status:      t.Status,
			Priority:    t.Priority,
			StartDate:   t.StartDate,
			EndDate:     t.EndDate,
		}
		if pos, ok := window.TaskPosition(t); ok {
			rows[i].Position = &pos
		}
	}
	edges := wbs.ResolveEdges(flat, window, s.layout)
	if edges == nil {
		edges = []wbs.Edge{}
	}
	cerr.SetJSONResponse(ctx, &ganttResponse{
		ProjectID: p.ID,
		Window:    ganttWindow{Start: wbs.DateOf(window.Start), SpanDays: window.SpanDays},
		Today:     wbs.DateOf(today),
		TodayLeft: window.TodayPosition(today),
		RowHeight: s.layout.RowHeight,
		Rows:      rows,
		Edges:     edges,
	})
}

type addTaskRequest struct {
	ParentID string `json:"parent_id"`
	wbs.Task
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req addTaskRequest
	if !decode(r, &req) {
		return
	}
	task := req.Task
	if task.ID == "" {
		task.ID = ulid.Make().String()
	}
	task.Children = assignIDs(task.Children)
	p, err := s.editor.Edit(ctx, chi.URLParam(r, "projectID"), func(forest []wbs.Task) ([]wbs.Task, error) {
		out, ok := wbs.AddTask(forest, req.ParentID, task)
		if !ok {
			return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("parent task %s not found", req.ParentID), nil)
		}
		return out, nil
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseStatus(ctx, http.StatusCreated, toResponse(p))
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "taskID")
	var patch wbs.Patch
	if !decode(r, &patch) {
		return
	}
	if err := patch.Validate(taskID); err != nil {
		cerr.SetJSONError(ctx, validationError(err))
		return
	}
	s.editTask(w, r, taskID, func(forest []wbs.Task) []wbs.Task {
		return wbs.UpdateTaskByID(forest, taskID, patch.Apply)
	})
}

func (s *Server) removeTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	s.editTask(w, r, taskID, func(forest []wbs.Task) []wbs.Task {
		out, _ := wbs.RemoveTaskByID(forest, taskID)
		return out
	})
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	s.editTask(w, r, taskID, func(forest []wbs.Task) []wbs.Task {
		return wbs.ToggleExpanded(forest, taskID)
	})
}

type addCommentRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "taskID")
	var req addCommentRequest
	if !decode(r, &req) {
		return
	}
	if req.Content == "" {
		cerr.SetJSONError(ctx, cerr.NewError(cerr.InvalidArgument, "invalid comment", nil).
			AddViolation("content", "must not be empty"))
		return
	}
	comment := wbs.Comment{
		ID:        ulid.Make().String(),
		Author:    req.Author,
		Content:   req.Content,
		Timestamp: s.editor.Now(),
	}
	s.editTask(w, r, taskID, func(forest []wbs.Task) []wbs.Task {
		return wbs.UpdateTaskByID(forest, taskID, func(t wbs.Task) wbs.Task {
			t.Comments = append(append([]wbs.Comment(nil), t.Comments...), comment)
			return t
		})
	})
}

// editTask runs an edit that targets one existing task and responds with the
// updated project.
func (s *Server) editTask(w http.ResponseWriter, r *http.Request, taskID string, edit func([]wbs.Task) []wbs.Task) {
	ctx := r.Context()
	p, err := s.editor.Edit(ctx, chi.URLParam(r, "projectID"), func(forest []wbs.Task) ([]wbs.Task, error) {
		if _, ok := wbs.FindTaskByID(forest, taskID); !ok {
			return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("task %s not found", taskID), nil)
		}
		return edit(forest), nil
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, toResponse(p))
}

func decode(r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "invalid request body", err)
		return false
	}
	return true
}
