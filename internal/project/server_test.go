package project_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/wbsgantt/internal/project"
	"github.com/kazz187/wbsgantt/internal/wbs"
	"github.com/kazz187/wbsgantt/pkg/cerr"
)

func newRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(cerr.NewJSONResponseChiMiddleware())
		project.NewServer(f.editor, wbs.DefaultWindow, wbs.DefaultEdgeLayout).Routes(r)
	})
	r.Method(http.MethodGet, "/projects/{projectID}/events", project.NewEventsHandler(f.bus))
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

type taskJSON struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Progress  float64    `json:"progress"`
	Expanded  bool       `json:"expanded"`
	IsOverdue bool       `json:"is_overdue"`
	Children  []taskJSON `json:"children"`
	Comments  []struct {
		ID      string `json:"id"`
		Author  string `json:"author"`
		Content string `json:"content"`
	} `json:"comments"`
}

type projectJSON struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Tasks []taskJSON `json:"tasks"`
}

func findTask(tasks []taskJSON, id string) *taskJSON {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
		if t := findTask(tasks[i].Children, id); t != nil {
			return t
		}
	}
	return nil
}

func decodeProject(t *testing.T, rec *httptest.ResponseRecorder) projectJSON {
	t.Helper()
	var p projectJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p), rec.Body.String())
	return p
}

func createSample(t *testing.T, h http.Handler) projectJSON {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/projects", map[string]any{"name": "Sample", "sample": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeProject(t, rec)
}

func TestServer_ProjectLifecycle(t *testing.T) {
	h := newRouter(newFixture(t))

	p := createSample(t, h)
	assert.Equal(t, "Sample", p.Name)
	design := findTask(p.Tasks, "1.2")
	require.NotNil(t, design)
	assert.Equal(t, 56.0, design.Progress)
	assert.True(t, findTask(p.Tasks, "1.2.1").IsOverdue)
	assert.False(t, findTask(p.Tasks, "1.2.2").IsOverdue)

	rec := do(t, h, http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Projects []projectJSON `json:"projects"`
		Total    int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	rec = do(t, h, http.MethodGet, "/projects/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, p.ID, decodeProject(t, rec).ID)

	rec = do(t, h, http.MethodDelete, "/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
}

func TestServer_CreateProjectValidation(t *testing.T) {
	h := newRouter(newFixture(t))

	rec := do(t, h, http.MethodPost, "/projects", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/projects", map[string]any{
		"name":  "dup",
		"tasks": []map[string]any{{"id": "a", "name": "a"}, {"id": "a", "name": "b"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ruleId":"tasks.a.id"`)

	rec = do(t, h, http.MethodPost, "/projects", map[string]any{"name": "x", "bogus": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UpdateTaskRecalculates(t *testing.T) {
	h := newRouter(newFixture(t))
	p := createSample(t, h)

	// 1.2.2 at 100 with weights 80/120 gives 1.2 = (80*80+100*120)/200 = 92.
	rec := do(t, h, http.MethodPatch, "/projects/"+p.ID+"/tasks/1.2.2", map[string]any{"progress": 100, "status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p = decodeProject(t, rec)
	assert.Equal(t, 100.0, findTask(p.Tasks, "1.2.2").Progress)
	assert.Equal(t, 92.0, findTask(p.Tasks, "1.2").Progress)

	rec = do(t, h, http.MethodPatch, "/projects/"+p.ID+"/tasks/1.2.2", map[string]any{"progress": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ruleId":"tasks.1.2.2.progress"`)

	rec = do(t, h, http.MethodPatch, "/projects/"+p.ID+"/tasks/nope", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AddRemoveToggleComment(t *testing.T) {
	h := newRouter(newFixture(t))
	p := createSample(t, h)
	base := "/projects/" + p.ID

	rec := do(t, h, http.MethodPost, base+"/tasks", map[string]any{
		"parent_id": "1.3", "id": "1.3.4", "name": "Deployment", "progress": 0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p = decodeProject(t, rec)
	require.NotNil(t, findTask(p.Tasks, "1.3.4"))

	rec = do(t, h, http.MethodPost, base+"/tasks", map[string]any{"parent_id": "nope", "name": "orphan"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/tasks/1.3/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, findTask(decodeProject(t, rec).Tasks, "1.3").Expanded)

	rec = do(t, h, http.MethodPost, base+"/tasks/1.3.1/comments", map[string]any{"author": "Sato", "content": "API frozen"})
	require.Equal(t, http.StatusOK, rec.Code)
	comments := findTask(decodeProject(t, rec).Tasks, "1.3.1").Comments
	require.Len(t, comments, 1)
	assert.NotEmpty(t, comments[0].ID)
	assert.Equal(t, "API frozen", comments[0].Content)

	rec = do(t, h, http.MethodDelete, base+"/tasks/1.3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p = decodeProject(t, rec)
	assert.Nil(t, findTask(p.Tasks, "1.3"))
	assert.Nil(t, findTask(p.Tasks, "1.3.4"))
}

func TestServer_Gantt(t *testing.T) {
	h := newRouter(newFixture(t))
	p := createSample(t, h)

	rec := do(t, h, http.MethodGet, "/projects/"+p.ID+"/gantt", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var g struct {
		Window struct {
			Start    string `json:"start"`
			SpanDays int    `json:"span_days"`
		} `json:"window"`
		Today     string  `json:"today"`
		TodayLeft float64 `json:"today_left"`
		Rows      []struct {
			ID        string `json:"id"`
			Depth     int    `json:"depth"`
			IsOverdue bool   `json:"is_overdue"`
			Position  *struct {
				Left      float64 `json:"left"`
				Width     float64 `json:"width"`
				Milestone bool    `json:"milestone"`
			} `json:"position"`
		} `json:"rows"`
		Edges []struct {
			FromID string `json:"from_id"`
			ToID   string `json:"to_id"`
			Path   string `json:"path"`
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Equal(t, "2025-01-01", g.Window.Start)
	assert.Equal(t, 90, g.Window.SpanDays)
	assert.Equal(t, "2025-02-10", g.Today)
	assert.InDelta(t, 40.0/90*100, g.TodayLeft, 1e-9)
	require.Len(t, g.Rows, 12)
	assert.Equal(t, "1", g.Rows[0].ID)
	assert.Equal(t, 0, g.Rows[0].Depth)
	require.NotNil(t, g.Rows[0].Position)
	assert.Equal(t, 0.0, g.Rows[0].Position.Left)

	last := g.Rows[len(g.Rows)-1]
	assert.Equal(t, "1.4", last.ID)
	assert.True(t, last.Position.Milestone)
	assert.Equal(t, 0.0, last.Position.Width)
	assert.NotEmpty(t, g.Edges)

	rec = do(t, h, http.MethodGet, "/projects/"+p.ID+"/gantt?today=2025-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	for _, row := range g.Rows {
		assert.False(t, row.IsOverdue, row.ID)
	}

	rec = do(t, h, http.MethodGet, "/projects/"+p.ID+"/gantt?today=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsHandler_StreamsProjectEvents(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(newRouter(f))
	defer ts.Close()
	p := createSample(t, ts.Config.Handler)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/projects/"+p.ID+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	f.bus.PublishNew("project.updated", "other", map[string]string{"project_id": "other"})
	f.bus.PublishNew("project.updated", p.ID, map[string]string{"project_id": p.ID})

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 3 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	assert.True(t, strings.HasPrefix(lines[0], "id: "))
	assert.Equal(t, "event: project.updated", lines[1])
	assert.Contains(t, lines[2], `"resource_id":"`+p.ID+`"`)
}
