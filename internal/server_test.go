package internal

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/wbsgantt/internal/config"
	"github.com/kazz187/wbsgantt/internal/eventbus"
	"github.com/kazz187/wbsgantt/internal/project"
	projectrepo "github.com/kazz187/wbsgantt/internal/project/repositoryimpl"
	"github.com/kazz187/wbsgantt/internal/pushnotification"
	pushsubrepo "github.com/kazz187/wbsgantt/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/wbsgantt/internal/wbs"
	"github.com/kazz187/wbsgantt/pkg/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	env := &config.Env{BaseEnv: config.BaseEnv{APIKey: "secret"}}
	bus := eventbus.New()
	editor := project.NewEditor(projectrepo.NewYAMLRepository(store), bus,
		project.WithClock(func() time.Time { return time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC) }))
	pushRepo := pushsubrepo.NewYAMLRepository(store)
	sender := pushnotification.NewSender(&env.VAPIDEnv, pushRepo)

	srv := NewServer(
		env,
		project.NewServer(editor, wbs.DefaultWindow, wbs.DefaultEdgeLayout),
		project.NewEventsHandler(bus),
		pushnotification.NewServer(&env.VAPIDEnv, pushRepo, sender),
		NewStorageHealthChecker(store),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func send(t *testing.T, method, url, apiKey, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_APIKey(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, send(t, http.MethodGet, ts.URL+"/health", "", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, send(t, http.MethodGet, ts.URL+"/api/projects", "", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, send(t, http.MethodGet, ts.URL+"/api/projects", "wrong", "").StatusCode)
	assert.Equal(t, http.StatusOK, send(t, http.MethodGet, ts.URL+"/api/projects", "secret", "").StatusCode)
}

func TestServer_Routes(t *testing.T) {
	ts := newTestServer(t)

	resp := send(t, http.MethodPost, ts.URL+"/api/projects", "secret", `{"name":"Sample","sample":true}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = send(t, http.MethodGet, ts.URL+"/api/nowhere", "secret", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))

	resp = send(t, http.MethodGet, ts.URL+"/api/push/vapid-public-key", "secret", "")
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
}

func TestServer_GRPCHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := send(t, http.MethodPost, ts.URL+"/grpc.health.v1.Health/Check", "", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "SERVING")

	resp = send(t, http.MethodPost, ts.URL+"/grpc.health.v1.Health/Check", "", `{"service":"nope"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
