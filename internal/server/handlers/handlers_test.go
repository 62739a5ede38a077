package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsync/internal/deploy"
	"git.home.luguber.info/inful/blogsync/internal/history"
	"git.home.luguber.info/inful/blogsync/internal/server/responses"
)

type stubDeployer struct {
	result  deploy.Result
	called  []string
	ctxDone bool
}

func (s *stubDeployer) Deploy(ctx context.Context, target string) deploy.Result {
	s.called = append(s.called, target)
	s.ctxDone = ctx.Err() != nil
	res := s.result
	res.Target = target
	return res
}

func (s *stubDeployer) Targets() []string { return []string{"ai", "human"} }

func serve(t *testing.T, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandleDeploy_Success(t *testing.T) {
	d := &stubDeployer{result: deploy.Result{
		Success:  true,
		Message:  deploy.MsgDeployed,
		Kind:     deploy.KindDeployed,
		RunID:    "run-1",
		BlogURL:  "https://blog.example.com/posts/hello/",
		Changes:  true,
		Duration: 1500 * time.Millisecond,
	}}
	h := NewDeployHandlers(d)

	rec := serve(t, "/api/deploy/{target}", h.HandleDeploy, httptest.NewRequest(http.MethodPost, "/api/deploy/human", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	body := decode[responses.DeployResponse](t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, deploy.MsgDeployed, body.Message)
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, "https://blog.example.com/posts/hello/", body.BlogURL)
	assert.Equal(t, "human", body.Target)
	assert.Equal(t, int64(1500), body.DurationMS)
	assert.Equal(t, []string{"human"}, d.called)
}

func TestHandleDeploy_FailureIs500WithMessage(t *testing.T) {
	d := &stubDeployer{result: deploy.Result{
		Message: deploy.MsgBuildFailed + ": exit status 1",
		Kind:    deploy.KindBuildFailed,
		RunID:   "run-2",
	}}
	h := NewDeployHandlers(d)

	rec := serve(t, "/api/deploy/{target}", h.HandleDeploy, httptest.NewRequest(http.MethodPost, "/api/deploy/ai", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Hugo build failed: exit status 1", body["message"])
	assert.NotContains(t, body, "blog_url")
}

func TestHandleDeploy_UnknownTarget(t *testing.T) {
	d := &stubDeployer{}
	h := NewDeployHandlers(d)

	rec := serve(t, "/api/deploy/{target}", h.HandleDeploy, httptest.NewRequest(http.MethodPost, "/api/deploy/staging", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, d.called)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "unknown deployment target", body["message"])
}

func TestHandleDeploy_RejectsGet(t *testing.T) {
	d := &stubDeployer{}
	h := NewDeployHandlers(d)

	rec := serve(t, "/api/deploy/{target}", h.HandleDeploy, httptest.NewRequest(http.MethodGet, "/api/deploy/human", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	assert.Empty(t, d.called)
}

func TestHandleDeploy_DetachedFromRequestContext(t *testing.T) {
	d := &stubDeployer{result: deploy.Result{Success: true}}
	h := NewDeployHandlers(d)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/deploy/human", nil).WithContext(ctx)

	serve(t, "/api/deploy/{target}", h.HandleDeploy, req)

	require.Len(t, d.called, 1)
	assert.False(t, d.ctxDone)
}

func newHistory(t *testing.T) *history.SQLiteStore {
	t.Helper()
	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, target := range []string{"human", "ai", "human"} {
		require.NoError(t, store.Append(context.Background(), history.Record{
			RunID:     "run-" + string(rune('a'+i)),
			Target:    target,
			Kind:      string(deploy.KindDeployed),
			Success:   true,
			Message:   deploy.MsgDeployed,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	return store
}

func TestHandleList(t *testing.T) {
	h := NewHistoryHandlers(newHistory(t))

	rec := serve(t, "/api/deployments", h.HandleList, httptest.NewRequest(http.MethodGet, "/api/deployments?target=human", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[responses.DeploymentsResponse](t, rec)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "run-c", body.Deployments[0].RunID)
	assert.Equal(t, "run-a", body.Deployments[1].RunID)
}

func TestHandleList_Limit(t *testing.T) {
	h := NewHistoryHandlers(newHistory(t))

	rec := serve(t, "/api/deployments", h.HandleList, httptest.NewRequest(http.MethodGet, "/api/deployments?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[responses.DeploymentsResponse](t, rec).Count)

	rec = serve(t, "/api/deployments", h.HandleList, httptest.NewRequest(http.MethodGet, "/api/deployments?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleList_EmptyIsArray(t *testing.T) {
	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	h := NewHistoryHandlers(store)

	rec := serve(t, "/api/deployments", h.HandleList, httptest.NewRequest(http.MethodGet, "/api/deployments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deployments":[],"count":0}`, rec.Body.String())
}

func TestHandleList_HistoryDisabled(t *testing.T) {
	h := NewHistoryHandlers(nil)

	rec := serve(t, "/api/deployments", h.HandleList, httptest.NewRequest(http.MethodGet, "/api/deployments", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleGet(t *testing.T) {
	h := NewHistoryHandlers(newHistory(t))

	rec := serve(t, "/api/deployments/{id}", h.HandleGet, httptest.NewRequest(http.MethodGet, "/api/deployments/run-b", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ai", decode[history.Record](t, rec).Target)

	rec = serve(t, "/api/deployments/{id}", h.HandleGet, httptest.NewRequest(http.MethodGet, "/api/deployments/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealthCheck(t *testing.T) {
	h := NewMonitoringHandlers(time.Now().Add(-time.Minute), []string{"ai", "human"})

	rec := serve(t, "/health", h.HandleHealthCheck, httptest.NewRequest(http.MethodGet, "/health?pretty=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\n  \"status\": \"healthy\"")
	body := decode[responses.HealthResponse](t, rec)
	assert.Equal(t, []string{"ai", "human"}, body.Targets)
	assert.GreaterOrEqual(t, body.Uptime, 59.0)
}
