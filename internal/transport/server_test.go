package transport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightlens/internal/config"
	"insightlens/internal/pipeline"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default().Server
	cfg.RateLimit.Enabled = false
	return NewServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func runPipeline(t *testing.T) *pipeline.Result {
	t.Helper()
	gen := pipeline.DefaultGeneratorConfig(42)
	gen.Transactions = 300
	gen.Customers = 30

	cfg := config.Default().Pipeline
	cfg.ClusterCount = 3
	cfg.TreeCount = 5

	result, err := pipeline.New(cfg, nil).Run(
		context.Background(), pipeline.GenerateDataset(gen), pipeline.GeneratorRoles())
	require.NoError(t, err)
	return result
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	rec := get(t, srv.Routes(), "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestEndpointsBeforeAnyRun(t *testing.T) {
	srv := testServer(t)
	routes := srv.Routes()

	for _, path := range []string{"/api/run", "/api/insights", "/api/customers", "/api/scores", "/api/segments", "/api/models"} {
		rec := get(t, routes, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "NO_RUN", path)
	}
}

func TestEndpointsAfterRun(t *testing.T) {
	srv := testServer(t)
	srv.SetResult(runPipeline(t))
	routes := srv.Routes()

	rec := get(t, routes, "/api/run")
	require.Equal(t, http.StatusOK, rec.Code)
	var run struct {
		RunID string `json:"run_id"`
		Stats struct {
			RowCount int `json:"row_count"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, 300, run.Stats.RowCount)

	rec = get(t, routes, "/api/insights")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "findings")

	rec = get(t, routes, "/api/scores")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rfm_score")

	rec = get(t, routes, "/api/segments")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "assignments")

	rec = get(t, routes, "/api/models")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)
	routes := srv.Routes()

	get(t, routes, "/api/health")
	rec := get(t, routes, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "insightlens_api_requests_total")
}

func TestRequestIDHeader(t *testing.T) {
	srv := testServer(t)
	rec := get(t, srv.Routes(), "/api/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
