package server_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"s3-utils/core/server"
	"s3-utils/feature/snapshot"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestServer(t *testing.T) (*fiber.App, *snapshot.Store) {
	store := snapshot.NewStore(t.TempDir())
	srv := server.New(server.Config{Port: "8080"}, zap.NewNop(), store)
	return srv.App(), store
}

func saveSnapshot(t *testing.T, store *snapshot.Store, start time.Time, buckets map[string]snapshot.Stats) {
	t.Helper()
	_, err := store.Save(&snapshot.Snapshot{
		Buckets: buckets,
		Metadata: snapshot.Metadata{
			Version: snapshot.Version,
			ID:      "test-" + start.Format("150405"),
			Start:   start,
			End:     start.Add(time.Minute),
		},
	})
	require.NoError(t, err)
}

func TestHandleHealth(t *testing.T) {
	app, _ := setupTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "ok", body["status"])
}

func TestHandleSnapshotIndex(t *testing.T) {
	app, store := setupTestServer(t)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	saveSnapshot(t, store, base, map[string]snapshot.Stats{"alpha": {Files: 1, Bytes: 10}})
	saveSnapshot(t, store, base.Add(24*time.Hour), map[string]snapshot.Stats{"alpha": {Files: 2, Bytes: 20}})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/snapshots", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Snapshots []string `json:"snapshots"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Snapshots, 2)
	// Newest first
	assert.Equal(t, "2026-08-31T12:00:00Z.json", body.Snapshots[0])
}

func TestHandleSnapshotIndex_Empty(t *testing.T) {
	app, _ := setupTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/snapshots", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Snapshots []string `json:"snapshots"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Snapshots)
}

func TestHandleReportJSON(t *testing.T) {
	app, store := setupTestServer(t)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	saveSnapshot(t, store, base, map[string]snapshot.Stats{"alpha": {Files: 10, Bytes: 1000}})
	saveSnapshot(t, store, base.Add(24*time.Hour), map[string]snapshot.Stats{"alpha": {Files: 12, Bytes: 1100}})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/report", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var rep snapshot.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.Equal(t, int64(12), rep.TotalFiles)
	assert.Equal(t, int64(2), rep.TotalDFiles)
	assert.Equal(t, int64(100), rep.TotalDBytes)
}

func TestHandleReportJSON_NoSnapshots(t *testing.T) {
	app, _ := setupTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/report", nil))

	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleReportHTML(t *testing.T) {
	app, store := setupTestServer(t)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	saveSnapshot(t, store, base, map[string]snapshot.Stats{"alpha": {Files: 10, Bytes: 1000}})
	saveSnapshot(t, store, base.Add(24*time.Hour), map[string]snapshot.Stats{"alpha": {Files: 12, Bytes: 1100}})

	resp, err := app.Test(httptest.NewRequest("GET", "/report", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<table>")
	assert.Contains(t, string(body), "alpha")
}

func TestRequestIDHeader(t *testing.T) {
	app, _ := setupTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
