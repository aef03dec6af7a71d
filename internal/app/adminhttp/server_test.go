package adminhttp

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/msg2json/internal/jsoncodec"
	"github.com/sir_venger/msg2json/internal/metrics"
)

func TestHealth(t *testing.T) {
	started := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	srv := &Server{
		version:  "1.2.3",
		gatherer: prometheus.NewRegistry(),
		started:  started,
		now:      func() time.Time { return started.Add(90 * time.Second) },
	}

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got healthStats
	require.NoError(t, jsoncodec.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, healthStats{
		OK:            true,
		Version:       "1.2.3",
		StartedAt:     "2024-01-01T12:00:00Z",
		UptimeSeconds: 90,
	}, got)
}

func TestMetricsExposesUploadCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewUpload(reg)
	require.NoError(t, m.Register())
	m.ObserveRequest("ok")

	ts := httptest.NewServer(New(Options{Version: "test", Gatherer: reg}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `msg2json_upload_requests_total{outcome="ok"} 1`)
}

func TestUnknownAdminRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	New(Options{Gatherer: prometheus.NewRegistry()}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/msg_to_json", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
