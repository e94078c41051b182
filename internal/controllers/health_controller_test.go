package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionstate/internal/codec"
	"sessionstate/internal/services"
	"sessionstate/internal/storage"
	"sessionstate/internal/testutil"
)

type stubLoads struct {
	report storage.LoadReport
}

func (s stubLoads) LastLoad() storage.LoadReport { return s.report }
func (s stubLoads) Format() codec.Format         { return codec.FormatProtobuf }

func newHealth(svc services.SessionServiceInterface, report storage.LoadReport) *HealthController {
	return &HealthController{service: svc, loads: stubLoads{report: report}, startTime: time.Now()}
}

func TestHealth_ReturnsOK(t *testing.T) {
	svc := services.NewSessionService()
	svc.Replace(testutil.StateV5())
	hc := newHealth(svc, storage.LoadReport{Outcome: storage.OutcomeMigrated, SourceVersion: 2})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
	assert.Equal(t, "protobuf", resp["format"])
	assert.Equal(t, float64(5), resp["schema_version"])
	assert.Equal(t, true, resp["dirty"])
	assert.Equal(t, float64(2), resp["profiles"])

	lastLoad, ok := resp["last_load"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "migrated", lastLoad["outcome"])
	assert.Equal(t, float64(2), lastLoad["sourceVersion"])
}

func TestHealth_DegradedAfterFallback(t *testing.T) {
	hc := newHealth(services.NewSessionService(), storage.LoadReport{Outcome: storage.OutcomeFallback, Fallback: "unknown schema version"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	hc := newHealth(services.NewSessionService(), storage.LoadReport{})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "0h0m0s"},
		{"one minute", 60 * time.Second, "0h1m0s"},
		{"one hour", time.Hour, "1h0m0s"},
		{"mixed", time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
