package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"sessionstate/internal/codec"
	"sessionstate/internal/savedstate"
	"sessionstate/internal/services"
	"sessionstate/internal/storage"
)

// LoadReporter is the part of storage.FileManager the health check reads.
type LoadReporter interface {
	LastLoad() storage.LoadReport
	Format() codec.Format
}

type HealthController struct {
	service   services.SessionServiceInterface
	loads     LoadReporter
	startTime time.Time
}

type healthResponse struct {
	Status        string             `json:"status"`
	Uptime        string             `json:"uptime"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	Format        string             `json:"format"`
	SchemaVersion savedstate.Version `json:"schema_version"`
	Revision      uint64             `json:"revision"`
	Dirty         bool               `json:"dirty"`
	Profiles      int                `json:"profiles"`
	LastLoad      storage.LoadReport `json:"last_load"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Format:        hc.loads.Format().String(),
		SchemaVersion: savedstate.CurrentVersion,
		Revision:      hc.service.Revision(),
		Dirty:         hc.service.IsDirty(),
		Profiles:      hc.service.ProfileCount(),
		LastLoad:      hc.loads.LastLoad(),
	}
	if resp.LastLoad.Outcome == storage.OutcomeFallback {
		resp.Status = "degraded"
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.SessionServiceInterface, fileManager *storage.FileManager) *HealthController {
	return &HealthController{
		service:   service,
		loads:     fileManager,
		startTime: time.Now(),
	}
}
