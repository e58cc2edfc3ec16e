package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/heartmarshall/vocabexport/internal/domain"
)

// dbPinger defines the minimal interface for DB health checks.
type dbPinger interface {
	Ping(ctx context.Context) error
}

type formatLister interface {
	AvailableFormats() []domain.ExportFormat
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db      dbPinger
	formats formatLister
	version string
}

// NewHealthHandler creates a HealthHandler. db may be nil when the service
// runs without persistence.
func NewHealthHandler(db dbPinger, formats formatLister, version string) *HealthHandler {
	return &HealthHandler{db: db, formats: formats, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Live reports liveness. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready reports readiness: 200 when the database (if any) answers and
// at least one export format is registered, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if len(h.formats.AvailableFormats()) == 0 {
		status = "down"
	}

	if h.db != nil && status == "ok" {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			status = "down"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
	})
}

// Health is the full health check with per-component status and version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]CompStatus)
	overallStatus := "ok"

	if h.db == nil {
		components["database"] = CompStatus{Status: "disabled"}
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		start := time.Now()
		err := h.db.Ping(ctx)
		latency := time.Since(start)

		if err != nil {
			components["database"] = CompStatus{Status: "down"}
			overallStatus = "down"
		} else {
			components["database"] = CompStatus{Status: "ok", Latency: latency.String()}
		}
	}

	formats := h.formats.AvailableFormats()
	if len(formats) == 0 {
		components["exporters"] = CompStatus{Status: "down"}
		overallStatus = "down"
	} else {
		ids := make([]string, len(formats))
		for i, f := range formats {
			ids[i] = string(f.ID)
		}
		components["exporters"] = CompStatus{Status: "ok", Detail: strings.Join(ids, ",")}
	}

	status := http.StatusOK
	if overallStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
