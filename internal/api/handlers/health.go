package handlers

import (
	"net/http"
	"time"

	"github.com/skiffworks/skiff/internal/state"
	"github.com/skiffworks/skiff/pkg/protocol"
)

// HealthHandler serves the daemon health summary.
type HealthHandler struct {
	state   *state.ServerState
	started time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(st *state.ServerState) *HealthHandler {
	return &HealthHandler{state: st, started: time.Now()}
}

// LoadStatus is the load portion of the health response.
type LoadStatus struct {
	CPUPercent float64             `json:"cpu_percent"`
	RAMFreeMB  uint64              `json:"ram_free_mb"`
	IOBusy     bool                `json:"io_busy"`
	Hints      []protocol.LoadHint `json:"hints"`
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status        string     `json:"status"`
	Service       string     `json:"service"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	Sessions      int        `json:"sessions"`
	Transfers     int        `json:"transfers"`
	Load          LoadStatus `json:"load"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	load := h.state.LoadSnapshot()

	WriteJSONOK(w, HealthResponse{
		Status:        "ok",
		Service:       "skiffd",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Sessions:      h.state.SessionCount(),
		Transfers:     h.state.ActiveTransfers(),
		Load: LoadStatus{
			CPUPercent: load.CPUPercent,
			RAMFreeMB:  load.RAMFreeMB,
			IOBusy:     load.IOBusy,
			Hints:      load.Hints,
		},
	})
}
