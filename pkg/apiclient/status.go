package apiclient

import (
	"time"
)

// LoadStatus is the load portion of the health response.
type LoadStatus struct {
	CPUPercent float64  `json:"cpu_percent" yaml:"cpu_percent"`
	RAMFreeMB  uint64   `json:"ram_free_mb" yaml:"ram_free_mb"`
	IOBusy     bool     `json:"io_busy" yaml:"io_busy"`
	Hints      []string `json:"hints" yaml:"hints"`
}

// HealthResponse is the daemon health summary.
type HealthResponse struct {
	Status        string     `json:"status" yaml:"status"`
	Service       string     `json:"service" yaml:"service"`
	UptimeSeconds int64      `json:"uptime_seconds" yaml:"uptime_seconds"`
	Sessions      int        `json:"sessions" yaml:"sessions"`
	Transfers     int        `json:"transfers" yaml:"transfers"`
	Load          LoadStatus `json:"load" yaml:"load"`
}

// Health fetches the daemon health summary. It needs no token.
func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get("/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClientCapabilities is a session's self-reported resource profile.
type ClientCapabilities struct {
	CPUCores              uint32 `json:"cpu_cores" yaml:"cpu_cores"`
	HasGPU                bool   `json:"has_gpu" yaml:"has_gpu"`
	RAMFreeMB             uint64 `json:"ram_free_mb" yaml:"ram_free_mb"`
	OnACPower             bool   `json:"on_ac_power" yaml:"on_ac_power"`
	CanGenerateThumbnails bool   `json:"can_generate_thumbnails" yaml:"can_generate_thumbnails"`
	CanSearchLocally      bool   `json:"can_search_locally" yaml:"can_search_locally"`
	CanCompress           bool   `json:"can_compress" yaml:"can_compress"`
}

// SessionInfo is one connected session as reported by the sessions endpoint.
type SessionInfo struct {
	ID           string              `json:"id" yaml:"id"`
	Username     string              `json:"username" yaml:"username"`
	DeviceID     string              `json:"device_id,omitempty" yaml:"device_id,omitempty"`
	ConnectedAt  time.Time           `json:"connected_at" yaml:"connected_at"`
	Capabilities *ClientCapabilities `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	QueueLen     int                 `json:"queue_len" yaml:"queue_len"`
}

// SessionsResponse is the session listing response.
type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions" yaml:"sessions"`
	Count    int           `json:"count" yaml:"count"`
}

// Sessions lists the connected WebSocket sessions. Requires a token.
func (c *Client) Sessions() (*SessionsResponse, error) {
	var resp SessionsResponse
	if err := c.get("/api/sessions", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
