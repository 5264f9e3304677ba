package apiclient

// OffloadRequest is the offload dispatch request body. TaskType is
// "thumbnail" or "search"; the remaining fields depend on it.
type OffloadRequest struct {
	TaskType string   `json:"task_type"`
	Path     string   `json:"path,omitempty"`
	Width    uint32   `json:"width,omitempty"`
	Height   uint32   `json:"height,omitempty"`
	Query    string   `json:"query,omitempty"`
	Paths    []string `json:"paths,omitempty"`
	WaitMs   int64    `json:"wait_ms,omitempty"`
}

// OffloadResponse carries a completed offload task result.
type OffloadResponse struct {
	TaskID string `json:"task_id"`
	Result []byte `json:"result"`
}

// SubmitOffload dispatches a task to a capable connected client and waits
// for the result. Requires a token.
func (c *Client) SubmitOffload(req OffloadRequest) (*OffloadResponse, error) {
	var resp OffloadResponse
	if err := c.post("/api/offload", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
