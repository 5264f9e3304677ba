package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/skiffworks/skiff/internal/telemetry"
)

// DefaultTimeout bounds a single backend request, transfer bodies included.
const DefaultTimeout = 30 * time.Second

// Client talks to the Filebrowser REST API. All methods are safe for
// concurrent use; sessions share a single client.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a backend client with the default request timeout. A trailing
// slash on baseURL is stripped.
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, DefaultTimeout)
}

// NewWithTimeout creates a backend client with an explicit request timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetToken installs a session token obtained out of band, skipping Login.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login authenticates against the backend and stores the returned token for
// subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := telemetry.StartBackendSpan(ctx, "login", "")
	defer span.End()

	payload, err := json.Marshal(struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password})
	if err != nil {
		return fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("backend login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	telemetry.SetAttributes(ctx, telemetry.BackendStatus(resp.StatusCode))

	if resp.StatusCode == http.StatusForbidden {
		telemetry.RecordError(ctx, ErrAuthFailed)
		return ErrAuthFailed
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend login: HTTP %d", resp.StatusCode)
	}

	// Filebrowser returns the token either as a bare string body or as
	// {"token": "..."} depending on version.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read login response: %w", err)
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &auth); err != nil || auth.Token == "" {
		auth.Token = strings.TrimSpace(string(body))
	}
	if auth.Token == "" {
		return fmt.Errorf("backend login: empty token in response")
	}

	c.SetToken(auth.Token)
	return nil
}

// ListDir lists the contents of a directory.
func (c *Client) ListDir(ctx context.Context, path string) ([]FileEntry, error) {
	ctx, span := telemetry.StartBackendSpan(ctx, "list", path)
	defer span.End()

	resource, err := c.getResource(ctx, path)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	entries := make([]FileEntry, 0, len(resource.Items))
	for i := range resource.Items {
		entries = append(entries, resource.Items[i].toEntry())
	}
	return entries, nil
}

// GetInfo returns metadata for a single file or directory.
func (c *Client) GetInfo(ctx context.Context, path string) (*FileEntry, error) {
	ctx, span := telemetry.StartBackendSpan(ctx, "stat", path)
	defer span.End()

	resource, err := c.getResource(ctx, path)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	entry := resource.toEntry()
	return &entry, nil
}

// Download fetches the raw contents of a file.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	ctx, span := telemetry.StartBackendSpan(ctx, "download", path)
	defer span.End()

	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/api/raw"+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("backend download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	telemetry.SetAttributes(ctx, telemetry.BackendStatus(resp.StatusCode))

	if err := checkStatus(resp, path); err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("read download body: %w", err)
	}
	return content, nil
}

// Upload writes content to a file, creating it when absent. overrideExisting
// controls whether an existing file is replaced.
func (c *Client) Upload(ctx context.Context, path string, content []byte, overrideExisting bool) error {
	ctx, span := telemetry.StartBackendSpan(ctx, "upload", path)
	defer span.End()

	url := c.baseURL + "/api/resources" + path + "?override=" + strconv.FormatBool(overrideExisting)

	req, err := c.newRequest(ctx, http.MethodPost, url, bytes.NewReader(content))
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("backend upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	telemetry.SetAttributes(ctx, telemetry.BackendStatus(resp.StatusCode))

	if err := checkStatus(resp, path); err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	return nil
}

// Delete removes a file or directory.
func (c *Client) Delete(ctx context.Context, path string) error {
	ctx, span := telemetry.StartBackendSpan(ctx, "delete", path)
	defer span.End()

	req, err := c.newRequest(ctx, http.MethodDelete, c.baseURL+"/api/resources"+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("backend delete: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	telemetry.SetAttributes(ctx, telemetry.BackendStatus(resp.StatusCode))

	if err := checkStatus(resp, path); err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	return nil
}

// Rename moves a file or directory to a new path.
func (c *Client) Rename(ctx context.Context, from, to string) error {
	ctx, span := telemetry.StartBackendSpan(ctx, "rename", from, telemetry.RenameTo(to))
	defer span.End()

	payload, err := json.Marshal(struct {
		Action      string `json:"action"`
		Destination string `json:"destination"`
	}{"rename", to})
	if err != nil {
		return fmt.Errorf("marshal rename request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, c.baseURL+"/api/resources"+from, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("backend rename: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	telemetry.SetAttributes(ctx, telemetry.BackendStatus(resp.StatusCode))

	if err := checkStatus(resp, from); err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	return nil
}

// Mkdir creates a directory. Parents are not created.
func (c *Client) Mkdir(ctx context.Context, path string) error {
	ctx, span := telemetry.StartBackendSpan(ctx, "mkdir", path)
	defer span.End()

	// The trailing slash tells Filebrowser the resource is a directory.
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/api/resources"+path+"/?override=false", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("backend mkdir: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	telemetry.SetAttributes(ctx, telemetry.BackendStatus(resp.StatusCode))

	if err := checkStatus(resp, path); err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	return nil
}

// resourceResponse is the Filebrowser resource shape. Items is populated only
// for directory listings.
type resourceResponse struct {
	Name     string             `json:"name"`
	Path     string             `json:"path"`
	IsDir    bool               `json:"isDir"`
	Size     uint64             `json:"size"`
	Modified string             `json:"modified"`
	MimeType *string            `json:"type"`
	Items    []resourceResponse `json:"items"`
}

func (r *resourceResponse) toEntry() FileEntry {
	var modified int64
	if t, err := time.Parse(time.RFC3339, r.Modified); err == nil {
		modified = t.Unix()
	}

	kind := KindFile
	if r.IsDir {
		kind = KindDirectory
	}

	return FileEntry{
		Name:     r.Name,
		Path:     r.Path,
		Kind:     kind,
		Size:     r.Size,
		Modified: modified,
		MimeType: r.MimeType,
	}
}

func (c *Client) getResource(ctx context.Context, path string) (*resourceResponse, error) {
	p := path
	if p == "" || p == "/" {
		p = ""
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/api/resources"+p, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	telemetry.SetAttributes(ctx, telemetry.BackendStatus(resp.StatusCode))

	if err := checkStatus(resp, path); err != nil {
		return nil, err
	}

	var resource resourceResponse
	if err := json.NewDecoder(resp.Body).Decode(&resource); err != nil {
		return nil, fmt.Errorf("decode resource response: %w", err)
	}
	return &resource, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token != "" {
		req.Header.Set("X-Auth", token)
	}
	return req, nil
}

func checkStatus(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{Status: resp.StatusCode, Path: path}
}
