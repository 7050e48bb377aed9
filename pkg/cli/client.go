package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/mockie/pkg/admin"
	"github.com/getmockd/mockie/pkg/route"
)

// DefaultClientTimeout bounds every admin request.
const DefaultClientTimeout = 30 * time.Second

// AdminClient provides methods for communicating with the mockie admin API.
type AdminClient interface {
	// AddRoute registers or replaces a route.
	AddRoute(ctx context.Context, body admin.AddRouteBody) error
	// ListRoutes returns the registered routes.
	ListRoutes(ctx context.Context) ([]route.Summary, error)
	// Save asks the server to write its routes file and returns the number saved.
	Save(ctx context.Context) (int, error)
	// Shutdown asks the server to stop.
	Shutdown(ctx context.Context) error
	// Health checks if the server is running and returns its route count.
	Health(ctx context.Context) (*admin.HealthResponse, error)
}

// APIError represents an error response from the admin API.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorCodeConnection marks failures to reach the server at all.
const errorCodeConnection = "connection_error"

// adminClient implements AdminClient using HTTP.
type adminClient struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures an admin client.
type ClientOption func(*adminClient)

// WithTimeout sets the HTTP timeout for the client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *adminClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *adminClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewAdminClient creates a new admin API client.
// The baseURL is the server base URL (e.g., "http://localhost:3000").
func NewAdminClient(baseURL string, opts ...ClientOption) AdminClient {
	c := &adminClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddRoute registers or replaces a route.
func (c *adminClient) AddRoute(ctx context.Context, body admin.AddRouteBody) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode route: %w", err)
	}
	var ok admin.OKResponse
	return c.do(ctx, http.MethodPost, admin.PathRoutes, data, &ok)
}

// ListRoutes returns the registered routes.
func (c *adminClient) ListRoutes(ctx context.Context) ([]route.Summary, error) {
	var routes []route.Summary
	if err := c.do(ctx, http.MethodGet, admin.PathRoutes, nil, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// Save asks the server to write its routes file.
func (c *adminClient) Save(ctx context.Context) (int, error) {
	var resp admin.SaveResponse
	if err := c.do(ctx, http.MethodPost, admin.PathSave, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Saved, nil
}

// Shutdown asks the server to stop.
func (c *adminClient) Shutdown(ctx context.Context) error {
	var resp admin.ShutdownResponse
	return c.do(ctx, http.MethodPost, admin.PathShutdown, nil, &resp)
}

// Health checks if the server is running.
func (c *adminClient) Health(ctx context.Context) (*admin.HealthResponse, error) {
	var resp admin.HealthResponse
	if err := c.do(ctx, http.MethodGet, admin.PathHealth, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do performs a request and decodes a 200 response into out.
func (c *adminClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{
			StatusCode: 0,
			ErrorCode:  errorCodeConnection,
			Message:    fmt.Sprintf("cannot connect to mockie at %s: %v", c.baseURL, err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseError parses an error response from the API.
func (c *adminClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorCode:  http.StatusText(resp.StatusCode),
			Message:    errResp.Error,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorCode:  "unknown_error",
		Message:    fmt.Sprintf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
	}
}

// FormatConnectionError returns a user-friendly error message for connection failures.
func FormatConnectionError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode == errorCodeConnection {
		return fmt.Sprintf(`Error: %s

Suggestions:
  • Start the server: mockie serve
  • Check if the server is running on the expected port
  • Point at another server with --server or MOCKIE_SERVER`, apiErr.Message)
	}
	return err.Error()
}
