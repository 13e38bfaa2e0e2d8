package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAPIBase is the path prefix of every remote endpoint.
	DefaultAPIBase = "/api"

	// DefaultTimeout bounds a whole request when none is configured.
	DefaultTimeout = 10 * time.Second
)

// HTTPClient builds requests against the remote service and sends them
// through the Pipeline.
type HTTPClient struct {
	baseURL  string
	pipeline *Pipeline
}

// NewHTTPClient creates a client for server, prefixing every path with apiBase.
func NewHTTPClient(server, apiBase string, pipeline *Pipeline) *HTTPClient {
	return &HTTPClient{
		baseURL:  NormalizeBaseURL(server, apiBase),
		pipeline: pipeline,
	}
}

// NormalizeBaseURL adds an http:// scheme when missing and joins apiBase.
func NormalizeBaseURL(server, apiBase string) string {
	base := strings.TrimRight(strings.TrimSpace(server), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	apiBase = strings.Trim(apiBase, "/")
	if apiBase != "" && !strings.HasSuffix(base, "/"+apiBase) {
		base += "/" + apiBase
	}
	return base
}

// ValidateServer checks that server parses as an absolute http(s) URL.
func ValidateServer(server string) error {
	if strings.TrimSpace(server) == "" {
		return fmt.Errorf("server address is empty")
	}
	u, err := url.Parse(NormalizeBaseURL(server, ""))
	if err != nil {
		return fmt.Errorf("invalid server address %q: %w", server, err)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server address %q: missing host", server)
	}
	return nil
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.pipeline.Do(ctx, req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.pipeline.Do(ctx, req)
}

// BaseURL returns the base URL including the API prefix.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// ParseResponse decodes a successful JSON response into target.
// Failures never reach here: the pipeline already turned them into errors.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
