package checkout

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

// HTTPClientConfig configures the provider HTTP client.
type HTTPClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	DefaultHeaders map[string]string
}

// HTTPRequest is a standardized provider request.
type HTTPRequest struct {
	Method      string
	Endpoint    string
	Headers     map[string]string
	Body        any
	QueryParams map[string]string
}

// HTTPResponse is a standardized provider response.
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// HTTPClient performs JSON HTTP operations against the payment provider
// with a bounded timeout. It does no retries; retry policy belongs to the
// caller.
type HTTPClient struct {
	config *HTTPClientConfig
	client *http.Client
}

// NewHTTPClient creates a provider HTTP client.
func NewHTTPClient(config *HTTPClientConfig) *HTTPClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &HTTPClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// SendJSON sends a JSON request and returns the response. Responses with a
// non-2xx status are returned together with an error so callers can map the
// body to a structured failure.
func (c *HTTPClient) SendJSON(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	var body io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON body: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	fullURL := c.buildURL(req.Endpoint, req.QueryParams)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	response := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return response, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(respBody))
	}
	return response, nil
}

// ParseJSONResponse decodes the response body into target.
func (c *HTTPClient) ParseJSONResponse(response *HTTPResponse, target any) error {
	if len(response.Body) == 0 {
		return nil
	}
	return json.Unmarshal(response.Body, target)
}

func joinURL(base, endpoint string) string {
	switch {
	case strings.HasSuffix(base, "/") && strings.HasPrefix(endpoint, "/"):
		return base + endpoint[1:]
	case !strings.HasSuffix(base, "/") && !strings.HasPrefix(endpoint, "/"):
		return base + "/" + endpoint
	}
	return base + endpoint
}

// buildURL constructs the full URL with query parameters.
func (c *HTTPClient) buildURL(endpoint string, queryParams map[string]string) string {
	fullURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		fullURL = joinURL(c.config.BaseURL, endpoint)
	}
	if len(queryParams) == 0 {
		return fullURL
	}
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL
	}
	q := u.Query()
	for key, value := range queryParams {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
