// Package httprequest provides the HTTP request node that fetches data from a URL.
package httprequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a response is kept as node output.
	maxBodySize = 1 << 20
)

var validMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true, http.MethodDelete: true,
	http.MethodPatch: true, http.MethodHead: true, http.MethodOptions: true,
}

// HTTPRequestNode performs one HTTP request with retries on server and network errors.
type HTTPRequestNode struct {
	id     string
	config HTTPRequestConfig
	client *http.Client
}

// HTTPRequestConfig defines the configuration for HTTP request nodes.
type HTTPRequestConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"request_body,omitempty"`
	Retries RetryConfig       `json:"retries"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	Attempts int           `json:"attempts"`
	Delay    time.Duration `json:"delay"`
}

// NewHTTPRequestNode creates a new HTTP request node from rendered parameters.
func NewHTTPRequestNode(id string, config map[string]any, client *http.Client, retries RetryConfig) (*HTTPRequestNode, error) {
	httpConfig := HTTPRequestConfig{
		Method:  http.MethodGet,
		Headers: make(map[string]string),
		Retries: retries,
	}

	if httpConfig.Retries.Attempts < 1 {
		httpConfig.Retries.Attempts = 1
	}

	url, ok := config["url"].(string)
	if !ok || strings.TrimSpace(url) == "" {
		return nil, errors.New("missing required field 'url'")
	}

	httpConfig.URL = strings.TrimSpace(url)

	if method, ok := config["method"].(string); ok && method != "" {
		httpConfig.Method = strings.ToUpper(method)
	}

	if !validMethods[httpConfig.Method] {
		return nil, fmt.Errorf("invalid HTTP method: %s", httpConfig.Method)
	}

	switch headers := config["headers"].(type) {
	case map[string]any:
		for k, v := range headers {
			if strVal, ok := v.(string); ok {
				httpConfig.Headers[k] = strVal
			}
		}
	case map[string]string:
		for k, v := range headers {
			httpConfig.Headers[k] = v
		}
	}

	if body, ok := config["request_body"].(string); ok {
		httpConfig.Body = body
	}

	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &HTTPRequestNode{
		id:     id,
		config: httpConfig,
		client: client,
	}, nil
}

// ID returns the node ID.
func (n *HTTPRequestNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *HTTPRequestNode) Type() string {
	return "http_request"
}

// Execute performs the HTTP request. Outputs are status_code, headers, body and, when the
// response is JSON, the decoded json.
func (n *HTTPRequestNode) Execute(ctx context.Context) (map[string]any, error) {
	var lastErr error

	for attempt := 1; attempt <= n.config.Retries.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(n.config.Retries.Delay):
			}
		}

		result, err := n.performRequest(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Don't retry on client errors (4xx), only on server errors (5xx) or network errors
		httpErr := &HTTPError{}
		if errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError {
			break
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("HTTP request failed after %d attempts: %w", n.config.Retries.Attempts, lastErr)
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// performRequest executes a single HTTP request.
func (n *HTTPRequestNode) performRequest(ctx context.Context) (map[string]any, error) {
	var reqBody io.Reader
	if n.config.Body != "" {
		reqBody = strings.NewReader(n.config.Body)
	}

	req, err := http.NewRequestWithContext(ctx, n.config.Method, n.config.URL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range n.config.Headers {
		req.Header.Set(key, value)
	}

	// Set default Content-Type if not specified and body is present
	if n.config.Body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	headers := make(map[string]any, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	result := map[string]any{
		"status_code": resp.StatusCode,
		"headers":     headers,
		"body":        string(respBody),
	}

	var jsonBody any
	if err := json.Unmarshal(respBody, &jsonBody); err == nil {
		result["json"] = jsonBody
	}

	return result, nil
}
