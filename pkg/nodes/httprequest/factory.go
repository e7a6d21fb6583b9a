package httprequest

import (
	"context"
	"net/http"
	"time"

	"github.com/dukex/operion-assistant/pkg/protocol"
)

// HTTPRequestNodeFactory creates HTTPRequestNode instances.
type HTTPRequestNodeFactory struct {
	client  *http.Client
	retries RetryConfig
}

// NewHTTPRequestNodeFactory creates a new HTTP request node factory. A nil client uses
// a default client with a 30 second timeout.
func NewHTTPRequestNodeFactory(client *http.Client) *HTTPRequestNodeFactory {
	return &HTTPRequestNodeFactory{
		client:  client,
		retries: RetryConfig{Attempts: 3, Delay: 500 * time.Millisecond},
	}
}

// WithRetries overrides the retry policy of created nodes.
func (f *HTTPRequestNodeFactory) WithRetries(retries RetryConfig) *HTTPRequestNodeFactory {
	f.retries = retries

	return f
}

// Create creates a new HTTPRequestNode instance.
func (f *HTTPRequestNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewHTTPRequestNode(id, config, f.client, f.retries)
}

// ID returns the factory ID.
func (f *HTTPRequestNodeFactory) ID() string {
	return "http_request"
}

// Name returns the factory name.
func (f *HTTPRequestNodeFactory) Name() string {
	return "HTTP Request"
}

// Description returns the factory description.
func (f *HTTPRequestNodeFactory) Description() string {
	return "Performs HTTP requests with retries on server and network errors"
}
