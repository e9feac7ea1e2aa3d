// Package guidance is the HTTP implementation of ports.GuidanceClient.
package guidance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// DefaultEndpoint is where the guidance service listens in development.
const DefaultEndpoint = "http://localhost:5001/api/guidance"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

// Client posts onboarding envelopes to the guidance endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

var _ ports.GuidanceClient = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.HTTP = hc
	}
}

// WithTimeout sets the transport timeout. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		hc := *c.HTTP
		hc.Timeout = d
		c.HTTP = &hc
	}
}

// New creates a client for endpoint; an empty endpoint means DefaultEndpoint.
func New(endpoint string, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		Endpoint: endpoint,
		HTTP:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit performs a single POST. Any completed exchange is returned as a
// response, whatever its status; only failures to complete the call are errors.
func (c *Client) Submit(ctx context.Context, envelope domain.Envelope) (*domain.GuidanceResponse, error) {
	b, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to encode onboarding data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		// The status arrived; a truncated body degrades like any malformed body.
		body = nil
	}
	return &domain.GuidanceResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
