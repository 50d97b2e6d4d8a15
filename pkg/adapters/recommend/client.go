package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/racketbot/pkg/domain"
)

// DefaultEndpoint is where the reference recommendation service listens.
const DefaultEndpoint = "http://localhost:8000/recommend"

// maxResponseSize bounds how much of the response body is read.
const maxResponseSize = 1 << 20

var (
	// ErrUnexpectedStatus is returned for any non-2xx response.
	ErrUnexpectedStatus = errors.New("recommendation service returned unexpected status")
	// ErrMalformedResponse is returned when the body is not JSON or lacks a required field.
	ErrMalformedResponse = errors.New("malformed recommendation response")
)

// Client implements ports.Recommender over HTTP.
// It performs a single POST per call and never retries.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the transport. Timeouts, if any, come from this client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithLogger configures a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a client posting to endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wireResponse uses pointers so that absent fields can be told apart from empty ones.
type wireResponse struct {
	Recommendations *[]domain.RecommendationItem `json:"recommendations"`
	Explanation     *string                      `json:"explanation"`
}

// Recommend posts the answers as a flat JSON object and decodes the response.
func (c *Client) Recommend(ctx context.Context, answers domain.Answers) (*domain.RecommendResponse, error) {
	payload, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("posting answers", "endpoint", c.endpoint, "size", len(payload))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommendation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var wire wireResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if wire.Recommendations == nil {
		return nil, fmt.Errorf("%w: missing recommendations", ErrMalformedResponse)
	}
	if wire.Explanation == nil {
		return nil, fmt.Errorf("%w: missing explanation", ErrMalformedResponse)
	}

	c.logger.Debug("recommendations received", "count", len(*wire.Recommendations))
	return &domain.RecommendResponse{
		Recommendations: *wire.Recommendations,
		Explanation:     *wire.Explanation,
	}, nil
}
