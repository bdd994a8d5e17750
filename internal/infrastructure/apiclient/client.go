// Package apiclient provides the client for the TrackEats backend REST API
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lastcallsoftware/trackeats/internal/infrastructure/auth"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/config"
	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	serviceName    = "TrackEats API"
	maxMessageSize = 300
)

// Observer receives one call per backend request
type Observer interface {
	ObserveBackend(method, endpoint string, status int, elapsed time.Duration)
}

// Client handles communication with the backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	observer   Observer
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver reports every call to o
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New creates a new API client instance
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.API.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ outbound.BackendAPI = (*Client)(nil)

// request describes one backend call. endpoint is the path template used
// for logs and metrics, path the concrete path.
type request struct {
	method   string
	endpoint string
	path     string
	creds    outbound.Credentials
	body     interface{}
}

func (c *Client) do(ctx context.Context, req request, response interface{}) error {
	var reader io.Reader
	if req.body != nil {
		jsonBody, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if req.creds != nil {
		token, err := req.creds.Token()
		if err != nil {
			if stderrors.Is(err, auth.ErrTokenExpired) {
				req.creds.Invalidate(err.Error())
			}
			return errors.NewUnauthorizedError("").WithCause(err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("API request",
		zap.String("method", req.method),
		zap.String("endpoint", req.endpoint),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req, 0, start)
		c.logger.Warn("API request failed",
			zap.String("method", req.method),
			zap.String("endpoint", req.endpoint),
			zap.Error(err),
		)
		return errors.NewExternalServiceError(serviceName, err)
	}
	defer resp.Body.Close()
	c.observe(req, resp.StatusCode, start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewExternalServiceError(serviceName, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		message := extractMessage(body)
		c.logger.Warn("API error response",
			zap.String("method", req.method),
			zap.String("endpoint", req.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		if resp.StatusCode == http.StatusUnauthorized && req.creds != nil {
			req.creds.Invalidate(message)
			return errors.NewUnauthorizedError("")
		}
		return errors.FromStatus(resp.StatusCode, message)
	}

	if response == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, response); err != nil {
		return errors.NewExternalServiceError(serviceName, fmt.Errorf("failed to unmarshal response: %w", err))
	}
	return nil
}

func (c *Client) observe(req request, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveBackend(req.method, req.endpoint, status, time.Since(start))
	}
}

// extractMessage pulls a human-readable message out of an error body. The
// backend answers with {"msg": ...}, {"message": ...}, {"error": ...} or
// plain text depending on the layer that failed.
func extractMessage(body []byte) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"msg", "message", "error"} {
			if s, ok := fields[key].(string); ok && s != "" {
				return s
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "<") || strings.HasPrefix(text, "{") {
		return ""
	}
	if len(text) > maxMessageSize {
		cut := maxMessageSize
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}

// Ping checks if the API backend is reachable
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, request{method: http.MethodGet, endpoint: "/health", path: "/health"}, nil)
	if err != nil && errors.GetCode(err) != errors.CodeExternalServiceError {
		// any answer below 500 means the backend is up
		return nil
	}
	return err
}
