// Package perfapi is a typed client for the performance service: takeoff N1
// derate, stabilizer trim and the simulator read/write endpoints.
package perfapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	takeoffDeratePath = "/takeoff/derate"
	takeoffTrimPath   = "/takeoff/trim"
	setDeratePath     = "/x-plane/set-derate"
	getWeightPath     = "/x-plane/get-weight"
	getCGPath         = "/x-plane/get-cg"

	// Cap on error bodies kept in StatusError.
	maxErrorBody = 512
)

// StatusError is returned when the performance service answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("perf service %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// API is the set of performance-service calls used by the console.
type API interface {
	TakeoffDerate(ctx context.Context, req TakeoffRequest) (TakeoffResponse, error)
	SetDerate(ctx context.Context, req SetDerateRequest) (MessageResponse, error)
	Trim(ctx context.Context, req TrimRequest) (TrimResponse, error)
	GetWeight(ctx context.Context) (WeightResponse, error)
	GetCG(ctx context.Context) (CGResponse, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient returns a client for baseURL. timeout bounds every call; the
// caller's context can shorten it further.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) TakeoffDerate(ctx context.Context, req TakeoffRequest) (TakeoffResponse, error) {
	var out TakeoffResponse
	err := c.do(ctx, http.MethodPost, takeoffDeratePath, req, &out)
	return out, err
}

func (c *Client) SetDerate(ctx context.Context, req SetDerateRequest) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, http.MethodPost, setDeratePath, req, &out)
	return out, err
}

func (c *Client) Trim(ctx context.Context, req TrimRequest) (TrimResponse, error) {
	var out TrimResponse
	err := c.do(ctx, http.MethodPost, takeoffTrimPath, req, &out)
	return out, err
}

func (c *Client) GetWeight(ctx context.Context) (WeightResponse, error) {
	var out WeightResponse
	err := c.do(ctx, http.MethodGet, getWeightPath, nil, &out)
	return out, err
}

func (c *Client) GetCG(ctx context.Context) (CGResponse, error) {
	var out CGResponse
	err := c.do(ctx, http.MethodGet, getCGPath, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("perf service %s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("perf service: close body", "path", path, "error", err)
		}
	}()

	c.logger.Debug("perf service call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("perf service %s %s: empty response body", method, path)
		}
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
