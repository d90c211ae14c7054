// Package backend is the HTTP client for the SofiSoft admin backend.
//
// Every call reads the base URL and the bearer token from State at call
// time, so a login, logout or base URL change is visible on the next request.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
)

const tracerName = "github.com/SofiSoft/sofisoft-admin/internal/adapter/outbound/backend"

// State supplies the values a request depends on. Both are read per call.
type State interface {
	// BaseURL returns the backend origin without a trailing slash.
	BaseURL() string
	// Token returns the bearer token, or "" when no session holds one.
	Token() string
}

// Client issues requests against the backend.
type Client struct {
	state      State
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

// NewClient creates a Client reading its base URL and token from state.
func NewClient(state State, opts ...Option) *Client {
	c := &Client{
		state:  state,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// Request sends method to path with an optional JSON body and returns the
// decoded response. Only GET and POST are supported.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (api.Payload, error) {
	if method != http.MethodGet && method != http.MethodPost {
		return api.Payload{}, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	var rc requestConfig
	for _, opt := range opts {
		opt(&rc)
	}

	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	requestID := uuid.NewString()
	start := time.Now()

	payload, status, err := c.do(ctx, method, path, body, rc)
	elapsed := time.Since(start)

	outcome := outcomeOK
	switch err.(type) {
	case nil:
	case *APIError:
		outcome = outcomeAPIError
	case *TransportError:
		outcome = outcomeTransport
	case *DecodeError:
		outcome = outcomeDecode
	default:
		outcome = outcomeTransport
	}
	c.metrics.observe(method, metricPath(path), outcome, elapsed.Seconds())

	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.logger.Debug("backend request failed",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", status,
			"duration", elapsed,
			"error", err,
		)
		return api.Payload{}, err
	}

	c.logger.Debug("backend request",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", status,
		"duration", elapsed,
	)
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, rc requestConfig) (api.Payload, int, error) {
	url := c.state.BaseURL() + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return api.Payload{}, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return api.Payload{}, 0, &TransportError{Method: method, Path: path, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.state.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range rc.headers {
		req.Header[k] = vs
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return api.Payload{}, 0, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := ""
		if readErr == nil {
			text = string(respBody)
		}
		return api.Payload{}, resp.StatusCode, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Body:       text,
		}
	}
	if readErr != nil {
		return api.Payload{}, resp.StatusCode, &TransportError{Method: method, Path: path, Err: readErr}
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		if !json.Valid(respBody) {
			return api.Payload{}, resp.StatusCode, &DecodeError{Method: method, Path: path, Body: string(respBody)}
		}
		return api.JSONPayload(respBody), resp.StatusCode, nil
	}
	return api.TextPayload(string(respBody)), resp.StatusCode, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// statusText returns the reason phrase the server sent, falling back to the
// canonical text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// metricPath drops the query string so labels stay bounded.
func metricPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
