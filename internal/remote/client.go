// Package remote is the typed request wrapper around the store service.
//
// The service reports success in a "status" field of every JSON payload
// rather than through HTTP status codes alone, so Send decodes the body
// whatever the transport status and treats anything but "OK" as an
// application failure. The client holds at most one bearer credential; only
// the session store sets or clears it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fake-store/go-client/internal/platform/ratelimiter"
)

const (
	statusOK        = "OK"
	maxPayloadBytes = 4 << 20
	tracerName      = "fake-store/go-client/remote"
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Limiter    *ratelimiter.MapLimiter
	Metrics    *Metrics
	Tracer     trace.Tracer
	Logger     *slog.Logger
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *ratelimiter.MapLimiter
	metrics *Metrics
	tracer  trace.Tracer
	logger  *slog.Logger

	mu             sync.RWMutex
	token          string
	onUnauthorized func(token string)
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("remote base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("remote base url %q must be absolute", opts.BaseURL)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: base,
		http:    httpClient,
		limiter: opts.Limiter,
		metrics: opts.Metrics,
		tracer:  tracer,
		logger:  logger,
	}, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// SetUnauthorizedHandler installs fn to run after any 401/403 response. fn
// receives the token that was attached to the rejected request so a handler
// can ignore rejections of a credential that has since been replaced.
func (c *Client) SetUnauthorizedHandler(fn func(token string)) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// Send performs one round-trip and returns the raw payload of a successful
// response. body, when non-nil, is encoded as JSON.
func (c *Client) Send(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error) {
	route := routeLabel(endpoint)
	requestID := uuid.NewString()
	started := time.Now()

	ctx, span := c.tracer.Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("remote.route", route),
			attribute.String("remote.request_id", requestID),
		),
	)
	defer span.End()

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	payload, httpStatus, err := c.roundTrip(ctx, endpoint, method, body, token, requestID, started)
	outcome := classify(err)
	c.metrics.observe(route, method, outcome, time.Since(started))
	span.SetAttributes(attribute.Int("http.status_code", httpStatus), attribute.String("remote.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.logger.Warn("remote request failed",
			"request_id", requestID,
			"method", method,
			"route", route,
			"http_status", httpStatus,
			"outcome", outcome,
			"latency_ms", time.Since(started).Milliseconds(),
			"error", UserMessage(err),
		)
		if outcome == outcomeUnauthorized && token != "" {
			c.mu.RLock()
			hook := c.onUnauthorized
			c.mu.RUnlock()
			if hook != nil {
				hook(token)
			}
		}
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	c.logger.Debug("remote request",
		"request_id", requestID,
		"method", method,
		"route", route,
		"http_status", httpStatus,
		"latency_ms", time.Since(started).Milliseconds(),
	)
	return payload, nil
}

// Do is Send followed by decoding the payload into out.
func (c *Client) Do(ctx context.Context, endpoint, method string, body, out any) error {
	payload, err := c.Send(ctx, endpoint, method, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &TransportError{Method: method, Endpoint: endpoint, Err: errors.Join(ErrMalformedPayload, err)}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, endpoint, method string, body any, token, requestID string, now time.Time) (json.RawMessage, int, error) {
	transportErr := func(err error) error {
		return &TransportError{Method: method, Endpoint: endpoint, Err: err}
	}

	if !c.limiter.Allow(routeLabel(endpoint), now) {
		return nil, 0, transportErr(ErrThrottled)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, transportErr(err)
		}
		reader = bytes.NewReader(encoded)
	}

	target := c.baseURL.JoinPath(endpoint)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, 0, transportErr(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, transportErr(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, resp.StatusCode, transportErr(err)
	}

	var envelope struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	parseErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		message := envelope.Message
		if parseErr != nil || message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, resp.StatusCode, &ApplicationError{Method: method, Endpoint: endpoint, HTTPStatus: resp.StatusCode, Message: message}
	}
	if parseErr != nil {
		return nil, resp.StatusCode, transportErr(errors.Join(ErrMalformedPayload, parseErr))
	}
	if envelope.Status != statusOK {
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("request failed with status %q", envelope.Status)
		}
		return nil, resp.StatusCode, &ApplicationError{Method: method, Endpoint: endpoint, HTTPStatus: resp.StatusCode, Message: message}
	}
	return raw, resp.StatusCode, nil
}

func classify(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrThrottled):
		return outcomeThrottled
	case errors.Is(err, ErrUnauthorized):
		return outcomeUnauthorized
	case errors.Is(err, ErrApplication):
		return outcomeApplication
	default:
		return outcomeTransport
	}
}

// routeLabel collapses path parameters so metrics and throttling are keyed
// per route rather than per product or category.
func routeLabel(endpoint string) string {
	path := "/" + strings.Trim(strings.SplitN(endpoint, "?", 2)[0], "/")
	switch {
	case strings.HasPrefix(path, "/products/category/"):
		return "/products/category/:category"
	case path == "/products/categories":
		return path
	case strings.HasPrefix(path, "/products/"):
		return "/products/:id"
	default:
		return path
	}
}
