// Package fetch issues single outbound GET requests against weather APIs and
// decodes their JSON bodies. Every failure comes back as an *Error carrying an
// Outcome, so callers can tell a timeout from a bad status or a bad body even
// though the tool layer collapses all of them to "no data". There is no retry.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-mcp/internal/observability"
)

// Outcome classifies how a fetch ended. Values double as metric labels.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeRequest   Outcome = "request_error"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeTransport Outcome = "transport_error"
	OutcomeHTTP      Outcome = "http_error"
	OutcomeDecode    Outcome = "decode_error"
	OutcomeMalformed Outcome = "malformed_response"
)

// Error is the failure half of a fetch result.
type Error struct {
	Outcome    Outcome
	StatusCode int // set for OutcomeHTTP
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Outcome, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Outcome, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// OutcomeOf reports the outcome carried by err. A nil error is a success and
// an error that did not come from this package counts as a transport failure.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Outcome
	}
	return OutcomeTransport
}

// Malformed reports a response that decoded cleanly but lacks the structure
// the caller needs (e.g. no forecast list).
func Malformed(format string, args ...any) error {
	return &Error{Outcome: OutcomeMalformed, Err: fmt.Errorf(format, args...)}
}

// Client performs GET requests for one provider.
type Client struct {
	provider   string
	httpClient *http.Client
	params     url.Values
	headers    http.Header
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithDefaultParams adds query parameters to every request, overriding
// per-call values of the same name (API keys, unit selection).
func WithDefaultParams(params url.Values) Option {
	return func(c *Client) {
		for k, vs := range params {
			c.params[k] = append([]string(nil), vs...)
		}
	}
}

// WithHeader sets a header on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithClock swaps the clock used to time requests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a fetch client for the named provider with the given
// per-request timeout.
func NewClient(provider string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		provider:   provider,
		httpClient: &http.Client{Timeout: timeout},
		params:     url.Values{},
		headers:    http.Header{},
		clock:      clockwork.NewRealClock(),
		metrics:    metrics,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider label used in logs and metrics.
func (c *Client) Provider() string { return c.provider }

// GetJSON sends one GET to endpoint with params (plus the client defaults) and
// decodes the JSON body into out. A non-nil error is always an *Error.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	start := c.clock.Now()
	status, err := c.do(ctx, endpoint, params, out)
	outcome := OutcomeOf(err)

	c.metrics.FetchRequests.WithLabelValues(c.provider, string(outcome)).Inc()
	c.metrics.FetchDuration.WithLabelValues(c.provider).Observe(c.clock.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("weather api request failed",
			"provider", c.provider,
			"endpoint", redact(endpoint),
			"outcome", outcome,
			"status", status,
			"error", err,
		)
		return err
	}
	c.logger.Debug("weather api request complete",
		"provider", c.provider,
		"endpoint", redact(endpoint),
		"status", status,
	)
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values, out any) (int, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return 0, &Error{Outcome: OutcomeRequest, Err: fmt.Errorf("parse url: %w", err)}
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	for k, vs := range c.params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, &Error{Outcome: OutcomeRequest, Err: fmt.Errorf("create request: %w", err)}
	}
	for k, vs := range c.headers {
		req.Header[k] = vs
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return 0, &Error{Outcome: OutcomeTimeout, Err: err}
		}
		return 0, &Error{Outcome: OutcomeTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, &Error{
			Outcome:    OutcomeHTTP,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s api error: %s", c.provider, body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return resp.StatusCode, &Error{Outcome: OutcomeTimeout, Err: err}
		}
		return resp.StatusCode, &Error{Outcome: OutcomeDecode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.StatusCode, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// redact drops the query string so API keys never reach the logs.
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}
