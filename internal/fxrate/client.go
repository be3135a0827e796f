// Package fxrate converts amounts into the reporting currency. Rates come from
// a persistent cache first and from a remote exchange-rate API otherwise.
package fxrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"fjacquet/pod-ledger/internal/logging"
)

// Defaults for ClientOptions.
const (
	DefaultBaseURL           = "https://api.exchangerate.host"
	DefaultTimeout           = 10 * time.Second
	DefaultMaxAttempts       = 3
	DefaultBackoffBase       = time.Second
	DefaultBackoffOffset     = time.Second
	DefaultRequestsPerMinute = 60

	historicalPath = "/historical"
	latestPath     = "/live"
	maxBodyBytes   = 1 << 20
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ClientOptions configure the remote rate client.
type ClientOptions struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each attempt, not the whole call.
	Timeout time.Duration
	// MaxAttempts is the total number of tries on HTTP 429.
	MaxAttempts int
	// Wait before retry n (1-based) is BackoffBase*2^(n-1) + BackoffOffset.
	BackoffBase       time.Duration
	BackoffOffset     time.Duration
	// RequestsPerMinute feeds the client-side limiter; negative disables it.
	RequestsPerMinute int
	HTTPClient        *http.Client
	Sleep             SleepFunc
}

// Client fetches USD-style quotes ("$.quotes.USDCAD") from an
// exchangerate.host compatible API.
type Client struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	timeout       time.Duration
	maxAttempts   int
	backoffBase   time.Duration
	backoffOffset time.Duration
	limiter       *rate.Limiter
	sleep         SleepFunc
	logger        logging.Logger
}

// NewClient creates a Client, filling zero options with defaults.
func NewClient(opts ClientOptions, logger logging.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.BackoffOffset == 0 {
		opts.BackoffOffset = DefaultBackoffOffset
	}
	if opts.RequestsPerMinute == 0 {
		opts.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}
	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		apiKey:        opts.APIKey,
		httpClient:    opts.HTTPClient,
		timeout:       opts.Timeout,
		maxAttempts:   opts.MaxAttempts,
		backoffBase:   opts.BackoffBase,
		backoffOffset: opts.BackoffOffset,
		limiter:       rate.NewLimiter(limit, 1),
		sleep:         opts.Sleep,
		logger:        logging.OrDefault(logger).WithField("component", "fxrate.Client"),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the wait after failed attempt n (1-based).
func (c *Client) Backoff(n int) time.Duration {
	return c.backoffBase*time.Duration(1<<uint(n-1)) + c.backoffOffset
}

// Historical returns the source→target rate published for date (YYYY-MM-DD).
func (c *Client) Historical(ctx context.Context, source, target, date string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("date", date)
	params.Set("source", source)
	params.Set("currencies", target)
	return c.quote(ctx, historicalPath, params, source, target, c.maxAttempts)
}

// Latest returns the current source→target rate. It is a last resort and
// makes a single attempt.
func (c *Client) Latest(ctx context.Context, source, target string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("source", source)
	params.Set("currencies", target)
	return c.quote(ctx, latestPath, params, source, target, 1)
}

// quote performs the request, retrying only on HTTP 429.
func (c *Client) quote(ctx context.Context, path string, params url.Values, source, target string, maxAttempts int) (decimal.Decimal, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := c.get(ctx, path, params)
		if err == nil {
			return extractRate(body, source+target)
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRateLimited() {
			return decimal.Zero, err
		}
		if attempt == maxAttempts {
			break
		}

		wait := c.Backoff(attempt)
		c.logger.Warn("Rate limited, backing off",
			logging.F(logging.FieldAttempt, attempt),
			logging.F(logging.FieldDuration, wait.String()),
			logging.F("endpoint", path))
		if err := c.sleep(ctx, wait); err != nil {
			return decimal.Zero, err
		}
	}
	return decimal.Zero, fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}

// get runs one attempt under its own timeout.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: path, Message: http.StatusText(resp.StatusCode)}
	}
	return body, nil
}

// extractRate reads $.quotes.<pair> from a JSON body.
func extractRate(body []byte, pair string) (decimal.Decimal, error) {
	decoder := json.NewDecoder(strings.NewReader(string(body)))
	decoder.UseNumber()
	var doc interface{}
	if err := decoder.Decode(&doc); err != nil {
		return decimal.Zero, fmt.Errorf("invalid JSON: %w", err)
	}

	path := "$.quotes." + pair
	value, err := jsonpath.Get(path, doc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrNoRate, path, err)
	}
	// jsonpath may answer with a one-element list
	if list, ok := value.([]interface{}); ok && len(list) > 0 {
		value = list[0]
	}

	var rateValue decimal.Decimal
	switch v := value.(type) {
	case json.Number:
		rateValue, err = decimal.NewFromString(v.String())
	case float64:
		rateValue = decimal.NewFromFloat(v)
	case string:
		rateValue, err = decimal.NewFromString(v)
	default:
		return decimal.Zero, fmt.Errorf("%w: %s is %v", ErrNoRate, path, value)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrNoRate, path, err)
	}
	if !rateValue.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s is %s", ErrNoRate, path, rateValue)
	}
	return rateValue, nil
}
