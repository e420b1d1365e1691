// Package httpclient provides a shared rate-limited JSON client for external APIs.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/archon-research/cryptoplace/internal/pkg/retry"
)

// Config holds the configuration for the HTTP client.
type Config struct {
	Timeout time.Duration

	// MaxRetries is the number of transport-level retries for 429/5xx and
	// network errors. Zero disables retries.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64

	// RateLimitPerMin bounds outgoing requests; 0 disables limiting.
	RateLimitPerMin int
	RateBurst       int

	// HTTPClient overrides the underlying client (Timeout is then ignored).
	HTTPClient *http.Client
}

// DefaultConfig returns sensible defaults for the HTTP client.
func DefaultConfig() Config {
	return Config{
		Timeout:         15 * time.Second,
		MaxRetries:      0,
		InitialBackoff:  500 * time.Millisecond,
		MaxBackoff:      10 * time.Second,
		BackoffFactor:   2.0,
		RateLimitPerMin: 30,
		RateBurst:       3,
	}
}

// RequestConfig holds per-request configuration.
type RequestConfig struct {
	URL     string
	Query   url.Values
	Headers map[string]string
}

// MessageParser extracts an API-specific error message from an error body.
// It returns "" when the body has no recognisable message.
type MessageParser func(body []byte) string

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// Client wraps an HTTP client with rate limiting and optional retries.
type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	retryConfig   retry.Config
	logger        *slog.Logger
	messageParser MessageParser
}

// NewClient creates a new HTTP client with the given configuration.
func NewClient(cfg Config, logger *slog.Logger, messageParser MessageParser) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if messageParser == nil {
		messageParser = func([]byte) string { return "" }
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimitPerMin > 0 {
		burst := max(cfg.RateBurst, 1)
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RateLimitPerMin)/60.0), burst)
	}

	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		retryConfig: retry.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxBackoff:     cfg.MaxBackoff,
			BackoffFactor:  cfg.BackoffFactor,
		},
		logger:        logger,
		messageParser: messageParser,
	}
}

// GetJSON performs a GET request and decodes the JSON body into result.
func (c *Client) GetJSON(ctx context.Context, reqCfg RequestConfig, result any) error {
	fullURL := reqCfg.URL
	if len(reqCfg.Query) > 0 {
		fullURL = fullURL + "?" + reqCfg.Query.Encode()
	}

	onRetry := func(attempt int, err error, backoff time.Duration) {
		c.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"maxRetries", c.retryConfig.MaxRetries,
			"backoff", backoff,
			"error", err,
		)
	}

	return retry.DoVoid(ctx, c.retryConfig, isRetryable, onRetry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return WrapNonRetryable(fmt.Errorf("rate limiter: %w", err))
		}
		return c.doSingleRequest(ctx, fullURL, reqCfg.Headers, result)
	})
}

func (c *Client) doSingleRequest(ctx context.Context, fullURL string, headers map[string]string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return WrapNonRetryable(fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return WrapNonRetryable(fmt.Errorf("HTTP request failed: %w", err))
		}
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: c.messageParser(body)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return statusErr
		}
		return WrapNonRetryable(statusErr)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return WrapNonRetryable(fmt.Errorf("parsing response: %w", err))
	}

	return nil
}

// NonRetryableError wraps errors that should not be retried.
type NonRetryableError struct {
	err error
}

func (e *NonRetryableError) Error() string {
	return e.err.Error()
}

func (e *NonRetryableError) Unwrap() error {
	return e.err
}

// WrapNonRetryable wraps an error to indicate it should not be retried.
func WrapNonRetryable(err error) error {
	return &NonRetryableError{err: err}
}

func isRetryable(err error) bool {
	var nonRetryable *NonRetryableError
	return !errors.As(err, &nonRetryable)
}
