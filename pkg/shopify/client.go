package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	errs "shopsync/pkg/errors"
	"shopsync/pkg/logger"
	"shopsync/pkg/ratelimit"
	"shopsync/pkg/retry"
)

// defaultRetryAfter is used when a 429 response carries no Retry-After header
const defaultRetryAfter = 2 * time.Second

// Response is the outcome of one logical request after rate limiting and
// retries have been applied.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is the request executor for the remote catalog API. All outbound
// calls acquire the shared rate limiter first, honor server-declared
// rate-limit waits, and retry transient failures with exponential backoff.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	limiter    ratelimit.Limiter
	maxRetries int
	backoff    retry.BackoffStrategy
	locationID string
	logger     logger.Logger
}

// ClientOptions configures a Client
type ClientOptions struct {
	// ShopURL is the shop host, e.g. "example.myshopify.com"
	ShopURL string
	// AccessToken is the admin API token sent with every request
	AccessToken string
	// APIVersion selects the admin API version path segment
	APIVersion string
	// LocationID identifies the inventory location for stock mutations
	LocationID string
	// MaxRetries bounds retries for transient failures (not 429 waits)
	MaxRetries int
	// Timeout applies per HTTP attempt
	Timeout time.Duration
}

// NewClient creates a catalog API client
func NewClient(opts ClientOptions, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	host := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(opts.ShopURL, "https://"), "http://"), "/")

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    fmt.Sprintf("https://%s/admin/api/%s", host, opts.APIVersion),
		headers: map[string]string{
			"Content-Type":           "application/json",
			"X-Shopify-Access-Token": opts.AccessToken,
		},
		limiter:    limiter,
		maxRetries: opts.MaxRetries,
		backoff:    retry.DefaultExponentialBackoff(),
		locationID: opts.LocationID,
		logger:     log,
	}
}

// SetHTTPClient replaces the underlying HTTP client (used by tests)
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetBaseURL overrides the computed API base URL (used by tests)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// Do executes a single logical request. A 429 response is waited out per
// the server's Retry-After and retried without consuming an attempt; network
// errors and 5xx responses are retried up to MaxRetries with exponential
// backoff. On exhaustion the caller receives a *errs.RequestError, never a
// panic.
func (c *Client) Do(ctx context.Context, method, url string, payload interface{}) (*Response, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, &errs.Error{
				Type:    errs.ErrorTypeParsing,
				Message: fmt.Sprintf("failed to encode request body: %v", err),
			}
		}
	}

	attempt := 0
	var lastErr error

	for {
		c.limiter.Acquire()

		resp, err := c.attempt(ctx, method, url, body)
		if err == nil {
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				wait := retryAfter(resp.Header)
				c.logger.WarnWithFields("rate limited by server, honoring declared wait", map[string]interface{}{
					"method":  method,
					"url":     url,
					"wait_ms": wait.Milliseconds(),
				})
				if werr := retry.Wait(ctx, wait); werr != nil {
					return nil, werr
				}
				// a rate-limit signal is not a failure; no attempt consumed
				continue
			case resp.StatusCode >= 500:
				lastErr = &errs.Error{
					Type:    errs.ErrorTypeServerError,
					Message: fmt.Sprintf("server returned status %d", resp.StatusCode),
					Code:    resp.StatusCode,
				}
			case resp.StatusCode >= 400:
				// client errors won't change on retry
				return nil, &errs.RequestError{
					Method:   method,
					URL:      url,
					Attempts: attempt + 1,
					Err:      classifyStatus(resp.StatusCode),
				}
			default:
				return resp, nil
			}
		} else {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = &errs.Error{
				Type:    errs.ErrorTypeNetwork,
				Message: fmt.Sprintf("network error: %v", err),
			}
		}

		attempt++
		if attempt > c.maxRetries {
			c.logger.ErrorWithFields("max retries exceeded", map[string]interface{}{
				"method":      method,
				"url":         url,
				"max_retries": c.maxRetries,
				"last_error":  lastErr.Error(),
			})
			return nil, &errs.RequestError{
				Method:   method,
				URL:      url,
				Attempts: attempt,
				Err:      lastErr,
			}
		}

		delay := c.backoff.NextDelay(attempt)
		c.logger.WarnWithFields("retrying request", map[string]interface{}{
			"method":   method,
			"url":      url,
			"attempt":  attempt,
			"delay_ms": delay.Milliseconds(),
			"error":    lastErr.Error(),
		})
		if werr := retry.Wait(ctx, delay); werr != nil {
			return nil, werr
		}
	}
}

// attempt issues exactly one HTTP request
func (c *Client) attempt(ctx context.Context, method, url string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugWithFields("request attempt failed", map[string]interface{}{
			"method":   method,
			"url":      url,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.DebugWithFields("request attempt completed", map[string]interface{}{
		"method":   method,
		"url":      url,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// GetJSON executes a GET request and decodes the JSON response body
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) (*Response, error) {
	resp, err := c.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(resp.Body, target); err != nil {
		preview := string(resp.Body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return resp, nil
}

// retryAfter reads the server-declared wait from a 429 response. Both header
// forms are honored verbatim, seconds and HTTP-date; a missing or malformed
// value falls back to a small fixed wait.
func retryAfter(header http.Header) time.Duration {
	value := strings.TrimSpace(header.Get("Retry-After"))
	if value == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds >= 0 {
		return time.Duration(seconds * float64(time.Second))
	}
	if at, err := http.ParseTime(value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
		return 0
	}
	return defaultRetryAfter
}

func classifyStatus(code int) error {
	errType := errs.ErrorTypeUnknown
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = errs.ErrorTypeAuth
	case http.StatusNotFound:
		errType = errs.ErrorTypeNotFound
	}
	return &errs.Error{
		Type:    errType,
		Message: fmt.Sprintf("unexpected status code: %d", code),
		Code:    code,
	}
}
