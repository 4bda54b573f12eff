// Package smsctl is the HTTP client behind the smsctl command line tool.
package smsctl

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

	apihttp "github.com/Chapstick53/phone-sms-api/internal/public_api_service/transport/http"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

const (
	DefaultTimeout = 15 * time.Second
	DefaultRetries = 2
	DefaultBackoff = 600 * time.Millisecond

	maxErrorBody = 4 << 10
)

// DefaultHeaders are sent with every request unless overridden.
var DefaultHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Accept":                    "application/json,text/html;q=0.9,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api returned %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api returned %d %s", e.StatusCode, e.Code)
}

// Retryable reports whether repeating the request may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client talks to the public API. Requests that fail with a transport error,
// a 5xx or a 429 are retried with linear backoff.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	backoff    time.Duration
	headers    map[string]string
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetries sets how many times a failed request is repeated.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.backoff = backoff
	}
}

// WithHeader adds or overrides a default header.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// NewClient creates a client for the API rooted at baseURL, e.g.
// "http://localhost:4000/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
		backoff:    DefaultBackoff,
		headers:    make(map[string]string, len(DefaultHeaders)),
		sleep:      sleepContext,
	}
	for k, v := range DefaultHeaders {
		c.headers[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) (apihttp.HealthResponse, error) {
	var res apihttp.HealthResponse
	err := c.get(ctx, "/health", nil, &res)
	return res, err
}

func (c *Client) Status(ctx context.Context) (apihttp.StatusResponse, error) {
	var res apihttp.StatusResponse
	err := c.get(ctx, "/status", nil, &res)
	return res, err
}

func (c *Client) Countries(ctx context.Context) (domain.CountriesResult, error) {
	var res domain.CountriesResult
	err := c.get(ctx, "/countries", nil, &res)
	return res, err
}

// Numbers lists available numbers; an empty country lists all of them.
func (c *Client) Numbers(ctx context.Context, country string) (domain.NumbersResult, error) {
	var query url.Values
	if country != "" {
		query = url.Values{"country": {country}}
	}
	var res domain.NumbersResult
	err := c.get(ctx, "/numbers", query, &res)
	return res, err
}

func (c *Client) Messages(ctx context.Context, id string) (domain.MessagesResult, error) {
	var res domain.MessagesResult
	err := c.get(ctx, "/numbers/"+url.PathEscape(strings.TrimPrefix(id, "+"))+"/messages", nil, &res)
	return res, err
}

func (c *Client) OTP(ctx context.Context, id string) (domain.OTPResult, error) {
	var res domain.OTPResult
	err := c.get(ctx, "/numbers/"+url.PathEscape(strings.TrimPrefix(id, "+"))+"/otp", nil, &res)
	return res, err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = c.do(ctx, target, out)
		if lastErr == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && !apiErr.Retryable() {
			return lastErr
		}
		if ctx.Err() != nil || attempt >= c.retries {
			return lastErr
		}
		if err := c.sleep(ctx, c.backoff*time.Duration(attempt+1)); err != nil {
			return lastErr
		}
	}
}

func (c *Client) do(ctx context.Context, target string, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
		var body apihttp.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err == nil && body.Error != "" {
			apiErr.Code = body.Error
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
