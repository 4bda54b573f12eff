package smsctl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/api/", opts...)
	var sleeps []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return c, &sleeps
}

func TestClient_Numbers(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/numbers", r.URL.Path)
		assert.Equal(t, "us", r.URL.Query().Get("country"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Chrome/123")
		assert.Equal(t, "en-US,en;q=0.9", r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"provider":"sms24","count":1,"numbers":[{"id":"12025550123","phone":"+12025550123"}]}`))
	})

	res, err := c.Numbers(context.Background(), "us")
	require.NoError(t, err)
	assert.Equal(t, "sms24", res.Provider)
	require.Len(t, res.Numbers, 1)
	assert.Equal(t, "+12025550123", res.Numbers[0].Phone)
}

func TestClient_PathsAndDecoding(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			_, _ = w.Write([]byte(`{"ok":true}`))
		case "/api/status":
			_, _ = w.Write([]byte(`{"ok":true,"provider":"sms24","available_numbers":3,"cache_ttl_seconds":30,"timestamp":"2024-03-10T12:00:00.000Z"}`))
		case "/api/countries":
			_, _ = w.Write([]byte(`{"provider":"sms24","count":1,"countries":[{"country":"China","code":"cn","count":4}]}`))
		case "/api/numbers/12025550123/messages":
			_, _ = w.Write([]byte(`{"phone":"+12025550123","count":1,"messages":[{"id":"msg-1","from":"Google","text":"code 4821","otp":"4821","time":"2024-03-10T09:15:00.000Z"}]}`))
		case "/api/numbers/12025550123/otp":
			_, _ = w.Write([]byte(`{"phone":"+12025550123","otp":null,"message":"No OTP found"}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.True(t, health.OK)

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, status.AvailableNumbers)
	assert.Equal(t, 30.0, status.CacheTTLSeconds)

	countries, err := c.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cn", countries.Countries[0].Code)

	msgs, err := c.Messages(ctx, "+12025550123")
	require.NoError(t, err)
	require.Len(t, msgs.Messages, 1)
	require.NotNil(t, msgs.Messages[0].OTP)
	assert.Equal(t, "4821", *msgs.Messages[0].OTP)

	otp, err := c.OTP(ctx, "12025550123")
	require.NoError(t, err)
	assert.Nil(t, otp.OTP)
	assert.Equal(t, "No OTP found", otp.Message)
}

func TestClient_RetriesWithLinearBackoff(t *testing.T) {
	var calls atomic.Int32
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"upstream_failed","message":"navigation failed"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	res, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{600 * time.Millisecond, 1200 * time.Millisecond}, *sleeps)
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream_failed","message":"navigation failed"}`))
	})

	_, err := c.Countries(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream_failed", apiErr.Code)
	assert.Equal(t, "navigation failed", apiErr.Message)
	assert.Equal(t, int32(DefaultRetries+1), calls.Load())
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_phone"}`))
	})

	_, err := c.Messages(context.Background(), "12")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid_phone", apiErr.Code)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, *sleeps)
}

func TestClient_PerAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(20*time.Millisecond), WithRetries(0, 0))
	defer close(release)

	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
