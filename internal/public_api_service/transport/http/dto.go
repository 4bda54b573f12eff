package http

import "time"

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse for GET /api/health.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// StatusResponse for GET /api/status.
type StatusResponse struct {
	OK               bool       `json:"ok"`
	Provider         string     `json:"provider"`
	AvailableNumbers int        `json:"available_numbers"`
	CachedAt         *time.Time `json:"cached_at,omitempty"`
	CacheTTLSeconds  float64    `json:"cache_ttl_seconds"`
	Timestamp        string     `json:"timestamp"`
}

// NumbersQuery holds the query parameters of GET /api/numbers.
type NumbersQuery struct {
	Country string `validate:"omitempty,max=64"`
}

// PhoneParam is the {id} path segment, without a leading "+".
type PhoneParam struct {
	ID string `validate:"required,numeric,min=7,max=15"`
}

// InvalidateResponse for POST /api/admin/cache/invalidate.
type InvalidateResponse struct {
	Invalidated bool   `json:"invalidated"`
	By          string `json:"by,omitempty"`
}
