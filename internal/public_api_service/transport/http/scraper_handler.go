package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/Chapstick53/phone-sms-api/internal/public_api_service/middleware"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/app"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/classifier"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

// ScraperService is the part of app.Service the handlers use.
type ScraperService interface {
	Numbers(ctx context.Context, country string) (domain.NumbersResult, error)
	Countries(ctx context.Context) (domain.CountriesResult, error)
	Messages(ctx context.Context, phone string) (domain.MessagesResult, error)
	OTP(ctx context.Context, phone string) (domain.OTPResult, error)
	Status(ctx context.Context) (app.Status, error)
	InvalidateNumbers(ctx context.Context)
}

type ScraperHandler struct {
	svc      ScraperService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewScraperHandler(svc ScraperService, validate *validator.Validate, logger *slog.Logger) *ScraperHandler {
	return &ScraperHandler{
		svc:      svc,
		validate: validate,
		logger:   logger.With("handler", "scraper"),
	}
}

// RegisterRoutes registers the public read routes.
func (h *ScraperHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/status", h.handleStatus)
	r.Get("/numbers", h.handleListNumbers)
	r.Get("/numbers/{id}/messages", h.handleListMessages)
	r.Get("/numbers/{id}/otp", h.handleLatestOTP)
	r.Get("/countries", h.handleListCountries)
}

// RegisterAdminRoutes registers routes that must sit behind admin auth.
func (h *ScraperHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/cache/invalidate", h.handleInvalidateCache)
}

func (h *ScraperHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true})
}

func (h *ScraperHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	st, err := h.svc.Status(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, logger, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		OK:               true,
		Provider:         st.Provider,
		AvailableNumbers: st.AvailableNumbers,
		CachedAt:         st.CachedAt,
		CacheTTLSeconds:  st.CacheTTL.Seconds(),
		Timestamp:        classifier.FormatISO(st.Timestamp),
	})
}

func (h *ScraperHandler) handleListNumbers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	q := NumbersQuery{Country: strings.TrimSpace(r.URL.Query().Get("country"))}
	if err := h.validate.Struct(q); err != nil {
		logger.WarnContext(ctx, "Invalid numbers query", "error", err)
		jsonError(w, logger, "invalid_request", "country filter must be at most 64 characters", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Numbers(ctx, q.Country)
	if err != nil {
		h.writeServiceError(ctx, w, logger, "numbers", err)
		return
	}
	logger.DebugContext(ctx, "Numbers listed", "count", res.Count, "country", q.Country)
	writeJSON(w, http.StatusOK, res)
}

func (h *ScraperHandler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	id, ok := h.phoneID(w, r, logger)
	if !ok {
		return
	}
	res, err := h.svc.Messages(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, logger, "messages", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ScraperHandler) handleLatestOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	id, ok := h.phoneID(w, r, logger)
	if !ok {
		return
	}
	res, err := h.svc.OTP(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, logger, "otp", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ScraperHandler) handleListCountries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	res, err := h.svc.Countries(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, logger, "countries", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ScraperHandler) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	admin, ok := middleware.AdminFromContext(ctx)
	if !ok {
		logger.ErrorContext(ctx, "Admin identity missing from context; admin middleware must run first")
		jsonError(w, logger, "internal_error", "", http.StatusInternalServerError)
		return
	}
	h.svc.InvalidateNumbers(ctx)
	logger.InfoContext(ctx, "Numbers cache invalidated", "admin", admin.Subject)
	writeJSON(w, http.StatusOK, InvalidateResponse{Invalidated: true, By: admin.Subject})
}

// phoneID validates the {id} path parameter and strips a leading "+".
func (h *ScraperHandler) phoneID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	param := PhoneParam{ID: strings.TrimPrefix(strings.TrimSpace(chi.URLParam(r, "id")), "+")}
	if err := h.validate.Struct(param); err != nil {
		logger.WarnContext(r.Context(), "Invalid phone id", "id", param.ID, "error", err)
		jsonError(w, logger, "invalid_phone", "phone id must be 7-15 digits", http.StatusBadRequest)
		return "", false
	}
	id, err := domain.NormalizePhoneID(param.ID)
	if err != nil {
		jsonError(w, logger, "invalid_phone", "phone id must be 7-15 digits", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func (h *ScraperHandler) writeServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPhone):
		jsonError(w, logger, "invalid_phone", err.Error(), http.StatusBadRequest)
	case domain.IsUpstreamUnavailable(err):
		logger.ErrorContext(ctx, "Upstream extraction failed", "op", op, "error", err)
		jsonError(w, logger, "upstream_failed", err.Error(), http.StatusBadGateway)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.WarnContext(ctx, "Request ended before extraction finished", "op", op, "error", err)
		jsonError(w, logger, "timeout", err.Error(), http.StatusGatewayTimeout)
	default:
		logger.ErrorContext(ctx, "Unexpected extraction error", "op", op, "error", err)
		jsonError(w, logger, "internal_error", "", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func jsonError(w http.ResponseWriter, logger *slog.Logger, code, message string, statusCode int) {
	logger.WarnContext(context.Background(), "API Error Response", "status_code", statusCode, "error", code, "message", message)
	writeJSON(w, statusCode, ErrorResponse{Error: code, Message: message})
}
