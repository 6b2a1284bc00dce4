package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"linktracker-dashboard/internal/domain"
	"linktracker-dashboard/internal/linkapi"
	"linktracker-dashboard/pkg/validator"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error      string            `json:"error"`
	Message    string            `json:"message,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	RetryAfter *int              `json:"retryAfter,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Headers are already sent, so an encoding failure cannot become a 500.
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeServiceError maps err to a status and body, and logs it. Client
// errors log at warn level, everything else at error level.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status = http.StatusInternalServerError
		body   = ErrorResponse{Error: "Internal server error"}

		validationErr *validator.ValidationError
		rateLimitErr  *linkapi.RateLimitError
		upstreamErr   *linkapi.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body = ErrorResponse{Error: "Validation error", Details: validationErr.Fields}
	case errors.Is(err, domain.ErrInvalidBrandName):
		status = http.StatusBadRequest
		body = ErrorResponse{
			Error:   "Validation error",
			Details: map[string]string{"name": domain.ErrInvalidBrandName.Error()},
		}
	case errors.Is(err, domain.ErrBrandExists):
		status = http.StatusConflict
		body = ErrorResponse{Error: "Brand already exists"}
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
		body = ErrorResponse{Error: "Session not found"}
	case errors.Is(err, domain.ErrLinkNotFound):
		status = http.StatusNotFound
		body = ErrorResponse{Error: "Link not found"}
	case errors.Is(err, linkapi.ErrUnauthorized):
		status = http.StatusForbidden
		body = ErrorResponse{
			Error:   "Authentication failed",
			Message: "Invalid or missing API key. Please contact the administrator.",
		}
	case errors.As(err, &rateLimitErr):
		status = http.StatusTooManyRequests
		body = ErrorResponse{Error: "Rate limit exceeded", Message: rateLimitErr.Error()}
		if rateLimitErr.RetryAfter > 0 {
			seconds := int(rateLimitErr.RetryAfter.Round(time.Second) / time.Second)
			body.RetryAfter = &seconds
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
	case errors.As(err, &upstreamErr):
		body = ErrorResponse{Error: "Failed to create link", Message: upstreamErr.Message}
	}

	log := h.logger.WithContext(r.Context())
	if status < http.StatusInternalServerError {
		log.Warn("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	respondJSON(w, status, body)
}
