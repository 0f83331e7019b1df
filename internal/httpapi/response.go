package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/spbu-ds-practicum-2025/balance-service/internal/domain"
	"github.com/spbu-ds-practicum-2025/balance-service/internal/metrics"
)

// Error codes returned in the error envelope.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidAmount    = "INVALID_AMOUNT"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeNotFound         = "NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// BalanceResponse is the success body. Balance is written as a bare JSON number.
type BalanceResponse struct {
	Balance json.Number `json:"balance"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId"`
}

func newBalanceResponse(balance decimal.Decimal) BalanceResponse {
	return BalanceResponse{Balance: json.Number(balance.StringFixed(domain.AmountScale))}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

// handleDomainError maps domain errors to HTTP responses and returns the metrics outcome.
// Every authentication failure produces the same response.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrAccountNotFound):
		slog.DebugContext(r.Context(), "request unauthorized", "request_id", RequestIDFromContext(r.Context()), "cause", err)
		writeError(w, r, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return metrics.OutcomeUnauthorized

	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, r, http.StatusBadRequest, CodeInvalidAmount, "Invalid amount")
		return metrics.OutcomeInvalidAmount

	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		slog.ErrorContext(r.Context(), "store unavailable", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, r, http.StatusServiceUnavailable, CodeStoreUnavailable, "Service temporarily unavailable")
		return metrics.OutcomeStoreUnavailable

	default:
		slog.ErrorContext(r.Context(), "request failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, r, http.StatusInternalServerError, CodeInternal, "Internal error")
		return metrics.OutcomeError
	}
}
