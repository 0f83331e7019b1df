package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spbu-ds-practicum-2025/balance-service/internal/domain"
	"github.com/spbu-ds-practicum-2025/balance-service/internal/metrics"
)

// Credential headers.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserToken = "X-User-Token"
)

// maxBodyBytes caps the deposit request body.
const maxBodyBytes = 4 << 10

// Handler serves the balance endpoints.
type Handler struct {
	service *domain.BalanceService
	metrics *metrics.Metrics
}

// NewHandler creates a new Handler.
func NewHandler(service *domain.BalanceService, m *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		metrics: m,
	}
}

type depositRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func credentialsFromRequest(r *http.Request) domain.Credentials {
	return domain.Credentials{
		AccountID:    r.Header.Get(HeaderUserID),
		SessionToken: r.Header.Get(HeaderUserToken),
	}
}

// GetBalance handles GET: authenticate, then return the balance snapshot.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	account, err := h.service.GetBalance(r.Context(), credentialsFromRequest(r))
	if err != nil {
		h.metrics.Observe(metrics.OperationReadBalance, handleDomainError(w, r, err), time.Since(start))
		return
	}

	writeJSON(w, http.StatusOK, newBalanceResponse(h.service.Ledger().ReadBalance(account)))
	h.metrics.Observe(metrics.OperationReadBalance, metrics.OutcomeSuccess, time.Since(start))
}

// Deposit handles POST: authenticate, parse {"amount": ...}, then increment atomically.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// The body is read before a pooled connection is taken; a read failure is reported
	// only after authentication so that 401 keeps precedence.
	body, readErr := readDepositBody(w, r)

	var balance, amount decimal.Decimal
	err := h.service.WithAccount(r.Context(), credentialsFromRequest(r),
		func(ctx context.Context, account *domain.AuthenticatedAccount) error {
			if readErr != nil {
				return readErr
			}
			var err error
			if amount, err = decodeDepositRequest(body); err != nil {
				return err
			}
			balance, err = h.service.Ledger().Deposit(ctx, account, amount)
			return err
		})
	if err != nil {
		h.metrics.Observe(metrics.OperationDeposit, handleDomainError(w, r, err), time.Since(start))
		return
	}

	writeJSON(w, http.StatusOK, newBalanceResponse(balance))
	h.metrics.Observe(metrics.OperationDeposit, metrics.OutcomeSuccess, time.Since(start))
	h.metrics.ObserveDeposit(amount)
}

// MethodNotAllowed rejects verbs other than GET and POST without touching the core.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST, OPTIONS")
	writeError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed")
}

// NotFound answers unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, CodeNotFound, "Not found")
}

func readDepositBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable request body: %v", domain.ErrInvalidAmount, err)
	}
	return body, nil
}

func decodeDepositRequest(body []byte) (decimal.Decimal, error) {
	var req depositRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidAmount, err)
	}
	if req.Amount == nil {
		return decimal.Zero, fmt.Errorf("%w: amount is required", domain.ErrInvalidAmount)
	}
	return *req.Amount, nil
}
