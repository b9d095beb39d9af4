package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/online-loan-project/jorngka-backend/internal/adapter/http/dto"
	"github.com/online-loan-project/jorngka-backend/internal/domain"
)

// RepaymentService defines the behavior needed by RepaymentHandler.
type RepaymentService interface {
	GetInstallment(ctx context.Context, id string) (*domain.RepaymentInstallment, error)
	MarkPaid(ctx context.Context, installmentID string, metadata map[string]any) (*domain.CreditTransaction, error)
	MarkUnpaid(ctx context.Context, installmentID string) error
}

// RepaymentHandler handles repayment settlement HTTP requests.
type RepaymentHandler struct {
	repaymentUC RepaymentService
}

// NewRepaymentHandler creates a new RepaymentHandler.
func NewRepaymentHandler(repaymentUC RepaymentService) *RepaymentHandler {
	return &RepaymentHandler{repaymentUC: repaymentUC}
}

// Get retrieves a schedule repayment by ID.
func (h *RepaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing repayment ID", "")
		return
	}

	inst, err := h.repaymentUC.GetInstallment(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get repayment", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.InstallmentFromDomain(inst))
}

// MarkPaid settles an installment and records the ledger entry.
func (h *RepaymentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing repayment ID", "")
		return
	}

	var req dto.MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.repaymentUC.MarkPaid(r.Context(), id, req.Metadata)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to mark repayment paid", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.CreditTransactionFromDomain(entry))
}

// MarkUnpaid reverts an accidental settlement back to unpaid.
func (h *RepaymentHandler) MarkUnpaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing repayment ID", "")
		return
	}

	if err := h.repaymentUC.MarkUnpaid(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to mark repayment unpaid", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
