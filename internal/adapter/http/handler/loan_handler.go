package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/online-loan-project/jorngka-backend/internal/adapter/http/dto"
	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	ListLoans(ctx context.Context, input usecase.ListRequestsInput) ([]*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID string) ([]*domain.RepaymentInstallment, error)
}

// LoanHandler handles loan HTTP requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// Get retrieves a loan by ID.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	loan, err := h.loanUC.GetLoan(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get loan", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// List lists loans for a user.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id query parameter", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	loans, err := h.loanUC.ListLoans(r.Context(), usecase.ListRequestsInput{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLoansResponse{
		Loans: dto.LoansFromDomain(loans),
		Total: int64(len(loans)),
	})
}

// Schedule returns a loan's repayment schedule ordered by due date.
func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	installments, err := h.loanUC.GetSchedule(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get repayment schedule", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleResponse{
		LoanID:       id,
		Installments: dto.InstallmentsFromDomain(installments),
	})
}
