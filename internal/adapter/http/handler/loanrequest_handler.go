package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/online-loan-project/jorngka-backend/internal/adapter/http/dto"
	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// LoanRequestService defines the behavior needed by LoanRequestHandler.
type LoanRequestService interface {
	SubmitLoanRequest(ctx context.Context, input usecase.SubmitLoanRequestInput) (*domain.LoanRequest, error)
	GetRequest(ctx context.Context, id string) (*domain.LoanRequest, error)
	ListRequests(ctx context.Context, input usecase.ListRequestsInput) ([]*domain.LoanRequest, error)
	ApproveLoanRequest(ctx context.Context, requestID, adminID string, metadata map[string]any) (*domain.Loan, error)
	RejectLoanRequest(ctx context.Context, requestID, reason string) error
	VerifyNid(ctx context.Context, requestID, extractedNid string) (bool, error)
}

// NidExtractor reads an NID number off a document image.
type NidExtractor interface {
	ExtractNid(ctx context.Context, imageURL string) (string, error)
}

// LoanRequestHandler handles loan request HTTP requests.
type LoanRequestHandler struct {
	loanUC    LoanRequestService
	extractor NidExtractor // optional, nil disables image verification
}

// NewLoanRequestHandler creates a new LoanRequestHandler.
func NewLoanRequestHandler(loanUC LoanRequestService, extractor NidExtractor) *LoanRequestHandler {
	return &LoanRequestHandler{loanUC: loanUC, extractor: extractor}
}

// Submit creates a loan request and runs the eligibility evaluation.
func (h *LoanRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitLoanRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	request, err := h.loanUC.SubmitLoanRequest(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to submit loan request", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanRequestFromDomain(request))
}

// Get retrieves a loan request by ID.
func (h *LoanRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan request ID", "")
		return
	}

	request, err := h.loanUC.GetRequest(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get loan request", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.LoanRequestFromDomain(request))
}

// List lists loan requests for a user.
func (h *LoanRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id query parameter", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	requests, err := h.loanUC.ListRequests(r.Context(), usecase.ListRequestsInput{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list loan requests", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLoanRequestsResponse{
		Requests: dto.LoanRequestsFromDomain(requests),
		Total:    int64(len(requests)),
	})
}

// Approve approves an eligible loan request and disburses the loan.
func (h *LoanRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan request ID", "")
		return
	}

	var req dto.ApproveLoanRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.ApproveLoanRequest(r.Context(), id, req.AdminID, req.Metadata)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to approve loan request", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Reject rejects an eligible loan request.
func (h *LoanRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan request ID", "")
		return
	}

	var req dto.RejectLoanRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.loanUC.RejectLoanRequest(r.Context(), id, req.Reason); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reject loan request", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VerifyNid checks an extracted NID number against the request's snapshot.
func (h *LoanRequestHandler) VerifyNid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan request ID", "")
		return
	}

	var req dto.VerifyNidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	extracted := req.ExtractedNid
	if extracted == "" {
		if req.ImageURL == "" || h.extractor == nil {
			writeError(w, http.StatusBadRequest, "missing extracted_nid or image_url", "")
			return
		}

		var err error
		extracted, err = h.extractor.ExtractNid(r.Context(), req.ImageURL)
		if err != nil {
			writeError(w, http.StatusBadGateway, "failed to extract NID from image", err.Error())
			return
		}
	}

	verified, err := h.loanUC.VerifyNid(r.Context(), id, extracted)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to verify NID", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyNidResponse{
		RequestLoanID: id,
		Verified:      verified,
	})
}
