package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/adapter/http/dto"
	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// CreditService defines the behavior needed by CreditHandler.
type CreditService interface {
	GetAccount(ctx context.Context) (*domain.CreditAccount, error)
	Adjust(ctx context.Context, input usecase.AdjustInput) (*domain.CreditTransaction, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.CreditTransaction, error)
	GetTransactionByCode(ctx context.Context, code string) (*domain.CreditTransaction, error)
	NetActivity(ctx context.Context) (decimal.Decimal, error)
}

// CreditHandler handles credit account HTTP requests.
type CreditHandler struct {
	ledgerUC CreditService
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(ledgerUC CreditService) *CreditHandler {
	return &CreditHandler{ledgerUC: ledgerUC}
}

// GetAccount returns the active credit account.
func (h *CreditHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.ledgerUC.GetAccount(r.Context())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get credit account", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.CreditAccountFromDomain(account))
}

// Deposit records an admin deposit on the credit account.
func (h *CreditHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.KindAdminDeposit)
}

// Withdraw records an admin withdrawal from the credit account.
func (h *CreditHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.KindAdminWithdrawal)
}

func (h *CreditHandler) adjust(w http.ResponseWriter, r *http.Request, kind domain.TransactionKind) {
	var req dto.AdjustCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.ledgerUC.Adjust(r.Context(), usecase.AdjustInput{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Kind:        kind,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to adjust credit account", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.CreditTransactionFromDomain(entry))
}

// ListTransactions lists the account's ledger entries, newest first.
func (h *CreditHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.ledgerUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list transactions", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.CreditTransactionsFromDomain(entries),
		Total:        int64(len(entries)),
	})
}

// GetTransaction retrieves a ledger entry by its transaction code.
func (h *CreditHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing transaction code", "")
		return
	}

	entry, err := h.ledgerUC.GetTransactionByCode(r.Context(), code)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.CreditTransactionFromDomain(entry))
}

// NetActivity reports lifetime credits minus debits for the account.
func (h *CreditHandler) NetActivity(w http.ResponseWriter, r *http.Request) {
	net, err := h.ledgerUC.NetActivity(r.Context())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to compute net activity", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.NetActivityResponse{NetActivity: net})
}
