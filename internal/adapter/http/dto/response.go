package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
)

// LoanRequestResponse represents a loan request in API responses.
type LoanRequestResponse struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id"`
	LoanAmount      decimal.Decimal         `json:"loan_amount"`
	ApprovedAmount  decimal.Decimal         `json:"approved_amount"`
	LoanDuration    int                     `json:"loan_duration"`
	LoanType        string                  `json:"loan_type"`
	Status          string                  `json:"status"`
	RejectionReason *string                 `json:"rejection_reason,omitempty"`
	Income          *IncomeSnapshotResponse `json:"income,omitempty"`
	Nid             *NidSnapshotResponse    `json:"nid,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// IncomeSnapshotResponse represents the income snapshot of a request.
type IncomeSnapshotResponse struct {
	EmployeeType string          `json:"employee_type"`
	Position     string          `json:"position"`
	Income       decimal.Decimal `json:"income"`
}

// NidSnapshotResponse represents the NID snapshot of a request.
type NidSnapshotResponse struct {
	NidNumber string `json:"nid_number"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Verified  bool   `json:"verified"`
}

// LoanRequestFromDomain converts a domain loan request to a response.
func LoanRequestFromDomain(req *domain.LoanRequest) *LoanRequestResponse {
	resp := &LoanRequestResponse{
		ID:              req.ID,
		UserID:          req.UserID,
		LoanAmount:      req.LoanAmount,
		ApprovedAmount:  req.ApprovedAmount,
		LoanDuration:    req.LoanDuration,
		LoanType:        req.LoanType,
		Status:          string(req.Status),
		RejectionReason: req.RejectionReason,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
	if req.Income != nil {
		resp.Income = &IncomeSnapshotResponse{
			EmployeeType: req.Income.EmployeeType,
			Position:     req.Income.Position,
			Income:       req.Income.Income,
		}
	}
	if req.Nid != nil {
		resp.Nid = &NidSnapshotResponse{
			NidNumber: req.Nid.NidNumber,
			FirstName: req.Nid.FirstName,
			LastName:  req.Nid.LastName,
			Verified:  req.Nid.Verified,
		}
	}
	return resp
}

// LoanRequestsFromDomain converts domain loan requests to responses.
func LoanRequestsFromDomain(requests []*domain.LoanRequest) []*LoanRequestResponse {
	result := make([]*LoanRequestResponse, len(requests))
	for i, req := range requests {
		result[i] = LoanRequestFromDomain(req)
	}
	return result
}

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	ID            string          `json:"id"`
	RequestLoanID string          `json:"request_loan_id"`
	UserID        string          `json:"user_id"`
	LoanAmount    decimal.Decimal `json:"loan_amount"`
	LoanDuration  int             `json:"loan_duration"`
	LoanRepayment decimal.Decimal `json:"loan_repayment"`
	Revenue       decimal.Decimal `json:"revenue"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LoanFromDomain converts a domain loan to a response.
func LoanFromDomain(loan *domain.Loan) *LoanResponse {
	return &LoanResponse{
		ID:            loan.ID,
		RequestLoanID: loan.RequestLoanID,
		UserID:        loan.UserID,
		LoanAmount:    loan.LoanAmount,
		LoanDuration:  loan.LoanDuration,
		LoanRepayment: loan.LoanRepayment,
		Revenue:       loan.Revenue,
		Status:        string(loan.Status),
		CreatedAt:     loan.CreatedAt,
		UpdatedAt:     loan.UpdatedAt,
	}
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, loan := range loans {
		result[i] = LoanFromDomain(loan)
	}
	return result
}

// InstallmentResponse represents a schedule row in API responses.
type InstallmentResponse struct {
	ID        string          `json:"id"`
	LoanID    string          `json:"loan_id"`
	DueDate   time.Time       `json:"due_date"`
	EmiAmount decimal.Decimal `json:"emi_amount"`
	Status    string          `json:"status"`
	PaidDate  *time.Time      `json:"paid_date,omitempty"`
}

// InstallmentFromDomain converts a domain installment to a response.
func InstallmentFromDomain(inst *domain.RepaymentInstallment) *InstallmentResponse {
	return &InstallmentResponse{
		ID:        inst.ID,
		LoanID:    inst.LoanID,
		DueDate:   inst.DueDate,
		EmiAmount: inst.EmiAmount,
		Status:    string(inst.Status),
		PaidDate:  inst.PaidDate,
	}
}

// InstallmentsFromDomain converts domain installments to responses.
func InstallmentsFromDomain(installments []*domain.RepaymentInstallment) []*InstallmentResponse {
	result := make([]*InstallmentResponse, len(installments))
	for i, inst := range installments {
		result[i] = InstallmentFromDomain(inst)
	}
	return result
}

// CreditAccountResponse represents the credit account in API responses.
type CreditAccountResponse struct {
	ID                string          `json:"id"`
	Balance           decimal.Decimal `json:"balance"`
	Currency          string          `json:"currency"`
	LastTransactionAt *time.Time      `json:"last_transaction_at,omitempty"`
}

// CreditAccountFromDomain converts the domain account to a response.
func CreditAccountFromDomain(a *domain.CreditAccount) *CreditAccountResponse {
	return &CreditAccountResponse{
		ID:                a.ID,
		Balance:           a.Balance,
		Currency:          a.Currency,
		LastTransactionAt: a.LastTransactionAt,
	}
}

// CreditTransactionResponse represents a ledger entry in API responses.
type CreditTransactionResponse struct {
	ID                    string          `json:"id"`
	TransactionCode       string          `json:"transaction_code"`
	UserID                string          `json:"user_id"`
	Amount                decimal.Decimal `json:"amount"`
	Kind                  string          `json:"kind"`
	Reference             string          `json:"reference,omitempty"`
	Description           string          `json:"description,omitempty"`
	BalanceBefore         decimal.Decimal `json:"balance_before"`
	BalanceAfter          decimal.Decimal `json:"balance_after"`
	PreviousTransactionID *string         `json:"previous_transaction_id,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// CreditTransactionFromDomain converts a domain ledger entry to a response.
func CreditTransactionFromDomain(t *domain.CreditTransaction) *CreditTransactionResponse {
	return &CreditTransactionResponse{
		ID:                    t.ID,
		TransactionCode:       t.TransactionCode,
		UserID:                t.UserID,
		Amount:                t.Amount,
		Kind:                  string(t.Kind),
		Reference:             t.Reference,
		Description:           t.Description,
		BalanceBefore:         t.BalanceBefore,
		BalanceAfter:          t.BalanceAfter,
		PreviousTransactionID: t.PreviousTransactionID,
		CreatedAt:             t.CreatedAt,
	}
}

// CreditTransactionsFromDomain converts domain ledger entries to responses.
func CreditTransactionsFromDomain(entries []*domain.CreditTransaction) []*CreditTransactionResponse {
	result := make([]*CreditTransactionResponse, len(entries))
	for i, t := range entries {
		result[i] = CreditTransactionFromDomain(t)
	}
	return result
}

// ListLoanRequestsResponse wraps a page of loan requests.
type ListLoanRequestsResponse struct {
	Requests []*LoanRequestResponse `json:"requests"`
	Total    int64                  `json:"total"`
}

// ListLoansResponse wraps a page of loans.
type ListLoansResponse struct {
	Loans []*LoanResponse `json:"loans"`
	Total int64           `json:"total"`
}

// ScheduleResponse wraps a loan's repayment schedule.
type ScheduleResponse struct {
	LoanID       string                 `json:"loan_id"`
	Installments []*InstallmentResponse `json:"installments"`
}

// ListTransactionsResponse wraps a page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []*CreditTransactionResponse `json:"transactions"`
	Total        int64                        `json:"total"`
}

// NetActivityResponse reports the lifetime net of credits minus debits.
type NetActivityResponse struct {
	NetActivity decimal.Decimal `json:"net_activity"`
}

// VerifyNidResponse represents the outcome of an NID verification.
type VerifyNidResponse struct {
	RequestLoanID string `json:"request_loan_id"`
	Verified      bool   `json:"verified"`
}

// SweepResponse represents the result of a sweep run.
type SweepResponse struct {
	Processed int `json:"processed"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
