package dto

import (
	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// SubmitLoanRequestRequest represents a borrower's loan application.
type SubmitLoanRequestRequest struct {
	UserID       string          `json:"user_id"`
	LoanAmount   decimal.Decimal `json:"loan_amount"`
	LoanDuration int             `json:"loan_duration"`
	LoanType     string          `json:"loan_type"`
	EmployeeType string          `json:"employee_type"`
	Position     string          `json:"position"`
	Income       decimal.Decimal `json:"income"`
	NidNumber    string          `json:"nid_number"`
	NidFirstName string          `json:"nid_first_name"`
	NidLastName  string          `json:"nid_last_name"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitLoanRequestRequest) ToUseCaseInput() usecase.SubmitLoanRequestInput {
	return usecase.SubmitLoanRequestInput{
		UserID:       r.UserID,
		LoanAmount:   r.LoanAmount,
		LoanDuration: r.LoanDuration,
		LoanType:     r.LoanType,
		EmployeeType: r.EmployeeType,
		Position:     r.Position,
		Income:       r.Income,
		NidNumber:    r.NidNumber,
		NidFirstName: r.NidFirstName,
		NidLastName:  r.NidLastName,
	}
}

// ApproveLoanRequestRequest represents an admin approval.
type ApproveLoanRequestRequest struct {
	AdminID  string         `json:"admin_id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RejectLoanRequestRequest represents an admin rejection with a reason.
type RejectLoanRequestRequest struct {
	Reason string `json:"reason"`
}

// VerifyNidRequest carries either a pre-extracted NID number or a document
// image URL for the OCR service to read.
type VerifyNidRequest struct {
	ExtractedNid string `json:"extracted_nid,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}

// AdjustCreditRequest represents an admin deposit or withdrawal on the
// credit account.
type AdjustCreditRequest struct {
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// MarkPaidRequest represents a repayment settlement.
type MarkPaidRequest struct {
	Metadata map[string]any `json:"metadata,omitempty"`
}
