package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanRequestStatus is the lifecycle state of a loan request.
type LoanRequestStatus string

const (
	RequestStatusPending     LoanRequestStatus = "pending"
	RequestStatusNotEligible LoanRequestStatus = "not_eligible"
	RequestStatusEligible    LoanRequestStatus = "eligible"
	RequestStatusApproved    LoanRequestStatus = "approved"
	RequestStatusRejected    LoanRequestStatus = "rejected"
)

// LoanRequest is a borrower's application for a loan. It owns immutable
// snapshots of the declared income and NID data captured at submission.
type LoanRequest struct {
	ID              string
	UserID          string
	LoanAmount      decimal.Decimal
	ApprovedAmount  decimal.Decimal
	LoanDuration    int
	LoanType        string
	Status          LoanRequestStatus
	RejectionReason *string
	Income          *IncomeInformation
	Nid             *NidInformation
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTerminal reports whether the request can no longer change state.
// NotEligible is soft-terminal: the borrower must submit a new request.
func (r *LoanRequest) IsTerminal() bool {
	switch r.Status {
	case RequestStatusApproved, RequestStatusRejected, RequestStatusNotEligible:
		return true
	}
	return false
}

// CanApprove reports whether an admin approval is allowed from the current
// state. Only eligible requests are approvable; in particular a not_eligible
// request cannot be approved, so the eligibility gate cannot be bypassed.
func (r *LoanRequest) CanApprove() bool {
	return r.Status == RequestStatusEligible
}

// CanReject reports whether an admin rejection is allowed from the current
// state. Any non-terminal request can be rejected, including one still
// pending an eligibility decision.
func (r *LoanRequest) CanReject() bool {
	return r.Status == RequestStatusPending || r.Status == RequestStatusEligible
}

// IncomeInformation is the borrower-declared income snapshot owned by a loan
// request. It is read only by the eligibility evaluation.
type IncomeInformation struct {
	ID            string
	RequestLoanID string
	EmployeeType  string
	Position      string
	Income        decimal.Decimal
	CreatedAt     time.Time
}

// NidInformation is the national ID snapshot owned by a loan request.
type NidInformation struct {
	ID            string
	RequestLoanID string
	NidNumber     string
	FirstName     string
	LastName      string
	Verified      bool
	CreatedAt     time.Time
}
