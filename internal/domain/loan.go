package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the repayment state of an approved loan.
type LoanStatus string

const (
	LoanStatusUnpaid LoanStatus = "unpaid"
	LoanStatusPaid   LoanStatus = "paid"
)

// Loan is created exactly once from an approved loan request. Everything but
// Status is immutable after creation; Status flips unpaid -> paid once, when
// the last installment reaches a terminal paid state.
type Loan struct {
	ID             string
	RequestLoanID  string
	UserID         string
	LoanAmount     decimal.Decimal
	LoanDuration   int
	LoanRepayment  decimal.Decimal // principal + interest
	Revenue        decimal.Decimal // interest portion
	Status         LoanStatus
	CreditScoreID  string
	InterestRateID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InstallmentStatus is the state of a single scheduled repayment.
type InstallmentStatus string

const (
	InstallmentStatusUnpaid   InstallmentStatus = "unpaid"
	InstallmentStatusLate     InstallmentStatus = "late"
	InstallmentStatusPaid     InstallmentStatus = "paid"
	InstallmentStatusPaidLate InstallmentStatus = "paid_late"
)

// RepaymentInstallment is one row of a loan's repayment schedule. Rows are
// created in a batch at approval and never deleted.
type RepaymentInstallment struct {
	ID        string
	LoanID    string
	DueDate   time.Time
	EmiAmount decimal.Decimal
	Status    InstallmentStatus
	PaidDate  *time.Time
	CreatedAt time.Time
}

// IsPaid reports whether the installment reached a terminal paid state.
func (i *RepaymentInstallment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid || i.Status == InstallmentStatusPaidLate
}

// InterestRate is a monthly flat rate in percent. There is no versioning
// beyond "most recently created wins" at approval time.
type InterestRate struct {
	ID        string
	Rate      decimal.Decimal
	CreatedAt time.Time
}
