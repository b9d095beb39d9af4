package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a credit ledger entry.
type TransactionKind string

const (
	KindAdminDeposit     TransactionKind = "admin_deposit"
	KindAdminWithdrawal  TransactionKind = "admin_withdrawal"
	KindLoanDisbursement TransactionKind = "loan_disbursement"
	KindLoanRepayment    TransactionKind = "loan_repayment"
)

// codePrefixes maps a kind to the human-readable transaction code prefix.
var codePrefixes = map[TransactionKind]string{
	KindAdminDeposit:     "DEP",
	KindAdminWithdrawal:  "WDL",
	KindLoanDisbursement: "DIS",
	KindLoanRepayment:    "REP",
}

// kindLabels maps a kind to its display label.
var kindLabels = map[TransactionKind]string{
	KindAdminDeposit:     "Admin Deposit",
	KindAdminWithdrawal:  "Admin Withdrawal",
	KindLoanDisbursement: "Loan Disbursement",
	KindLoanRepayment:    "Loan Repayment",
}

// IsCredit reports whether the kind adds to the account balance.
func (k TransactionKind) IsCredit() bool {
	return k == KindAdminDeposit || k == KindLoanRepayment
}

// CodePrefix returns the transaction code prefix for the kind (TXN if unknown).
func (k TransactionKind) CodePrefix() string {
	if p, ok := codePrefixes[k]; ok {
		return p
	}
	return "TXN"
}

// Label returns the display label for the kind.
func (k TransactionKind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return "Transaction"
}

// Valid reports whether the kind is a known transaction kind.
func (k TransactionKind) Valid() bool {
	_, ok := codePrefixes[k]
	return ok
}

// TransactionCode builds the public-facing transaction code for a kind, day
// and daily sequence number, e.g. DIS-20250831-00042.
func TransactionCode(kind TransactionKind, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%05d", kind.CodePrefix(), day.Format("20060102"), seq)
}

// CreditAccount is the single pooled fund from which loans are disbursed and
// into which repayments and admin deposits flow. Exactly one account is
// active system-wide.
type CreditAccount struct {
	ID                string
	Balance           decimal.Decimal
	Currency          string
	IsActive          bool
	LastTransactionAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidateDebit checks that the account can be debited by amount without
// going negative.
func (a *CreditAccount) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientBalance
	}
	return nil
}

// CreditTransaction is an append-only ledger entry carrying before/after
// balance snapshots. PreviousTransactionID links the account's entries into
// a chain reflecting true commit order.
type CreditTransaction struct {
	ID                    string
	TransactionCode       string
	CreditID              string
	UserID                string
	Amount                decimal.Decimal
	Kind                  TransactionKind
	Reference             string
	Description           string
	BalanceBefore         decimal.Decimal
	BalanceAfter          decimal.Decimal
	PreviousTransactionID *string
	Metadata              map[string]any
	CreatedAt             time.Time
}

// FormattedAmount renders the amount with its sign by kind, e.g. "-1200.00".
func (t *CreditTransaction) FormattedAmount() string {
	sign := "+"
	if !t.Kind.IsCredit() {
		sign = "-"
	}
	return sign + t.Amount.StringFixed(2)
}
