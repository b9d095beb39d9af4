package domain

import "errors"

var (
	// Not found
	ErrLoanRequestNotFound  = errors.New("loan request not found")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrInstallmentNotFound  = errors.New("schedule repayment not found")
	ErrAccountNotFound      = errors.New("no active credit account found")
	ErrTransactionNotFound  = errors.New("credit transaction not found")
	ErrBorrowerNotFound     = errors.New("borrower not found")
	ErrCreditScoreNotFound  = errors.New("credit information not found")
	ErrInterestRateNotFound = errors.New("interest rate not found")

	// Already processed
	ErrAlreadyProcessed = errors.New("loan request is already processed")
	ErrAlreadyPaid      = errors.New("schedule repayment is already paid")
	ErrAlreadyUnpaid    = errors.New("schedule repayment is already unpaid")
	ErrEligibleExists   = errors.New("you already have an eligible request")

	// Ledger
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Validation
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidDuration = errors.New("loan duration must be between 1 and 12 months")
	ErrInvalidKind     = errors.New("unknown transaction kind")
)
