package usecase

import "time"

const (
	// MinLoanDuration and MaxLoanDuration bound a loan request's term in months.
	MinLoanDuration = 1
	MaxLoanDuration = 12

	// UpcomingReminderWindow is how far ahead the pre-due reminder sweep looks.
	UpcomingReminderWindow = 72 * time.Hour

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
