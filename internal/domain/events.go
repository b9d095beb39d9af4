package domain

import "time"

// Notification event types.
const (
	EventEligibilityDecided = "loan_request.eligibility_decided"
	EventRequestApproved    = "loan_request.approved"
	EventRequestRejected    = "loan_request.rejected"
	EventRepaymentRecorded  = "repayment.recorded"
	EventRepaymentLate      = "repayment.late"
	EventRepaymentUpcoming  = "repayment.upcoming"
	EventLedgerEntry        = "credit.transaction_recorded"
	EventOperatorAlert      = "credit.operator_alert"
)

// NotificationEvent is a pending outbound notification. Events are appended
// in the same database transaction as the state change they announce and
// drained by a separate dispatcher, so a dead notification channel can never
// roll back a committed state transition.
type NotificationEvent struct {
	ID        string
	EventType string
	ChatID    int64
	Message   string
	Payload   map[string]any
	Sent      bool
	SentAt    *time.Time
	CreatedAt time.Time
}
