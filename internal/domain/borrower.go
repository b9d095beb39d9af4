package domain

import "time"

// Borrower is the KYC profile behind a user. The date of birth feeds the
// eligibility age rule; TelegramChatID is the notification channel, zero when
// the borrower has none configured.
type Borrower struct {
	ID             string
	UserID         string
	FirstName      string
	LastName       string
	Dob            time.Time
	TelegramChatID int64
	CreatedAt      time.Time
}

// CreditScore is the user's running behavioral score. It moves by one point
// per repayment event and never goes below zero.
type CreditScore struct {
	ID        string
	UserID    string
	Score     int
	UpdatedAt time.Time
}

// Increment adds one point for an on-time repayment.
func (s *CreditScore) Increment() {
	s.Score++
}

// Decrement removes one point, floored at zero.
func (s *CreditScore) Decrement() {
	if s.Score > 0 {
		s.Score--
	}
}
