package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
)

// CreditAccountRepository defines data access for the pooled credit account.
type CreditAccountRepository interface {
	Create(ctx context.Context, account *domain.CreditAccount) error
	GetActive(ctx context.Context) (*domain.CreditAccount, error)
	GetActiveForUpdate(ctx context.Context, tx Transaction) (*domain.CreditAccount, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, lastTransactionAt time.Time) error
}

// CreditTransactionRepository defines data access for ledger entries.
type CreditTransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.CreditTransaction) error
	// GetLatestID returns the id of the account's most recently inserted
	// entry, or nil when the account has none. Must be called under the same
	// lock that guards the balance read.
	GetLatestID(ctx context.Context, tx Transaction, creditID string) (*string, error)
	// NextDailySequence atomically allocates the next sequence number for a
	// code prefix on the given day.
	NextDailySequence(ctx context.Context, tx Transaction, prefix string, day time.Time) (int64, error)
	GetByCode(ctx context.Context, code string) (*domain.CreditTransaction, error)
	ListByAccount(ctx context.Context, creditID string, limit, offset int) ([]*domain.CreditTransaction, error)
	SumByKind(ctx context.Context, creditID string, kind domain.TransactionKind) (decimal.Decimal, error)
}

// LoanRequestRepository defines data access for loan requests and their
// owned income/NID snapshots.
type LoanRequestRepository interface {
	Create(ctx context.Context, tx Transaction, req *domain.LoanRequest) error
	GetByID(ctx context.Context, id string) (*domain.LoanRequest, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LoanRequest, error)
	HasEligible(ctx context.Context, userID string) (bool, error)
	UpdateDecision(ctx context.Context, tx Transaction, id string, status domain.LoanRequestStatus, approvedAmount decimal.Decimal, reason *string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LoanRequest, error)
	MarkNidVerified(ctx context.Context, id string, verified bool) error
}

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Loan, error)
}

// InstallmentRepository defines data access for repayment schedule rows.
type InstallmentRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, rows []*domain.RepaymentInstallment) error
	GetByID(ctx context.Context, id string) (*domain.RepaymentInstallment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.RepaymentInstallment, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.InstallmentStatus, paidDate *time.Time) error
	ListByLoan(ctx context.Context, loanID string) ([]*domain.RepaymentInstallment, error)
	// CountOutstanding counts the loan's installments not yet in a terminal
	// paid state, within the caller's transaction.
	CountOutstanding(ctx context.Context, tx Transaction, loanID string) (int64, error)
	ListOverdueUnpaid(ctx context.Context, asOf time.Time) ([]*domain.RepaymentInstallment, error)
	ListUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]*domain.RepaymentInstallment, error)
}

// CreditScoreRepository defines data access for borrower credit scores.
type CreditScoreRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.CreditScore, error)
	// GetOrCreateForUpdate locks the user's score row, creating it at zero
	// when missing.
	GetOrCreateForUpdate(ctx context.Context, tx Transaction, userID string) (*domain.CreditScore, error)
	UpdateScore(ctx context.Context, tx Transaction, id string, score int, updatedAt time.Time) error
}

// BorrowerRepository defines data access for borrower profiles.
type BorrowerRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Borrower, error)
}

// InterestRateRepository defines data access for interest rates. The most
// recently created rate is the one applied at approval time.
type InterestRateRepository interface {
	GetLatest(ctx context.Context) (*domain.InterestRate, error)
	Create(ctx context.Context, rate *domain.InterestRate) error
}

// OutboxRepository defines data access for pending notifications.
type OutboxRepository interface {
	Create(ctx context.Context, event *domain.NotificationEvent) error
	CreateTx(ctx context.Context, tx Transaction, event *domain.NotificationEvent) error
	GetUnsent(ctx context.Context, limit int) ([]*domain.NotificationEvent, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	DeleteSent(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation when it fails with a transient database
// error such as a deadlock or serialization failure.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
