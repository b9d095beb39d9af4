package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// MockTransaction is a mock implementation of usecase.Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	mu        sync.Mutex
	release   func()
	done      bool
	Committed bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.finish()
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	t.finish()
	return nil
}

func (t *MockTransaction) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	if t.release != nil {
		t.release()
	}
}

// MockTransactionManager is a mock implementation of TransactionManager.
// With LockOnBegin set, transactions are mutually exclusive from Begin until
// Commit/Rollback, emulating the database's write serialization.
type MockTransactionManager struct {
	BeginFunc   func(ctx context.Context) (usecase.Transaction, error)
	LockOnBegin bool

	mu     sync.Mutex
	Begun  int
	begunM sync.Mutex
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}

	m.begunM.Lock()
	m.Begun++
	m.begunM.Unlock()

	tx := &MockTransaction{}
	if m.LockOnBegin {
		m.mu.Lock()
		tx.release = m.mu.Unlock
	}
	return tx, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string

	mu sync.Mutex
	n  int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return fmt.Sprintf("id-%04d", m.n)
}

// MockRetrier runs the operation once with no retries.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockCreditAccountRepository is a mock implementation of CreditAccountRepository.
type MockCreditAccountRepository struct {
	mu      sync.RWMutex
	Account *domain.CreditAccount

	CreateFunc             func(ctx context.Context, account *domain.CreditAccount) error
	GetActiveFunc          func(ctx context.Context) (*domain.CreditAccount, error)
	GetActiveForUpdateFunc func(ctx context.Context, tx usecase.Transaction) (*domain.CreditAccount, error)
	UpdateBalanceFunc      func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, lastTransactionAt time.Time) error
}

func NewMockCreditAccountRepository() *MockCreditAccountRepository {
	return &MockCreditAccountRepository{}
}

func (m *MockCreditAccountRepository) Create(ctx context.Context, account *domain.CreditAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Account = account
	return nil
}

func (m *MockCreditAccountRepository) GetActive(ctx context.Context) (*domain.CreditAccount, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Account == nil {
		return nil, domain.ErrAccountNotFound
	}
	acc := *m.Account
	return &acc, nil
}

func (m *MockCreditAccountRepository) GetActiveForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.CreditAccount, error) {
	if m.GetActiveForUpdateFunc != nil {
		return m.GetActiveForUpdateFunc(ctx, tx)
	}
	return m.GetActive(ctx)
}

func (m *MockCreditAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, lastTransactionAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, lastTransactionAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Account == nil || m.Account.ID != id {
		return domain.ErrAccountNotFound
	}
	m.Account.Balance = balance
	m.Account.LastTransactionAt = &lastTransactionAt
	return nil
}

// MockCreditTransactionRepository is a mock implementation of CreditTransactionRepository.
type MockCreditTransactionRepository struct {
	mu      sync.RWMutex
	Entries []*domain.CreditTransaction
	seqs    map[string]int64

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, t *domain.CreditTransaction) error
	GetLatestIDFunc       func(ctx context.Context, tx usecase.Transaction, creditID string) (*string, error)
	NextDailySequenceFunc func(ctx context.Context, tx usecase.Transaction, prefix string, day time.Time) (int64, error)
}

func NewMockCreditTransactionRepository() *MockCreditTransactionRepository {
	return &MockCreditTransactionRepository{seqs: make(map[string]int64)}
}

func (m *MockCreditTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.CreditTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, t)
	return nil
}

func (m *MockCreditTransactionRepository) GetLatestID(ctx context.Context, tx usecase.Transaction, creditID string) (*string, error) {
	if m.GetLatestIDFunc != nil {
		return m.GetLatestIDFunc(ctx, tx, creditID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].CreditID == creditID {
			id := m.Entries[i].ID
			return &id, nil
		}
	}
	return nil, nil
}

func (m *MockCreditTransactionRepository) NextDailySequence(ctx context.Context, tx usecase.Transaction, prefix string, day time.Time) (int64, error) {
	if m.NextDailySequenceFunc != nil {
		return m.NextDailySequenceFunc(ctx, tx, prefix, day)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := prefix + day.Format("20060102")
	m.seqs[key]++
	return m.seqs[key], nil
}

func (m *MockCreditTransactionRepository) GetByCode(ctx context.Context, code string) (*domain.CreditTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.Entries {
		if e.TransactionCode == code {
			return e, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockCreditTransactionRepository) ListByAccount(ctx context.Context, creditID string, limit, offset int) ([]*domain.CreditTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.CreditTransaction
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].CreditID == creditID {
			out = append(out, m.Entries[i])
		}
	}
	return out, nil
}

func (m *MockCreditTransactionRepository) SumByKind(ctx context.Context, creditID string, kind domain.TransactionKind) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.Entries {
		if e.CreditID == creditID && e.Kind == kind {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// MockLoanRequestRepository is a mock implementation of LoanRequestRepository.
type MockLoanRequestRepository struct {
	mu       sync.RWMutex
	Requests map[string]*domain.LoanRequest

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, req *domain.LoanRequest) error
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanRequest, error)
	HasEligibleFunc      func(ctx context.Context, userID string) (bool, error)
	UpdateDecisionFunc   func(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanRequestStatus, approvedAmount decimal.Decimal, reason *string) error
}

func NewMockLoanRequestRepository() *MockLoanRequestRepository {
	return &MockLoanRequestRepository{Requests: make(map[string]*domain.LoanRequest)}
}

func (m *MockLoanRequestRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.LoanRequest) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[req.ID] = req
	return nil
}

func (m *MockLoanRequestRepository) GetByID(ctx context.Context, id string) (*domain.LoanRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if req, ok := m.Requests[id]; ok {
		return req, nil
	}
	return nil, domain.ErrLoanRequestNotFound
}

func (m *MockLoanRequestRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanRequest, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockLoanRequestRepository) HasEligible(ctx context.Context, userID string) (bool, error) {
	if m.HasEligibleFunc != nil {
		return m.HasEligibleFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, req := range m.Requests {
		if req.UserID == userID && req.Status == domain.RequestStatusEligible {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockLoanRequestRepository) UpdateDecision(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanRequestStatus, approvedAmount decimal.Decimal, reason *string) error {
	if m.UpdateDecisionFunc != nil {
		return m.UpdateDecisionFunc(ctx, tx, id, status, approvedAmount, reason)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.Requests[id]
	if !ok {
		return domain.ErrLoanRequestNotFound
	}
	req.Status = status
	req.ApprovedAmount = approvedAmount
	req.RejectionReason = reason
	return nil
}

func (m *MockLoanRequestRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LoanRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LoanRequest
	for _, req := range m.Requests {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *MockLoanRequestRepository) MarkNidVerified(ctx context.Context, id string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.Requests[id]
	if !ok {
		return domain.ErrLoanRequestNotFound
	}
	if req.Nid != nil {
		req.Nid.Verified = verified
	}
	return nil
}

// MockLoanRepository is a mock implementation of LoanRepository.
type MockLoanRepository struct {
	mu    sync.RWMutex
	Loans map[string]*domain.Loan

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	UpdateStatusFunc func(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error
}

func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{Loans: make(map[string]*domain.Loan)}
}

func (m *MockLoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, loan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loans[loan.ID] = loan
	return nil
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if loan, ok := m.Loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.Loans[id]
	if !ok {
		return domain.ErrLoanNotFound
	}
	loan.Status = status
	loan.UpdatedAt = updatedAt
	return nil
}

func (m *MockLoanRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Loan
	for _, loan := range m.Loans {
		if loan.UserID == userID {
			out = append(out, loan)
		}
	}
	return out, nil
}

// MockInstallmentRepository is a mock implementation of InstallmentRepository.
type MockInstallmentRepository struct {
	mu           sync.RWMutex
	Installments map[string]*domain.RepaymentInstallment

	CreateBatchFunc      func(ctx context.Context, tx usecase.Transaction, rows []*domain.RepaymentInstallment) error
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.RepaymentInstallment, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.InstallmentStatus, paidDate *time.Time) error
}

func NewMockInstallmentRepository() *MockInstallmentRepository {
	return &MockInstallmentRepository{Installments: make(map[string]*domain.RepaymentInstallment)}
}

func (m *MockInstallmentRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, rows []*domain.RepaymentInstallment) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, rows)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		m.Installments[row.ID] = row
	}
	return nil
}

func (m *MockInstallmentRepository) GetByID(ctx context.Context, id string) (*domain.RepaymentInstallment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if inst, ok := m.Installments[id]; ok {
		return inst, nil
	}
	return nil, domain.ErrInstallmentNotFound
}

func (m *MockInstallmentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.RepaymentInstallment, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockInstallmentRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.InstallmentStatus, paidDate *time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, paidDate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.Installments[id]
	if !ok {
		return domain.ErrInstallmentNotFound
	}
	inst.Status = status
	inst.PaidDate = paidDate
	return nil
}

func (m *MockInstallmentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.RepaymentInstallment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.RepaymentInstallment
	for _, inst := range m.Installments {
		if inst.LoanID == loanID {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (m *MockInstallmentRepository) CountOutstanding(ctx context.Context, tx usecase.Transaction, loanID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, inst := range m.Installments {
		if inst.LoanID == loanID && !inst.IsPaid() {
			n++
		}
	}
	return n, nil
}

func (m *MockInstallmentRepository) ListOverdueUnpaid(ctx context.Context, asOf time.Time) ([]*domain.RepaymentInstallment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.RepaymentInstallment
	for _, inst := range m.Installments {
		if inst.Status == domain.InstallmentStatusUnpaid && inst.DueDate.Before(asOf) {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (m *MockInstallmentRepository) ListUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]*domain.RepaymentInstallment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.RepaymentInstallment
	for _, inst := range m.Installments {
		if inst.Status == domain.InstallmentStatusUnpaid && !inst.DueDate.Before(from) && !inst.DueDate.After(to) {
			out = append(out, inst)
		}
	}
	return out, nil
}

// MockCreditScoreRepository is a mock implementation of CreditScoreRepository.
type MockCreditScoreRepository struct {
	mu     sync.RWMutex
	Scores map[string]*domain.CreditScore // keyed by user id

	GetByUserIDFunc func(ctx context.Context, userID string) (*domain.CreditScore, error)
}

func NewMockCreditScoreRepository() *MockCreditScoreRepository {
	return &MockCreditScoreRepository{Scores: make(map[string]*domain.CreditScore)}
}

func (m *MockCreditScoreRepository) GetByUserID(ctx context.Context, userID string) (*domain.CreditScore, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.Scores[userID]; ok {
		return s, nil
	}
	return nil, domain.ErrCreditScoreNotFound
}

func (m *MockCreditScoreRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, userID string) (*domain.CreditScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Scores[userID]; ok {
		return s, nil
	}
	s := &domain.CreditScore{ID: "score-" + userID, UserID: userID, Score: 0}
	m.Scores[userID] = s
	return s, nil
}

func (m *MockCreditScoreRepository) UpdateScore(ctx context.Context, tx usecase.Transaction, id string, score int, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Scores {
		if s.ID == id {
			s.Score = score
			s.UpdatedAt = updatedAt
			return nil
		}
	}
	return domain.ErrCreditScoreNotFound
}

// MockBorrowerRepository is a mock implementation of BorrowerRepository.
type MockBorrowerRepository struct {
	mu        sync.RWMutex
	Borrowers map[string]*domain.Borrower // keyed by user id
}

func NewMockBorrowerRepository() *MockBorrowerRepository {
	return &MockBorrowerRepository{Borrowers: make(map[string]*domain.Borrower)}
}

func (m *MockBorrowerRepository) GetByUserID(ctx context.Context, userID string) (*domain.Borrower, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.Borrowers[userID]; ok {
		return b, nil
	}
	return nil, domain.ErrBorrowerNotFound
}

// MockInterestRateRepository is a mock implementation of InterestRateRepository.
type MockInterestRateRepository struct {
	mu    sync.RWMutex
	Rates []*domain.InterestRate
}

func NewMockInterestRateRepository() *MockInterestRateRepository {
	return &MockInterestRateRepository{}
}

func (m *MockInterestRateRepository) GetLatest(ctx context.Context) (*domain.InterestRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.Rates) == 0 {
		return nil, domain.ErrInterestRateNotFound
	}
	return m.Rates[len(m.Rates)-1], nil
}

func (m *MockInterestRateRepository) Create(ctx context.Context, rate *domain.InterestRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rates = append(m.Rates, rate)
	return nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.NotificationEvent

	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, event *domain.NotificationEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, event *domain.NotificationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) CreateTx(ctx context.Context, tx usecase.Transaction, event *domain.NotificationEvent) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, event)
	}
	return m.Create(ctx, event)
}

func (m *MockOutboxRepository) GetUnsent(ctx context.Context, limit int) ([]*domain.NotificationEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.NotificationEvent
	for _, e := range m.Events {
		if !e.Sent {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Sent = true
			e.SentAt = &sentAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeleteSent(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Events[:0]
	for _, e := range m.Events {
		if !e.Sent || e.SentAt == nil || e.SentAt.After(before) {
			kept = append(kept, e)
		}
	}
	m.Events = kept
	return nil
}

// ByType returns queued events of one type.
func (m *MockOutboxRepository) ByType(eventType string) []*domain.NotificationEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.NotificationEvent
	for _, e := range m.Events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
