package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
	"github.com/online-loan-project/jorngka-backend/internal/usecase/mocks"
)

type repaymentFixture struct {
	uc           *usecase.RepaymentUseCase
	txMgr        *mocks.MockTransactionManager
	instRepo     *mocks.MockInstallmentRepository
	loanRepo     *mocks.MockLoanRepository
	scoreRepo    *mocks.MockCreditScoreRepository
	borrowerRepo *mocks.MockBorrowerRepository
	accRepo      *mocks.MockCreditAccountRepository
	txnRepo      *mocks.MockCreditTransactionRepository
	outbox       *mocks.MockOutboxRepository
}

func newRepaymentFixture() *repaymentFixture {
	f := &repaymentFixture{
		txMgr:        mocks.NewMockTransactionManager(),
		instRepo:     mocks.NewMockInstallmentRepository(),
		loanRepo:     mocks.NewMockLoanRepository(),
		scoreRepo:    mocks.NewMockCreditScoreRepository(),
		borrowerRepo: mocks.NewMockBorrowerRepository(),
		accRepo:      mocks.NewMockCreditAccountRepository(),
		txnRepo:      mocks.NewMockCreditTransactionRepository(),
		outbox:       mocks.NewMockOutboxRepository(),
	}
	idGen := mocks.NewMockIDGenerator()
	retrier := mocks.NewMockRetrier()

	f.accRepo.Account = &domain.CreditAccount{
		ID:       "credit-1",
		Balance:  decimal.NewFromInt(1000),
		Currency: "USD",
		IsActive: true,
	}
	ledger := usecase.NewLedgerUseCase(
		f.txMgr, f.accRepo, f.txnRepo, f.outbox, idGen, retrier, 0, testMetrics, zerolog.Nop(),
	)
	f.uc = usecase.NewRepaymentUseCase(
		f.txMgr, f.instRepo, f.loanRepo, f.scoreRepo, f.borrowerRepo,
		f.outbox, ledger, idGen, retrier, testMetrics, zerolog.Nop(),
	)
	return f
}

// seedLoan creates a loan for user-1 with installments of 224 due monthly,
// the first already in the given status.
func (f *repaymentFixture) seedLoan(count int, firstStatus domain.InstallmentStatus) {
	f.loanRepo.Loans["loan-1"] = &domain.Loan{
		ID:            "loan-1",
		RequestLoanID: "req-1",
		UserID:        "user-1",
		LoanAmount:    decimal.NewFromInt(1200),
		LoanDuration:  count,
		Status:        domain.LoanStatusUnpaid,
	}
	f.scoreRepo.Scores["user-1"] = &domain.CreditScore{
		ID:     "score-user-1",
		UserID: "user-1",
		Score:  40,
	}
	f.borrowerRepo.Borrowers["user-1"] = &domain.Borrower{
		ID:             "borrower-1",
		UserID:         "user-1",
		TelegramChatID: 100,
	}

	base := time.Now().UTC()
	for i := 0; i < count; i++ {
		status := domain.InstallmentStatusUnpaid
		if i == 0 {
			status = firstStatus
		}
		id := "inst-" + string(rune('1'+i))
		f.instRepo.Installments[id] = &domain.RepaymentInstallment{
			ID:        id,
			LoanID:    "loan-1",
			DueDate:   base.AddDate(0, i+1, 0),
			EmiAmount: decimal.NewFromInt(224),
			Status:    status,
		}
	}
}

func TestRepaymentUseCase_MarkPaid(t *testing.T) {
	f := newRepaymentFixture()
	f.seedLoan(3, domain.InstallmentStatusUnpaid)
	ctx := context.Background()

	entry, err := f.uc.MarkPaid(ctx, "inst-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst, err := f.uc.GetInstallment(ctx, "inst-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Status != domain.InstallmentStatusPaid {
		t.Errorf("installment status = %s, want paid", inst.Status)
	}
	if inst.PaidDate == nil {
		t.Error("expected paid date to be set")
	}

	if f.scoreRepo.Scores["user-1"].Score != 41 {
		t.Errorf("score = %d, want 41", f.scoreRepo.Scores["user-1"].Score)
	}

	if entry.Kind != domain.KindLoanRepayment {
		t.Errorf("entry kind = %s, want loan_repayment", entry.Kind)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(224)) {
		t.Errorf("entry amount = %s, want 224", entry.Amount)
	}
	if !f.accRepo.Account.Balance.Equal(decimal.NewFromInt(1224)) {
		t.Errorf("account balance = %s, want 1224", f.accRepo.Account.Balance)
	}

	if f.loanRepo.Loans["loan-1"].Status != domain.LoanStatusUnpaid {
		t.Error("loan should stay unpaid while installments remain")
	}

	if got := f.outbox.ByType(domain.EventRepaymentRecorded); len(got) != 1 {
		t.Errorf("expected 1 repayment event, got %d", len(got))
	}
}

func TestRepaymentUseCase_MarkPaid_OnlyOnce(t *testing.T) {
	f := newRepaymentFixture()
	f.seedLoan(3, domain.InstallmentStatusUnpaid)
	ctx := context.Background()

	if _, err := f.uc.MarkPaid(ctx, "inst-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.uc.MarkPaid(ctx, "inst-1", nil)
	if !errors.Is(err, domain.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}

	if len(f.txnRepo.Entries) != 1 {
		t.Errorf("expected 1 ledger entry, got %d", len(f.txnRepo.Entries))
	}
	if f.scoreRepo.Scores["user-1"].Score != 41 {
		t.Errorf("score = %d, want 41", f.scoreRepo.Scores["user-1"].Score)
	}
}

func TestRepaymentUseCase_MarkPaid_LateSettlesAsPaidLate(t *testing.T) {
	f := newRepaymentFixture()
	f.seedLoan(3, domain.InstallmentStatusLate)
	ctx := context.Background()

	if _, err := f.uc.MarkPaid(ctx, "inst-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst, err := f.uc.GetInstallment(ctx, "inst-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Status != domain.InstallmentStatusPaidLate {
		t.Errorf("installment status = %s, want paid_late", inst.Status)
	}

	// The penalty was applied when the sweep marked it late; settling a late
	// installment moves the score by nothing.
	if f.scoreRepo.Scores["user-1"].Score != 40 {
		t.Errorf("score = %d, want 40", f.scoreRepo.Scores["user-1"].Score)
	}

	if len(f.txnRepo.Entries) != 1 {
		t.Errorf("expected 1 ledger entry, got %d", len(f.txnRepo.Entries))
	}
}

func TestRepaymentUseCase_MarkPaid_LastInstallmentCompletesLoan(t *testing.T) {
	f := newRepaymentFixture()
	f.seedLoan(2, domain.InstallmentStatusUnpaid)
	ctx := context.Background()

	if _, err := f.uc.MarkPaid(ctx, "inst-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.loanRepo.Loans["loan-1"].Status != domain.LoanStatusUnpaid {
		t.Fatal("loan completed early")
	}

	if _, err := f.uc.MarkPaid(ctx, "inst-2", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.loanRepo.Loans["loan-1"].Status != domain.LoanStatusPaid {
		t.Errorf("loan status = %s, want paid", f.loanRepo.Loans["loan-1"].Status)
	}
}

func TestRepaymentUseCase_MarkUnpaid(t *testing.T) {
	f := newRepaymentFixture()
	f.seedLoan(3, domain.InstallmentStatusUnpaid)
	ctx := context.Background()

	if _, err := f.uc.MarkPaid(ctx, "inst-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.uc.MarkUnpaid(ctx, "inst-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst, err := f.uc.GetInstallment(ctx, "inst-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Status != domain.InstallmentStatusUnpaid {
		t.Errorf("installment status = %s, want unpaid", inst.Status)
	}
	if inst.PaidDate != nil {
		t.Error("expected paid date to be cleared")
	}

	// Status correction only: the ledger entry and the score stay as they
	// were recorded.
	if len(f.txnRepo.Entries) != 1 {
		t.Errorf("expected 1 ledger entry, got %d", len(f.txnRepo.Entries))
	}
	if f.scoreRepo.Scores["user-1"].Score != 41 {
		t.Errorf("score = %d, want 41", f.scoreRepo.Scores["user-1"].Score)
	}

	if err := f.uc.MarkUnpaid(ctx, "inst-1"); !errors.Is(err, domain.ErrAlreadyUnpaid) {
		t.Fatalf("expected ErrAlreadyUnpaid, got %v", err)
	}
}

func TestRepaymentUseCase_MarkPaid_NotFound(t *testing.T) {
	f := newRepaymentFixture()

	_, err := f.uc.MarkPaid(context.Background(), "missing", nil)
	if !errors.Is(err, domain.ErrInstallmentNotFound) {
		t.Fatalf("expected ErrInstallmentNotFound, got %v", err)
	}
}
