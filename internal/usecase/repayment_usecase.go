package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/metrics"
)

// RepaymentUseCase records installment payments and administrative status
// corrections.
type RepaymentUseCase struct {
	txManager       TransactionManager
	installmentRepo InstallmentRepository
	loanRepo        LoanRepository
	scoreRepo       CreditScoreRepository
	borrowerRepo    BorrowerRepository
	outboxRepo      OutboxRepository
	ledger          ledgerRecorder
	idGen           IDGenerator
	retrier         Retrier
	metrics         *metrics.Metrics
	logger          zerolog.Logger
}

// NewRepaymentUseCase creates a new RepaymentUseCase.
func NewRepaymentUseCase(
	txManager TransactionManager,
	installmentRepo InstallmentRepository,
	loanRepo LoanRepository,
	scoreRepo CreditScoreRepository,
	borrowerRepo BorrowerRepository,
	outboxRepo OutboxRepository,
	ledger ledgerRecorder,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *RepaymentUseCase {
	return &RepaymentUseCase{
		txManager:       txManager,
		installmentRepo: installmentRepo,
		loanRepo:        loanRepo,
		scoreRepo:       scoreRepo,
		borrowerRepo:    borrowerRepo,
		outboxRepo:      outboxRepo,
		ledger:          ledger,
		idGen:           idGen,
		retrier:         retrier,
		metrics:         m,
		logger:          logger,
	}
}

// MarkPaid records a payment against an installment: status, credit score,
// loan completion check and the repayment ledger entry commit as one unit.
// A late installment settles as paid_late; the score penalty for lateness
// was already applied when the sweep marked it late, so settling it adjusts
// nothing, while an on-time payment earns one point.
func (uc *RepaymentUseCase) MarkPaid(ctx context.Context, installmentID string, metadata map[string]any) (*domain.CreditTransaction, error) {
	var (
		entry     *domain.CreditTransaction
		inst      *domain.RepaymentInstallment
		loan      *domain.Loan
		completed bool
	)

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		inst, err = uc.installmentRepo.GetByIDForUpdate(ctx, tx, installmentID)
		if err != nil {
			return err
		}
		if inst.IsPaid() {
			return domain.ErrAlreadyPaid
		}

		loan, err = uc.loanRepo.GetByID(ctx, inst.LoanID)
		if err != nil {
			return err
		}

		wasLate := inst.Status == domain.InstallmentStatusLate

		now := time.Now().UTC()

		if !wasLate {
			score, err := uc.scoreRepo.GetOrCreateForUpdate(ctx, tx, loan.UserID)
			if err != nil {
				return err
			}
			score.Increment()
			if err := uc.scoreRepo.UpdateScore(ctx, tx, score.ID, score.Score, now); err != nil {
				return err
			}
		}

		finalStatus := domain.InstallmentStatusPaid
		if wasLate {
			finalStatus = domain.InstallmentStatusPaidLate
		}
		if err := uc.installmentRepo.UpdateStatus(ctx, tx, inst.ID, finalStatus, &now); err != nil {
			return err
		}
		inst.Status = finalStatus
		inst.PaidDate = &now

		outstanding, err := uc.installmentRepo.CountOutstanding(ctx, tx, loan.ID)
		if err != nil {
			return err
		}
		completed = outstanding == 0
		if completed {
			if err := uc.loanRepo.UpdateStatus(ctx, tx, loan.ID, domain.LoanStatusPaid, now); err != nil {
				return err
			}
		}

		entry, err = uc.ledger.RecordInTx(ctx, tx, RecordTransactionInput{
			UserID:      loan.UserID,
			Amount:      inst.EmiAmount,
			Kind:        domain.KindLoanRepayment,
			Description: "Loan repayment for schedule ID: " + inst.ID,
			Reference:   "repayment_" + inst.ID,
			Metadata:    metadata,
		})
		if err != nil {
			return err
		}

		borrower, err := uc.borrowerRepo.GetByUserID(ctx, loan.UserID)
		if err != nil && !errors.Is(err, domain.ErrBorrowerNotFound) {
			return err
		}
		if borrower != nil && borrower.TelegramChatID != 0 {
			event := &domain.NotificationEvent{
				ID:        uc.idGen.Generate(),
				EventType: domain.EventRepaymentRecorded,
				ChatID:    borrower.TelegramChatID,
				Message:   repaymentMessage(inst, entry),
				Payload: map[string]any{
					"installment_id":   inst.ID,
					"loan_id":          loan.ID,
					"transaction_code": entry.TransactionCode,
				},
				CreatedAt: now,
			}
			if err := uc.outboxRepo.CreateTx(ctx, tx, event); err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RepaymentsSettled.WithLabelValues(string(inst.Status)).Inc()
		uc.metrics.LedgerEntries.WithLabelValues(string(entry.Kind)).Inc()
		uc.metrics.CreditBalance.Set(entry.BalanceAfter.InexactFloat64())
		if completed {
			uc.metrics.LoansCompleted.Inc()
		}
	}

	uc.logger.Info().
		Str("installment_id", inst.ID).
		Str("loan_id", loan.ID).
		Str("status", string(inst.Status)).
		Str("transaction_code", entry.TransactionCode).
		Msg("schedule repayment marked as paid")

	return entry, nil
}

// MarkUnpaid reverts an installment's status to unpaid. This is a display
// correction for operators: it does not reverse ledger entries or credit
// score adjustments already made.
func (uc *RepaymentUseCase) MarkUnpaid(ctx context.Context, installmentID string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	inst, err := uc.installmentRepo.GetByIDForUpdate(ctx, tx, installmentID)
	if err != nil {
		return err
	}
	if inst.Status == domain.InstallmentStatusUnpaid {
		return domain.ErrAlreadyUnpaid
	}

	if err := uc.installmentRepo.UpdateStatus(ctx, tx, inst.ID, domain.InstallmentStatusUnpaid, nil); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.logger.Info().Str("installment_id", installmentID).Msg("schedule repayment marked as unpaid")

	return nil
}

// GetInstallment returns an installment by id.
func (uc *RepaymentUseCase) GetInstallment(ctx context.Context, id string) (*domain.RepaymentInstallment, error) {
	return uc.installmentRepo.GetByID(ctx, id)
}
