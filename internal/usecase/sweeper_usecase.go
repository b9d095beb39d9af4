package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
)

// SweeperUseCase runs the scheduled due-date sweeps over the repayment
// schedule.
type SweeperUseCase struct {
	txManager       TransactionManager
	installmentRepo InstallmentRepository
	loanRepo        LoanRepository
	scoreRepo       CreditScoreRepository
	borrowerRepo    BorrowerRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	logger          zerolog.Logger
}

// NewSweeperUseCase creates a new SweeperUseCase.
func NewSweeperUseCase(
	txManager TransactionManager,
	installmentRepo InstallmentRepository,
	loanRepo LoanRepository,
	scoreRepo CreditScoreRepository,
	borrowerRepo BorrowerRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *SweeperUseCase {
	return &SweeperUseCase{
		txManager:       txManager,
		installmentRepo: installmentRepo,
		loanRepo:        loanRepo,
		scoreRepo:       scoreRepo,
		borrowerRepo:    borrowerRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		logger:          logger,
	}
}

// RunLateSweep marks overdue unpaid installments late, applies the one-point
// score penalty and queues an overdue alert per affected borrower. Each row
// transitions in its own transaction with a status re-check under lock, so a
// second sweep in the same day skips rows already late and never penalizes
// or notifies twice. Returns the number of rows transitioned.
func (uc *SweeperUseCase) RunLateSweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	overdue, err := uc.installmentRepo.ListOverdueUnpaid(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, inst := range overdue {
		transitioned, err := uc.markLate(ctx, inst.ID)
		if err != nil {
			uc.logger.Error().Err(err).Str("installment_id", inst.ID).Msg("late sweep: failed to mark installment")
			continue
		}
		if transitioned {
			marked++
		}
	}

	uc.logger.Info().Int("marked", marked).Int("candidates", len(overdue)).Msg("late repayment sweep completed")

	return marked, nil
}

// markLate transitions one installment unpaid -> late. Reports false when
// the row was no longer unpaid by the time it was locked.
func (uc *SweeperUseCase) markLate(ctx context.Context, installmentID string) (bool, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	inst, err := uc.installmentRepo.GetByIDForUpdate(ctx, tx, installmentID)
	if err != nil {
		return false, err
	}
	if inst.Status != domain.InstallmentStatusUnpaid {
		return false, nil
	}

	if err := uc.installmentRepo.UpdateStatus(ctx, tx, inst.ID, domain.InstallmentStatusLate, nil); err != nil {
		return false, err
	}
	inst.Status = domain.InstallmentStatusLate

	loan, err := uc.loanRepo.GetByID(ctx, inst.LoanID)
	if err != nil {
		return false, err
	}

	score, err := uc.scoreRepo.GetOrCreateForUpdate(ctx, tx, loan.UserID)
	if err != nil {
		return false, err
	}
	score.Decrement()
	if err := uc.scoreRepo.UpdateScore(ctx, tx, score.ID, score.Score, time.Now().UTC()); err != nil {
		return false, err
	}

	borrower, err := uc.borrowerRepo.GetByUserID(ctx, loan.UserID)
	if err != nil && !errors.Is(err, domain.ErrBorrowerNotFound) {
		return false, err
	}
	if borrower != nil && borrower.TelegramChatID != 0 {
		event := &domain.NotificationEvent{
			ID:        uc.idGen.Generate(),
			EventType: domain.EventRepaymentLate,
			ChatID:    borrower.TelegramChatID,
			Message:   lateAlertMessage(inst),
			Payload:   map[string]any{"installment_id": inst.ID, "loan_id": loan.ID},
			CreatedAt: time.Now().UTC(),
		}
		if err := uc.outboxRepo.CreateTx(ctx, tx, event); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	return true, nil
}

// RunUpcomingReminderSweep queues a reminder for every unpaid installment due
// within the next 72 hours. Read plus notify only, no state mutation, safe to
// run arbitrarily often. Returns the number of reminders queued.
func (uc *SweeperUseCase) RunUpcomingReminderSweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	upcoming, err := uc.installmentRepo.ListUnpaidDueBetween(ctx, now, now.Add(UpcomingReminderWindow))
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, inst := range upcoming {
		loan, err := uc.loanRepo.GetByID(ctx, inst.LoanID)
		if err != nil {
			uc.logger.Error().Err(err).Str("installment_id", inst.ID).Msg("reminder sweep: failed to load loan")
			continue
		}

		borrower, err := uc.borrowerRepo.GetByUserID(ctx, loan.UserID)
		if err != nil {
			if !errors.Is(err, domain.ErrBorrowerNotFound) {
				uc.logger.Error().Err(err).Str("user_id", loan.UserID).Msg("reminder sweep: failed to load borrower")
			}
			continue
		}
		if borrower.TelegramChatID == 0 {
			continue
		}

		event := &domain.NotificationEvent{
			ID:        uc.idGen.Generate(),
			EventType: domain.EventRepaymentUpcoming,
			ChatID:    borrower.TelegramChatID,
			Message:   upcomingReminderMessage(inst),
			Payload:   map[string]any{"installment_id": inst.ID, "loan_id": loan.ID},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			uc.logger.Error().Err(err).Str("installment_id", inst.ID).Msg("reminder sweep: failed to queue reminder")
			continue
		}
		notified++
	}

	uc.logger.Info().Int("notified", notified).Msg("pre-due repayment reminder sweep completed")

	return notified, nil
}
