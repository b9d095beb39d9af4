package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/metrics"
)

// ledgerRecorder is the slice of the ledger the lifecycle needs: appending an
// entry inside an already-open transaction.
type ledgerRecorder interface {
	RecordInTx(ctx context.Context, tx Transaction, input RecordTransactionInput) (*domain.CreditTransaction, error)
}

// LoanUseCase drives a loan request through submission, eligibility,
// approval and rejection.
type LoanUseCase struct {
	txManager       TransactionManager
	requestRepo     LoanRequestRepository
	loanRepo        LoanRepository
	installmentRepo InstallmentRepository
	scoreRepo       CreditScoreRepository
	borrowerRepo    BorrowerRepository
	rateRepo        InterestRateRepository
	outboxRepo      OutboxRepository
	ledger          ledgerRecorder
	idGen           IDGenerator
	retrier         Retrier
	operatorChatID  int64
	metrics         *metrics.Metrics
	logger          zerolog.Logger
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(
	txManager TransactionManager,
	requestRepo LoanRequestRepository,
	loanRepo LoanRepository,
	installmentRepo InstallmentRepository,
	scoreRepo CreditScoreRepository,
	borrowerRepo BorrowerRepository,
	rateRepo InterestRateRepository,
	outboxRepo OutboxRepository,
	ledger ledgerRecorder,
	idGen IDGenerator,
	retrier Retrier,
	operatorChatID int64,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *LoanUseCase {
	return &LoanUseCase{
		txManager:       txManager,
		requestRepo:     requestRepo,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		scoreRepo:       scoreRepo,
		borrowerRepo:    borrowerRepo,
		rateRepo:        rateRepo,
		outboxRepo:      outboxRepo,
		ledger:          ledger,
		idGen:           idGen,
		retrier:         retrier,
		operatorChatID:  operatorChatID,
		metrics:         m,
		logger:          logger,
	}
}

// SubmitLoanRequestInput is the borrower's application payload.
type SubmitLoanRequestInput struct {
	UserID       string
	LoanAmount   decimal.Decimal
	LoanDuration int
	LoanType     string
	EmployeeType string
	Position     string
	Income       decimal.Decimal
	NidNumber    string
	NidFirstName string
	NidLastName  string
}

// SubmitLoanRequest creates a loan request with its income and NID snapshots
// and runs the eligibility evaluation synchronously. The request row, the
// decision and the borrower notification commit as one transaction.
func (uc *LoanUseCase) SubmitLoanRequest(ctx context.Context, input SubmitLoanRequestInput) (*domain.LoanRequest, error) {
	if input.LoanAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if input.LoanDuration < MinLoanDuration || input.LoanDuration > MaxLoanDuration {
		return nil, domain.ErrInvalidDuration
	}

	hasEligible, err := uc.requestRepo.HasEligible(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if hasEligible {
		return nil, domain.ErrEligibleExists
	}

	borrower, err := uc.borrowerRepo.GetByUserID(ctx, input.UserID)
	if err != nil && !errors.Is(err, domain.ErrBorrowerNotFound) {
		return nil, err
	}

	score, err := uc.scoreRepo.GetByUserID(ctx, input.UserID)
	if err != nil && !errors.Is(err, domain.ErrCreditScoreNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	req := &domain.LoanRequest{
		ID:             uc.idGen.Generate(),
		UserID:         input.UserID,
		LoanAmount:     input.LoanAmount,
		ApprovedAmount: decimal.Zero,
		LoanDuration:   input.LoanDuration,
		LoanType:       input.LoanType,
		Status:         domain.RequestStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	req.Income = &domain.IncomeInformation{
		ID:            uc.idGen.Generate(),
		RequestLoanID: req.ID,
		EmployeeType:  input.EmployeeType,
		Position:      input.Position,
		Income:        input.Income,
		CreatedAt:     now,
	}
	req.Nid = &domain.NidInformation{
		ID:            uc.idGen.Generate(),
		RequestLoanID: req.ID,
		NidNumber:     input.NidNumber,
		FirstName:     input.NidFirstName,
		LastName:      input.NidLastName,
		CreatedAt:     now,
	}

	outcome := domain.EvaluateEligibility(domain.EligibilityInput{
		Borrower: borrower,
		Income:   req.Income,
		Score:    score,
		Amount:   req.LoanAmount,
		Now:      now,
	})

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.requestRepo.Create(ctx, tx, req); err != nil {
		return nil, err
	}

	if outcome.Eligible {
		req.Status = domain.RequestStatusEligible
		req.ApprovedAmount = outcome.ApprovedAmount
		if err := uc.requestRepo.UpdateDecision(ctx, tx, req.ID, req.Status, req.ApprovedAmount, nil); err != nil {
			return nil, err
		}
	} else {
		req.Status = domain.RequestStatusNotEligible
		reason := outcome.Reason
		req.RejectionReason = &reason
		if err := uc.requestRepo.UpdateDecision(ctx, tx, req.ID, req.Status, decimal.Zero, &reason); err != nil {
			return nil, err
		}
	}

	if borrower != nil && borrower.TelegramChatID != 0 {
		message := notEligibleMessage(req.LoanAmount, outcome.Reason)
		if outcome.Eligible {
			message = eligibleMessage(req.LoanAmount, outcome.ApprovedAmount, outcome.ApprovedPercent)
		}
		event := &domain.NotificationEvent{
			ID:        uc.idGen.Generate(),
			EventType: domain.EventEligibilityDecided,
			ChatID:    borrower.TelegramChatID,
			Message:   message,
			Payload: map[string]any{
				"request_loan_id": req.ID,
				"status":          string(req.Status),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.CreateTx(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsSubmitted.Inc()
		reason := outcome.Reason
		if reason == "" {
			reason = "ok"
		}
		uc.metrics.EligibilityOutcomes.WithLabelValues(string(req.Status), reason).Inc()
	}

	uc.logger.Info().
		Str("request_loan_id", req.ID).
		Str("user_id", req.UserID).
		Str("status", string(req.Status)).
		Str("reason", outcome.Reason).
		Msg("loan request submitted")

	return req, nil
}

// ApproveLoanRequest approves an eligible request: it creates the loan, the
// repayment schedule and the disbursement ledger entry, and flips the request
// to approved, all in one transaction. The disbursed principal is the
// requested loan amount. A second approval of the same request fails with
// ErrAlreadyProcessed and writes nothing.
func (uc *LoanUseCase) ApproveLoanRequest(ctx context.Context, requestID, adminID string, metadata map[string]any) (*domain.Loan, error) {
	var (
		loan      *domain.Loan
		borrower  *domain.Borrower
		entry     *domain.CreditTransaction
		total     decimal.Decimal
		disbursed decimal.Decimal
	)

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		req, err := uc.requestRepo.GetByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !req.CanApprove() {
			return domain.ErrAlreadyProcessed
		}
		disbursed = req.LoanAmount

		score, err := uc.scoreRepo.GetByUserID(ctx, req.UserID)
		if err != nil {
			return err
		}

		rate, err := uc.rateRepo.GetLatest(ctx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		_, schedule := domain.GenerateSchedule(req.LoanAmount, rate.Rate, req.LoanDuration, now)
		interest := domain.FlatInterest(req.LoanAmount, rate.Rate, req.LoanDuration)
		total = req.LoanAmount.Add(interest)

		loan = &domain.Loan{
			ID:             uc.idGen.Generate(),
			RequestLoanID:  req.ID,
			UserID:         req.UserID,
			LoanAmount:     req.LoanAmount,
			LoanDuration:   req.LoanDuration,
			LoanRepayment:  total,
			Revenue:        interest,
			Status:         domain.LoanStatusUnpaid,
			CreditScoreID:  score.ID,
			InterestRateID: rate.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := uc.loanRepo.Create(ctx, tx, loan); err != nil {
			return err
		}

		rows := make([]*domain.RepaymentInstallment, 0, len(schedule))
		for i := range schedule {
			inst := schedule[i]
			inst.ID = uc.idGen.Generate()
			inst.LoanID = loan.ID
			inst.CreatedAt = now
			rows = append(rows, &inst)
		}
		if err := uc.installmentRepo.CreateBatch(ctx, tx, rows); err != nil {
			return err
		}

		entry, err = uc.ledger.RecordInTx(ctx, tx, RecordTransactionInput{
			UserID:      req.UserID,
			Amount:      req.LoanAmount,
			Kind:        domain.KindLoanDisbursement,
			Description: "Loan approved for request ID: " + req.ID,
			Reference:   "loan_" + loan.ID,
			Metadata:    metadata,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientBalance) {
				uc.alertOperatorInsufficientBalance(ctx, req)
			}
			return err
		}

		if err := uc.requestRepo.UpdateDecision(ctx, tx, req.ID, domain.RequestStatusApproved, req.LoanAmount, nil); err != nil {
			return err
		}

		borrower, err = uc.borrowerRepo.GetByUserID(ctx, req.UserID)
		if err != nil && !errors.Is(err, domain.ErrBorrowerNotFound) {
			return err
		}

		if borrower != nil && borrower.TelegramChatID != 0 {
			event := &domain.NotificationEvent{
				ID:        uc.idGen.Generate(),
				EventType: domain.EventRequestApproved,
				ChatID:    borrower.TelegramChatID,
				Message:   approvalMessage(req.ID, loan.ID, req.LoanAmount, total, req.LoanDuration, entry),
				Payload: map[string]any{
					"request_loan_id":  req.ID,
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
		if uc.metrics != nil && errors.Is(err, domain.ErrInsufficientBalance) {
			uc.metrics.LedgerErrors.WithLabelValues("insufficient_balance").Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsApproved.Inc()
		uc.metrics.LoansDisbursed.Inc()
		uc.metrics.DisbursedAmount.Observe(disbursed.InexactFloat64())
		uc.metrics.LedgerEntries.WithLabelValues(string(entry.Kind)).Inc()
		uc.metrics.CreditBalance.Set(entry.BalanceAfter.InexactFloat64())
	}

	uc.logger.Info().
		Str("request_loan_id", requestID).
		Str("loan_id", loan.ID).
		Str("admin_id", adminID).
		Str("transaction_code", entry.TransactionCode).
		Msg("loan request approved")

	return loan, nil
}

// alertOperatorInsufficientBalance queues an operator alert outside the
// approval transaction so it survives the rollback.
func (uc *LoanUseCase) alertOperatorInsufficientBalance(ctx context.Context, req *domain.LoanRequest) {
	if uc.operatorChatID == 0 {
		return
	}

	event := &domain.NotificationEvent{
		ID:        uc.idGen.Generate(),
		EventType: domain.EventOperatorAlert,
		ChatID:    uc.operatorChatID,
		Message:   operatorBalanceAlertMessage(req),
		Payload:   map[string]any{"request_loan_id": req.ID, "user_id": req.UserID},
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.outboxRepo.Create(ctx, event); err != nil {
		uc.logger.Error().Err(err).Str("request_loan_id", req.ID).Msg("failed to queue operator alert")
	}
}

// RejectLoanRequest rejects an eligible request with a reason. There are no
// ledger or loan side effects.
func (uc *LoanUseCase) RejectLoanRequest(ctx context.Context, requestID, reason string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	req, err := uc.requestRepo.GetByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		return err
	}
	if !req.CanReject() {
		return domain.ErrAlreadyProcessed
	}

	if err := uc.requestRepo.UpdateDecision(ctx, tx, req.ID, domain.RequestStatusRejected, decimal.Zero, &reason); err != nil {
		return err
	}

	borrower, err := uc.borrowerRepo.GetByUserID(ctx, req.UserID)
	if err != nil && !errors.Is(err, domain.ErrBorrowerNotFound) {
		return err
	}

	if borrower != nil && borrower.TelegramChatID != 0 {
		event := &domain.NotificationEvent{
			ID:        uc.idGen.Generate(),
			EventType: domain.EventRequestRejected,
			ChatID:    borrower.TelegramChatID,
			Message:   rejectionMessage(req.ID, reason),
			Payload:   map[string]any{"request_loan_id": req.ID, "reason": reason},
			CreatedAt: time.Now().UTC(),
		}
		if err := uc.outboxRepo.CreateTx(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsRejected.Inc()
	}

	uc.logger.Info().
		Str("request_loan_id", requestID).
		Str("reason", reason).
		Msg("loan request rejected")

	return nil
}

// GetRequest returns a loan request with its snapshots.
func (uc *LoanUseCase) GetRequest(ctx context.Context, id string) (*domain.LoanRequest, error) {
	return uc.requestRepo.GetByID(ctx, id)
}

// ListRequestsInput is the input for listing a user's requests.
type ListRequestsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListRequests lists a user's loan requests.
func (uc *LoanUseCase) ListRequests(ctx context.Context, input ListRequestsInput) ([]*domain.LoanRequest, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.requestRepo.ListByUser(ctx, input.UserID, input.Limit, input.Offset)
}

// GetLoan returns a loan by id.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.loanRepo.GetByID(ctx, id)
}

// ListLoans lists a user's loans.
func (uc *LoanUseCase) ListLoans(ctx context.Context, input ListRequestsInput) ([]*domain.Loan, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.loanRepo.ListByUser(ctx, input.UserID, input.Limit, input.Offset)
}

// GetSchedule returns a loan's repayment schedule.
func (uc *LoanUseCase) GetSchedule(ctx context.Context, loanID string) ([]*domain.RepaymentInstallment, error) {
	if _, err := uc.loanRepo.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return uc.installmentRepo.ListByLoan(ctx, loanID)
}

// VerifyNid compares an extracted NID number against the snapshot stored
// with the request and records the result. The extraction itself comes from
// an external OCR service; only its structured result is consumed here.
func (uc *LoanUseCase) VerifyNid(ctx context.Context, requestID, extractedNid string) (bool, error) {
	req, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return false, err
	}
	if req.Nid == nil {
		return false, domain.ErrLoanRequestNotFound
	}

	verified := extractedNid != "" && req.Nid.NidNumber == extractedNid
	if err := uc.requestRepo.MarkNidVerified(ctx, req.ID, verified); err != nil {
		return false, err
	}

	return verified, nil
}
