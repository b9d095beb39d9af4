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

// LedgerUseCase owns all mutations of the active credit account. Every
// balance change goes through RecordInTx, which serializes on the account row
// lock so concurrent writers can never build on the same balance snapshot.
type LedgerUseCase struct {
	txManager      TransactionManager
	accountRepo    CreditAccountRepository
	entryRepo      CreditTransactionRepository
	outboxRepo     OutboxRepository
	idGen          IDGenerator
	retrier        Retrier
	operatorChatID int64
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo CreditAccountRepository,
	entryRepo CreditTransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	operatorChatID int64,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:      txManager,
		accountRepo:    accountRepo,
		entryRepo:      entryRepo,
		outboxRepo:     outboxRepo,
		idGen:          idGen,
		retrier:        retrier,
		operatorChatID: operatorChatID,
		metrics:        m,
		logger:         logger,
	}
}

// observeEntry publishes counters for a committed ledger entry. Callers
// invoke it only after their transaction commits so retried or rolled back
// attempts are never counted.
func (uc *LedgerUseCase) observeEntry(entry *domain.CreditTransaction) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.LedgerEntries.WithLabelValues(string(entry.Kind)).Inc()
	uc.metrics.CreditBalance.Set(entry.BalanceAfter.InexactFloat64())
}

// RecordTransactionInput is the input for recording one ledger entry.
type RecordTransactionInput struct {
	UserID      string
	Amount      decimal.Decimal
	Kind        domain.TransactionKind
	Description string
	Reference   string
	Metadata    map[string]any
}

// RecordInTx appends a ledger entry and moves the running balance inside the
// caller's transaction. The account row lock taken here keeps the balance
// read, the chain-predecessor read, the entry insert and the balance update
// atomic as one unit. Debit kinds fail with ErrInsufficientBalance before any
// write when the balance does not cover the amount.
func (uc *LedgerUseCase) RecordInTx(ctx context.Context, tx Transaction, input RecordTransactionInput) (*domain.CreditTransaction, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !input.Kind.Valid() {
		return nil, domain.ErrInvalidKind
	}

	account, err := uc.accountRepo.GetActiveForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	var balanceAfter decimal.Decimal
	if input.Kind.IsCredit() {
		balanceAfter = account.Balance.Add(input.Amount)
	} else {
		if err := account.ValidateDebit(input.Amount); err != nil {
			return nil, err
		}
		balanceAfter = account.Balance.Sub(input.Amount)
	}

	previousID, err := uc.entryRepo.GetLatestID(ctx, tx, account.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	seq, err := uc.entryRepo.NextDailySequence(ctx, tx, input.Kind.CodePrefix(), now)
	if err != nil {
		return nil, err
	}

	entry := &domain.CreditTransaction{
		ID:                    uc.idGen.Generate(),
		TransactionCode:       domain.TransactionCode(input.Kind, now, seq),
		CreditID:              account.ID,
		UserID:                input.UserID,
		Amount:                input.Amount,
		Kind:                  input.Kind,
		Reference:             input.Reference,
		Description:           input.Description,
		BalanceBefore:         account.Balance,
		BalanceAfter:          balanceAfter,
		PreviousTransactionID: previousID,
		Metadata:              input.Metadata,
		CreatedAt:             now,
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, balanceAfter, now); err != nil {
		return nil, err
	}

	if uc.operatorChatID != 0 {
		event := &domain.NotificationEvent{
			ID:        uc.idGen.Generate(),
			EventType: domain.EventLedgerEntry,
			ChatID:    uc.operatorChatID,
			Message:   ledgerEntryMessage(entry),
			Payload: map[string]any{
				"transaction_code": entry.TransactionCode,
				"kind":             string(entry.Kind),
				"amount":           entry.Amount.StringFixed(2),
				"balance_after":    entry.BalanceAfter.StringFixed(2),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.CreateTx(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

// AdjustInput is the input for an admin deposit or withdrawal.
type AdjustInput struct {
	UserID      string
	Amount      decimal.Decimal
	Kind        domain.TransactionKind
	Description string
	Metadata    map[string]any
}

// Adjust records an admin deposit or withdrawal in its own transaction.
func (uc *LedgerUseCase) Adjust(ctx context.Context, input AdjustInput) (*domain.CreditTransaction, error) {
	if input.Kind != domain.KindAdminDeposit && input.Kind != domain.KindAdminWithdrawal {
		return nil, domain.ErrInvalidKind
	}

	reference := "Deposit by Admin"
	if input.Kind == domain.KindAdminWithdrawal {
		reference = "Withdrawal by Admin"
	}

	var entry *domain.CreditTransaction
	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		entry, err = uc.RecordInTx(ctx, tx, RecordTransactionInput{
			UserID:      input.UserID,
			Amount:      input.Amount,
			Kind:        input.Kind,
			Description: input.Description,
			Reference:   reference,
			Metadata:    input.Metadata,
		})
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		if uc.metrics != nil && errors.Is(err, domain.ErrInsufficientBalance) {
			uc.metrics.LedgerErrors.WithLabelValues("insufficient_balance").Inc()
		}
		return nil, err
	}

	uc.observeEntry(entry)

	uc.logger.Info().
		Str("transaction_code", entry.TransactionCode).
		Str("kind", string(entry.Kind)).
		Str("amount", entry.FormattedAmount()).
		Str("balance_after", entry.BalanceAfter.StringFixed(2)).
		Msg("credit adjustment recorded")

	return entry, nil
}

// GetAccount returns the active credit account.
func (uc *LedgerUseCase) GetAccount(ctx context.Context) (*domain.CreditAccount, error) {
	return uc.accountRepo.GetActive(ctx)
}

// ListTransactionsInput is the input for listing ledger entries.
type ListTransactionsInput struct {
	Limit  int
	Offset int
}

// ListTransactions lists the active account's entries, newest first.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.CreditTransaction, error) {
	account, err := uc.accountRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.entryRepo.ListByAccount(ctx, account.ID, input.Limit, input.Offset)
}

// GetTransactionByCode looks up a ledger entry by its public code.
func (uc *LedgerUseCase) GetTransactionByCode(ctx context.Context, code string) (*domain.CreditTransaction, error) {
	return uc.entryRepo.GetByCode(ctx, code)
}

// NetActivity returns total admin deposits minus total admin withdrawals for
// the active account.
func (uc *LedgerUseCase) NetActivity(ctx context.Context) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetActive(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	deposits, err := uc.entryRepo.SumByKind(ctx, account.ID, domain.KindAdminDeposit)
	if err != nil {
		return decimal.Zero, err
	}

	withdrawals, err := uc.entryRepo.SumByKind(ctx, account.ID, domain.KindAdminWithdrawal)
	if err != nil {
		return decimal.Zero, err
	}

	return deposits.Sub(withdrawals), nil
}
