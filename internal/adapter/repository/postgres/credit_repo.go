package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// CreditAccountRepository implements usecase.CreditAccountRepository.
type CreditAccountRepository struct {
	pool *pgxpool.Pool
}

// NewCreditAccountRepository creates a new CreditAccountRepository.
func NewCreditAccountRepository(pool *pgxpool.Pool) *CreditAccountRepository {
	return &CreditAccountRepository{pool: pool}
}

// Create inserts a new credit account.
func (r *CreditAccountRepository) Create(ctx context.Context, account *domain.CreditAccount) error {
	query := `
		INSERT INTO credits (id, balance, currency, is_active, last_transaction_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		decimalToNumeric(account.Balance),
		account.Currency,
		account.IsActive,
		account.LastTransactionAt,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return err
}

const creditColumns = `id, balance, currency, is_active, last_transaction_at, created_at, updated_at`

// GetActive retrieves the active credit account.
func (r *CreditAccountRepository) GetActive(ctx context.Context) (*domain.CreditAccount, error) {
	query := `SELECT ` + creditColumns + ` FROM credits WHERE is_active = true LIMIT 1`

	return scanCredit(r.pool.QueryRow(ctx, query))
}

// GetActiveForUpdate retrieves the active credit account with a FOR UPDATE
// lock, serializing concurrent balance mutations on its row.
func (r *CreditAccountRepository) GetActiveForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.CreditAccount, error) {
	query := `SELECT ` + creditColumns + ` FROM credits WHERE is_active = true LIMIT 1 FOR UPDATE`

	return scanCredit(pgxTxFrom(tx).QueryRow(ctx, query))
}

// UpdateBalance moves the account balance within the caller's transaction.
func (r *CreditAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, lastTransactionAt time.Time) error {
	query := `
		UPDATE credits
		SET balance = $2, last_transaction_at = $3, updated_at = $3
		WHERE id = $1
	`

	tag, err := pgxTxFrom(tx).Exec(ctx, query, id, decimalToNumeric(balance), lastTransactionAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func scanCredit(row pgx.Row) (*domain.CreditAccount, error) {
	var (
		account domain.CreditAccount
		balance pgtype.Numeric
	)

	err := row.Scan(
		&account.ID,
		&balance,
		&account.Currency,
		&account.IsActive,
		&account.LastTransactionAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	account.Balance = numericToDecimal(balance)

	return &account, nil
}

// CreditTransactionRepository implements usecase.CreditTransactionRepository.
type CreditTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewCreditTransactionRepository creates a new CreditTransactionRepository.
func NewCreditTransactionRepository(pool *pgxpool.Pool) *CreditTransactionRepository {
	return &CreditTransactionRepository{pool: pool}
}

// Create inserts a ledger entry within the caller's transaction.
func (r *CreditTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.CreditTransaction) error {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO credit_transactions (
			id, transaction_code, credit_id, user_id, amount, kind,
			reference, description, balance_before, balance_after,
			previous_transaction_id, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = pgxTxFrom(tx).Exec(ctx, query,
		t.ID,
		t.TransactionCode,
		t.CreditID,
		t.UserID,
		decimalToNumeric(t.Amount),
		string(t.Kind),
		t.Reference,
		t.Description,
		decimalToNumeric(t.BalanceBefore),
		decimalToNumeric(t.BalanceAfter),
		t.PreviousTransactionID,
		metadata,
		t.CreatedAt,
	)

	return err
}

// GetLatestID returns the id of the account's most recently inserted entry,
// or nil when the account has none. The seq column reflects true insert
// order, which under the account row lock is also commit order.
func (r *CreditTransactionRepository) GetLatestID(ctx context.Context, tx usecase.Transaction, creditID string) (*string, error) {
	query := `
		SELECT id FROM credit_transactions
		WHERE credit_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`

	var id string
	err := pgxTxFrom(tx).QueryRow(ctx, query, creditID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &id, nil
}

// NextDailySequence atomically allocates the next code sequence number for a
// prefix and day via an upsert on the counter row.
func (r *CreditTransactionRepository) NextDailySequence(ctx context.Context, tx usecase.Transaction, prefix string, day time.Time) (int64, error) {
	query := `
		INSERT INTO transaction_counters (prefix, day, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, day)
		DO UPDATE SET seq = transaction_counters.seq + 1
		RETURNING seq
	`

	var seq int64
	err := pgxTxFrom(tx).QueryRow(ctx, query, prefix, day.Format("2006-01-02")).Scan(&seq)
	if err != nil {
		return 0, err
	}

	return seq, nil
}

const transactionColumns = `
	id, transaction_code, credit_id, user_id, amount, kind,
	reference, description, balance_before, balance_after,
	previous_transaction_id, metadata, created_at`

// GetByCode retrieves a ledger entry by its public transaction code.
func (r *CreditTransactionRepository) GetByCode(ctx context.Context, code string) (*domain.CreditTransaction, error) {
	query := `SELECT` + transactionColumns + `
		FROM credit_transactions
		WHERE transaction_code = $1
	`

	return scanTransaction(r.pool.QueryRow(ctx, query, code))
}

// ListByAccount retrieves the account's entries, newest first.
func (r *CreditTransactionRepository) ListByAccount(ctx context.Context, creditID string, limit, offset int) ([]*domain.CreditTransaction, error) {
	query := `SELECT` + transactionColumns + `
		FROM credit_transactions
		WHERE credit_id = $1
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, creditID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.CreditTransaction
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SumByKind totals the account's entry amounts for one transaction kind.
func (r *CreditTransactionRepository) SumByKind(ctx context.Context, creditID string, kind domain.TransactionKind) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_transactions
		WHERE credit_id = $1 AND kind = $2
	`

	var sum pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, creditID, string(kind)).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func scanTransaction(row pgx.Row) (*domain.CreditTransaction, error) {
	var (
		t             domain.CreditTransaction
		kind          string
		amount        pgtype.Numeric
		balanceBefore pgtype.Numeric
		balanceAfter  pgtype.Numeric
		metadata      []byte
	)

	err := row.Scan(
		&t.ID,
		&t.TransactionCode,
		&t.CreditID,
		&t.UserID,
		&amount,
		&kind,
		&t.Reference,
		&t.Description,
		&balanceBefore,
		&balanceAfter,
		&t.PreviousTransactionID,
		&metadata,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	t.Kind = domain.TransactionKind(kind)
	t.Amount = numericToDecimal(amount)
	t.BalanceBefore = numericToDecimal(balanceBefore)
	t.BalanceAfter = numericToDecimal(balanceAfter)
	if metadata != nil {
		_ = json.Unmarshal(metadata, &t.Metadata)
	}

	return &t, nil
}
