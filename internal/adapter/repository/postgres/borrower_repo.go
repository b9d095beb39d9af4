package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// BorrowerRepository implements usecase.BorrowerRepository.
type BorrowerRepository struct {
	pool *pgxpool.Pool
}

// NewBorrowerRepository creates a new BorrowerRepository.
func NewBorrowerRepository(pool *pgxpool.Pool) *BorrowerRepository {
	return &BorrowerRepository{pool: pool}
}

// GetByUserID retrieves a borrower profile by user id.
func (r *BorrowerRepository) GetByUserID(ctx context.Context, userID string) (*domain.Borrower, error) {
	query := `
		SELECT id, user_id, first_name, last_name, dob, telegram_chat_id, created_at
		FROM borrowers
		WHERE user_id = $1
	`

	var b domain.Borrower
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&b.ID,
		&b.UserID,
		&b.FirstName,
		&b.LastName,
		&b.Dob,
		&b.TelegramChatID,
		&b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBorrowerNotFound
	}
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreditScoreRepository implements usecase.CreditScoreRepository.
type CreditScoreRepository struct {
	pool  *pgxpool.Pool
	idGen usecase.IDGenerator
}

// NewCreditScoreRepository creates a new CreditScoreRepository.
func NewCreditScoreRepository(pool *pgxpool.Pool, idGen usecase.IDGenerator) *CreditScoreRepository {
	return &CreditScoreRepository{pool: pool, idGen: idGen}
}

// GetByUserID retrieves a user's credit score.
func (r *CreditScoreRepository) GetByUserID(ctx context.Context, userID string) (*domain.CreditScore, error) {
	query := `SELECT id, user_id, score, updated_at FROM credit_scores WHERE user_id = $1`

	var s domain.CreditScore
	err := r.pool.QueryRow(ctx, query, userID).Scan(&s.ID, &s.UserID, &s.Score, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCreditScoreNotFound
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// GetOrCreateForUpdate locks the user's score row, creating it at zero when
// missing. The insert races lose to ON CONFLICT, so concurrent callers
// converge on one row.
func (r *CreditScoreRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, userID string) (*domain.CreditScore, error) {
	pgxTx := pgxTxFrom(tx)

	insert := `
		INSERT INTO credit_scores (id, user_id, score, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := pgxTx.Exec(ctx, insert, r.idGen.Generate(), userID); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, score, updated_at FROM credit_scores WHERE user_id = $1 FOR UPDATE`

	var s domain.CreditScore
	if err := pgxTx.QueryRow(ctx, query, userID).Scan(&s.ID, &s.UserID, &s.Score, &s.UpdatedAt); err != nil {
		return nil, err
	}

	return &s, nil
}

// UpdateScore writes a new score value within the caller's transaction.
func (r *CreditScoreRepository) UpdateScore(ctx context.Context, tx usecase.Transaction, id string, score int, updatedAt time.Time) error {
	query := `UPDATE credit_scores SET score = $2, updated_at = $3 WHERE id = $1`

	tag, err := pgxTxFrom(tx).Exec(ctx, query, id, score, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCreditScoreNotFound
	}

	return nil
}

// InterestRateRepository implements usecase.InterestRateRepository.
type InterestRateRepository struct {
	pool *pgxpool.Pool
}

// NewInterestRateRepository creates a new InterestRateRepository.
func NewInterestRateRepository(pool *pgxpool.Pool) *InterestRateRepository {
	return &InterestRateRepository{pool: pool}
}

// GetLatest retrieves the most recently created rate.
func (r *InterestRateRepository) GetLatest(ctx context.Context) (*domain.InterestRate, error) {
	query := `SELECT id, rate, created_at FROM interest_rates ORDER BY created_at DESC LIMIT 1`

	var (
		rate  domain.InterestRate
		value pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, query).Scan(&rate.ID, &value, &rate.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInterestRateNotFound
	}
	if err != nil {
		return nil, err
	}

	rate.Rate = numericToDecimal(value)

	return &rate, nil
}

// Create inserts a new interest rate.
func (r *InterestRateRepository) Create(ctx context.Context, rate *domain.InterestRate) error {
	query := `INSERT INTO interest_rates (id, rate, created_at) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, rate.ID, decimalToNumeric(rate.Rate), rate.CreatedAt)

	return err
}
