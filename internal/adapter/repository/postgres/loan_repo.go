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

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

// Create inserts a loan within the caller's transaction.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (
			id, request_loan_id, user_id, loan_amount, loan_duration,
			loan_repayment, revenue, status, credit_score_id, interest_rate_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := pgxTxFrom(tx).Exec(ctx, query,
		loan.ID,
		loan.RequestLoanID,
		loan.UserID,
		decimalToNumeric(loan.LoanAmount),
		loan.LoanDuration,
		decimalToNumeric(loan.LoanRepayment),
		decimalToNumeric(loan.Revenue),
		string(loan.Status),
		loan.CreditScoreID,
		loan.InterestRateID,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

const loanColumns = `
	id, request_loan_id, user_id, loan_amount, loan_duration,
	loan_repayment, revenue, status, credit_score_id, interest_rate_id,
	created_at, updated_at`

// GetByID retrieves a loan by id.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	query := `SELECT` + loanColumns + ` FROM loans WHERE id = $1`

	return scanLoan(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatus moves a loan to a new status within the caller's transaction.
func (r *LoanRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error {
	query := `UPDATE loans SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := pgxTxFrom(tx).Exec(ctx, query, id, string(status), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// ListByUser retrieves a user's loans, newest first.
func (r *LoanRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Loan, error) {
	query := `SELECT` + loanColumns + `
		FROM loans
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}

	return loans, rows.Err()
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		loan       domain.Loan
		status     string
		amount     pgtype.Numeric
		repayment  pgtype.Numeric
		revenue    pgtype.Numeric
	)

	err := row.Scan(
		&loan.ID,
		&loan.RequestLoanID,
		&loan.UserID,
		&amount,
		&loan.LoanDuration,
		&repayment,
		&revenue,
		&status,
		&loan.CreditScoreID,
		&loan.InterestRateID,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}

	loan.Status = domain.LoanStatus(status)
	loan.LoanAmount = numericToDecimal(amount)
	loan.LoanRepayment = numericToDecimal(repayment)
	loan.Revenue = numericToDecimal(revenue)

	return &loan, nil
}
