package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// LoanRequestRepository implements usecase.LoanRequestRepository. A request
// owns one income_information row and one nid_information row, written
// together with the request itself.
type LoanRequestRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRequestRepository creates a new LoanRequestRepository.
func NewLoanRequestRepository(pool *pgxpool.Pool) *LoanRequestRepository {
	return &LoanRequestRepository{pool: pool}
}

// Create inserts the request and its income and NID snapshots within the
// caller's transaction.
func (r *LoanRequestRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.LoanRequest) error {
	pgxTx := pgxTxFrom(tx)

	query := `
		INSERT INTO request_loans (
			id, user_id, loan_amount, approved_amount, loan_duration,
			loan_type, status, rejection_reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := pgxTx.Exec(ctx, query,
		req.ID,
		req.UserID,
		decimalToNumeric(req.LoanAmount),
		decimalToNumeric(req.ApprovedAmount),
		req.LoanDuration,
		req.LoanType,
		string(req.Status),
		req.RejectionReason,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if req.Income != nil {
		query = `
			INSERT INTO income_information (id, request_loan_id, employee_type, position, income, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = pgxTx.Exec(ctx, query,
			req.Income.ID,
			req.Income.RequestLoanID,
			req.Income.EmployeeType,
			req.Income.Position,
			decimalToNumeric(req.Income.Income),
			req.Income.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	if req.Nid != nil {
		query = `
			INSERT INTO nid_information (id, request_loan_id, nid_number, first_name, last_name, verified, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = pgxTx.Exec(ctx, query,
			req.Nid.ID,
			req.Nid.RequestLoanID,
			req.Nid.NidNumber,
			req.Nid.FirstName,
			req.Nid.LastName,
			req.Nid.Verified,
			req.Nid.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

const requestColumns = `
	id, user_id, loan_amount, approved_amount, loan_duration,
	loan_type, status, rejection_reason, created_at, updated_at`

// GetByID retrieves a loan request with its snapshots.
func (r *LoanRequestRepository) GetByID(ctx context.Context, id string) (*domain.LoanRequest, error) {
	query := `SELECT` + requestColumns + ` FROM request_loans WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadSnapshots(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// GetByIDForUpdate retrieves a loan request with a FOR UPDATE lock on the
// request row. Snapshots are loaded without locks; they are immutable.
func (r *LoanRequestRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanRequest, error) {
	query := `SELECT` + requestColumns + ` FROM request_loans WHERE id = $1 FOR UPDATE`

	req, err := scanRequest(pgxTxFrom(tx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadSnapshots(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// HasEligible reports whether the user already holds an eligible request.
func (r *LoanRequestRepository) HasEligible(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM request_loans WHERE user_id = $1 AND status = $2)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, string(domain.RequestStatusEligible)).Scan(&exists)

	return exists, err
}

// UpdateDecision moves the request to a decided status within the caller's
// transaction.
func (r *LoanRequestRepository) UpdateDecision(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanRequestStatus, approvedAmount decimal.Decimal, reason *string) error {
	query := `
		UPDATE request_loans
		SET status = $2, approved_amount = $3, rejection_reason = $4, updated_at = now()
		WHERE id = $1
	`

	tag, err := pgxTxFrom(tx).Exec(ctx, query, id, string(status), decimalToNumeric(approvedAmount), reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanRequestNotFound
	}

	return nil
}

// ListByUser retrieves a user's requests, newest first, without snapshots.
func (r *LoanRequestRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LoanRequest, error) {
	query := `SELECT` + requestColumns + `
		FROM request_loans
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.LoanRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// MarkNidVerified records the outcome of an NID verification.
func (r *LoanRequestRepository) MarkNidVerified(ctx context.Context, id string, verified bool) error {
	query := `UPDATE nid_information SET verified = $2 WHERE request_loan_id = $1`

	tag, err := r.pool.Exec(ctx, query, id, verified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanRequestNotFound
	}

	return nil
}

func (r *LoanRequestRepository) loadSnapshots(ctx context.Context, req *domain.LoanRequest) error {
	query := `
		SELECT id, request_loan_id, employee_type, position, income, created_at
		FROM income_information
		WHERE request_loan_id = $1
	`

	var (
		income       domain.IncomeInformation
		incomeAmount pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, query, req.ID).Scan(
		&income.ID,
		&income.RequestLoanID,
		&income.EmployeeType,
		&income.Position,
		&incomeAmount,
		&income.CreatedAt,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return err
	default:
		income.Income = numericToDecimal(incomeAmount)
		req.Income = &income
	}

	query = `
		SELECT id, request_loan_id, nid_number, first_name, last_name, verified, created_at
		FROM nid_information
		WHERE request_loan_id = $1
	`

	var nid domain.NidInformation
	err = r.pool.QueryRow(ctx, query, req.ID).Scan(
		&nid.ID,
		&nid.RequestLoanID,
		&nid.NidNumber,
		&nid.FirstName,
		&nid.LastName,
		&nid.Verified,
		&nid.CreatedAt,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return err
	default:
		req.Nid = &nid
	}

	return nil
}

func scanRequest(row pgx.Row) (*domain.LoanRequest, error) {
	var (
		req            domain.LoanRequest
		status         string
		loanAmount     pgtype.Numeric
		approvedAmount pgtype.Numeric
	)

	err := row.Scan(
		&req.ID,
		&req.UserID,
		&loanAmount,
		&approvedAmount,
		&req.LoanDuration,
		&req.LoanType,
		&status,
		&req.RejectionReason,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLoanRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	req.Status = domain.LoanRequestStatus(status)
	req.LoanAmount = numericToDecimal(loanAmount)
	req.ApprovedAmount = numericToDecimal(approvedAmount)

	return &req, nil
}
