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

// InstallmentRepository implements usecase.InstallmentRepository.
type InstallmentRepository struct {
	pool *pgxpool.Pool
}

// NewInstallmentRepository creates a new InstallmentRepository.
func NewInstallmentRepository(pool *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{pool: pool}
}

// CreateBatch inserts a loan's schedule rows within the caller's transaction.
func (r *InstallmentRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, rows []*domain.RepaymentInstallment) error {
	query := `
		INSERT INTO schedule_repayments (id, loan_id, due_date, emi_amount, status, paid_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, inst := range rows {
		batch.Queue(query,
			inst.ID,
			inst.LoanID,
			inst.DueDate,
			decimalToNumeric(inst.EmiAmount),
			string(inst.Status),
			inst.PaidDate,
			inst.CreatedAt,
		)
	}

	return pgxTxFrom(tx).SendBatch(ctx, batch).Close()
}

const installmentColumns = `id, loan_id, due_date, emi_amount, status, paid_date, created_at`

// GetByID retrieves an installment by id.
func (r *InstallmentRepository) GetByID(ctx context.Context, id string) (*domain.RepaymentInstallment, error) {
	query := `SELECT ` + installmentColumns + ` FROM schedule_repayments WHERE id = $1`

	return scanInstallment(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an installment with a FOR UPDATE lock.
func (r *InstallmentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.RepaymentInstallment, error) {
	query := `SELECT ` + installmentColumns + ` FROM schedule_repayments WHERE id = $1 FOR UPDATE`

	return scanInstallment(pgxTxFrom(tx).QueryRow(ctx, query, id))
}

// UpdateStatus moves an installment to a new status within the caller's
// transaction. A nil paidDate clears any recorded payment date.
func (r *InstallmentRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.InstallmentStatus, paidDate *time.Time) error {
	query := `UPDATE schedule_repayments SET status = $2, paid_date = $3 WHERE id = $1`

	tag, err := pgxTxFrom(tx).Exec(ctx, query, id, string(status), paidDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInstallmentNotFound
	}

	return nil
}

// ListByLoan retrieves a loan's schedule in due-date order.
func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.RepaymentInstallment, error) {
	query := `SELECT ` + installmentColumns + `
		FROM schedule_repayments
		WHERE loan_id = $1
		ORDER BY due_date
	`

	return r.queryInstallments(ctx, query, loanID)
}

// CountOutstanding counts the loan's installments not yet settled, within
// the caller's transaction.
func (r *InstallmentRepository) CountOutstanding(ctx context.Context, tx usecase.Transaction, loanID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM schedule_repayments
		WHERE loan_id = $1 AND status IN ($2, $3)
	`

	var count int64
	err := pgxTxFrom(tx).QueryRow(ctx, query, loanID,
		string(domain.InstallmentStatusUnpaid),
		string(domain.InstallmentStatusLate),
	).Scan(&count)

	return count, err
}

// ListOverdueUnpaid retrieves unpaid installments whose due date has passed.
func (r *InstallmentRepository) ListOverdueUnpaid(ctx context.Context, asOf time.Time) ([]*domain.RepaymentInstallment, error) {
	query := `SELECT ` + installmentColumns + `
		FROM schedule_repayments
		WHERE status = $1 AND due_date < $2
		ORDER BY due_date
	`

	return r.queryInstallments(ctx, query, string(domain.InstallmentStatusUnpaid), asOf)
}

// ListUnpaidDueBetween retrieves unpaid installments due inside the window.
func (r *InstallmentRepository) ListUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]*domain.RepaymentInstallment, error) {
	query := `SELECT ` + installmentColumns + `
		FROM schedule_repayments
		WHERE status = $1 AND due_date >= $2 AND due_date <= $3
		ORDER BY due_date
	`

	return r.queryInstallments(ctx, query, string(domain.InstallmentStatusUnpaid), from, to)
}

func (r *InstallmentRepository) queryInstallments(ctx context.Context, query string, args ...any) ([]*domain.RepaymentInstallment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []*domain.RepaymentInstallment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}

	return installments, rows.Err()
}

func scanInstallment(row pgx.Row) (*domain.RepaymentInstallment, error) {
	var (
		inst   domain.RepaymentInstallment
		status string
		amount pgtype.Numeric
	)

	err := row.Scan(
		&inst.ID,
		&inst.LoanID,
		&inst.DueDate,
		&amount,
		&status,
		&inst.PaidDate,
		&inst.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInstallmentNotFound
	}
	if err != nil {
		return nil, err
	}

	inst.Status = domain.InstallmentStatus(status)
	inst.EmiAmount = numericToDecimal(amount)

	return &inst, nil
}
