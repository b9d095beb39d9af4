package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository. Notifications are
// written into the outbox alongside the state change that caused them and
// drained by the dispatcher.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

const outboxInsert = `
	INSERT INTO notification_outbox (id, event_type, chat_id, message, payload, sent, sent_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// Create queues a notification outside any transaction.
func (r *OutboxRepository) Create(ctx context.Context, event *domain.NotificationEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, outboxInsert,
		event.ID, event.EventType, event.ChatID, event.Message,
		payload, event.Sent, event.SentAt, event.CreatedAt,
	)

	return err
}

// CreateTx queues a notification within the caller's transaction so it
// commits or rolls back with the state change it describes.
func (r *OutboxRepository) CreateTx(ctx context.Context, tx usecase.Transaction, event *domain.NotificationEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	_, err = pgxTxFrom(tx).Exec(ctx, outboxInsert,
		event.ID, event.EventType, event.ChatID, event.Message,
		payload, event.Sent, event.SentAt, event.CreatedAt,
	)

	return err
}

// GetUnsent retrieves queued notifications in insert order.
func (r *OutboxRepository) GetUnsent(ctx context.Context, limit int) ([]*domain.NotificationEvent, error) {
	query := `
		SELECT id, event_type, chat_id, message, payload, sent, sent_at, created_at
		FROM notification_outbox
		WHERE sent = false
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.NotificationEvent
	for rows.Next() {
		event, err := scanOutboxEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// MarkSent flags a notification as delivered.
func (r *OutboxRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `UPDATE notification_outbox SET sent = true, sent_at = $2 WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, sentAt)

	return err
}

// DeleteSent removes delivered notifications older than the given time.
func (r *OutboxRepository) DeleteSent(ctx context.Context, before time.Time) error {
	query := `DELETE FROM notification_outbox WHERE sent = true AND sent_at < $1`

	_, err := r.pool.Exec(ctx, query, before)

	return err
}

func scanOutboxEvent(row pgx.Row) (*domain.NotificationEvent, error) {
	var (
		event   domain.NotificationEvent
		payload []byte
	)

	err := row.Scan(
		&event.ID,
		&event.EventType,
		&event.ChatID,
		&event.Message,
		&payload,
		&event.Sent,
		&event.SentAt,
		&event.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if payload != nil {
		_ = json.Unmarshal(payload, &event.Payload)
	}

	return &event, nil
}
