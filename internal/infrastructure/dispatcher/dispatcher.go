package dispatcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/metrics"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/telegram"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// Dispatcher drains the notification outbox and delivers each event through
// the configured notifier.
type Dispatcher struct {
	outboxRepo usecase.OutboxRepository
	notifier   telegram.Notifier
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	batchSize  int
	interval   time.Duration
	retention  time.Duration
}

// Config for Dispatcher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Notifier   telegram.Notifier
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
	Retention  time.Duration // How long sent events are kept
}

// New creates a new Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.Interval == 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Retention == 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}

	return &Dispatcher{
		outboxRepo: cfg.OutboxRepo,
		notifier:   cfg.Notifier,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
	}
}

// Start begins the dispatch worker. It runs until the context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info().
		Int("batch_size", d.batchSize).
		Dur("interval", d.interval).
		Msg("notification dispatcher started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	// Drain immediately on start
	if err := d.dispatchBatch(ctx); err != nil {
		d.logger.Error().Err(err).Msg("error dispatching events on start")
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("notification dispatcher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := d.dispatchBatch(ctx); err != nil {
				d.logger.Error().Err(err).Msg("error dispatching events")
			}

			if err := d.outboxRepo.DeleteSent(ctx, time.Now().Add(-d.retention)); err != nil {
				d.logger.Error().Err(err).Msg("failed to prune sent events")
			}
		}
	}
}

// dispatchBatch fetches and delivers a batch of unsent events.
func (d *Dispatcher) dispatchBatch(ctx context.Context) error {
	events, err := d.outboxRepo.GetUnsent(ctx, d.batchSize)
	if err != nil {
		return err
	}

	if d.metrics != nil {
		d.metrics.OutboxBacklog.Set(float64(len(events)))
	}

	if len(events) == 0 {
		return nil
	}

	d.logger.Info().Int("count", len(events)).Msg("dispatching notifications")

	for _, event := range events {
		if event.ChatID == 0 {
			// No destination; mark sent so it does not clog the outbox.
			d.logger.Warn().
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("notification event has no chat id")
		} else if err := d.notifier.Send(ctx, event.ChatID, event.Message); err != nil {
			d.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to deliver notification")
			if d.metrics != nil {
				d.metrics.NotificationsFailed.WithLabelValues(event.EventType).Inc()
			}
			// Leave unsent; the next tick retries it.
			continue
		} else if d.metrics != nil {
			d.metrics.NotificationsSent.WithLabelValues(event.EventType).Inc()
		}

		if err := d.outboxRepo.MarkSent(ctx, event.ID, time.Now()); err != nil {
			d.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark notification sent")
		}
	}

	return nil
}
