package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/metrics"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// Registered once; prometheus forbids duplicate collector registration
// within a process.
var testMetrics = metrics.New()

func TestDispatchBatchSendsAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.NotificationEvent{
			{ID: "evt-1", EventType: domain.EventRepaymentUpcoming, ChatID: 100, Message: "due soon"},
		},
	}
	notifier := &stubNotifier{}
	d := newTestDispatcher(repo, notifier)

	if err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatchBatch failed: %v", err)
	}

	if len(notifier.sent) != 1 || notifier.sent[0].chatID != 100 {
		t.Fatalf("expected one delivery to chat 100, got %#v", notifier.sent)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked sent, got %#v", repo.marked)
	}
}

func TestDispatchBatchRetriesFailedDeliveries(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.NotificationEvent{
			{ID: "evt-1", EventType: domain.EventRepaymentLate, ChatID: 100, Message: "late"},
			{ID: "evt-2", EventType: domain.EventRepaymentLate, ChatID: 200, Message: "late"},
		},
	}
	notifier := &stubNotifier{
		errorsByChat: map[int64]error{100: errors.New("telegram down")},
	}
	d := newTestDispatcher(repo, notifier)

	if err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatchBatch returned error: %v", err)
	}

	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected only evt-2 to be marked, got %#v", repo.marked)
	}
}

func TestDispatchBatchMarksEventsWithoutChat(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.NotificationEvent{
			{ID: "evt-1", EventType: domain.EventOperatorAlert, ChatID: 0, Message: "alert"},
		},
	}
	notifier := &stubNotifier{}
	d := newTestDispatcher(repo, notifier)

	if err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatchBatch failed: %v", err)
	}

	if len(notifier.sent) != 0 {
		t.Fatalf("expected no delivery attempts, got %#v", notifier.sent)
	}
	if len(repo.marked) != 1 {
		t.Fatalf("expected destinationless event to be marked, got %#v", repo.marked)
	}
}

func TestDispatchBatchCountsDeliveries(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.NotificationEvent{
			{ID: "evt-1", EventType: domain.EventRequestApproved, ChatID: 100, Message: "approved"},
			{ID: "evt-2", EventType: domain.EventRequestApproved, ChatID: 200, Message: "approved"},
		},
	}
	notifier := &stubNotifier{
		errorsByChat: map[int64]error{200: errors.New("telegram down")},
	}
	d := newTestDispatcher(repo, notifier)
	d.metrics = testMetrics

	sentBefore := testutil.ToFloat64(testMetrics.NotificationsSent.WithLabelValues(domain.EventRequestApproved))
	failedBefore := testutil.ToFloat64(testMetrics.NotificationsFailed.WithLabelValues(domain.EventRequestApproved))

	if err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatchBatch failed: %v", err)
	}

	if got := testutil.ToFloat64(testMetrics.NotificationsSent.WithLabelValues(domain.EventRequestApproved)); got != sentBefore+1 {
		t.Errorf("sent counter = %f, want %f", got, sentBefore+1)
	}
	if got := testutil.ToFloat64(testMetrics.NotificationsFailed.WithLabelValues(domain.EventRequestApproved)); got != failedBefore+1 {
		t.Errorf("failed counter = %f, want %f", got, failedBefore+1)
	}
	if got := testutil.ToFloat64(testMetrics.OutboxBacklog); got != 2 {
		t.Errorf("backlog gauge = %f, want 2", got)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubOutboxRepo{}
	notifier := &stubNotifier{}
	d := newTestDispatcher(repo, notifier)
	d.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}
}

func newTestDispatcher(repo usecase.OutboxRepository, notifier *stubNotifier) *Dispatcher {
	return New(Config{
		OutboxRepo: repo,
		Notifier:   notifier,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   time.Minute,
	})
}

type stubOutboxRepo struct {
	events []*domain.NotificationEvent
	marked []string
}

func (s *stubOutboxRepo) Create(ctx context.Context, event *domain.NotificationEvent) error {
	return nil
}

func (s *stubOutboxRepo) CreateTx(ctx context.Context, tx usecase.Transaction, event *domain.NotificationEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnsent(ctx context.Context, limit int) ([]*domain.NotificationEvent, error) {
	var unsent []*domain.NotificationEvent
	for _, e := range s.events {
		if !e.Sent {
			unsent = append(unsent, e)
		}
	}
	return unsent, nil
}

func (s *stubOutboxRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	s.marked = append(s.marked, id)
	for _, e := range s.events {
		if e.ID == id {
			e.Sent = true
		}
	}
	return nil
}

func (s *stubOutboxRepo) DeleteSent(ctx context.Context, before time.Time) error {
	return nil
}

type sentMessage struct {
	chatID  int64
	message string
}

type stubNotifier struct {
	sent         []sentMessage
	errorsByChat map[int64]error
}

func (s *stubNotifier) Send(ctx context.Context, chatID int64, message string) error {
	if err := s.errorsByChat[chatID]; err != nil {
		return err
	}
	s.sent = append(s.sent, sentMessage{chatID: chatID, message: message})
	return nil
}
