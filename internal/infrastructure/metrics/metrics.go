package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Loan request metrics
	RequestsSubmitted   prometheus.Counter
	EligibilityOutcomes *prometheus.CounterVec
	RequestsApproved    prometheus.Counter
	RequestsRejected    prometheus.Counter

	// Loan metrics
	LoansDisbursed    prometheus.Counter
	DisbursedAmount   prometheus.Histogram
	LoansCompleted    prometheus.Counter
	RepaymentsSettled *prometheus.CounterVec

	// Ledger metrics
	LedgerEntries *prometheus.CounterVec
	CreditBalance prometheus.Gauge
	LedgerErrors  *prometheus.CounterVec

	// Sweep metrics
	SweepRuns     *prometheus.CounterVec
	SweepMarked   *prometheus.CounterVec
	SweepDuration *prometheus.HistogramVec

	// Notification metrics
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	OutboxBacklog       prometheus.Gauge

	// Database metrics
	DBConnections prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Loan request metrics
		RequestsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jorngka_loan_requests_submitted_total",
			Help: "Total number of loan requests submitted",
		}),
		EligibilityOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jorngka_eligibility_outcomes_total",
				Help: "Eligibility evaluation outcomes by status and reason",
			},
			[]string{"status", "reason"},
		),
		RequestsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jorngka_loan_requests_approved_total",
			Help: "Total number of loan requests approved",
		}),
		RequestsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jorngka_loan_requests_rejected_total",
			Help: "Total number of loan requests rejected",
		}),

		// Loan metrics
		LoansDisbursed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jorngka_loans_disbursed_total",
			Help: "Total number of loans disbursed",
		}),
		DisbursedAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "jorngka_disbursed_amount",
			Help:    "Disbursed loan amounts",
			Buckets: []float64{100, 500, 1000, 2500, 5000, 10000, 50000},
		}),
		LoansCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jorngka_loans_completed_total",
			Help: "Total number of loans fully repaid",
		}),
		RepaymentsSettled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jorngka_repayments_settled_total",
				Help: "Total repayments settled by outcome",
			},
			[]string{"status"},
		),

		// Ledger metrics
		LedgerEntries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jorngka_ledger_entries_total",
				Help: "Total ledger entries recorded by kind",
			},
			[]string{"kind"},
		),
		CreditBalance: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "jorngka_credit_balance",
			Help: "Current credit account balance",
		}),
		LedgerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jorngka_ledger_errors_total",
				Help: "Total ledger errors by type",
			},
			[]string{"error_type"},
		),

		// Sweep metrics
		SweepRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jorngka_sweep_runs_total",
				Help: "Total sweep runs by kind",
			},
			[]string{"kind"},
		),
		SweepMarked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jorngka_sweep_marked_total",
				Help: "Installments processed per sweep kind",
			},
			[]string{"kind"},
		),
		SweepDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jorngka_sweep_duration_seconds",
				Help:    "Sweep run duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),

		// Notification metrics
		NotificationsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jorngka_notifications_sent_total",
				Help: "Total notifications delivered by event type",
			},
			[]string{"event_type"},
		),
		NotificationsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jorngka_notifications_failed_total",
				Help: "Total notification delivery failures by event type",
			},
			[]string{"event_type"},
		),
		OutboxBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "jorngka_outbox_backlog",
			Help: "Unsent notification events in the outbox",
		}),

		// Database metrics
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "jorngka_db_connections",
			Help: "Current number of database connections",
		}),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jorngka_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
