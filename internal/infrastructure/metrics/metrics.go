package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/caseledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Report metrics
	ReportsBuilt      *prometheus.CounterVec
	ReportDuration    *prometheus.HistogramVec
	ReportCases       *prometheus.GaugeVec
	ReportSkipped     *prometheus.CounterVec
	Inconsistencies   prometheus.Counter
	ClosingBalance    *prometheus.GaugeVec
	ClosingRunsFailed prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Idempotency metrics
	IdempotentReplays prometheus.Counter

	// Database metrics
	DBRetries *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Report metrics
		ReportsBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caseledger_reports_built_total",
				Help: "Total number of period reports built by kind",
			},
			[]string{"kind"},
		),
		ReportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "caseledger_report_duration_seconds",
				Help:    "Duration of period report computation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		ReportCases: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "caseledger_report_cases",
				Help: "Cases folded into the last report of each kind",
			},
			[]string{"kind"},
		),
		ReportSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caseledger_report_skipped_cases_total",
				Help: "Cases skipped by best-effort reports",
			},
			[]string{"kind"},
		),
		Inconsistencies: factory.NewCounter(prometheus.CounterOpts{
			Name: "caseledger_allocation_inconsistencies_total",
			Help: "Replays that disagreed with the engine totals",
		}),
		ClosingBalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "caseledger_closing_balance",
				Help: "Outstanding balance at the last daily closing by bucket",
			},
			[]string{"bucket"},
		),
		ClosingRunsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "caseledger_closing_runs_failed_total",
			Help: "Daily closing runs that returned an error",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caseledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "caseledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "caseledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "caseledger_rate_limit_hits_total",
			Help: "Total rate limit rejections",
		}),

		// Idempotency metrics
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "caseledger_idempotent_replays_total",
			Help: "Responses served from the idempotency store",
		}),

		// Database metrics
		DBRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caseledger_db_retries_total",
				Help: "Transactions re-run after a retryable Postgres error",
			},
			[]string{"sqlstate"},
		),
	}
}

// ObserveReport implements usecase.ReportRecorder.
func (m *Metrics) ObserveReport(kind domain.PeriodKind, cases, skipped int, duration time.Duration) {
	label := string(kind)
	m.ReportsBuilt.WithLabelValues(label).Inc()
	m.ReportDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.ReportCases.WithLabelValues(label).Set(float64(cases))
	if skipped > 0 {
		m.ReportSkipped.WithLabelValues(label).Add(float64(skipped))
	}
}

// RecordInconsistency implements usecase.ReportRecorder.
func (m *Metrics) RecordInconsistency(string) {
	m.Inconsistencies.Inc()
}

// SetClosingBalances implements usecase.ReportRecorder.
func (m *Metrics) SetClosingBalances(payer, a, b int64) {
	m.ClosingBalance.WithLabelValues("payer").Set(float64(payer))
	m.ClosingBalance.WithLabelValues("a").Set(float64(a))
	m.ClosingBalance.WithLabelValues("b").Set(float64(b))
}

// ClosingFailed counts a failed daily closing run.
func (m *Metrics) ClosingFailed() {
	m.ClosingRunsFailed.Inc()
}

// RecordRetry counts a transaction retried after code.
func (m *Metrics) RecordRetry(code string) {
	m.DBRetries.WithLabelValues(code).Inc()
}
