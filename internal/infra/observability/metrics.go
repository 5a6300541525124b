package observability

import (
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// Registry owns these metrics; /metrics serves it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	transactions    *prometheus.CounterVec
	resolutions     *prometheus.CounterVec
	smsOutcomes     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. A private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "graceflow_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graceflow_external_errors_total",
				Help: "Total errors from the record store and other remote services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graceflow_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graceflow_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graceflow_transactions_recorded_total",
				Help: "Ledger transactions recorded, by kind and initial status.",
			},
			[]string{"kind", "status"},
		),
		resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graceflow_approvals_resolved_total",
				Help: "Pending expenses resolved, by decision.",
			},
			[]string{"decision"},
		),
		smsOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graceflow_sms_outcomes_total",
				Help: "SMS dispatches by tagged outcome.",
			},
			[]string{"result"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrTransaction counts a recorded transaction.
func (m *Metrics) IncrTransaction(kind domain.TransactionKind, status domain.TransactionStatus) {
	m.transactions.WithLabelValues(string(kind), string(status)).Inc()
}

// IncrResolution counts a resolved pending expense.
func (m *Metrics) IncrResolution(decision domain.Decision) {
	m.resolutions.WithLabelValues(string(decision)).Inc()
}

// IncrSMSOutcome counts an SMS dispatch outcome.
func (m *Metrics) IncrSMSOutcome(result domain.SMSResult) {
	m.smsOutcomes.WithLabelValues(string(result)).Inc()
}

// GetFinanceSnapshot returns the current counter values for GET /v1/metrics/finance.
func (m *Metrics) GetFinanceSnapshot() *domain.FinanceMetrics {
	kinds := []domain.TransactionKind{domain.KindIncome, domain.KindExpense}
	statuses := []domain.TransactionStatus{domain.StatusApproved, domain.StatusPending}

	var recorded float64
	for _, k := range kinds {
		for _, s := range statuses {
			recorded += getCounterValue(m.transactions, string(k), string(s))
		}
	}

	sms := make(map[string]int64)
	for _, r := range []domain.SMSResult{domain.SMSSent, domain.SMSSimulatedSuccess, domain.SMSProviderError, domain.SMSFetchBlocked} {
		sms[string(r)] = int64(getCounterValue(m.smsOutcomes, string(r)))
	}

	hits := getCounterValue(m.cacheHits, "profile")
	misses := getCounterValue(m.cacheMisses, "profile")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.FinanceMetrics{
		TransactionsRecorded: int64(recorded),
		PendingCreated:       int64(getCounterValue(m.transactions, string(domain.KindExpense), string(domain.StatusPending))),
		Approved:             int64(getCounterValue(m.resolutions, string(domain.StatusApproved))),
		Rejected:             int64(getCounterValue(m.resolutions, string(domain.StatusRejected))),
		SMSOutcomes:          sms,
		CacheHitRate:         hitRate,
	}
}

// getCounterValue extracts the current value of a CounterVec child.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
