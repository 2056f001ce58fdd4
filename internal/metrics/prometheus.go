package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// PrometheusCollector exports the Collector measurements.
type PrometheusCollector struct {
	operationDuration *prometheus.HistogramVec
	operationResults  *prometheus.CounterVec
	errors            *prometheus.CounterVec
	transactions      *prometheus.CounterVec
	transactionVolume *prometheus.CounterVec
	dispatchFailures  *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	accruals          *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
}

// NewPrometheusCollector creates the metric vectors and registers them on reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fintrivox",
				Name:      "operation_duration_seconds",
				Help:      "Duration of service operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintrivox",
				Name:      "operation_results_total",
				Help:      "Service operation outcomes.",
			},
			[]string{"operation", "result"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintrivox",
				Name:      "errors_total",
				Help:      "Domain errors by operation and code.",
			},
			[]string{"operation", "code"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintrivox",
				Name:      "transactions_total",
				Help:      "Ledger transactions by type and status.",
			},
			[]string{"type", "status"},
		),
		transactionVolume: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintrivox",
				Name:      "transaction_volume_total",
				Help:      "Ledger volume by type and status.",
			},
			[]string{"type", "status"},
		),
		dispatchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintrivox",
				Name:      "dispatch_failures_total",
				Help:      "Post-commit side effects that failed.",
			},
			[]string{"effect"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintrivox",
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by cache and outcome.",
			},
			[]string{"cache", "outcome"},
		),
		accruals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintrivox",
				Name:      "accrual_investments_total",
				Help:      "Investments handled by the profit job.",
			},
			[]string{"outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintrivox",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fintrivox",
				Name:      "http_request_duration_seconds",
				Help:      "Latency of HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}

	reg.MustRegister(
		c.operationDuration,
		c.operationResults,
		c.errors,
		c.transactions,
		c.transactionVolume,
		c.dispatchFailures,
		c.cacheLookups,
		c.accruals,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

func (c *PrometheusCollector) RecordOperationDuration(operation string, d time.Duration) {
	c.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *PrometheusCollector) RecordOperationResult(operation, result string) {
	c.operationResults.WithLabelValues(operation, result).Inc()
}

func (c *PrometheusCollector) RecordError(operation, code string) {
	c.errors.WithLabelValues(operation, code).Inc()
}

func (c *PrometheusCollector) RecordTransaction(txType, status string, amount decimal.Decimal) {
	c.transactions.WithLabelValues(txType, status).Inc()
	c.transactionVolume.WithLabelValues(txType, status).Add(amount.InexactFloat64())
}

func (c *PrometheusCollector) RecordDispatchFailure(effect string) {
	c.dispatchFailures.WithLabelValues(effect).Inc()
}

func (c *PrometheusCollector) RecordCacheHit(cache string) {
	c.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (c *PrometheusCollector) RecordCacheMiss(cache string) {
	c.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

func (c *PrometheusCollector) RecordAccrual(credited, matured, failed int) {
	c.accruals.WithLabelValues("credited").Add(float64(credited))
	c.accruals.WithLabelValues("matured").Add(float64(matured))
	c.accruals.WithLabelValues("failed").Add(float64(failed))
}

// ObserveHTTP records one served request.
func (c *PrometheusCollector) ObserveHTTP(route, method, status string, d time.Duration) {
	c.httpRequests.WithLabelValues(route, method, status).Inc()
	c.httpLatency.WithLabelValues(route, method).Observe(d.Seconds())
}
