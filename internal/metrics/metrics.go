// Package metrics records service level measurements. Services depend on
// the Collector interface; the server wires the Prometheus implementation.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collector is implemented by every metrics backend.
type Collector interface {
	RecordOperationDuration(operation string, d time.Duration)
	RecordOperationResult(operation, result string)
	RecordError(operation, code string)
	RecordTransaction(txType, status string, amount decimal.Decimal)
	RecordDispatchFailure(effect string)
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordAccrual(credited, matured, failed int)
}

// Operation results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// NoopCollector is a no-op implementation of Collector
type NoopCollector struct{}

func (NoopCollector) RecordOperationDuration(string, time.Duration)          {}
func (NoopCollector) RecordOperationResult(string, string)                   {}
func (NoopCollector) RecordError(string, string)                             {}
func (NoopCollector) RecordTransaction(string, string, decimal.Decimal)      {}
func (NoopCollector) RecordDispatchFailure(string)                           {}
func (NoopCollector) RecordCacheHit(string)                                  {}
func (NoopCollector) RecordCacheMiss(string)                                 {}
func (NoopCollector) RecordAccrual(int, int, int)                            {}

// OrNoop returns c, or a NoopCollector when c is nil.
func OrNoop(c Collector) Collector {
	if c == nil {
		return NoopCollector{}
	}
	return c
}

// Track records the duration and result of one operation. Use as
//
//	defer metrics.Track(m, "deposit", time.Now(), &err)
func Track(c Collector, operation string, start time.Time, errp *error) {
	c.RecordOperationDuration(operation, time.Since(start))
	if errp != nil && *errp != nil {
		c.RecordOperationResult(operation, ResultFailure)
		return
	}
	c.RecordOperationResult(operation, ResultSuccess)
}
