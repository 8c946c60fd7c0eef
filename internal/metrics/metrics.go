// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Node REST metrics
	restCallsTotal   atomic.Int64
	restErrorsTotal  atomic.Int64
	restLatencyNanos atomic.Int64

	// Activity feed metrics
	pagesLoaded atomic.Int64
	saveOps     atomic.Int64
	saveErrors  atomic.Int64

	// Cache metrics (file cache and memoized view)
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64

	// Per-endpoint REST calls
	invoiceCalls     atomic.Int64
	paymentCalls     atomic.Int64
	transactionCalls atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRESTCall records a node REST call with its duration and success status.
func (m *Metrics) RecordRESTCall(endpoint string, duration time.Duration, err error) {
	m.restCallsTotal.Add(1)
	m.restLatencyNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.restErrorsTotal.Add(1)
	}

	// Track per-endpoint calls
	switch endpoint {
	case "invoices":
		m.invoiceCalls.Add(1)
	case "payments":
		m.paymentCalls.Add(1)
	case "transactions":
		m.transactionCalls.Add(1)
	}
}

// RecordPageLoad records one completed activity page load.
func (m *Metrics) RecordPageLoad() {
	m.pagesLoaded.Add(1)
}

// RecordSaveOp records an invoice artifact save operation.
func (m *Metrics) RecordSaveOp(err error) {
	m.saveOps.Add(1)
	if err != nil {
		m.saveErrors.Add(1)
	}
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// Snapshot returns a point-in-time copy of all metrics.
type Snapshot struct {
	RESTCallsTotal   int64
	RESTErrorsTotal  int64
	RESTLatencyNanos int64
	PagesLoaded      int64
	SaveOps          int64
	SaveErrors       int64
	CacheHits        int64
	CacheMisses      int64
	InvoiceCalls     int64
	PaymentCalls     int64
	TransactionCalls int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RESTCallsTotal:   m.restCallsTotal.Load(),
		RESTErrorsTotal:  m.restErrorsTotal.Load(),
		RESTLatencyNanos: m.restLatencyNanos.Load(),
		PagesLoaded:      m.pagesLoaded.Load(),
		SaveOps:          m.saveOps.Load(),
		SaveErrors:       m.saveErrors.Load(),
		CacheHits:        m.cacheHits.Load(),
		CacheMisses:      m.cacheMisses.Load(),
		InvoiceCalls:     m.invoiceCalls.Load(),
		PaymentCalls:     m.paymentCalls.Load(),
		TransactionCalls: m.transactionCalls.Load(),
	}
}

// RESTCallsTotal returns the total number of REST calls made.
func (m *Metrics) RESTCallsTotal() int64 {
	return m.restCallsTotal.Load()
}

// RESTErrorsTotal returns the total number of REST errors.
func (m *Metrics) RESTErrorsTotal() int64 {
	return m.restErrorsTotal.Load()
}

// RESTLatencyAvgMs returns the average REST latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RESTLatencyAvgMs() float64 {
	calls := m.restCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	nanos := m.restLatencyNanos.Load()
	return float64(nanos) / float64(calls) / 1e6
}

// PagesLoaded returns the number of activity pages loaded.
func (m *Metrics) PagesLoaded() int64 {
	return m.pagesLoaded.Load()
}

// CacheHitRate returns the cache hit rate as a percentage (0-100).
// Returns 0 if no cache operations have occurred.
func (m *Metrics) CacheHitRate() float64 {
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.restCallsTotal.Store(0)
	m.restErrorsTotal.Store(0)
	m.restLatencyNanos.Store(0)
	m.pagesLoaded.Store(0)
	m.saveOps.Store(0)
	m.saveErrors.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.invoiceCalls.Store(0)
	m.paymentCalls.Store(0)
	m.transactionCalls.Store(0)
}
