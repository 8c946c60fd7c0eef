package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

func TestMetrics_RecordRESTCall(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	// Record successful call
	m.RecordRESTCall("invoices", 100*time.Millisecond, nil)
	assert.Equal(t, int64(1), m.RESTCallsTotal())
	assert.Equal(t, int64(0), m.RESTErrorsTotal())
	assert.Equal(t, int64(1), m.invoiceCalls.Load())

	// Record failed call
	m.RecordRESTCall("payments", 50*time.Millisecond, lumenerr.ErrNetworkError)
	assert.Equal(t, int64(2), m.RESTCallsTotal())
	assert.Equal(t, int64(1), m.RESTErrorsTotal())
	assert.Equal(t, int64(1), m.paymentCalls.Load())

	m.RecordRESTCall("transactions", 10*time.Millisecond, nil)
	assert.Equal(t, int64(1), m.transactionCalls.Load())
}

func TestMetrics_RecordPageLoad(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordPageLoad()
	m.RecordPageLoad()

	assert.Equal(t, int64(2), m.PagesLoaded())
}

func TestMetrics_RecordSaveOp(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordSaveOp(nil)
	m.RecordSaveOp(lumenerr.ErrGeneral)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.SaveOps)
	assert.Equal(t, int64(1), snap.SaveErrors)
}

func TestMetrics_CacheHitRate(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	// No operations
	assert.InDelta(t, 0.0, m.CacheHitRate(), 0.001)

	// 3 hits, 1 miss = 75%
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()

	assert.InDelta(t, 75.0, m.CacheHitRate(), 0.001)
}

func TestMetrics_RESTLatencyAvg(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	// No calls
	assert.InDelta(t, 0.0, m.RESTLatencyAvgMs(), 0.001)

	// Two calls: 100ms and 200ms = 150ms avg
	m.RecordRESTCall("invoices", 100*time.Millisecond, nil)
	m.RecordRESTCall("invoices", 200*time.Millisecond, nil)

	avg := m.RESTLatencyAvgMs()
	assert.InDelta(t, 150.0, avg, 1.0)
}

func TestMetrics_Snapshot(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRESTCall("invoices", time.Millisecond, nil)
	m.RecordCacheHit()
	m.RecordPageLoad()

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.RESTCallsTotal)
	assert.Equal(t, int64(1), snap.CacheHits)
	assert.Equal(t, int64(1), snap.PagesLoaded)
	assert.Equal(t, int64(1), snap.InvoiceCalls)
}

func TestMetrics_Reset(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRESTCall("transactions", time.Millisecond, nil)
	m.RecordCacheHit()
	m.RecordPageLoad()

	m.Reset()

	snap := m.Snapshot()
	assert.Equal(t, int64(0), snap.RESTCallsTotal)
	assert.Equal(t, int64(0), snap.CacheHits)
	assert.Equal(t, int64(0), snap.PagesLoaded)
}

func TestGlobal(t *testing.T) {
	// Test that Global is initialized
	assert.NotNil(t, Global)

	// Reset to not affect other tests
	Global.Reset()
}
