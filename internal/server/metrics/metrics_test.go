package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return newWithRegistry(prometheus.NewRegistry())
}

func TestObserveHTTPRequest(t *testing.T) {
	m := newTestMetrics()

	m.ObserveHTTPRequest("GET", "/api/v1/files", 200, 50*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/files", 200, 30*time.Millisecond)
	m.ObserveHTTPRequest("POST", "/api/v1/files", 502, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/files", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/api/v1/files", "502")))
}

func TestObserveStorageOp(t *testing.T) {
	m := newTestMetrics()

	m.ObserveStorageOp("put_object", nil)
	m.ObserveStorageOp("put_object", errors.New("boom"))
	m.ObserveStorageOp("get_object", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storageOpsTotal.WithLabelValues("put_object")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOpErrors.WithLabelValues("put_object")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOpsTotal.WithLabelValues("get_object")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.storageOpErrors.WithLabelValues("get_object")))
}

func TestByteCounters(t *testing.T) {
	m := newTestMetrics()

	m.AddUploadBytes(100)
	m.AddUploadBytes(50)
	m.AddDownloadBytes(25)

	assert.Equal(t, 150.0, testutil.ToFloat64(m.uploadBytesTotal))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.downloadBytesTotal))
}
