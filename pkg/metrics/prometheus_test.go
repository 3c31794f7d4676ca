package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordEngineCall("metrics", 10*time.Millisecond, nil)
	r.RecordEngineCall("metrics", 10*time.Millisecond, errors.New("x"))
	r.RecordCommit("batch", "stale")
	r.RecordCacheLookup("heatmap", true)
	r.SetLoading(true)
	r.RecordEventDelivery("dropped")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.engineCalls.WithLabelValues("metrics", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.engineCalls.WithLabelValues("metrics", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.commits.WithLabelValues("batch", "stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("heatmap", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.loading))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.events.WithLabelValues("dropped")))

	r.SetLoading(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.loading))
}
