package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDeliveryObserver(t *testing.T) {
	before := testutil.ToFloat64(Deliveries.WithLabelValues("failure"))
	chunks := testutil.ToFloat64(ChunksSent)

	obs := DeliveryObserver{}
	obs.ChunkSent()
	obs.ChunkSent()
	obs.DeliveryFinished(errors.New("boom"))

	assert.Equal(t, chunks+2, testutil.ToFloat64(ChunksSent))
	assert.Equal(t, before+1, testutil.ToFloat64(Deliveries.WithLabelValues("failure")))
}

func TestRecordIngestedSkipsZero(t *testing.T) {
	RecordIngested("metrics-test", 0)
	RecordIngested("metrics-test", 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(ItemsIngested.WithLabelValues("metrics-test")))
}
