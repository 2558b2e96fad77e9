package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGetIsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}

func TestRecordInteraction(t *testing.T) {
	before := testutil.ToFloat64(Get().InteractionsTotal.WithLabelValues("like"))
	RecordInteraction("like")
	RecordInteraction("like")
	assert.Equal(t, before+2, testutil.ToFloat64(Get().InteractionsTotal.WithLabelValues("like")))
}

func TestRecordBroadcast(t *testing.T) {
	m := Get()
	delivered := testutil.ToFloat64(m.BroadcastRecipientsTotal.WithLabelValues("delivered"))
	failed := testutil.ToFloat64(m.BroadcastRecipientsTotal.WithLabelValues("failed"))
	partial := testutil.ToFloat64(m.BroadcastsTotal.WithLabelValues("partial_failure"))

	RecordBroadcast("partial_failure", 8, 2, 50*time.Millisecond)

	assert.Equal(t, delivered+8, testutil.ToFloat64(m.BroadcastRecipientsTotal.WithLabelValues("delivered")))
	assert.Equal(t, failed+2, testutil.ToFloat64(m.BroadcastRecipientsTotal.WithLabelValues("failed")))
	assert.Equal(t, partial+1, testutil.ToFloat64(m.BroadcastsTotal.WithLabelValues("partial_failure")))
}
