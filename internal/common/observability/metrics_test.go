package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestObservability_Records(t *testing.T) {
	reader := metric.NewManualReader()
	obs := newWithProvider(metric.NewMeterProvider(metric.WithReader(reader)), "test")
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "score-match", "completed")
	obs.RecordJobProcessed(ctx, "score-match", "completed")
	obs.RecordJobDuration(ctx, "score-match", 40*time.Millisecond, "completed")
	obs.RecordRanking(ctx, "RULE_BASED", 12, 5)

	got := collect(t, reader)

	processed, ok := got["jobs.processed"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, processed.DataPoints, 1)
	assert.Equal(t, int64(2), processed.DataPoints[0].Value)

	duration, ok := got["jobs.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(1), duration.DataPoints[0].Count)

	candidates, ok := got["ranking.candidates"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Equal(t, int64(12), candidates.DataPoints[0].Sum)
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(context.Background(), "x", "completed")
		obs.RecordRanking(context.Background(), "HYBRID", 1, 1)
		obs.Shutdown()
	})

	empty := &Observability{}
	assert.NotPanics(t, func() {
		empty.RecordJobDuration(context.Background(), "x", time.Second, "failed")
	})
}
