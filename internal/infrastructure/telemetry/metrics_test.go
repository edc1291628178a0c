package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/revenue/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.Config{Enabled: false, ServiceName: "revenue-test", SamplingRatio: 1.0}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, "revenue-test", tp.GetConfig().ServiceName)
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewAdjustmentMetrics_NilMeter(t *testing.T) {
	am, err := telemetry.NewAdjustmentMetrics(telemetry.AdjustmentMetricsConfig{})

	require.Error(t, err)
	assert.Nil(t, am)
	assert.Equal(t, "NewAdjustmentMetrics: meter cannot be nil", err.Error())
}

func TestAdjustmentMetrics_NoopMeter(t *testing.T) {
	am, err := telemetry.NewAdjustmentMetrics(telemetry.AdjustmentMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		am.RecordAdjustment(ctx, "SINGLE", "FIXED_AMOUNT", "arrears", telemetry.OutcomeCommitted, 5*time.Millisecond)
		am.RecordBillsAdjusted(ctx, "BULK", "PROPERTY", 4)
		am.RecordBillsAdjusted(ctx, "BULK", "PROPERTY", 0)
		am.RecordPreview(ctx, 120)
	})
}

func TestAdjustmentMetrics_RecordsToReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	am, err := telemetry.NewAdjustmentMetrics(telemetry.AdjustmentMetricsConfig{
		Meter: provider.Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	am.RecordAdjustment(ctx, "BULK", "PERCENTAGE", "current_bill", telemetry.OutcomeCommitted, time.Second)
	am.RecordBillsAdjusted(ctx, "BULK", "BUSINESS", 7)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	bills, ok := byName["revenue_bills_adjusted_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, bills.DataPoints, 1)
	assert.Equal(t, int64(7), bills.DataPoints[0].Value)

	requests, ok := byName["revenue_bill_adjustment_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, requests.DataPoints, 1)
	assert.Equal(t, int64(1), requests.DataPoints[0].Value)

	_, ok = byName["revenue_bill_adjustment_duration_seconds"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{Op: "Op", Err: "bad"}
	assert.Equal(t, "Op: bad", err.Error())
}
