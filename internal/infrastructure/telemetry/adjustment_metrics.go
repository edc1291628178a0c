package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// AdjustmentMetrics tracks bill adjustment activity.
type AdjustmentMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	adjustmentsTotal  *Counter
	billsAdjusted     *Counter
	previewsTotal     *Counter
	adjustmentSeconds *Histogram
	bulkTargetCount   *Histogram
}

// AdjustmentMetricsConfig holds configuration for adjustment metrics.
type AdjustmentMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewAdjustmentMetrics creates the adjustment instruments on cfg.Meter.
func NewAdjustmentMetrics(cfg AdjustmentMetricsConfig) (*AdjustmentMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	am := &AdjustmentMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error
	am.adjustmentsTotal, err = NewCounter(
		cfg.Meter,
		"revenue_bill_adjustment_requests_total",
		"Total number of adjustment requests by type and outcome",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	am.billsAdjusted, err = NewCounter(
		cfg.Meter,
		"revenue_bills_adjusted_total",
		"Total number of bills changed by committed adjustments",
		"{bills}",
	)
	if err != nil {
		return nil, err
	}

	am.previewsTotal, err = NewCounter(
		cfg.Meter,
		"revenue_bulk_adjustment_previews_total",
		"Total number of bulk adjustment previews",
		"{previews}",
	)
	if err != nil {
		return nil, err
	}

	am.adjustmentSeconds, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "revenue_bill_adjustment_duration_seconds",
		Description: "Duration of adjustment transactions",
		Unit:        "s",
		Boundaries:  AdjustmentDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	am.bulkTargetCount, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "revenue_bulk_adjustment_targets",
		Description: "Number of bills resolved by a bulk filter",
		Unit:        "{bills}",
		Boundaries:  []float64{1, 10, 50, 100, 500, 1000, 2500, 5000},
	})
	if err != nil {
		return nil, err
	}

	return am, nil
}

// RecordAdjustment records one adjustment request and how long it took.
func (am *AdjustmentMetrics) RecordAdjustment(ctx context.Context, adjustmentType, method, field, outcome string, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		AttrAdjustmentType.String(adjustmentType),
		AttrAdjustmentMethod.String(method),
		AttrTargetField.String(field),
		AttrOutcome.String(outcome),
	}
	am.adjustmentsTotal.Inc(ctx, attrs...)
	am.adjustmentSeconds.RecordDuration(ctx, elapsed, attrs...)
}

// RecordBillsAdjusted adds count bills of billType to the adjusted total.
func (am *AdjustmentMetrics) RecordBillsAdjusted(ctx context.Context, adjustmentType, billType string, count int64) {
	if count <= 0 {
		return
	}
	am.billsAdjusted.Add(ctx, count,
		AttrAdjustmentType.String(adjustmentType),
		AttrBillType.String(billType),
	)
}

// RecordPreview records a bulk preview and the size of its resolved set.
func (am *AdjustmentMetrics) RecordPreview(ctx context.Context, total int64) {
	am.previewsTotal.Inc(ctx)
	am.bulkTargetCount.Record(ctx, float64(total))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewAdjustmentMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
