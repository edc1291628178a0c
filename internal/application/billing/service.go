package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/billing"
	"github.com/revenue/backend/internal/infrastructure/logger"
	"github.com/revenue/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const spanService = "bill_adjustment"

// ServiceConfig holds the limits applied by AdjustmentService
type ServiceConfig struct {
	// TransactionTimeout bounds each adjustment transaction. Zero disables the bound.
	TransactionTimeout time.Duration
	// MaxBulkTargets caps the bills one bulk call may adjust and the rows a preview lists.
	// Zero disables the cap.
	MaxBulkTargets int
	// PercentageCap is the largest percentage accepted without confirmation.
	PercentageCap decimal.Decimal
}

// AdjustmentService applies single and bulk bill adjustments
type AdjustmentService struct {
	bills       billing.BillRepository
	adjustments billing.BillAdjustmentRepository
	txScope     TransactionScope
	propagator  *ConsistencyPropagator
	recorder    *AuditRecorder
	config      ServiceConfig
	logger      *zap.Logger
	metrics     *telemetry.AdjustmentMetrics
}

// NewAdjustmentService creates a new AdjustmentService. bills and adjustments
// serve reads made outside a transaction; every write goes through txScope.
func NewAdjustmentService(
	bills billing.BillRepository,
	adjustments billing.BillAdjustmentRepository,
	txScope TransactionScope,
	config ServiceConfig,
	logger *zap.Logger,
) *AdjustmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdjustmentService{
		bills:       bills,
		adjustments: adjustments,
		txScope:     txScope,
		propagator:  NewConsistencyPropagator(),
		recorder:    NewAuditRecorder(),
		config:      config,
		logger:      logger,
	}
}

// SetMetrics sets the adjustment metrics recorder (optional)
func (s *AdjustmentService) SetMetrics(m *telemetry.AdjustmentMetrics) {
	s.metrics = m
}

// billChange is the result of adjusting one bill inside a transaction
type billChange struct {
	record        *billing.BillAdjustment
	oldValue      decimal.Decimal
	newValue      decimal.Decimal
	delta         decimal.Decimal
	amountPayable decimal.Decimal
}

// ApplySingleAdjustment adjusts one field of one bill. It returns
// billing.ValidationErrors when the command is invalid, billing.ErrBillNotFound
// when the bill does not exist and *billing.OperationError when the transaction
// was rolled back.
func (s *AdjustmentService) ApplySingleAdjustment(ctx context.Context, cmd SingleAdjustmentCommand) (*SingleAdjustmentResult, error) {
	start := time.Now()
	spec := cmd.Spec()

	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "apply_single")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBillID, cmd.BillID.String(),
		telemetry.SpanAttrAdjustmentMethod, spec.Method.String(),
		telemetry.SpanAttrTargetField, spec.Field.String(),
		telemetry.SpanAttrRequestedBy, cmd.Actor.UserID.String(),
	)

	log := s.operationLogger(ctx, cmd.Actor,
		zap.String("operation", billing.AdjustmentTypeSingle.String()),
		zap.String("bill_id", cmd.BillID.String()),
	)

	errs := spec.Validate(s.config.PercentageCap)
	if cmd.BillID == uuid.Nil {
		errs.Add("bill_id", billing.CodeRequired, "bill_id is required")
	}
	errs.Merge(validateActor(cmd.Actor))
	if errs.HasErrors() {
		return nil, s.reject(ctx, span, billing.AdjustmentTypeSingle, spec, start, errs)
	}

	bill, err := s.bills.FindByID(ctx, cmd.BillID)
	if err != nil {
		if errors.Is(err, billing.ErrBillNotFound) {
			return nil, s.reject(ctx, span, billing.AdjustmentTypeSingle, spec, start, err)
		}
		opErr := billing.NewOperationError(billing.AdjustmentTypeSingle, cmd.BillID, nil, err)
		log.Error("Failed to load bill for adjustment", zap.Error(err))
		return nil, s.rollback(ctx, span, billing.AdjustmentTypeSingle, spec, start, opErr)
	}

	var change *billChange
	err = s.withinTransaction(ctx, func(txCtx context.Context, repos TransactionalRepositories) error {
		locked, err := repos.Bills().FindByIDForUpdate(txCtx, bill.ID)
		if err != nil {
			return err
		}
		change, err = s.adjustBill(txCtx, repos, billing.AdjustmentTypeSingle, locked, spec, cmd.Actor)
		if err != nil {
			return err
		}
		bill = locked
		return s.recorder.RecordSingle(txCtx, repos, locked, spec, change.oldValue, change.newValue, cmd.Actor)
	})
	if err != nil {
		opErr := billing.NewOperationError(billing.AdjustmentTypeSingle, cmd.BillID, nil, err)
		log.Error("Single adjustment rolled back", zap.Error(err))
		return nil, s.rollback(ctx, span, billing.AdjustmentTypeSingle, spec, start, opErr)
	}

	s.commit(ctx, span, billing.AdjustmentTypeSingle, spec, start, map[billing.BillType]int64{bill.BillType: 1})
	log.Info("Single adjustment committed",
		zap.String("bill_number", bill.BillNumber),
		zap.String("target_field", spec.Field.String()),
		zap.String("old_value", change.oldValue.String()),
		zap.String("new_value", change.newValue.String()),
		zap.String("amount_payable", change.amountPayable.String()),
	)

	return &SingleAdjustmentResult{
		BillID:           bill.ID,
		BillNumber:       bill.BillNumber,
		TargetField:      spec.Field,
		OldValue:         change.oldValue,
		NewValue:         change.newValue,
		Delta:            change.delta,
		NewAmountPayable: change.amountPayable,
		AdjustmentID:     change.record.ID,
	}, nil
}

// PreviewBulkAdjustment lists the bills filter resolves to without changing
// anything. An empty filter is allowed and matches every bill.
func (s *AdjustmentService) PreviewBulkAdjustment(ctx context.Context, filter billing.BulkFilter) (*BulkPreviewResult, error) {
	filter = filter.Normalized()
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "preview_bulk")
	defer span.End()

	if errs := filter.Validate(); errs.HasErrors() {
		telemetry.RecordError(span, errs)
		return nil, errs
	}

	limit := s.config.MaxBulkTargets
	bills, err := s.bills.ResolveTargets(ctx, filter, limit)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("resolve bulk targets: %w", err)
	}
	total, err := s.bills.CountTargets(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("count bulk targets: %w", err)
	}
	if bills == nil {
		bills = []billing.BillSummary{}
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrBillsAffected, total)
	if s.metrics != nil {
		s.metrics.RecordPreview(ctx, total)
	}

	return &BulkPreviewResult{
		Bills:        bills,
		Total:        total,
		Limit:        limit,
		ExceedsLimit: limit > 0 && total > int64(limit),
	}, nil
}

// ApplyBulkAdjustment adjusts one field of every bill matching the command
// filter inside a single transaction. Either every matched bill is adjusted
// or none is.
func (s *AdjustmentService) ApplyBulkAdjustment(ctx context.Context, cmd BulkAdjustmentCommand) (*BulkAdjustmentResult, error) {
	start := time.Now()
	spec := cmd.Spec()
	cmd.Filter = cmd.Filter.Normalized()
	filters := cmd.Filter.AuditPayload()

	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "apply_bulk")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAdjustmentMethod, spec.Method.String(),
		telemetry.SpanAttrTargetField, spec.Field.String(),
		telemetry.SpanAttrRequestedBy, cmd.Actor.UserID.String(),
	)

	log := s.operationLogger(ctx, cmd.Actor,
		zap.String("operation", billing.AdjustmentTypeBulk.String()),
		zap.Any("filters", filters),
	)

	errs := spec.Validate(s.config.PercentageCap)
	errs.Merge(cmd.Filter.Validate())
	if cmd.Filter.IsEmpty() {
		errs.Add("filters", billing.CodeScopeRequired, "at least one filter is required for a bulk adjustment")
	}
	errs.Merge(validateActor(cmd.Actor))
	if errs.HasErrors() {
		return nil, s.reject(ctx, span, billing.AdjustmentTypeBulk, spec, start, errs)
	}

	limit := 0
	if s.config.MaxBulkTargets > 0 {
		limit = s.config.MaxBulkTargets + 1
	}
	targets, err := s.bills.ResolveTargets(ctx, cmd.Filter, limit)
	if err != nil {
		opErr := billing.NewOperationError(billing.AdjustmentTypeBulk, uuid.Nil, filters, err)
		log.Error("Failed to resolve bulk targets", zap.Error(err))
		return nil, s.rollback(ctx, span, billing.AdjustmentTypeBulk, spec, start, opErr)
	}
	if s.config.MaxBulkTargets > 0 && len(targets) > s.config.MaxBulkTargets {
		var scopeErrs billing.ValidationErrors
		scopeErrs.Add("filters", billing.CodeScopeTooLarge,
			fmt.Sprintf("filters match more than %d bills; narrow the scope", s.config.MaxBulkTargets))
		return nil, s.reject(ctx, span, billing.AdjustmentTypeBulk, spec, start, scopeErrs)
	}
	telemetry.AddEvent(span, "targets_resolved", telemetry.SpanAttrBillsAffected, len(targets))

	var (
		processed   int
		totalDelta  = decimal.Zero
		countByType = make(map[billing.BillType]int64)
		failedBill  uuid.UUID
	)
	err = s.withinTransaction(ctx, func(txCtx context.Context, repos TransactionalRepositories) error {
		processed, totalDelta, failedBill = 0, decimal.Zero, uuid.Nil
		clear(countByType)

		for _, target := range targets {
			bill, err := repos.Bills().FindByIDForUpdate(txCtx, target.BillID)
			if err != nil {
				failedBill = target.BillID
				return err
			}
			change, err := s.adjustBill(txCtx, repos, billing.AdjustmentTypeBulk, bill, spec, cmd.Actor)
			if err != nil {
				failedBill = target.BillID
				return err
			}
			processed++
			totalDelta = totalDelta.Add(change.delta)
			countByType[bill.BillType]++
		}

		return s.recorder.RecordBulk(txCtx, repos, cmd.Filter, spec, processed, totalDelta, cmd.Actor)
	})
	if err != nil {
		opErr := billing.NewOperationError(billing.AdjustmentTypeBulk, failedBill, filters, err)
		log.Error("Bulk adjustment rolled back",
			zap.String("bill_id", failedBill.String()),
			zap.Int("processed_before_failure", processed),
			zap.Error(err),
		)
		return nil, s.rollback(ctx, span, billing.AdjustmentTypeBulk, spec, start, opErr)
	}

	s.commit(ctx, span, billing.AdjustmentTypeBulk, spec, start, countByType)
	telemetry.SetAttributes(span, telemetry.SpanAttrBillsAffected, processed)
	log.Info("Bulk adjustment committed",
		zap.Int("processed_count", processed),
		zap.String("total_delta", totalDelta.String()),
		zap.String("target_field", spec.Field.String()),
	)

	return &BulkAdjustmentResult{
		ProcessedCount: processed,
		TotalDelta:     totalDelta,
		TargetField:    spec.Field,
		Method:         spec.Method,
		Value:          spec.Value,
	}, nil
}

// ListBillAdjustments returns the adjustment history of a bill, newest first
func (s *AdjustmentService) ListBillAdjustments(ctx context.Context, billID uuid.UUID) ([]AdjustmentRecordResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "list_history")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBillID, billID.String())

	if _, err := s.bills.FindByID(ctx, billID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	records, err := s.adjustments.FindByBillID(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("list adjustments: %w", err)
	}

	resp := make([]AdjustmentRecordResponse, len(records))
	for i := range records {
		resp[i] = ToAdjustmentRecordResponse(&records[i])
	}
	return resp, nil
}

// adjustBill computes the new field value of bill, propagates it to the bill
// and its mirror and appends the history record.
func (s *AdjustmentService) adjustBill(
	ctx context.Context,
	repos TransactionalRepositories,
	adjustmentType billing.AdjustmentType,
	bill *billing.Bill,
	spec billing.AdjustmentSpec,
	actor billing.Actor,
) (*billChange, error) {
	current, err := bill.FieldValue(spec.Field)
	if err != nil {
		return nil, err
	}
	newValue, delta, err := billing.Compute(current, spec.Method, spec.Value)
	if err != nil {
		return nil, err
	}
	amountPayable, err := s.propagator.Apply(ctx, repos, bill, spec.Field, newValue)
	if err != nil {
		return nil, err
	}
	record, err := s.recorder.RecordAdjustment(ctx, repos, adjustmentType, bill, spec, current, newValue, actor)
	if err != nil {
		return nil, err
	}
	return &billChange{
		record:        record,
		oldValue:      current,
		newValue:      newValue,
		delta:         delta,
		amountPayable: amountPayable,
	}, nil
}

// withinTransaction runs fn in a transaction bounded by the configured timeout.
func (s *AdjustmentService) withinTransaction(
	ctx context.Context,
	fn func(txCtx context.Context, repos TransactionalRepositories) error,
) error {
	txCtx := ctx
	if s.config.TransactionTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, s.config.TransactionTimeout)
		defer cancel()
	}

	err := s.txScope.Execute(txCtx, func(repos TransactionalRepositories) error {
		if err := txCtx.Err(); err != nil {
			return err
		}
		return fn(txCtx, repos)
	})
	if err != nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("transaction exceeded %s: %w", s.config.TransactionTimeout, errors.Join(context.DeadlineExceeded, err))
	}
	return err
}

// operationLogger enriches the service logger with the ids carried by ctx.
// The actor supplies them when the caller did not put them on ctx.
func (s *AdjustmentService) operationLogger(ctx context.Context, actor billing.Actor, fields ...zap.Field) *zap.Logger {
	if logger.GetRequestID(ctx) == "" && actor.RequestID != "" {
		ctx = logger.WithRequestID(ctx, actor.RequestID)
	}
	if logger.GetActorID(ctx) == "" && actor.UserID != uuid.Nil {
		ctx = logger.WithActorID(ctx, actor.UserID.String())
	}
	return logger.Enrich(ctx, s.logger).With(fields...)
}

func validateActor(actor billing.Actor) billing.ValidationErrors {
	var errs billing.ValidationErrors
	if actor.UserID == uuid.Nil {
		errs.Add("applied_by", billing.CodeRequired, "acting user is required")
	}
	return errs
}

func (s *AdjustmentService) reject(
	ctx context.Context,
	span trace.Span,
	adjustmentType billing.AdjustmentType,
	spec billing.AdjustmentSpec,
	start time.Time,
	err error,
) error {
	telemetry.RecordError(span, err)
	s.observe(ctx, adjustmentType, spec, telemetry.OutcomeRejected, start)
	return err
}

func (s *AdjustmentService) rollback(
	ctx context.Context,
	span trace.Span,
	adjustmentType billing.AdjustmentType,
	spec billing.AdjustmentSpec,
	start time.Time,
	err error,
) error {
	telemetry.RecordError(span, err)
	s.observe(ctx, adjustmentType, spec, telemetry.OutcomeRolledBack, start)
	return err
}

func (s *AdjustmentService) commit(
	ctx context.Context,
	span trace.Span,
	adjustmentType billing.AdjustmentType,
	spec billing.AdjustmentSpec,
	start time.Time,
	adjusted map[billing.BillType]int64,
) {
	telemetry.SetOK(span)
	if s.metrics == nil {
		return
	}
	for billType, n := range adjusted {
		s.metrics.RecordBillsAdjusted(ctx, adjustmentType.String(), billType.String(), n)
	}
	s.observe(ctx, adjustmentType, spec, telemetry.OutcomeCommitted, start)
}

func (s *AdjustmentService) observe(
	ctx context.Context,
	adjustmentType billing.AdjustmentType,
	spec billing.AdjustmentSpec,
	outcome string,
	start time.Time,
) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordAdjustment(ctx, adjustmentType.String(), spec.Method.String(), spec.Field.String(), outcome, time.Since(start))
}
