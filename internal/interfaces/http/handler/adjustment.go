package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/revenue/backend/internal/application/billing"
	"github.com/revenue/backend/internal/domain/billing"
	"github.com/revenue/backend/internal/interfaces/http/middleware"
)

// AdjustmentService is the application surface the adjustment endpoints use
type AdjustmentService interface {
	ApplySingleAdjustment(ctx context.Context, cmd billingapp.SingleAdjustmentCommand) (*billingapp.SingleAdjustmentResult, error)
	PreviewBulkAdjustment(ctx context.Context, filter billing.BulkFilter) (*billingapp.BulkPreviewResult, error)
	ApplyBulkAdjustment(ctx context.Context, cmd billingapp.BulkAdjustmentCommand) (*billingapp.BulkAdjustmentResult, error)
	ListBillAdjustments(ctx context.Context, billID uuid.UUID) ([]billingapp.AdjustmentRecordResponse, error)
}

// AdjustmentHandler handles bill adjustment endpoints
type AdjustmentHandler struct {
	BaseHandler
	service AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(service AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{service: service}
}

// Apply godoc
//
//	@Summary		Adjust one bill
//	@Description	Applies a fixed amount or percentage change to one amount field of a bill
//	@Tags			adjustments
//	@Accept			json
//	@Produce		json
//	@Param			id				path		string				true	"Bill ID"
//	@Param			X-User-ID		header		string				true	"Acting user"
//	@Param			Idempotency-Key	header		string				false	"Replay protection key"
//	@Param			request			body		AdjustmentRequest	true	"Adjustment"
//	@Success		201				{object}	dto.Response
//	@Failure		400,401,404,409	{object}	dto.Response
//	@Router			/bills/{id}/adjustments [post]
func (h *AdjustmentHandler) Apply(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	actor, ok := actorFromRequest(c)
	if !ok {
		h.Unauthorized(c, "A valid X-User-ID header is required")
		return
	}

	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.ApplySingleAdjustment(withActor(c, actor.UserID), billingapp.SingleAdjustmentCommand{
		BillID:                 billID,
		Method:                 req.method(),
		Value:                  req.value(),
		TargetField:            req.targetField(),
		Reason:                 req.Reason,
		ConfirmLargePercentage: req.ConfirmLargePercentage,
		Actor:                  actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List godoc
//
//	@Summary	List a bill's adjustments
//	@Tags		adjustments
//	@Produce	json
//	@Param		id	path		string	true	"Bill ID"
//	@Success	200	{object}	dto.Response
//	@Failure	400,404	{object}	dto.Response
//	@Router		/bills/{id}/adjustments [get]
func (h *AdjustmentHandler) List(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	records, err := h.service.ListBillAdjustments(c.Request.Context(), billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithTotal(c, records, int64(len(records)))
}

// Preview godoc
//
//	@Summary		Preview a bulk adjustment
//	@Description	Lists the bills a filter selects without changing them
//	@Tags			adjustments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BulkPreviewRequest	true	"Filters"
//	@Success		200		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Router			/bills/adjustments/preview [post]
func (h *AdjustmentHandler) Preview(c *gin.Context) {
	var req BulkPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	preview, err := h.service.PreviewBulkAdjustment(c.Request.Context(), req.Filters.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithTotal(c, preview, preview.Total)
}

// ApplyBulk godoc
//
//	@Summary		Adjust every bill matching a filter
//	@Description	All matched bills are adjusted in one transaction; any failure rolls back every change
//	@Tags			adjustments
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID		header		string					true	"Acting user"
//	@Param			Idempotency-Key	header		string					false	"Replay protection key"
//	@Param			request			body		BulkAdjustmentRequest	true	"Filters and adjustment"
//	@Success		200				{object}	dto.Response
//	@Failure		400,401,409,500	{object}	dto.Response
//	@Router			/bills/adjustments/bulk [post]
func (h *AdjustmentHandler) ApplyBulk(c *gin.Context) {
	actor, ok := actorFromRequest(c)
	if !ok {
		h.Unauthorized(c, "A valid X-User-ID header is required")
		return
	}

	var req BulkAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.ApplyBulkAdjustment(withActor(c, actor.UserID), billingapp.BulkAdjustmentCommand{
		Filter:                 req.Filters.toFilter(),
		Method:                 req.method(),
		Value:                  req.value(),
		TargetField:            req.targetField(),
		Reason:                 req.Reason,
		ConfirmLargePercentage: req.ConfirmLargePercentage,
		Actor:                  actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
