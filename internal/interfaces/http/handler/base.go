package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/billing"
	"github.com/revenue/backend/internal/domain/shared"
	"github.com/revenue/backend/internal/infrastructure/logger"
	"github.com/revenue/backend/internal/interfaces/http/dto"
	"github.com/revenue/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// actorFromRequest builds the provenance of a mutation from the request.
// ok is false when X-User-ID is missing or not a UUID.
func actorFromRequest(c *gin.Context) (billing.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return billing.Actor{}, false
	}
	return billing.Actor{
		UserID:    userID,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: getRequestID(c),
	}, true
}

// withActor tags the request context so downstream logs carry the actor
func withActor(c *gin.Context, userID uuid.UUID) context.Context {
	return logger.WithActorID(c.Request.Context(), userID.String())
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithTotal sends a success response carrying a total count
func (h *BaseHandler) SuccessWithTotal(c *gin.Context, data any, total int64) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithTotal(data, total))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeUnauthorized, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, violations billing.ValidationErrors) {
	details := make([]dto.ValidationDetail, len(violations))
	for i, v := range violations {
		details[i] = dto.ValidationDetail{Field: v.Field, Code: v.Code, Message: v.Message}
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// HandleError converts service errors to HTTP responses.
//
// Violations are reported field by field. A transaction deadline maps to
// ERR_TIMEOUT and a lost row race to ERR_CONCURRENCY_CONFLICT, even when
// wrapped in an OperationError. Remaining domain errors go through the code
// mapping; anything else is a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var violations billing.ValidationErrors
	if errors.As(err, &violations) {
		h.ValidationError(c, violations)
		return
	}

	log := logger.L(c.Request.Context())
	var opErr *billing.OperationError
	if errors.As(err, &opErr) {
		log = log.With(zap.String("operation", opErr.Operation.String()))
		if opErr.BillID != uuid.Nil {
			log = log.With(zap.String("bill_id", opErr.BillID.String()))
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("Adjustment timed out", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeTimeout, "The adjustment did not complete in time and was rolled back")
		return
	case errors.Is(err, shared.ErrConcurrencyConflict):
		h.ErrorWithCode(c, dto.ErrCodeConcurrencyConflict, shared.ErrConcurrencyConflict.Message)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		if dto.GetHTTPStatus(code) >= http.StatusInternalServerError {
			log.Error("Adjustment failed", zap.Error(err))
		}
		h.ErrorWithCode(c, code, domainErr.Message)
		return
	}

	log.Error("Unexpected error", zap.Error(err))
	h.ErrorWithCode(c, dto.ErrCodeInternal, "An unexpected error occurred")
}
