package router

import (
	"github.com/gin-gonic/gin"
	"github.com/revenue/backend/internal/interfaces/http/handler"
)

// NewBillRoutes registers the adjustment endpoints under /bills.
// idempotency guards the two mutating routes; pass nil to disable it.
//
//	POST /bills/:id/adjustments       single adjustment
//	GET  /bills/:id/adjustments       adjustment history
//	POST /bills/adjustments/preview   bulk preview
//	POST /bills/adjustments/bulk      bulk adjustment
func NewBillRoutes(h *handler.AdjustmentHandler, idempotency gin.HandlerFunc) *DomainGroup {
	mutation := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if idempotency == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{idempotency, fn}
	}

	return NewDomainGroup("bills", "/bills").
		POST("/:id/adjustments", mutation(h.Apply)...).
		GET("/:id/adjustments", h.List).
		POST("/adjustments/preview", h.Preview).
		POST("/adjustments/bulk", mutation(h.ApplyBulk)...)
}
