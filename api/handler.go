package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_desk/internal/sales"
)

// orderHandler holds the sales service and implements HTTP handlers for
// order operations.
type orderHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// newOrderHandler creates a new order handler.
func newOrderHandler(salesService *sales.Service, logger *zap.Logger) *orderHandler {
	return &orderHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// handleAddOrder handles the POST /orders endpoint.
func (h *orderHandler) handleAddOrder(ctx *gin.Context) {
	var row sales.Row
	if err := ctx.ShouldBindJSON(&row); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	order, err := h.salesService.AddOrder(sessionFrom(ctx), row)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

// handleUpdateOrder handles the PATCH /orders/:id endpoint.
func (h *orderHandler) handleUpdateOrder(ctx *gin.Context) {
	var patch sales.Patch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.salesService.UpdateOrder(sessionFrom(ctx), ctx.Param("id"), patch); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "order updated"})
}

// handleDeleteOrder handles the DELETE /orders/:id endpoint.
func (h *orderHandler) handleDeleteOrder(ctx *gin.Context) {
	if err := h.salesService.DeleteOrder(sessionFrom(ctx), ctx.Param("id")); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}

// handleListOrders handles the GET /orders endpoint.
func (h *orderHandler) handleListOrders(ctx *gin.Context) {
	orders, err := h.salesService.ListOrders(sessionFrom(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": orders, "count": len(orders)})
}

func (h *orderHandler) respondError(ctx *gin.Context, err error) {
	var verr *sales.ValidationError
	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, sales.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": "order id conflict, retry the request"})
	default:
		h.logger.Error("order operation failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
