package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_desk/internal/sales"
)

// reportHandler implements the manager-facing analytics endpoints.
type reportHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

func newReportHandler(salesService *sales.Service, logger *zap.Logger) *reportHandler {
	return &reportHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// handleReport handles GET /reports/:dimension/:value — per-product totals
// for the rows matching the dimension value.
func (h *reportHandler) handleReport(ctx *gin.Context) {
	dimension := sales.Dimension(ctx.Param("dimension"))
	value := ctx.Param("value")

	totals, err := h.salesService.Report(dimension, value)
	if err != nil {
		var verr *sales.ValidationError
		if errors.As(err, &verr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		h.logger.Error("report failed", zap.String("dimension", string(dimension)), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(http.StatusOK, totals)
}

// handleTopProducts handles GET /dashboard/top-products — per store, the
// product with the largest summed total.
func (h *reportHandler) handleTopProducts(ctx *gin.Context) {
	top, err := h.salesService.TopProducts()
	if err != nil {
		h.logger.Error("top products failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(http.StatusOK, top)
}

// handleDashboard handles GET /dashboard — the whole-table roll-up.
func (h *reportHandler) handleDashboard(ctx *gin.Context) {
	summary, err := h.salesService.Dashboard()
	if err != nil {
		h.logger.Error("dashboard failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
