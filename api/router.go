package api

import (
	"net/http"

	"controle_vendas/internal/export"
	"controle_vendas/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InitRoutes registers the sales endpoints on the given Gin engine.
// The service must already be loaded.
func InitRoutes(e *gin.Engine, salesService *sales.Service, exporter *export.Exporter, logger *zap.Logger, currency string) {
	if logger == nil {
		logger = zap.NewNop()
	}
	salesHandler := NewSalesHandler(salesService, exporter, logger, currency)

	e.GET("/sales", salesHandler.handleSearchSales)
	e.GET("/sales/:id", salesHandler.handleGetSale)
	e.POST("/sales", salesHandler.handleCreateSale)
	e.PUT("/sales/:id", salesHandler.handleEditSale)

	// Borrado en dos pasos: pedir confirmación y luego confirmar.
	e.POST("/removals", salesHandler.handleRequestRemoval)
	e.POST("/removals/:token/confirm", salesHandler.handleConfirmRemoval)
	e.DELETE("/removals/:token", salesHandler.handleCancelRemoval)

	e.GET("/total", salesHandler.handleTotal)
	e.GET("/export", salesHandler.handleExport)
	e.POST("/export", salesHandler.handleExportFile)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
