package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"controle_vendas/internal/export"
	"controle_vendas/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	exporter     *export.Exporter
	logger       *zap.Logger
	currency     string
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, exporter *export.Exporter, logger *zap.Logger, currency string) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		exporter:     exporter,
		logger:       logger,
		currency:     currency,
	}
}

// priceInput accepts the price either as a JSON number or as a string, the
// way a form field would send it.
type priceInput string

func (p *priceInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = priceInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("price must be a number or a string: %w", err)
	}
	*p = priceInput(n)
	return nil
}

type saleRequest struct {
	ProductName string     `json:"productName"`
	Price       priceInput `json:"price"`
}

// writeError maps ledger errors to status codes. Validation errors carry the
// user-facing message.
func (h *salesHandler) writeError(ctx *gin.Context, err error) {
	switch {
	case sales.IsValidationError(err):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": sales.UserMessage(err)})
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": sales.UserMessage(err)})
	case errors.Is(err, sales.ErrNoPendingRemoval):
		ctx.JSON(http.StatusNotFound, gin.H{"error": sales.UserMessage(err)})
	default:
		h.logger.Error("unexpected error", zap.String("path", ctx.FullPath()), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req saleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.salesService.Add(ctx.Request.Context(), req.ProductName, string(req.Price))
	if err != nil {
		h.logger.Info("sale rejected", zap.String("product_name", req.ProductName), zap.String("price", string(req.Price)), zap.Error(err))
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": sales.MsgAdded, "sale": sale})
}

// handleEditSale handles the PUT /sales/:id endpoint.
func (h *salesHandler) handleEditSale(ctx *gin.Context) {
	var req saleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.salesService.Edit(ctx.Request.Context(), ctx.Param("id"), req.ProductName, string(req.Price))
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": sales.MsgEdited, "sale": sale})
}

func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	sale, err := h.salesService.Get(ctx.Param("id"))
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// handleSearchSales handles GET /sales?q=. The metadata total covers the
// whole ledger regardless of the query.
func (h *salesHandler) handleSearchSales(ctx *gin.Context) {
	query := ctx.Query("q")
	results, metadata := h.salesService.SearchWithMetadata(query, h.currency)

	h.logger.Debug("sales search completed",
		zap.String("query", query),
		zap.Int("results_count", len(results)),
	)

	ctx.JSON(http.StatusOK, gin.H{"results": results, "metadata": metadata})
}

func (h *salesHandler) handleTotal(ctx *gin.Context) {
	total := h.salesService.Total()
	ctx.JSON(http.StatusOK, gin.H{
		"total":     json.Number(total.String()),
		"formatted": sales.FormatMoney(total, h.currency),
	})
}

func (h *salesHandler) handleRequestRemoval(ctx *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	conf, err := h.salesService.RequestRemoval(req.ID)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, conf)
}

func (h *salesHandler) handleConfirmRemoval(ctx *gin.Context) {
	removed, err := h.salesService.ConfirmRemoval(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": sales.MsgRemoved, "sale": removed})
}

func (h *salesHandler) handleCancelRemoval(ctx *gin.Context) {
	h.salesService.CancelRemoval(ctx.Param("token"))
	ctx.Status(http.StatusNoContent)
}

// handleExport returns the ledger as a CSV attachment.
func (h *salesHandler) handleExport(ctx *gin.Context) {
	content, err := h.exporter.Render()
	if errors.Is(err, export.ErrNothingToExport) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": sales.MsgNothingToExport})
		return
	}
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+export.DefaultFileName+`"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(content))
}

// handleExportFile writes the CSV file and hands it to the sharer, like the
// export button of the app.
func (h *salesHandler) handleExportFile(ctx *gin.Context) {
	path, err := h.exporter.Export(ctx.Request.Context())
	if errors.Is(err, export.ErrNothingToExport) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": sales.MsgNothingToExport})
		return
	}
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	shared := false
	if ctx.Query("share") != "false" {
		// Exporter.Share already logs the failure; the client only sees shared=false
		shared = h.exporter.Share(ctx.Request.Context(), path) == nil
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": sales.MsgExported, "path": path, "shared": shared})
}
