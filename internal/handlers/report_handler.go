package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"go-pos-ledger/internal/report"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) loadReport(c *gin.Context) (report.Report, error) {
	kind, err := report.ParseKind(c.Query("kind"))
	if err != nil {
		return report.Report{}, err
	}
	rng, err := report.ParseRange(c.Query("start"), c.Query("end"), h.loc)
	if err != nil {
		return report.Report{}, err
	}
	return report.Load(c.Request.Context(), h.store, kind, rng)
}

// --- GET: /api/reports?kind=sales&start=2024-01-01&end=2024-01-31 ---
func (h *Handler) GetReport(c *gin.Context) {
	r, err := h.loadReport(c)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report": r,
		"table":  r.Table(),
		"chart":  r.Chart(),
	})
}

// --- GET: /api/reports/export ---
// Same query as GetReport, answered with an Excel workbook.
func (h *Handler) ExportReport(c *gin.Context) {
	r, err := h.loadReport(c)
	if err != nil {
		fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, r); err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("%s_%s_%s.xlsx", r.Kind, c.Query("start"), c.Query("end"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// --- GET: /api/reports/valuation ---
// GetStockValuation calculates the total monetary value of all physical inventory
func (h *Handler) GetStockValuation(c *gin.Context) {
	products, err := h.store.ListProducts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report.NewValuation(products))
}
