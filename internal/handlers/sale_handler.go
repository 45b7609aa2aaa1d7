package handlers

import (
	"net/http"

	"go-pos-ledger/internal/checkout"
	"go-pos-ledger/internal/middleware"
	"go-pos-ledger/internal/pricing"
	"go-pos-ledger/internal/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) GetSales(c *gin.Context) {
	sales, err := h.store.ListSales(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// PreviewSale prices the form as it is being filled in. Nothing is written.
func (h *Handler) PreviewSale(c *gin.Context) {
	var req checkout.Request
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	quote, err := h.checkout.Preview(c.Request.Context(), h.settings.Current(), req)
	if err != nil {
		fail(c, err)
		return
	}

	shown := quote.Totals.Rounded()
	c.JSON(http.StatusOK, gin.H{
		"quote":     quote,
		"formatted": formattedTotals(shown),
	})
}

// ProcessSale commits one line item against the tax rate in force now.
func (h *Handler) ProcessSale(c *gin.Context) {
	var req checkout.Request
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	sale, err := h.checkout.Commit(c.Request.Context(), h.settings.Current(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}

	h.metrics.SaleCommitted(sale.Total)
	middleware.Logger(c).WithFields(log.Fields{
		"sale_id":  sale.ID,
		"product":  sale.ProductID,
		"quantity": sale.Quantity,
		"total":    sale.Total.StringFixed(2),
	}).Info("sale committed")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sale successful!",
		"sale":    sale,
		"receipt": checkout.NewReceipt(*sale, h.loc),
	})
}

func (h *Handler) GetReceipt(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	sale, err := h.store.FindSale(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, checkout.NewReceipt(*sale, h.loc))
}

func formattedTotals(t pricing.Totals) map[string]string {
	return map[string]string{
		"subtotal":        utils.FormatCurrency(t.Subtotal),
		"discount_amount": utils.FormatCurrency(t.DiscountAmount),
		"after_discount":  utils.FormatCurrency(t.AfterDiscount),
		"tax_amount":      utils.FormatCurrency(t.TaxAmount),
		"total":           utils.FormatCurrency(t.Total),
	}
}
