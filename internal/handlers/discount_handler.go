package handlers

import (
	"net/http"
	"strings"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DiscountView is a discount with the label the sale form shows.
type DiscountView struct {
	models.Discount
	Label string `json:"label"`
}

func (h *Handler) GetDiscounts(c *gin.Context) {
	discounts, err := h.store.ListDiscounts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	views := make([]DiscountView, len(discounts))
	for i, d := range discounts {
		views[i] = DiscountView{Discount: d, Label: pricing.Label(d)}
	}
	c.JSON(http.StatusOK, views)
}

type DiscountInput struct {
	Name  string          `json:"name" binding:"required"`
	Type  string          `json:"type" binding:"required"`
	Value decimal.Decimal `json:"value"`
}

func (h *Handler) AddDiscount(c *gin.Context) {
	var input DiscountInput
	if err := bind(c, &input); err != nil {
		fail(c, err)
		return
	}
	if !pricing.ValidKind(input.Type) {
		fail(c, errors.Wrapf(apperrors.ErrInvalidInput, "discount type must be %s or %s", models.DiscountPercentage, models.DiscountFixed))
		return
	}
	if input.Value.IsNegative() {
		fail(c, errors.Wrapf(apperrors.ErrInvalidInput, "discount value %s is negative", input.Value))
		return
	}

	discount := models.Discount{Name: strings.TrimSpace(input.Name), Type: input.Type, Value: input.Value}
	if err := h.store.CreateDiscount(c.Request.Context(), &discount); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, DiscountView{Discount: discount, Label: pricing.Label(discount)})
}
