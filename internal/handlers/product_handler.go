package handlers

import (
	"net/http"
	"strings"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ProductView is a product as listed, with its stock label.
type ProductView struct {
	models.Product
	Status   string `json:"status"`
	LowStock bool   `json:"low_stock"`
}

func productView(p models.Product) ProductView {
	return ProductView{Product: p, Status: p.StockStatus(), LowStock: p.IsLowStock()}
}

// ProductInput is the body of create and update. Omitted fields keep their
// current value on update.
type ProductInput struct {
	Name              *string          `json:"name"`
	Category          *string          `json:"category"`
	Price             *decimal.Decimal `json:"price"`
	Stock             *int             `json:"stock"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
}

func (in ProductInput) apply(p *models.Product) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.LowStockThreshold != nil {
		p.LowStockThreshold = *in.LowStockThreshold
	}

	switch {
	case p.Name == "":
		return errors.Wrap(apperrors.ErrInvalidInput, "product name is required")
	case p.Price.IsNegative():
		return errors.Wrapf(apperrors.ErrInvalidInput, "price %s is negative", p.Price)
	case p.Stock < 0:
		return errors.Wrapf(apperrors.ErrInvalidInput, "stock %d is negative", p.Stock)
	case p.LowStockThreshold < 0:
		return errors.Wrapf(apperrors.ErrInvalidInput, "low stock threshold %d is negative", p.LowStockThreshold)
	}
	return nil
}

// --- GET: List all products ---
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.store.ListProducts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = productView(p)
	}
	c.JSON(http.StatusOK, views)
}

// --- POST: Add a new product ---
// Without an explicit threshold the shop-wide low_stock_threshold applies.
func (h *Handler) AddProduct(c *gin.Context) {
	var input ProductInput
	if err := bind(c, &input); err != nil {
		fail(c, err)
		return
	}

	product := models.Product{LowStockThreshold: h.settings.Current().LowStockThreshold}
	if err := input.apply(&product); err != nil {
		fail(c, err)
		return
	}
	if input.Price == nil {
		fail(c, errors.Wrap(apperrors.ErrInvalidInput, "price is required"))
		return
	}

	if err := h.store.CreateProduct(c.Request.Context(), &product); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, productView(product))
}

// --- PUT: Update price, stock or threshold ---
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var input ProductInput
	if err := bind(c, &input); err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	product, err := h.store.FindProduct(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := input.apply(product); err != nil {
		fail(c, err)
		return
	}
	if err := h.store.UpdateProduct(ctx, product); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": productView(*product)})
}
