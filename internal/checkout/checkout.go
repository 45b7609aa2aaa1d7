// Package checkout prices and commits sales. Commit validates everything and
// checks stock before the first write; the sale row and the stock decrement
// are written in one store transaction.
package checkout

import (
	"context"
	"time"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/pricing"
	"go-pos-ledger/internal/settings"

	"github.com/pkg/errors"
)

// Store is the persistence the checkout needs. Lookups return an error
// wrapping apperrors.ErrNotFound when the row is absent.
type Store interface {
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	FindCustomer(ctx context.Context, id uint) (*models.Customer, error)
	FindDiscount(ctx context.Context, id uint) (*models.Discount, error)

	// Atomically runs fn against a transactional view of the store. If fn
	// returns an error nothing it wrote is kept.
	Atomically(ctx context.Context, fn func(tx TxStore) error) error
}

// TxStore is the store as seen inside a transaction.
type TxStore interface {
	// LockProduct loads the product and holds it against concurrent sales
	// until the transaction ends.
	LockProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateSale(ctx context.Context, sale *models.Sale) error
	SetStock(ctx context.Context, productID uint, stock int) error
}

// Request is a line item as submitted from the till.
type Request struct {
	ProductID  uint  `json:"product_id" binding:"required"`
	CustomerID uint  `json:"customer_id"`
	Quantity   int   `json:"quantity" binding:"required"`
	DiscountID *uint `json:"discount_id"`
}

// Quote is a priced but uncommitted sale.
type Quote struct {
	Product  models.Product   `json:"product"`
	Discount *models.Discount `json:"discount,omitempty"`
	Quantity int              `json:"quantity"`
	TaxRate  string           `json:"tax_rate"`
	Totals   pricing.Totals   `json:"totals"`
}

// Service prices and commits sales.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService wires a checkout against store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Preview prices the request without writing anything. A quantity of zero
// is rejected like in Commit.
func (s *Service) Preview(ctx context.Context, cfg settings.Context, req Request) (*Quote, error) {
	if req.Quantity <= 0 {
		return nil, errors.Wrapf(apperrors.ErrInvalidInput, "quantity must be positive, got %d", req.Quantity)
	}

	product, err := s.store.FindProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	discount, err := s.discount(ctx, req.DiscountID)
	if err != nil {
		return nil, err
	}

	totals, err := pricing.ComputeSaleTotals(product.Price, req.Quantity, pricing.FromModel(discount), cfg.TaxRate)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Product:  *product,
		Discount: discount,
		Quantity: req.Quantity,
		TaxRate:  cfg.TaxRate.String(),
		Totals:   totals,
	}, nil
}

// Commit records the sale for userID and decrements stock. A request for
// more than the current stock fails with apperrors.ErrInsufficientStock and
// writes nothing.
func (s *Service) Commit(ctx context.Context, cfg settings.Context, userID uint, req Request) (*models.Sale, error) {
	if req.Quantity <= 0 {
		return nil, errors.Wrapf(apperrors.ErrInvalidInput, "quantity must be positive, got %d", req.Quantity)
	}
	if req.CustomerID == 0 {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "customer is required")
	}

	customer, err := s.store.FindCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	discount, err := s.discount(ctx, req.DiscountID)
	if err != nil {
		return nil, err
	}

	var sale *models.Sale
	err = s.store.Atomically(ctx, func(tx TxStore) error {
		product, err := tx.LockProduct(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if product.Stock < req.Quantity {
			return errors.Wrapf(apperrors.ErrInsufficientStock, "%s: requested %d, %d left", product.Name, req.Quantity, product.Stock)
		}

		totals, err := pricing.ComputeSaleTotals(product.Price, req.Quantity, pricing.FromModel(discount), cfg.TaxRate)
		if err != nil {
			return err
		}

		sale = &models.Sale{
			ProductID:      product.ID,
			CustomerID:     customer.ID,
			DiscountID:     discountID(discount),
			UserID:         userID,
			Quantity:       req.Quantity,
			UnitPrice:      product.Price,
			Subtotal:       totals.Subtotal,
			DiscountAmount: totals.DiscountAmount,
			TaxRate:        cfg.TaxRate,
			TaxAmount:      totals.TaxAmount,
			Total:          totals.Total,
			SaleDate:       s.now().UTC(),
		}
		if err := tx.CreateSale(ctx, sale); err != nil {
			return err
		}
		if err := tx.SetStock(ctx, product.ID, product.Stock-req.Quantity); err != nil {
			return err
		}

		sale.Product = *product
		sale.Product.Stock -= req.Quantity
		sale.Customer = *customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *Service) discount(ctx context.Context, id *uint) (*models.Discount, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	return s.store.FindDiscount(ctx, *id)
}

func discountID(d *models.Discount) *uint {
	if d == nil {
		return nil
	}
	id := d.ID
	return &id
}
