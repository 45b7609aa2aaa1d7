package checkout

import (
	"context"
	"testing"
	"time"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/settings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tenPercent() settings.Context {
	return settings.Context{TaxRate: dec("10"), LowStockThreshold: 10}
}

func setup(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := &memStore{
		products: map[uint]models.Product{
			1: {ID: 1, Name: "Widget", Price: dec("10"), Stock: 5},
		},
		customers: map[uint]models.Customer{
			1: {ID: 1, Name: "Alice", Email: "alice@example.com"},
		},
		discounts: map[uint]models.Discount{
			1: {ID: 1, Name: "Spring", Type: models.DiscountPercentage, Value: dec("10")},
			2: {ID: 2, Name: "Voucher", Type: models.DiscountFixed, Value: dec("25")},
		},
	}
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC) }
	return svc, store
}

func ptr(v uint) *uint { return &v }

func TestCommit_PercentageDiscount(t *testing.T) {
	svc, store := setup(t)

	sale, err := svc.Commit(context.Background(), tenPercent(), 7, Request{ProductID: 1, CustomerID: 1, Quantity: 2, DiscountID: ptr(1)})
	require.NoError(t, err)

	assert.Equal(t, "20.00", sale.Subtotal.StringFixed(2))
	assert.Equal(t, "2.00", sale.DiscountAmount.StringFixed(2))
	assert.Equal(t, "1.80", sale.TaxAmount.StringFixed(2))
	assert.Equal(t, "19.80", sale.Total.StringFixed(2))
	assert.True(t, dec("10").Equal(sale.TaxRate))
	assert.Equal(t, uint(7), sale.UserID)
	require.NotNil(t, sale.DiscountID)
	assert.Equal(t, uint(1), *sale.DiscountID)
	assert.Equal(t, "Alice", sale.Customer.Name)
	assert.Equal(t, 3, sale.Product.Stock)

	assert.Equal(t, 3, store.products[1].Stock)
	require.Len(t, store.sales, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), store.sales[0].SaleDate)
}

func TestCommit_FixedDiscountNeverNegative(t *testing.T) {
	svc, _ := setup(t)

	sale, err := svc.Commit(context.Background(), tenPercent(), 1, Request{ProductID: 1, CustomerID: 1, Quantity: 2, DiscountID: ptr(2)})
	require.NoError(t, err)
	assert.True(t, sale.Total.IsZero())
	assert.True(t, dec("20").Equal(sale.DiscountAmount))
}

func TestCommit_InsufficientStockWritesNothing(t *testing.T) {
	svc, store := setup(t)

	_, err := svc.Commit(context.Background(), tenPercent(), 1, Request{ProductID: 1, CustomerID: 1, Quantity: 6})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	assert.Empty(t, store.sales)
	assert.Equal(t, 5, store.products[1].Stock)
	assert.Zero(t, store.writes)
}

func TestCommit_SellsLastUnits(t *testing.T) {
	svc, store := setup(t)

	_, err := svc.Commit(context.Background(), tenPercent(), 1, Request{ProductID: 1, CustomerID: 1, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, store.products[1].Stock)
}

func TestCommit_InvalidAndMissing(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	_, err := svc.Commit(ctx, tenPercent(), 1, Request{ProductID: 1, CustomerID: 1, Quantity: 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Commit(ctx, tenPercent(), 1, Request{ProductID: 1, Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Commit(ctx, tenPercent(), 1, Request{ProductID: 99, CustomerID: 1, Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Commit(ctx, tenPercent(), 1, Request{ProductID: 1, CustomerID: 42, Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Commit(ctx, tenPercent(), 1, Request{ProductID: 1, CustomerID: 1, Quantity: 1, DiscountID: ptr(9)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Empty(t, store.sales)
}

func TestCommit_FailedStockUpdateRollsBack(t *testing.T) {
	svc, store := setup(t)
	store.failSetStock = errors.Wrap(apperrors.ErrUpstream, "connection reset")

	_, err := svc.Commit(context.Background(), tenPercent(), 1, Request{ProductID: 1, CustomerID: 1, Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrUpstream)

	assert.Empty(t, store.sales)
	assert.Equal(t, 5, store.products[1].Stock)
}

func TestCommit_UsesSnapshotTaxRate(t *testing.T) {
	svc, _ := setup(t)
	cfg := settings.Context{TaxRate: dec("0"), LowStockThreshold: 10}

	sale, err := svc.Commit(context.Background(), cfg, 1, Request{ProductID: 1, CustomerID: 1, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, sale.TaxRate.IsZero())
	assert.True(t, dec("10").Equal(sale.Total))
}

func TestPreview(t *testing.T) {
	svc, store := setup(t)

	quote, err := svc.Preview(context.Background(), tenPercent(), Request{ProductID: 1, Quantity: 2, DiscountID: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "19.80", quote.Totals.Rounded().Total.StringFixed(2))
	assert.Equal(t, "10", quote.TaxRate)
	assert.Equal(t, "Spring", quote.Discount.Name)

	// preview may quote more than is in stock, but never writes
	_, err = svc.Preview(context.Background(), tenPercent(), Request{ProductID: 1, Quantity: 50})
	require.NoError(t, err)
	assert.Empty(t, store.sales)
	assert.Equal(t, 5, store.products[1].Stock)

	_, err = svc.Preview(context.Background(), tenPercent(), Request{ProductID: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestNewReceipt(t *testing.T) {
	svc, _ := setup(t)
	sale, err := svc.Commit(context.Background(), tenPercent(), 1, Request{ProductID: 1, CustomerID: 1, Quantity: 2, DiscountID: ptr(1)})
	require.NoError(t, err)

	receipt := NewReceipt(*sale, time.UTC)
	assert.Equal(t, "2024-01-01 09:30", receipt.Date)
	assert.Equal(t, []ReceiptLine{
		{Label: "Product", Value: "Widget"},
		{Label: "Price", Value: "$10.00"},
		{Label: "Quantity", Value: "2"},
		{Label: "Subtotal", Value: "$20.00"},
		{Label: "Discount", Value: "-$2.00"},
		{Label: "Tax (10%)", Value: "$1.80"},
		{Label: "Total", Value: "$19.80"},
	}, receipt.Lines)
	assert.Equal(t, []ReceiptLine{
		{Label: "Name", Value: "Alice"},
		{Label: "Email", Value: "alice@example.com"},
	}, receipt.Customer)
}

// memStore keeps rows in maps. Atomically works on a copy and only keeps
// it when fn succeeds.
type memStore struct {
	products  map[uint]models.Product
	customers map[uint]models.Customer
	discounts map[uint]models.Discount
	sales     []models.Sale

	writes       int
	failSetStock error
}

func (m *memStore) FindProduct(_ context.Context, id uint) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrNotFound, "product %d", id)
	}
	return &p, nil
}

func (m *memStore) FindCustomer(_ context.Context, id uint) (*models.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrNotFound, "customer %d", id)
	}
	return &c, nil
}

func (m *memStore) FindDiscount(_ context.Context, id uint) (*models.Discount, error) {
	d, ok := m.discounts[id]
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrNotFound, "discount %d", id)
	}
	return &d, nil
}

func (m *memStore) Atomically(_ context.Context, fn func(tx TxStore) error) error {
	tx := &memTx{parent: m, products: make(map[uint]models.Product, len(m.products))}
	for k, v := range m.products {
		tx.products[k] = v
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.products = tx.products
	m.sales = append(m.sales, tx.sales...)
	m.writes += tx.writes
	return nil
}

type memTx struct {
	parent   *memStore
	products map[uint]models.Product
	sales    []models.Sale
	writes   int
}

func (tx *memTx) LockProduct(_ context.Context, id uint) (*models.Product, error) {
	p, ok := tx.products[id]
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrNotFound, "product %d", id)
	}
	return &p, nil
}

func (tx *memTx) CreateSale(_ context.Context, sale *models.Sale) error {
	sale.ID = uint(len(tx.parent.sales) + len(tx.sales) + 1)
	tx.sales = append(tx.sales, *sale)
	tx.writes++
	return nil
}

func (tx *memTx) SetStock(_ context.Context, productID uint, stock int) error {
	if tx.parent.failSetStock != nil {
		return tx.parent.failSetStock
	}
	p := tx.products[productID]
	p.Stock = stock
	tx.products[productID] = p
	tx.writes++
	return nil
}
