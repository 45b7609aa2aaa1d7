package database

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/checkout"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/report"
	"go-pos-ledger/internal/settings"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newTestStore opens a private in-memory SQLite database per test.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	store, err := Connect(DriverSQLite, dsn, false)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	sqlDB, err := store.DB().DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return store
}

func seed(t *testing.T, s *Store) (models.Product, models.Customer) {
	t.Helper()
	ctx := context.Background()

	product := models.Product{Name: "Widget", Price: dec("10"), Stock: 5, LowStockThreshold: 3}
	require.NoError(t, s.CreateProduct(ctx, &product))
	customer := models.Customer{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, s.CreateCustomer(ctx, &customer))
	return product, customer
}

func TestMigrate_SeedsDefaultSettings(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.ListSettings(context.Background())
	require.NoError(t, err)

	cfg, err := settings.FromRows(rows)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(cfg.TaxRate))
	assert.Equal(t, 10, cfg.LowStockThreshold)

	// migrating twice keeps existing values
	require.NoError(t, s.SaveSettings(context.Background(), []models.Setting{{Key: models.SettingTaxRate, Value: "8"}}))
	require.NoError(t, s.Migrate(context.Background()))
	rows, err = s.ListSettings(context.Background())
	require.NoError(t, err)
	cfg, err = settings.FromRows(rows)
	require.NoError(t, err)
	assert.True(t, dec("8").Equal(cfg.TaxRate))
}

func TestFind_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.FindProduct(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.FindCustomer(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.FindDiscount(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.FindSale(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, s.SetUserRole(ctx, 404, models.RoleAdmin), apperrors.ErrNotFound)
}

func TestCheckoutAgainstStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product, customer := seed(t, s)

	discount := models.Discount{Name: "Spring", Type: models.DiscountPercentage, Value: dec("10")}
	require.NoError(t, s.CreateDiscount(ctx, &discount))

	svc := checkout.NewService(s)
	cfg := settings.Defaults()

	sale, err := svc.Commit(ctx, cfg, 1, checkout.Request{
		ProductID: product.ID, CustomerID: customer.ID, Quantity: 2, DiscountID: &discount.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, sale.ID)

	stored, err := s.FindSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "19.80", stored.Total.StringFixed(2))
	assert.Equal(t, "1.80", stored.TaxAmount.StringFixed(2))
	assert.Equal(t, "Widget", stored.Product.Name)
	assert.Equal(t, "Alice", stored.Customer.Name)

	reloaded, err := s.FindProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Stock)
}

func TestCheckoutAgainstStore_InsufficientStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product, customer := seed(t, s)

	svc := checkout.NewService(s)
	_, err := svc.Commit(ctx, settings.Defaults(), 1, checkout.Request{
		ProductID: product.ID, CustomerID: customer.ID, Quantity: 6,
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)

	reloaded, err := s.FindProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Stock)
}

func TestListInRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, e := range []models.Expense{
		{Description: "old", Amount: dec("1"), Category: "misc", ExpenseDate: time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)},
		{Description: "first", Amount: dec("2"), Category: "misc", ExpenseDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Description: "last", Amount: dec("3"), Category: "misc", ExpenseDate: time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC)},
		{Description: "after", Amount: dec("4"), Category: "misc", ExpenseDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	} {
		e := e
		require.NoError(t, s.CreateExpense(ctx, &e))
	}

	rng, err := report.ParseRange("2024-01-01", "2024-01-02", time.UTC)
	require.NoError(t, err)

	expenses, err := s.ListExpensesIn(ctx, rng)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "last", expenses[0].Description)
	assert.Equal(t, "first", expenses[1].Description)

	all, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := models.User{Username: "till1", PasswordHash: "x", Role: models.RoleCashier}
	require.NoError(t, s.CreateUser(ctx, &u))
	require.NoError(t, s.SetUserRole(ctx, u.ID, models.RoleAdmin))
	require.NoError(t, s.SetUserRole(ctx, u.ID, models.RoleAdmin))

	got, err := s.FindUserByName(ctx, "till1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	_, err = s.FindUserByName(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRegisterUser_OnlyFirstIsAdmin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := models.User{Username: "owner", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, s.RegisterUser(ctx, &owner))
	assert.Equal(t, models.RoleAdmin, owner.Role)

	// a requested role is ignored
	till := models.User{Username: "till", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, s.RegisterUser(ctx, &till))
	assert.Equal(t, models.RoleCashier, till.Role)

	stored, err := s.FindUserByName(ctx, "till")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCashier, stored.Role)
}

func TestReportLoad_DateLabelsAscending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product, customer := seed(t, s)

	// inserted out of order; the store lists sales newest first
	for _, day := range []int{2, 3, 1} {
		sale := models.Sale{
			ProductID:  product.ID,
			CustomerID: customer.ID,
			Quantity:   1,
			UnitPrice:  dec("10"),
			Subtotal:   dec("10"),
			TaxRate:    dec("10"),
			TaxAmount:  dec(fmt.Sprint(day)),
			Total:      dec("11"),
			SaleDate:   time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, s.Atomically(ctx, func(tx checkout.TxStore) error {
			return tx.CreateSale(ctx, &sale)
		}))
	}

	rng, err := report.ParseRange("2024-01-01", "2024-01-03", time.UTC)
	require.NoError(t, err)

	want := []string{"2024-01-01", "2024-01-02", "2024-01-03"}
	for _, kind := range []report.Kind{report.Sales, report.Tax} {
		r, err := report.Load(ctx, s, kind, rng)
		require.NoError(t, err)
		assert.Equal(t, want, r.Labels, kind)
	}

	r, err := report.Load(ctx, s, report.Tax, rng)
	require.NoError(t, err)
	require.Len(t, r.Values, 3)
	assert.True(t, dec("1").Equal(r.Values[0]))
	assert.True(t, dec("3").Equal(r.Values[2]))
}

func TestCommit_StoredAmountsKeepSixPlaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	product := models.Product{Name: "Odd", Price: dec("9.999"), Stock: 5, LowStockThreshold: 1}
	require.NoError(t, s.CreateProduct(ctx, &product))
	customer := models.Customer{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, s.CreateCustomer(ctx, &customer))

	cfg := settings.Defaults()
	cfg.TaxRate = dec("7.25")

	sale, err := checkout.NewService(s).Commit(ctx, cfg, 1, checkout.Request{
		ProductID: product.ID, CustomerID: customer.ID, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "0.7249275", sale.TaxAmount.String())

	stored, err := s.FindSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.TaxAmount.StringFixed(6), stored.TaxAmount.StringFixed(6))
	assert.Equal(t, sale.Total.StringFixed(6), stored.Total.StringFixed(6))
}
