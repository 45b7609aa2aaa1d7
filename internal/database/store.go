package database

import (
	"context"
	"time"

	"go-pos-ledger/internal/checkout"
	"go-pos-ledger/internal/dashboard"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/report"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ checkout.Store   = (*Store)(nil)
	_ dashboard.Source = (*Store)(nil)
)

// --- Products ---

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Order("name").Find(&products).Error
	return products, upstream(err, "list products")
}

func (s *Store) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, upstream(err, "product %d", id)
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	return upstream(s.db.WithContext(ctx).Create(p).Error, "create product %q", p.Name)
}

// UpdateProduct writes every column of an already loaded product.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	return upstream(s.db.WithContext(ctx).Save(p).Error, "update product %d", p.ID)
}

// --- Customers ---

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.WithContext(ctx).Order("name").Find(&customers).Error
	return customers, upstream(err, "list customers")
}

func (s *Store) FindCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, upstream(err, "customer %d", id)
	}
	return &customer, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return upstream(s.db.WithContext(ctx).Create(c).Error, "create customer %q", c.Name)
}

// --- Discounts ---

func (s *Store) ListDiscounts(ctx context.Context) ([]models.Discount, error) {
	var discounts []models.Discount
	err := s.db.WithContext(ctx).Order("name").Find(&discounts).Error
	return discounts, upstream(err, "list discounts")
}

func (s *Store) FindDiscount(ctx context.Context, id uint) (*models.Discount, error) {
	var discount models.Discount
	if err := s.db.WithContext(ctx).First(&discount, id).Error; err != nil {
		return nil, upstream(err, "discount %d", id)
	}
	return &discount, nil
}

func (s *Store) CreateDiscount(ctx context.Context, d *models.Discount) error {
	return upstream(s.db.WithContext(ctx).Create(d).Error, "create discount %q", d.Name)
}

// --- Expenses ---

// ListExpenses returns every expense, newest first.
func (s *Store) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	return s.expenses(ctx, nil)
}

// ListExpensesIn returns the expenses dated inside rng, newest first.
func (s *Store) ListExpensesIn(ctx context.Context, rng report.Range) ([]models.Expense, error) {
	return s.expenses(ctx, &rng)
}

func (s *Store) expenses(ctx context.Context, rng *report.Range) ([]models.Expense, error) {
	var expenses []models.Expense
	q := s.db.WithContext(ctx).Order("expense_date desc")
	if rng != nil {
		q = q.Where("expense_date >= ? AND expense_date < ?", rng.Start.UTC(), rng.Until().UTC())
	}
	err := q.Find(&expenses).Error
	return expenses, upstream(err, "list expenses")
}

// CreateExpense stores the date in UTC so range queries compare like with
// like.
func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.ExpenseDate.IsZero() {
		e.ExpenseDate = time.Now()
	}
	e.ExpenseDate = e.ExpenseDate.UTC()
	return upstream(s.db.WithContext(ctx).Create(e).Error, "create expense %q", e.Description)
}

// --- Sales ---

// ListSales returns every sale with product and customer, newest first.
func (s *Store) ListSales(ctx context.Context) ([]models.Sale, error) {
	return s.sales(ctx, nil)
}

// ListSalesIn returns the sales dated inside rng, newest first.
func (s *Store) ListSalesIn(ctx context.Context, rng report.Range) ([]models.Sale, error) {
	return s.sales(ctx, &rng)
}

func (s *Store) sales(ctx context.Context, rng *report.Range) ([]models.Sale, error) {
	var sales []models.Sale
	q := s.db.WithContext(ctx).Preload("Product").Preload("Customer").Order("sale_date desc")
	if rng != nil {
		q = q.Where("sale_date >= ? AND sale_date < ?", rng.Start.UTC(), rng.Until().UTC())
	}
	err := q.Find(&sales).Error
	return sales, upstream(err, "list sales")
}

// FindSale loads one sale with the rows a receipt needs.
func (s *Store) FindSale(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.WithContext(ctx).Preload("Product").Preload("Customer").First(&sale, id).Error; err != nil {
		return nil, upstream(err, "sale %d", id)
	}
	return &sale, nil
}

// Atomically runs fn inside a database transaction.
func (s *Store) Atomically(ctx context.Context, fn func(tx checkout.TxStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{db: tx})
	})
}

// txStore is the checkout's view of an open transaction.
type txStore struct {
	db *gorm.DB
}

// LockProduct selects the row FOR UPDATE so two tills cannot sell the same
// last unit.
func (t *txStore) LockProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error
	if err != nil {
		return nil, upstream(err, "product %d", id)
	}
	return &product, nil
}

func (t *txStore) CreateSale(ctx context.Context, sale *models.Sale) error {
	err := t.db.WithContext(ctx).Omit(clause.Associations).Create(sale).Error
	return upstream(err, "insert sale")
}

func (t *txStore) SetStock(ctx context.Context, productID uint, stock int) error {
	err := t.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).Update("stock", stock).Error
	return upstream(err, "update stock of product %d", productID)
}

// --- Settings ---

func (s *Store) ListSettings(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	err := s.db.WithContext(ctx).Find(&rows).Error
	return rows, upstream(err, "list settings")
}

// SaveSettings upserts the given rows in one transaction.
func (s *Store) SaveSettings(ctx context.Context, rows []models.Setting) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			row := row
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return upstream(err, "save settings")
}

// --- Users ---

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("username").Find(&users).Error
	return users, upstream(err, "list users")
}

func (s *Store) FindUserByName(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, upstream(err, "user %q", username)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return upstream(s.db.WithContext(ctx).Create(u).Error, "create user %q", u.Username)
}

// RegisterUser inserts u as a cashier, or as the admin when the table is
// still empty. The count takes a write lock so two first sign-ups on a fresh
// install cannot both become admin.
func (s *Store) RegisterUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		err := tx.Model(&models.User{}).Clauses(clause.Locking{Strength: "UPDATE"}).Count(&n).Error
		if err != nil {
			return upstream(err, "count users")
		}
		u.Role = models.RoleCashier
		if n == 0 {
			u.Role = models.RoleAdmin
		}
		return upstream(tx.Create(u).Error, "create user %q", u.Username)
	})
}

// SetUserRole changes a user's role; a missing user is ErrNotFound.
func (s *Store) SetUserRole(ctx context.Context, id uint, role string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return upstream(err, "user %d", id)
	}
	err := s.db.WithContext(ctx).Model(&user).Update("role", role).Error
	return upstream(err, "set role of user %d", id)
}
