package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role values carried by users and the JWT claim.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// Discount kinds.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Setting keys consumed by the engine.
const (
	SettingTaxRate           = "tax_rate"
	SettingLowStockThreshold = "low_stock_threshold"
)

// User - the person logged into the till
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'cashier'
	CreatedAt    time.Time `json:"created_at"`
}

// EffectiveRole falls back to cashier when no role was ever assigned.
func (u User) EffectiveRole() string {
	if u.Role == "" {
		return RoleCashier
	}
	return u.Role
}

// Product - the inventory
type Product struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Name              string          `gorm:"size:120;not null" json:"name"`
	Category          string          `gorm:"size:60" json:"category"`
	Price             decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"price"`
	Stock             int             `gorm:"not null" json:"stock"`
	LowStockThreshold int             `gorm:"not null" json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
}

// IsLowStock uses a strict comparison: stock equal to the threshold is fine.
func (p Product) IsLowStock() bool {
	return p.Stock < p.LowStockThreshold
}

// StockStatus is the label shown in the product list.
func (p Product) StockStatus() string {
	if p.IsLowStock() {
		return "Low Stock"
	}
	return "In Stock"
}

// Customer - who bought it
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;index" json:"name"`
	Email     string    `gorm:"size:120" json:"email,omitempty"`
	Phone     string    `gorm:"size:40" json:"phone,omitempty"`
	Address   string    `gorm:"size:255" json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Discount - a named reduction offered at the till
type Discount struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:80;not null;index" json:"name"`
	Type      string          `gorm:"size:20;not null" json:"type"` // 'percentage', 'fixed'
	Value     decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"value"`
	CreatedAt time.Time       `json:"created_at"`
}

// Sale - one committed line item. Immutable once written; it snapshots the
// unit price and the tax rate in force at the time of sale.
type Sale struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ProductID      uint            `gorm:"not null;index" json:"product_id"`
	Product        Product         `json:"product"`
	CustomerID     uint            `gorm:"not null;index" json:"customer_id"`
	Customer       Customer        `json:"customer"`
	DiscountID     *uint           `json:"discount_id,omitempty"`
	UserID         uint            `json:"user_id"` // Who processed it
	Quantity       int             `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,6)" json:"unit_price"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(20,6)" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,6)" json:"discount_amount"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(10,4)" json:"tax_rate"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,6)" json:"tax_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(20,6)" json:"total"`
	SaleDate       time.Time       `gorm:"index" json:"sale_date"`
}

// Expense - money going out
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	Category    string          `gorm:"size:60;index" json:"category"`
	ExpenseDate time.Time       `gorm:"index" json:"expense_date"`
}

// Setting - process-wide key/value, admin writable
type Setting struct {
	Key   string `gorm:"primaryKey;size:64" json:"key"`
	Value string `gorm:"size:255" json:"value"`
}
