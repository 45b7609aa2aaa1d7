package aggregate

import (
	"fmt"
	"sort"
	"time"

	"go-pos-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// Activity types in the merged feed.
const (
	ActivitySale    = "sale"
	ActivityExpense = "expense"
	ActivityProduct = "product"
)

// Activity is the common shape the three record streams are mapped into.
type Activity struct {
	Type      string           `json:"type"`
	Title     string           `json:"title"`
	Timestamp time.Time        `json:"timestamp"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

// RecentActivity merges sales, expenses and newly added products into one
// feed, newest first. Entries with the same timestamp keep stream order
// (sales, then expenses, then products). limit <= 0 keeps everything.
func RecentActivity(sales []models.Sale, expenses []models.Expense, products []models.Product, limit int) []Activity {
	feed := make([]Activity, 0, len(sales)+len(expenses)+len(products))

	for _, s := range sales {
		total := s.Total
		feed = append(feed, Activity{
			Type:      ActivitySale,
			Title:     saleTitle(s),
			Timestamp: s.SaleDate,
			Amount:    &total,
		})
	}
	for _, e := range expenses {
		amount := e.Amount
		feed = append(feed, Activity{
			Type:      ActivityExpense,
			Title:     "Expense: " + e.Description,
			Timestamp: e.ExpenseDate,
			Amount:    &amount,
		})
	}
	for _, p := range products {
		feed = append(feed, Activity{
			Type:      ActivityProduct,
			Title:     "New product: " + p.Name,
			Timestamp: p.CreatedAt,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})

	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}
	return feed
}

func saleTitle(s models.Sale) string {
	name := s.Product.Name
	if name == "" {
		name = fmt.Sprintf("product #%d", s.ProductID)
	}
	return fmt.Sprintf("Sale: %d x %s", s.Quantity, name)
}

// Chronological returns the sales ordered oldest first without touching the
// caller's slice. Sales with the same date keep their relative order.
func Chronological(sales []models.Sale) []models.Sale {
	out := make([]models.Sale, len(sales))
	copy(out, sales)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SaleDate.Before(out[j].SaleDate)
	})
	return out
}
