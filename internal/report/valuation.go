package report

import (
	"go-pos-ledger/internal/aggregate"
	"go-pos-ledger/internal/models"

	"github.com/shopspring/decimal"
)

const Uncategorized = "Uncategorized"

// ValuationItem represents a single row in the stock valuation table
type ValuationItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// CategoryGroup is one table of the valuation, e.g. "Drinks".
type CategoryGroup struct {
	Category string          `json:"category"`
	Items    []ValuationItem `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Valuation is the monetary value of everything on the shelves.
type Valuation struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

func categoryOf(p models.Product) string {
	if p.Category == "" {
		return Uncategorized
	}
	return p.Category
}

// NewValuation groups current stock by category in first-seen order.
func NewValuation(products []models.Product) Valuation {
	subtotals := aggregate.GroupSumBy(products, categoryOf, aggregate.InventoryValue)

	index := make(map[string]int, subtotals.Len())
	groups := make([]CategoryGroup, subtotals.Len())
	for i, category := range subtotals.Labels() {
		index[category] = i
		sub, _ := subtotals.Get(category)
		groups[i] = CategoryGroup{Category: category, Items: []ValuationItem{}, Subtotal: sub}
	}

	for _, p := range products {
		g := &groups[index[categoryOf(p)]]
		g.Items = append(g.Items, ValuationItem{
			Name:     p.Name,
			Quantity: p.Stock,
			Price:    p.Price,
			Total:    aggregate.InventoryValue(p),
		})
	}

	return Valuation{Categories: groups, GrandTotal: subtotals.Total()}
}
