// Package aggregate reduces in-memory record sets for the dashboard and the
// reports: grouped sums in first-seen key order, plain reductions, low-stock
// filtering and the merged recent-activity feed.
package aggregate

import (
	"sort"

	"go-pos-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// Grouped is an ordered key -> sum mapping. Keys keep the order in which
// they were first seen unless the caller sorts.
type Grouped struct {
	keys []string
	sums map[string]decimal.Decimal
}

// NewGrouped returns an empty mapping.
func NewGrouped() *Grouped {
	return &Grouped{sums: make(map[string]decimal.Decimal)}
}

// Add accumulates value under key.
func (g *Grouped) Add(key string, value decimal.Decimal) {
	sum, ok := g.sums[key]
	if !ok {
		g.keys = append(g.keys, key)
	}
	g.sums[key] = sum.Add(value)
}

// Get returns the sum for key and whether the key was seen.
func (g *Grouped) Get(key string) (decimal.Decimal, bool) {
	v, ok := g.sums[key]
	return v, ok
}

func (g *Grouped) Len() int { return len(g.keys) }

// Labels returns the keys in display order.
func (g *Grouped) Labels() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Values returns the sums aligned with Labels.
func (g *Grouped) Values() []decimal.Decimal {
	out := make([]decimal.Decimal, len(g.keys))
	for i, k := range g.keys {
		out[i] = g.sums[k]
	}
	return out
}

// Total is the sum of all group sums.
func (g *Grouped) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range g.sums {
		total = total.Add(v)
	}
	return total
}

// SortedDesc returns a copy ordered by sum, largest first. Equal sums keep
// their first-seen order.
func (g *Grouped) SortedDesc() *Grouped {
	out := &Grouped{keys: g.Labels(), sums: make(map[string]decimal.Decimal, len(g.sums))}
	for k, v := range g.sums {
		out.sums[k] = v
	}
	sort.SliceStable(out.keys, func(i, j int) bool {
		return out.sums[out.keys[i]].GreaterThan(out.sums[out.keys[j]])
	})
	return out
}

// Top returns a copy truncated to the first n keys.
func (g *Grouped) Top(n int) *Grouped {
	if n < 0 || n >= len(g.keys) {
		n = len(g.keys)
	}
	out := &Grouped{keys: make([]string, n), sums: make(map[string]decimal.Decimal, n)}
	copy(out.keys, g.keys[:n])
	for _, k := range out.keys {
		out.sums[k] = g.sums[k]
	}
	return out
}

// GroupSumBy folds records into per-key sums.
func GroupSumBy[T any](records []T, keyFn func(T) string, valueFn func(T) decimal.Decimal) *Grouped {
	g := NewGrouped()
	for _, r := range records {
		g.Add(keyFn(r), valueFn(r))
	}
	return g
}

// SumField adds valueFn over every record.
func SumField[T any](records []T, valueFn func(T) decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(valueFn(r))
	}
	return sum
}

// AverageField is the mean of valueFn; an empty input averages to zero.
func AverageField[T any](records []T, valueFn func(T) decimal.Decimal) decimal.Decimal {
	if len(records) == 0 {
		return decimal.Zero
	}
	return SumField(records, valueFn).Div(decimal.NewFromInt(int64(len(records))))
}

// Filter keeps the records for which keep returns true, preserving order.
func Filter[T any](records []T, keep func(T) bool) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterAbove keeps records whose value is strictly greater than threshold.
func FilterAbove[T any](records []T, valueFn func(T) decimal.Decimal, threshold decimal.Decimal) []T {
	return Filter(records, func(r T) bool { return valueFn(r).GreaterThan(threshold) })
}

// FilterBelowThreshold returns the products whose stock is strictly below
// their own low-stock threshold.
func FilterBelowThreshold(products []models.Product) []models.Product {
	return Filter(products, models.Product.IsLowStock)
}

// Field accessors used by the reports and the dashboard.
func SaleTotal(s models.Sale) decimal.Decimal { return s.Total }

func SaleTax(s models.Sale) decimal.Decimal { return s.TaxAmount }

func ExpenseAmount(e models.Expense) decimal.Decimal { return e.Amount }

// SaleUnits is the quantity of a sale as a decimal, for unit rankings.
func SaleUnits(s models.Sale) decimal.Decimal {
	return decimal.NewFromInt(int64(s.Quantity))
}

// InventoryValue is stock times unit price.
func InventoryValue(p models.Product) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// TopProductsByUnits ranks product names by units sold, largest first, and
// keeps the first n.
func TopProductsByUnits(sales []models.Sale, n int) *Grouped {
	byProduct := GroupSumBy(sales, func(s models.Sale) string { return s.Product.Name }, SaleUnits)
	return byProduct.SortedDesc().Top(n)
}
