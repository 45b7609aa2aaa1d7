// Package report turns a report kind and a date range into chart-ready
// labels and values plus a display table.
package report

import (
	"strings"
	"time"

	"go-pos-ledger/internal/aggregate"
	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/utils"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Kind selects the aggregation a report runs.
type Kind string

const (
	Sales      Kind = "sales"
	Expenses   Kind = "expenses"
	ProfitLoss Kind = "profit-loss"
	Inventory  Kind = "inventory"
	Customers  Kind = "customers"
	Tax        Kind = "tax"
)

// Kinds lists every supported report in menu order.
var Kinds = []Kind{Sales, Expenses, ProfitLoss, Inventory, Customers, Tax}

// ParseKind validates a kind coming from a request.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", errors.Wrapf(apperrors.ErrInvalidInput, "unknown report kind %q", s)
}

// Range is an inclusive span of calendar days in Location.
type Range struct {
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// ParseRange reads two YYYY-MM-DD bounds. Both are required.
func ParseRange(start, end string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return Range{}, errors.Wrap(apperrors.ErrInvalidRange, "both start and end dates are required")
	}

	s, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return Range{}, errors.Wrapf(apperrors.ErrInvalidRange, "start date %q", start)
	}
	e, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return Range{}, errors.Wrapf(apperrors.ErrInvalidRange, "end date %q", end)
	}
	if s.After(e) {
		return Range{}, errors.Wrapf(apperrors.ErrInvalidRange, "start %s is after end %s", start, end)
	}
	return Range{Start: s, End: e, Location: loc}, nil
}

// Until is the first instant after the range.
func (r Range) Until() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// Contains reports whether t falls on one of the range's days.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.Until())
}

// DateKey is the calendar-day label for t.
func (r Range) DateKey(t time.Time) string {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// Dataset is the already-fetched records a report is built from. Sales
// must have their Product and Customer loaded.
type Dataset struct {
	Sales    []models.Sale
	Expenses []models.Expense
	Products []models.Product
}

// Report is the output handed to the chart and the table.
type Report struct {
	Kind   Kind              `json:"kind"`
	Title  string            `json:"title"`
	Header string            `json:"header"`
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
}

// Build runs the aggregation for kind over the records that fall inside rng.
// Inventory ignores the range: it reflects current stock only.
func Build(kind Kind, rng Range, ds Dataset) (Report, error) {
	if rng.Start.IsZero() || rng.End.IsZero() {
		return Report{}, errors.Wrap(apperrors.ErrInvalidRange, "both start and end dates are required")
	}

	// Date axes read left to right, whatever order the store returned.
	sales := aggregate.Chronological(aggregate.Filter(ds.Sales, func(s models.Sale) bool { return rng.Contains(s.SaleDate) }))
	expenses := aggregate.Filter(ds.Expenses, func(e models.Expense) bool { return rng.Contains(e.ExpenseDate) })
	byDate := func(s models.Sale) string { return rng.DateKey(s.SaleDate) }

	var (
		grouped *aggregate.Grouped
		title   string
		header  string
	)

	switch kind {
	case Sales:
		grouped, title, header = aggregate.GroupSumBy(sales, byDate, aggregate.SaleTotal), "Sales Report", "Date"
	case Expenses:
		byCategory := func(e models.Expense) string { return e.Category }
		grouped, title, header = aggregate.GroupSumBy(expenses, byCategory, aggregate.ExpenseAmount), "Expenses by Category", "Category"
	case ProfitLoss:
		totalSales := aggregate.SumField(sales, aggregate.SaleTotal)
		totalExpenses := aggregate.SumField(expenses, aggregate.ExpenseAmount)
		return Report{
			Kind:   kind,
			Title:  "Profit & Loss Report",
			Header: "Category",
			Labels: []string{"Sales", "Expenses", "Net Profit"},
			Values: []decimal.Decimal{totalSales, totalExpenses, totalSales.Sub(totalExpenses)},
		}, nil
	case Inventory:
		byName := func(p models.Product) string { return p.Name }
		grouped, title, header = aggregate.GroupSumBy(ds.Products, byName, aggregate.InventoryValue), "Inventory Value", "Product"
	case Customers:
		byCustomer := func(s models.Sale) string { return s.Customer.Name }
		grouped, title, header = aggregate.GroupSumBy(sales, byCustomer, aggregate.SaleTotal), "Customer Purchases", "Customer"
	case Tax:
		grouped, title, header = aggregate.GroupSumBy(sales, byDate, aggregate.SaleTax), "Tax Collected", "Date"
	default:
		return Report{}, errors.Wrapf(apperrors.ErrInvalidInput, "unknown report kind %q", kind)
	}

	return Report{
		Kind:   kind,
		Title:  title,
		Header: header,
		Labels: grouped.Labels(),
		Values: grouped.Values(),
	}, nil
}

// Row is one line of the report table.
type Row struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Text   string          `json:"text"`
}

// Table renders the rows shown under the chart.
func (r Report) Table() []Row {
	labels := r.Labels
	if r.Kind == ProfitLoss {
		labels = []string{"Total Sales", "Total Expenses", "Net Profit"}
	}

	rows := make([]Row, 0, len(labels))
	for i, label := range labels {
		if i >= len(r.Values) {
			break
		}
		rows = append(rows, Row{Label: label, Amount: r.Values[i], Text: utils.FormatCurrency(r.Values[i])})
	}
	return rows
}

// ChartDataset is one series of a chart.
type ChartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// Chart is the {labels, datasets} pair the chart widget consumes.
type Chart struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// NewChart builds a single-series chart. Values become floats here and only
// here; the widget cannot take decimals.
func NewChart(label string, labels []string, values []decimal.Decimal) Chart {
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = v.Round(2).InexactFloat64()
	}
	if labels == nil {
		labels = []string{}
	}
	return Chart{Labels: labels, Datasets: []ChartDataset{{Label: label, Data: data}}}
}

// Chart returns the report as chart data.
func (r Report) Chart() Chart {
	return NewChart(r.Title, r.Labels, r.Values)
}
