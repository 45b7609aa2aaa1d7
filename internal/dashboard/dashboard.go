// Package dashboard assembles the read-only summary shown on the landing
// screen.
package dashboard

import (
	"context"
	"time"

	"go-pos-ledger/internal/aggregate"
	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/report"
	"go-pos-ledger/internal/utils"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	RecentActivityLimit = 10
	TopProductsLimit    = 5
)

// Source supplies the record sets the summary is computed from.
type Source interface {
	ListSales(ctx context.Context) ([]models.Sale, error)
	ListExpenses(ctx context.Context) ([]models.Expense, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Input is the already-fetched data.
type Input struct {
	Sales    []models.Sale
	Expenses []models.Expense
	Products []models.Product
}

// ActivityItem is a feed entry with its relative time.
type ActivityItem struct {
	aggregate.Activity
	Ago string `json:"ago"`
}

// TopProduct is one row of the best-seller ranking.
type TopProduct struct {
	Name  string          `json:"name"`
	Units decimal.Decimal `json:"units"`
}

// Summary is the snapshot handed to the presentation layer.
type Summary struct {
	TotalSales     decimal.Decimal   `json:"total_sales"`
	TotalExpenses  decimal.Decimal   `json:"total_expenses"`
	TotalTax       decimal.Decimal   `json:"total_tax"`
	NetProfit      decimal.Decimal   `json:"net_profit"`
	LowStock       []models.Product  `json:"low_stock"`
	RecentActivity []ActivityItem    `json:"recent_activity"`
	TopProducts    []TopProduct      `json:"top_products"`
	SalesChart     report.Chart      `json:"sales_chart"`
	Formatted      map[string]string `json:"formatted"`
}

// Build computes the summary. It is pure: now is only used for the
// relative times in the feed, and loc for the daily chart buckets.
func Build(in Input, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}

	totalSales := aggregate.SumField(in.Sales, aggregate.SaleTotal)
	totalExpenses := aggregate.SumField(in.Expenses, aggregate.ExpenseAmount)
	totalTax := aggregate.SumField(in.Sales, aggregate.SaleTax)
	netProfit := totalSales.Sub(totalExpenses)

	feed := aggregate.RecentActivity(in.Sales, in.Expenses, in.Products, RecentActivityLimit)
	items := make([]ActivityItem, len(feed))
	for i, a := range feed {
		items[i] = ActivityItem{Activity: a, Ago: utils.TimeAgo(a.Timestamp, now)}
	}

	ranking := aggregate.TopProductsByUnits(in.Sales, TopProductsLimit)
	units := ranking.Values()
	top := make([]TopProduct, 0, ranking.Len())
	for i, name := range ranking.Labels() {
		top = append(top, TopProduct{Name: name, Units: units[i]})
	}

	daily := aggregate.GroupSumBy(aggregate.Chronological(in.Sales), func(s models.Sale) string {
		return s.SaleDate.In(loc).Format(report.DateLayout)
	}, aggregate.SaleTotal)

	lowStock := aggregate.FilterBelowThreshold(in.Products)

	return Summary{
		TotalSales:     totalSales,
		TotalExpenses:  totalExpenses,
		TotalTax:       totalTax,
		NetProfit:      netProfit,
		LowStock:       lowStock,
		RecentActivity: items,
		TopProducts:    top,
		SalesChart:     report.NewChart("Daily Sales", daily.Labels(), daily.Values()),
		Formatted: map[string]string{
			"total_sales":    utils.FormatCurrency(totalSales),
			"total_expenses": utils.FormatCurrency(totalExpenses),
			"total_tax":      utils.FormatCurrency(totalTax),
			"net_profit":     utils.FormatCurrency(netProfit),
		},
	}
}

// Load fetches the three record sets concurrently and builds the summary
// once all of them have arrived. The first failed fetch cancels the others
// and is returned wrapped in apperrors.ErrUpstream.
func Load(ctx context.Context, src Source, now time.Time, loc *time.Location) (Summary, error) {
	var in Input

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sales, err := src.ListSales(gctx)
		if err != nil {
			return errors.Wrapf(apperrors.ErrUpstream, "load sales: %v", err)
		}
		in.Sales = sales
		return nil
	})
	g.Go(func() error {
		expenses, err := src.ListExpenses(gctx)
		if err != nil {
			return errors.Wrapf(apperrors.ErrUpstream, "load expenses: %v", err)
		}
		in.Expenses = expenses
		return nil
	})
	g.Go(func() error {
		products, err := src.ListProducts(gctx)
		if err != nil {
			return errors.Wrapf(apperrors.ErrUpstream, "load products: %v", err)
		}
		in.Products = products
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return Build(in, now, loc), nil
}
