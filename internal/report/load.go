package report

import (
	"context"

	"go-pos-ledger/internal/models"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Source reads the records a report needs. Sales come with Product and
// Customer loaded.
type Source interface {
	ListSalesIn(ctx context.Context, rng Range) ([]models.Sale, error)
	ListExpensesIn(ctx context.Context, rng Range) ([]models.Expense, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Load fetches only the record sets kind reads and builds the report.
func Load(ctx context.Context, src Source, kind Kind, rng Range) (Report, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Report{}, err
	}

	var ds Dataset
	g, gctx := errgroup.WithContext(ctx)
	if kind != Inventory && kind != Expenses {
		g.Go(func() error {
			sales, err := src.ListSalesIn(gctx, rng)
			ds.Sales = sales
			return errors.WithMessage(err, "load sales")
		})
	}
	if kind == Expenses || kind == ProfitLoss {
		g.Go(func() error {
			expenses, err := src.ListExpensesIn(gctx, rng)
			ds.Expenses = expenses
			return errors.WithMessage(err, "load expenses")
		})
	}
	if kind == Inventory {
		g.Go(func() error {
			products, err := src.ListProducts(gctx)
			ds.Products = products
			return errors.WithMessage(err, "load products")
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return Build(kind, rng, ds)
}
