// Package settings holds the process-wide tax rate and low-stock threshold as
// an immutable snapshot. Engine calls receive a Context value; the Provider
// swaps in a fresh snapshot after an admin changes a setting.
package settings

import (
	"strconv"
	"strings"
	"sync/atomic"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DefaultTaxRate           = 10
	DefaultLowStockThreshold = 10
)

// Context is the read-only configuration an engine call runs against.
type Context struct {
	TaxRate           decimal.Decimal `json:"tax_rate"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

// Defaults is the snapshot used before anything was stored.
func Defaults() Context {
	return Context{
		TaxRate:           decimal.NewFromInt(DefaultTaxRate),
		LowStockThreshold: DefaultLowStockThreshold,
	}
}

// FromRows builds a Context from stored key/value rows. Unknown keys are
// ignored and missing keys keep their defaults.
func FromRows(rows []models.Setting) (Context, error) {
	ctx := Defaults()
	for _, row := range rows {
		switch row.Key {
		case models.SettingTaxRate:
			rate, err := ParseTaxRate(row.Value)
			if err != nil {
				return Context{}, err
			}
			ctx.TaxRate = rate
		case models.SettingLowStockThreshold:
			threshold, err := ParseThreshold(row.Value)
			if err != nil {
				return Context{}, err
			}
			ctx.LowStockThreshold = threshold
		}
	}
	return ctx, nil
}

// Rows is the inverse of FromRows.
func (c Context) Rows() []models.Setting {
	return []models.Setting{
		{Key: models.SettingTaxRate, Value: c.TaxRate.String()},
		{Key: models.SettingLowStockThreshold, Value: strconv.Itoa(c.LowStockThreshold)},
	}
}

// ParseTaxRate reads a percentage such as "7.5".
func ParseTaxRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.Wrapf(apperrors.ErrInvalidInput, "tax rate %q", s)
	}
	if rate.IsNegative() {
		return decimal.Zero, errors.Wrapf(apperrors.ErrInvalidInput, "tax rate %s is negative", rate)
	}
	return rate, nil
}

// ParseThreshold reads a non-negative integer threshold.
func ParseThreshold(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(apperrors.ErrInvalidInput, "low stock threshold %q", s)
	}
	if n < 0 {
		return 0, errors.Wrapf(apperrors.ErrInvalidInput, "low stock threshold %d is negative", n)
	}
	return n, nil
}

// Provider hands out the current snapshot. It is safe for concurrent use.
type Provider struct {
	current atomic.Pointer[Context]
}

// NewProvider starts from initial.
func NewProvider(initial Context) *Provider {
	p := &Provider{}
	p.Set(initial)
	return p
}

// Current returns the snapshot in force.
func (p *Provider) Current() Context {
	return *p.current.Load()
}

// Set replaces the snapshot.
func (p *Provider) Set(c Context) {
	p.current.Store(&c)
}
