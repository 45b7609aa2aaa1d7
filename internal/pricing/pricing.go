// Package pricing computes sale totals: subtotal, discount, tax and total.
//
// Every amount is kept at full decimal precision. Rounding to cents happens
// only when a value is presented, so chained sums never drift.
package pricing

import (
	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/utils"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Kind tells how a discount value is read.
type Kind string

const (
	Percentage Kind = models.DiscountPercentage
	Fixed      Kind = models.DiscountFixed
)

// Discount is the descriptor applied to a subtotal. Percentage values are
// 0-100 of the subtotal; fixed values are a currency amount.
type Discount struct {
	Kind  Kind
	Value decimal.Decimal
}

// FromModel converts a stored discount row.
func FromModel(d *models.Discount) *Discount {
	if d == nil {
		return nil
	}
	return &Discount{Kind: Kind(d.Type), Value: d.Value}
}

// Totals is the result of a price computation.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	AfterDiscount  decimal.Decimal `json:"after_discount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Rounded returns a copy rounded half-away-from-zero to cents for display.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:       t.Subtotal.Round(2),
		DiscountAmount: t.DiscountAmount.Round(2),
		AfterDiscount:  t.AfterDiscount.Round(2),
		TaxAmount:      t.TaxAmount.Round(2),
		Total:          t.Total.Round(2),
	}
}

// ComputeSaleTotals prices quantity units at unitPrice, applies the optional
// discount and then taxes the discounted amount at taxRatePercent.
//
// The applied discount never exceeds the subtotal, so the amount after
// discount (and therefore the total) is never negative.
func ComputeSaleTotals(unitPrice decimal.Decimal, quantity int, discount *Discount, taxRatePercent decimal.Decimal) (Totals, error) {
	if quantity <= 0 {
		return Totals{}, errors.Wrapf(apperrors.ErrInvalidInput, "quantity must be positive, got %d", quantity)
	}
	if unitPrice.IsNegative() {
		return Totals{}, errors.Wrapf(apperrors.ErrInvalidInput, "unit price must not be negative, got %s", unitPrice)
	}
	if taxRatePercent.IsNegative() {
		return Totals{}, errors.Wrapf(apperrors.ErrInvalidInput, "tax rate must not be negative, got %s", taxRatePercent)
	}

	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	discountAmount, err := discountFor(subtotal, discount)
	if err != nil {
		return Totals{}, err
	}
	if discountAmount.GreaterThan(subtotal) {
		discountAmount = subtotal
	}

	afterDiscount := subtotal.Sub(discountAmount)
	taxAmount := afterDiscount.Mul(taxRatePercent).Div(hundred)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		AfterDiscount:  afterDiscount,
		TaxAmount:      taxAmount,
		Total:          afterDiscount.Add(taxAmount),
	}, nil
}

func discountFor(subtotal decimal.Decimal, d *Discount) (decimal.Decimal, error) {
	if d == nil {
		return decimal.Zero, nil
	}
	if d.Value.IsNegative() {
		return decimal.Zero, errors.Wrapf(apperrors.ErrInvalidInput, "discount value must not be negative, got %s", d.Value)
	}

	switch d.Kind {
	case Percentage:
		return subtotal.Mul(d.Value).Div(hundred), nil
	case Fixed:
		return d.Value, nil
	default:
		return decimal.Zero, errors.Wrapf(apperrors.ErrInvalidInput, "unknown discount kind %q", d.Kind)
	}
}

// ValidKind reports whether s names a supported discount kind.
func ValidKind(s string) bool {
	return Kind(s) == Percentage || Kind(s) == Fixed
}

// Label is how a discount is offered in the sale form: "Spring (10%)" or
// "Voucher ($5.00)".
func Label(d models.Discount) string {
	if Kind(d.Type) == Percentage {
		return d.Name + " (" + utils.FormatPercent(d.Value) + ")"
	}
	return d.Name + " (" + utils.FormatCurrency(d.Value) + ")"
}
