package settings

import (
	"testing"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRows(t *testing.T) {
	ctx, err := FromRows([]models.Setting{
		{Key: models.SettingTaxRate, Value: "7.5"},
		{Key: models.SettingLowStockThreshold, Value: " 3 "},
		{Key: "store_name", Value: "Corner Shop"},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.5").Equal(ctx.TaxRate))
	assert.Equal(t, 3, ctx.LowStockThreshold)
}

func TestFromRows_Defaults(t *testing.T) {
	ctx, err := FromRows(nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(ctx.TaxRate))
	assert.Equal(t, 10, ctx.LowStockThreshold)
}

func TestFromRows_Invalid(t *testing.T) {
	_, err := FromRows([]models.Setting{{Key: models.SettingTaxRate, Value: "ten"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = FromRows([]models.Setting{{Key: models.SettingLowStockThreshold, Value: "-1"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = ParseTaxRate("-2")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRowsRoundTrip(t *testing.T) {
	in := Context{TaxRate: decimal.RequireFromString("8.25"), LowStockThreshold: 4}
	out, err := FromRows(in.Rows())
	require.NoError(t, err)
	assert.True(t, in.TaxRate.Equal(out.TaxRate))
	assert.Equal(t, in.LowStockThreshold, out.LowStockThreshold)
}

func TestProvider(t *testing.T) {
	p := NewProvider(Defaults())
	snapshot := p.Current()

	p.Set(Context{TaxRate: decimal.NewFromInt(5), LowStockThreshold: 2})

	// an earlier snapshot is unaffected by later changes
	assert.True(t, decimal.NewFromInt(10).Equal(snapshot.TaxRate))
	assert.Equal(t, 2, p.Current().LowStockThreshold)
}
