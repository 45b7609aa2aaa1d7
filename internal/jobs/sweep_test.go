package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/metrics"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/settings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	settings []models.Setting
	products []models.Product
	err      error
	runs     atomic.Int32
}

func (f *fakeStore) ListSettings(context.Context) ([]models.Setting, error) {
	f.runs.Add(1)
	return f.settings, f.err
}

func (f *fakeStore) ListProducts(context.Context) ([]models.Product, error) {
	return f.products, f.err
}

func TestRun(t *testing.T) {
	store := &fakeStore{
		settings: []models.Setting{{Key: models.SettingTaxRate, Value: "5"}},
		products: []models.Product{
			{ID: 1, Name: "Milk", Stock: 2, LowStockThreshold: 5},
			{ID: 2, Name: "Bread", Stock: 5, LowStockThreshold: 5},
		},
	}
	provider := settings.NewProvider(settings.Defaults())
	m := metrics.New(prometheus.NewRegistry())

	low, err := NewSweeper(store, provider, m).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, low, 1)
	assert.Equal(t, "Milk", low[0].Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LowStockProducts))
	assert.Equal(t, "5", provider.Current().TaxRate.String())
	assert.Equal(t, settings.DefaultLowStockThreshold, provider.Current().LowStockThreshold)
}

func TestRun_KeepsSnapshotOnBadRows(t *testing.T) {
	store := &fakeStore{settings: []models.Setting{{Key: models.SettingTaxRate, Value: "-1"}}}
	provider := settings.NewProvider(settings.Defaults())

	_, err := NewSweeper(store, provider, metrics.New(prometheus.NewRegistry())).Run(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, "10", provider.Current().TaxRate.String())
}

func TestRun_StoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.Wrap(apperrors.ErrUpstream, "db down")}
	_, err := NewSweeper(store, settings.NewProvider(settings.Defaults()), metrics.New(prometheus.NewRegistry())).Run(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestStart_RunsImmediately(t *testing.T) {
	store := &fakeStore{}
	sweeper := NewSweeper(store, settings.NewProvider(settings.Defaults()), metrics.New(prometheus.NewRegistry()))

	scheduler, err := Start(sweeper, time.Hour, time.UTC)
	require.NoError(t, err)
	defer scheduler.Stop()

	assert.Eventually(t, func() bool { return store.runs.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
