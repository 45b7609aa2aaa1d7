// Package jobs runs the periodic background work: reloading the settings
// snapshot and flagging products that dropped below their threshold.
package jobs

import (
	"context"
	"time"

	"go-pos-ledger/internal/aggregate"
	"go-pos-ledger/internal/metrics"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/settings"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Store is what the sweep reads.
type Store interface {
	ListSettings(ctx context.Context) ([]models.Setting, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Sweeper refreshes the settings snapshot and reports low stock.
type Sweeper struct {
	store    Store
	settings *settings.Provider
	metrics  *metrics.Metrics
	timeout  time.Duration
}

func NewSweeper(store Store, provider *settings.Provider, m *metrics.Metrics) *Sweeper {
	return &Sweeper{store: store, settings: provider, metrics: m, timeout: 30 * time.Second}
}

// Run does one pass and returns the products that are low on stock.
func (s *Sweeper) Run(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "reload settings")
	}
	cfg, err := settings.FromRows(rows)
	if err != nil {
		return nil, errors.WithMessage(err, "stored settings are invalid")
	}
	s.settings.Set(cfg)

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "list products")
	}
	low := aggregate.FilterBelowThreshold(products)
	s.metrics.SetLowStock(len(low))

	for _, p := range low {
		log.WithFields(log.Fields{
			"product_id": p.ID,
			"product":    p.Name,
			"stock":      p.Stock,
			"threshold":  p.LowStockThreshold,
		}).Warn("product is low on stock")
	}
	return low, nil
}

// Start schedules Run every interval on a gocron scheduler, first run
// immediately. Stop the returned scheduler on shutdown.
func Start(s *Sweeper, interval time.Duration, loc *time.Location) (*gocron.Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	scheduler := gocron.NewScheduler(loc)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(interval).Do(func() {
		if _, err := s.Run(context.Background()); err != nil {
			log.WithError(err).Error("low stock sweep failed")
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "schedule low stock sweep")
	}

	scheduler.StartAsync()
	return scheduler, nil
}
