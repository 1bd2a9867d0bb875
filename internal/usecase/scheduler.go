package usecase

import (
	"context"
	"log/slog"
	"time"

	"ReviewScanner/internal/ports"
)

// Scheduler wires the ticker driver with periodic re-analysis of watched products.
type Scheduler struct {
	driver   ports.Scheduler
	service  *Service
	products []string
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring watchlist scans.
func NewScheduler(driver ports.Scheduler, service *Service, products []string, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, service: service, products: products, logger: logger}
}

// Start registers the watchlist job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.service == nil || len(s.products) == 0 {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.RunOnce(ctx, trigger)
	})
}

// RunOnce analyses every watched product once. Failures are logged per product.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) {
	for _, product := range s.products {
		if ctx.Err() != nil {
			return
		}
		result, err := s.service.AnalyzeProduct(ctx, product)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("scheduled analysis failed", "product", product, "trigger", trigger, "error", err)
			}
			continue
		}
		if s.logger != nil {
			s.logger.Info("scheduled analysis done", "product", result.ProductID, "grade", result.Metrics.Grade)
		}
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
