package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/ports"
	"ReviewScanner/internal/scanner"
)

// StrategySource implements ReviewSource via registered scanner strategies.
// Strategies are tried in order until one returns at least one review.
type StrategySource struct {
	registry   *scanner.Registry
	strategies []string
	logger     *slog.Logger
}

var _ ports.ReviewSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the configured strategy chain.
func NewStrategySource(reg *scanner.Registry, strategies []string, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry:   reg,
		strategies: strategies,
		logger:     log,
	}
}

// FetchReviews resolves each strategy and returns the first non-empty result.
func (s *StrategySource) FetchReviews(ctx context.Context, product domain.ProductRef) ([]domain.RawReview, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if len(s.strategies) == 0 {
		return nil, fmt.Errorf("no review strategies configured")
	}

	var errs []error
	for _, name := range s.strategies {
		strategy, err := s.registry.Resolve(name)
		if err != nil {
			return nil, err
		}

		s.debug("fetch reviews", "strategy", name, "asin", product.ASIN)
		reviews, err := strategy.FetchReviews(ctx, product)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.warn("strategy failed", "strategy", name, "asin", product.ASIN, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if len(reviews) == 0 {
			s.debug("strategy returned no reviews", "strategy", name, "asin", product.ASIN)
			continue
		}

		s.debug("strategy produced reviews", "strategy", name, "count", len(reviews))
		return reviews, nil
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
