package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ReviewScanner/internal/asin"
	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/ports"
)

// DefaultMaxReviews caps how many reviews one request analyses.
const DefaultMaxReviews = 500

var (
	// ErrInvalidProduct is returned when no ASIN can be extracted from the input.
	ErrInvalidProduct = errors.New("could not extract a product identifier")
	// ErrNoReviews is returned when the source yields no reviews for a product.
	ErrNoReviews = errors.New("no reviews found for product")
	// ErrNotFound is returned when no stored analysis exists.
	ErrNotFound = errors.New("analysis not found")
	// ErrSourceUnavailable is returned when no review source is configured.
	ErrSourceUnavailable = errors.New("review source is not configured")
)

// ServiceDeps wires the pipeline with its driven adapters.
type ServiceDeps struct {
	Pipeline       *Pipeline
	Source         ports.ReviewSource
	Repository     ports.AnalysisRepository
	Notifier       ports.Notifier
	NotifyMinGrade domain.Grade
	MaxReviews     int
	Logger         *slog.Logger
}

// Service exposes product-level analysis on top of the pipeline.
type Service struct {
	pipeline       *Pipeline
	source         ports.ReviewSource
	repository     ports.AnalysisRepository
	notifier       ports.Notifier
	notifyMinGrade domain.Grade
	maxReviews     int
	logger         *slog.Logger
}

// NewService constructs the product analysis service.
func NewService(deps ServiceDeps) *Service {
	s := &Service{
		pipeline:       deps.Pipeline,
		source:         deps.Source,
		repository:     deps.Repository,
		notifier:       deps.Notifier,
		notifyMinGrade: deps.NotifyMinGrade,
		maxReviews:     deps.MaxReviews,
		logger:         deps.Logger,
	}
	if s.pipeline == nil {
		s.pipeline = NewPipeline(PipelineDeps{Logger: deps.Logger})
	}
	if s.maxReviews <= 0 {
		s.maxReviews = DefaultMaxReviews
	}
	if s.notifyMinGrade == "" {
		s.notifyMinGrade = domain.GradeD
	}
	return s
}

// SourceConfigured reports whether reviews can be fetched by product.
func (s *Service) SourceConfigured() bool {
	return s.source != nil
}

// AnalyzeProduct resolves input to an ASIN, fetches its reviews and analyses them.
func (s *Service) AnalyzeProduct(ctx context.Context, input string) (domain.AnalysisResult, error) {
	id, ok := asin.Extract(input)
	if !ok {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %q", ErrInvalidProduct, input)
	}
	if s.source == nil {
		return domain.AnalysisResult{}, ErrSourceUnavailable
	}

	ref := domain.ProductRef{ASIN: id}
	if asin.IsURL(input) {
		ref.URL = strings.TrimSpace(input)
	}

	raws, err := s.source.FetchReviews(ctx, ref)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("fetch reviews for %s: %w", id, err)
	}
	if len(raws) == 0 {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %s", ErrNoReviews, id)
	}

	return s.AnalyzeReviews(ctx, id, raws)
}

// AnalyzeReviews runs the pipeline over already collected reviews, then stores
// and announces the result. Storage and notification failures are logged only.
func (s *Service) AnalyzeReviews(ctx context.Context, productID string, raws []domain.RawReview) (domain.AnalysisResult, error) {
	if len(raws) > s.maxReviews {
		s.debug("truncating batch", "product", productID, "received", len(raws), "limit", s.maxReviews)
		raws = raws[:s.maxReviews]
	}

	result, err := s.pipeline.Analyze(ctx, productID, raws)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("analyze %s: %w", productID, err)
	}

	if s.repository != nil {
		if err := s.repository.SaveAnalysis(ctx, result); err != nil {
			s.warn("persist analysis failed", "product", productID, "analysis", result.AnalysisID, "error", err)
		}
	}

	if s.notifier != nil && s.shouldNotify(result.Metrics.Grade) {
		if err := s.notifier.PublishDigest(ctx, buildDigestMessage(result)); err != nil {
			s.warn("publish digest failed", "product", productID, "error", err)
		}
	}

	return result, nil
}

// Latest returns the most recent stored analysis for a product.
func (s *Service) Latest(ctx context.Context, input string) (domain.StoredAnalysis, error) {
	id, ok := asin.Extract(input)
	if !ok {
		id = strings.TrimSpace(input)
	}
	if s.repository == nil {
		return domain.StoredAnalysis{}, ErrNotFound
	}

	stored, found, err := s.repository.LatestAnalysis(ctx, id)
	if err != nil {
		return domain.StoredAnalysis{}, fmt.Errorf("load latest analysis for %s: %w", id, err)
	}
	if !found {
		return domain.StoredAnalysis{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return stored, nil
}

func (s *Service) shouldNotify(grade domain.Grade) bool {
	if grade == domain.GradeNotApplicable {
		return false
	}
	return grade.Rank() >= s.notifyMinGrade.Rank()
}

func buildDigestMessage(result domain.AnalysisResult) string {
	m := result.Metrics
	pct := 0.0
	if m.FakePercentage != nil {
		pct = *m.FakePercentage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Review authenticity alert*\nProduct: %s\nGrade: %s (%s)\nSuspicious reviews: %d of %d (%.1f%%)\n",
		result.ProductID, m.Grade, m.GradeDescription, m.FakeCount, m.TotalReviews, pct)

	if m.OriginalRating != nil && m.AdjustedRating != nil {
		fmt.Fprintf(&b, "Rating: %.2f, adjusted %.2f\n", *m.OriginalRating, *m.AdjustedRating)
	}

	for i, p := range result.Patterns {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "- %s: %d\n", p.Description, p.Frequency)
	}
	return b.String()
}

func (s *Service) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Service) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
