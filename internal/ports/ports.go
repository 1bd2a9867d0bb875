package ports

import (
	"context"
	"time"

	"ReviewScanner/internal/domain"
)

// ReviewSource pulls raw reviews for a product from an upstream provider.
type ReviewSource interface {
	FetchReviews(ctx context.Context, product domain.ProductRef) ([]domain.RawReview, error)
}

// Classifier scores review text with a learned model. Implementations must be
// safe for concurrent use and report Available() == false when no model is loaded.
type Classifier interface {
	Score(fv domain.FeatureVector) domain.SubScore
	Available() bool
	Version() string
}

// AnalysisRepository persists finished analyses for later lookup.
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, result domain.AnalysisResult) error
	LatestAnalysis(ctx context.Context, productID string) (domain.StoredAnalysis, bool, error)
}

// Notifier streams analysis digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
