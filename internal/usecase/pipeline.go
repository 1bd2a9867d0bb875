package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ReviewScanner/internal/aggregate"
	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/hybrid"
	"ReviewScanner/internal/model"
	"ReviewScanner/internal/ports"
	"ReviewScanner/internal/preprocess"
	"ReviewScanner/internal/rules"
)

// DefaultWorkers bounds per-review parallelism when no value is configured.
const DefaultWorkers = 8

// PipelineDeps wires the scoring components into the analysis pipeline.
// Nil fields fall back to default-configured components.
type PipelineDeps struct {
	Extractor  *preprocess.Extractor
	Rules      *rules.Scorer
	Classifier ports.Classifier
	Hybrid     *hybrid.Scorer
	Workers    int
	Clock      func() time.Time
	Logger     *slog.Logger
}

// Pipeline turns a batch of raw reviews into verdicts and aggregate metrics.
type Pipeline struct {
	extractor  *preprocess.Extractor
	rules      *rules.Scorer
	classifier ports.Classifier
	hybrid     *hybrid.Scorer
	workers    int
	clock      func() time.Time
	logger     *slog.Logger
}

// snapshotter is implemented by classifiers that can hand out a fixed view,
// so one batch is never scored by two different artifacts.
type snapshotter interface {
	Snapshot() ports.Classifier
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		extractor:  deps.Extractor,
		rules:      deps.Rules,
		classifier: deps.Classifier,
		hybrid:     deps.Hybrid,
		workers:    deps.Workers,
		clock:      deps.Clock,
		logger:     deps.Logger,
	}
	if p.extractor == nil {
		p.extractor = preprocess.NewExtractor(preprocess.DefaultConfig())
	}
	if p.rules == nil {
		p.rules = rules.NewScorer(rules.Config{})
	}
	if p.classifier == nil {
		p.classifier = model.Nop{}
	}
	if p.hybrid == nil {
		p.hybrid = hybrid.NewScorer(hybrid.DefaultConfig())
	}
	if p.workers <= 0 {
		p.workers = DefaultWorkers
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	return p
}

// Analyze scores every review and aggregates the batch. Defective input never
// fails the call; the only error is cancellation of ctx.
func (p *Pipeline) Analyze(ctx context.Context, productID string, reviews []domain.RawReview) (domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.AnalysisResult{}, err
	}

	started := time.Now()
	reviews = sanitize(reviews)
	clf := p.classifier
	if s, ok := clf.(snapshotter); ok {
		clf = s.Snapshot()
	}
	degraded := !clf.Available()

	p.debug("analysis started", "product", productID, "reviews", len(reviews), "degraded", degraded)

	vectors := make([]domain.FeatureVector, len(reviews))
	err := p.forEach(ctx, len(reviews), func(i int) {
		vectors[i] = p.extractor.Base(reviews[i])
	})
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("extract features: %w", err)
	}

	batch := p.extractor.BuildBatch(vectors)

	verdicts := make([]domain.Verdict, len(reviews))
	err = p.forEach(ctx, len(reviews), func(i int) {
		fv := batch.Apply(i, vectors[i])
		ruleScore := p.rules.Score(fv)
		modelScore := clf.Score(fv)
		verdicts[i] = p.hybrid.Combine(reviews[i].ID, fv, ruleScore, modelScore)
	})
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("score reviews: %w", err)
	}

	report := aggregate.Aggregate(reviews, verdicts, degraded)

	annotated := make([]domain.AnnotatedReview, len(reviews))
	for i := range reviews {
		annotated[i] = domain.AnnotatedReview{Review: reviews[i], Verdict: verdicts[i]}
	}

	result := domain.AnalysisResult{
		AnalysisID:   uuid.NewString(),
		ProductID:    productID,
		AnalyzedAt:   p.clock().UTC(),
		Metrics:      report.Metrics,
		Patterns:     report.Patterns,
		Distribution: report.Distribution,
		Summary:      report.Summary,
		Reviews:      annotated,
		Degraded:     degraded,
		ModelVersion: clf.Version(),
	}

	p.info("analysis finished",
		"product", productID,
		"reviews", result.Metrics.TotalReviews,
		"fake", result.Metrics.FakeCount,
		"grade", result.Metrics.Grade,
		"degraded", degraded,
		"elapsed", time.Since(started))

	return result, nil
}

// forEach runs fn for indices [0, n) on at most p.workers goroutines. Each
// call writes only its own slot, so no locking is needed.
func (p *Pipeline) forEach(ctx context.Context, n int, fn func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// sanitize copies the batch, clamps ratings and assigns unique identifiers.
// A repeated ID gets a #N suffix; N grows past the position until it is unused.
func sanitize(in []domain.RawReview) []domain.RawReview {
	out := make([]domain.RawReview, len(in))
	seen := make(map[string]bool, len(in))
	for i, r := range in {
		r.Rating = preprocess.ClampRating(r.Rating)
		if r.ID == "" {
			r.ID = fmt.Sprintf("auto-%03d", i+1)
		}
		if seen[r.ID] {
			base := r.ID
			for n := i + 1; seen[r.ID]; n++ {
				r.ID = fmt.Sprintf("%s#%d", base, n)
			}
		}
		seen[r.ID] = true
		out[i] = r
	}
	return out
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
