package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ReviewScanner/internal/domain"
)

type recordingSource struct {
	reviews []domain.RawReview
	err     error
	got     domain.ProductRef
}

func (s *recordingSource) FetchReviews(_ context.Context, ref domain.ProductRef) ([]domain.RawReview, error) {
	s.got = ref
	return s.reviews, s.err
}

type recordingRepo struct {
	saved []domain.AnalysisResult
	err   error
}

func (r *recordingRepo) SaveAnalysis(_ context.Context, res domain.AnalysisResult) error {
	r.saved = append(r.saved, res)
	return r.err
}

func (r *recordingRepo) LatestAnalysis(_ context.Context, id string) (domain.StoredAnalysis, bool, error) {
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].ProductID == id {
			return domain.StoredAnalysis{AnalysisID: r.saved[i].AnalysisID, ProductID: id}, true, nil
		}
	}
	return domain.StoredAnalysis{}, false, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, digest)
	return nil
}

func TestAnalyzeProductFlow(t *testing.T) {
	t.Parallel()

	source := &recordingSource{reviews: duplicateReviews(6)}
	repo := &recordingRepo{err: errors.New("disk full")}
	notifier := &recordingNotifier{}
	svc := NewService(ServiceDeps{Source: source, Repository: repo, Notifier: notifier})

	result, err := svc.AnalyzeProduct(context.Background(), "https://www.amazon.com/Some-Kettle/dp/b0svcflow1?th=1")
	if err != nil {
		t.Fatalf("AnalyzeProduct error: %v", err)
	}
	if result.ProductID != "B0SVCFLOW1" || source.got.ASIN != "B0SVCFLOW1" || source.got.URL == "" {
		t.Fatalf("unexpected product resolution: %q %+v", result.ProductID, source.got)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected a persistence attempt, got %d", len(repo.saved))
	}
	if result.Metrics.Grade != domain.GradeF || len(notifier.messages) != 1 {
		t.Fatalf("expected an F grade digest, got grade %s and %d messages", result.Metrics.Grade, len(notifier.messages))
	}
	if !strings.Contains(notifier.messages[0], "B0SVCFLOW1") || !strings.Contains(notifier.messages[0], "Grade: F") {
		t.Fatalf("unexpected digest %q", notifier.messages[0])
	}
}

func TestAnalyzeProductErrors(t *testing.T) {
	t.Parallel()

	svc := NewService(ServiceDeps{Source: &recordingSource{}})
	if _, err := svc.AnalyzeProduct(context.Background(), "not a product"); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
	if _, err := svc.AnalyzeProduct(context.Background(), "B0EMPTYSRC"); !errors.Is(err, ErrNoReviews) {
		t.Fatalf("expected ErrNoReviews, got %v", err)
	}

	failing := NewService(ServiceDeps{Source: &recordingSource{err: errors.New("timeout")}})
	if _, err := failing.AnalyzeProduct(context.Background(), "B0FAILSRC1"); err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected source error, got %v", err)
	}

	noSource := NewService(ServiceDeps{})
	if _, err := noSource.AnalyzeProduct(context.Background(), "B0NOSOURCE"); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestAnalyzeReviewsTruncatesAndSkipsNotifyForGoodGrade(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	svc := NewService(ServiceDeps{Notifier: notifier, MaxReviews: 10})

	result, err := svc.AnalyzeReviews(context.Background(), "B0GOODONE1", detailedReviews(15))
	if err != nil {
		t.Fatalf("AnalyzeReviews error: %v", err)
	}
	if result.Metrics.TotalReviews != 10 {
		t.Fatalf("expected batch truncated to 10, got %d", result.Metrics.TotalReviews)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("grade %s must not trigger a digest", result.Metrics.Grade)
	}
}

func TestLatest(t *testing.T) {
	t.Parallel()

	repo := &recordingRepo{}
	svc := NewService(ServiceDeps{Repository: repo})
	if _, err := svc.Latest(context.Background(), "B0LATEST01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	res, err := svc.AnalyzeReviews(context.Background(), "B0LATEST01", detailedReviews(2))
	if err != nil {
		t.Fatalf("AnalyzeReviews error: %v", err)
	}
	stored, err := svc.Latest(context.Background(), "https://www.amazon.com/dp/B0LATEST01")
	if err != nil {
		t.Fatalf("Latest error: %v", err)
	}
	if stored.AnalysisID != res.AnalysisID {
		t.Fatalf("expected %s, got %s", res.AnalysisID, stored.AnalysisID)
	}
}

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsWatchlist(t *testing.T) {
	t.Parallel()

	source := &recordingSource{reviews: detailedReviews(3)}
	repo := &recordingRepo{}
	svc := NewService(ServiceDeps{Source: source, Repository: repo})
	driver := &manualDriver{}

	s := NewScheduler(driver, svc, []string{"B0WATCH001", "bad input", "B0WATCH002"}, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if driver.job == nil {
		t.Fatalf("job not registered")
	}

	driver.job(time.Now())
	if len(repo.saved) != 2 {
		t.Fatalf("expected 2 stored analyses, got %d", len(repo.saved))
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop did not reach the driver: %v", err)
	}
}

func TestSchedulerWithoutProductsIsNoop(t *testing.T) {
	t.Parallel()

	driver := &manualDriver{}
	s := NewScheduler(driver, NewService(ServiceDeps{}), nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if driver.job != nil {
		t.Fatalf("job must not be registered without products")
	}
}
