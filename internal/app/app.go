package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"golang.org/x/sync/errgroup"

	"ReviewScanner/internal/config"
	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/hybrid"
	"ReviewScanner/internal/infrastructure/brightdata"
	"ReviewScanner/internal/infrastructure/browser"
	"ReviewScanner/internal/infrastructure/httpapi"
	"ReviewScanner/internal/infrastructure/modelwatch"
	"ReviewScanner/internal/infrastructure/parser"
	"ReviewScanner/internal/infrastructure/scheduler"
	"ReviewScanner/internal/infrastructure/storage"
	"ReviewScanner/internal/infrastructure/telegram"
	"ReviewScanner/internal/logging"
	"ReviewScanner/internal/model"
	"ReviewScanner/internal/ports"
	"ReviewScanner/internal/preprocess"
	"ReviewScanner/internal/rules"
	"ReviewScanner/internal/scanner"
	"ReviewScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	model     *model.Store
	service   *usecase.Service
	scheduler *usecase.Scheduler
	db        *sql.DB
}

// New builds the application. Optional collaborators that fail to start
// (model artifact, database) are logged and left out; the service then runs
// rule-only or without persistence.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	a.model = model.NewStore(cfg.Model.ArtifactPath, baseLogger.With("component", "model"))
	if cfg.Model.ArtifactPath != "" {
		if err := a.model.Reload(); err != nil {
			baseLogger.Warn("model artifact unavailable, running rule-only", "path", cfg.Model.ArtifactPath, "error", err)
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Extractor:  preprocess.NewExtractor(extractorConfig(cfg.Scoring)),
		Rules:      rules.NewScorer(rulesConfig(cfg.Scoring)),
		Classifier: a.model,
		Hybrid:     hybrid.NewScorer(hybridConfig(cfg.Scoring)),
		Workers:    cfg.Scoring.Workers,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	var repo ports.AnalysisRepository
	if r := a.openRepository(ctx); r != nil {
		repo = r
	}

	var notifier ports.Notifier
	if n := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID); n.Configured() {
		notifier = n
	}

	a.service = usecase.NewService(usecase.ServiceDeps{
		Pipeline:       pipeline,
		Source:         a.buildSource(),
		Repository:     repo,
		Notifier:       notifier,
		NotifyMinGrade: domain.Grade(cfg.Notifications.MinGrade),
		MaxReviews:     cfg.Source.MaxReviews,
		Logger:         baseLogger.With("component", "service"),
	})

	if cfg.Scheduler.Enabled {
		a.scheduler = usecase.NewScheduler(
			scheduler.NewTickerScheduler(cfg.Scheduler.Interval),
			a.service,
			cfg.Scheduler.Products,
			baseLogger.With("component", "scheduler"),
		)
	}
	return a
}

// Service exposes the analysis service for CLI commands.
func (a *Application) Service() *usecase.Service {
	return a.service
}

// Model exposes the classifier store.
func (a *Application) Model() *model.Store {
	return a.model
}

// Serve runs the HTTP API, the scheduler and the model watcher until ctx ends.
func (a *Application) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	server := httpapi.NewServer(httpapi.Config{
		Addr:           a.cfg.Server.Addr,
		RequestTimeout: a.cfg.Server.RequestTimeout,
	}, a.service, a.model, a.logger.With("component", "http"))
	g.Go(func() error {
		return server.Run(ctx)
	})

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		g.Go(func() error {
			<-ctx.Done()
			return a.scheduler.Stop(context.Background())
		})
	}

	if a.cfg.Model.Watch && a.cfg.Model.ArtifactPath != "" {
		watcher, err := modelwatch.NewWatcher(a.model, a.cfg.Model.Debounce, a.logger.With("component", "modelwatch"))
		if err != nil {
			a.logger.Warn("model watcher disabled", "error", err)
		} else {
			g.Go(func() error {
				if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		}
	}

	return g.Wait()
}

// Close releases the database connection.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Application) openRepository(ctx context.Context) *storage.SQLRepository {
	if a.cfg.Database.DSN == "" {
		return nil
	}
	db, err := storage.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		a.logger.Warn("database unavailable, analyses will not be stored", "driver", a.cfg.Database.Driver, "error", err)
		return nil
	}
	repo, err := storage.NewSQLRepository(db, a.cfg.Database.Driver)
	if err == nil {
		err = repo.Migrate(ctx)
	}
	if err != nil {
		_ = db.Close()
		a.logger.Warn("database migration failed, analyses will not be stored", "error", err)
		return nil
	}
	a.db = db
	return repo
}

// buildSource registers every usable strategy and keeps the configured
// fallback order. It returns nil when no configured strategy is usable.
func (a *Application) buildSource() ports.ReviewSource {
	src := a.cfg.Source
	registry := scanner.NewRegistry()

	if src.BrightData.Token != "" && src.BrightData.DatasetID != "" {
		registry.Register(brightdata.NewClient(brightdata.Config{
			Endpoint:     src.BrightData.Endpoint,
			Token:        src.BrightData.Token,
			DatasetID:    src.BrightData.DatasetID,
			Timeout:      src.BrightData.Timeout,
			PollInterval: src.BrightData.PollInterval,
			MaxPolls:     src.BrightData.MaxPolls,
			MaxAttempts:  src.BrightData.MaxAttempts,
		}, nil, a.logger.With("component", "scanner.brightdata")))
	}
	registry.Register(parser.NewAmazonScanner(&http.Client{Timeout: src.HTML.Timeout}, src.HTML.BaseURL))
	registry.Register(browser.NewScanner(browser.Config{
		Timeout: src.Browser.Timeout,
		BaseURL: src.Browser.BaseURL,
	}, a.logger.With("component", "scanner.browser")))
	if src.File.Dir != "" {
		registry.Register(parser.NewFileScanner(src.File.Dir))
	}

	available := registry.Names()
	var strategies []string
	for _, name := range src.Strategies {
		if !slices.Contains(available, name) {
			a.logger.Warn("review strategy not available, skipping", "strategy", name)
			continue
		}
		strategies = append(strategies, name)
	}
	if len(strategies) == 0 {
		return nil
	}
	return parser.NewStrategySource(registry, strategies, a.logger.With("component", "source"))
}

func extractorConfig(s config.ScoringConfig) preprocess.Config {
	return preprocess.Config{
		ShortTextChars:      s.ShortTextChars,
		DetailedTextChars:   s.DetailedTextChars,
		GenericMinChars:     s.GenericMinChars,
		GenericMaxTerms:     s.GenericMaxTerms,
		SentimentLow:        s.SentimentLow,
		SentimentHigh:       s.SentimentHigh,
		PositivitySentiment: s.PositivitySentiment,
		MarketingPhrases:    s.MarketingPhrases,
		CapsWordsMax:        s.CapsWordsMax,
		RepeatMax:           s.RepeatMax,
		DuplicateSimilarity: s.DuplicateSimilarity,
	}
}

func rulesConfig(s config.ScoringConfig) rules.Config {
	cfg := rules.Config{LowSpecificity: s.LowSpecificity}
	for _, code := range s.DisabledRules {
		cfg.Disabled = append(cfg.Disabled, domain.ReasonCode(code))
	}
	if len(s.RuleWeights) > 0 {
		cfg.Weights = make(map[domain.ReasonCode]float64, len(s.RuleWeights))
		for code, w := range s.RuleWeights {
			cfg.Weights[domain.ReasonCode(code)] = w
		}
	}
	return cfg
}

func hybridConfig(s config.ScoringConfig) hybrid.Config {
	cfg := hybrid.DefaultConfig()
	cfg.RuleWeight = s.RuleWeight
	cfg.ModelWeight = s.ModelWeight
	if s.DecisionThreshold > 0 {
		cfg.DecisionThreshold = s.DecisionThreshold
	}
	if s.MaxReasons > 0 {
		cfg.MaxReasons = s.MaxReasons
	}
	return cfg
}
