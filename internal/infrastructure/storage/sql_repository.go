package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/ports"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	verdictChunk = 200
	timeLayout   = "2006-01-02T15:04:05.000000Z07:00"
)

// SQLRepository persists analyses and their verdicts in Postgres or SQLite.
type SQLRepository struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
}

var _ ports.AnalysisRepository = (*SQLRepository)(nil)

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	driver, err := normalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		// a single connection keeps in-memory databases alive and serialises writers
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NewSQLRepository wires a sql.DB implementation for the given driver name.
func NewSQLRepository(db *sql.DB, driver string) (*SQLRepository, error) {
	driver, err := normalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		placeholder = sq.Dollar
	}
	return &SQLRepository{
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}, nil
}

func normalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "postgresql", "pq":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate creates the tables when they do not exist yet.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	for _, stmt := range r.schema() {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (r *SQLRepository) schema() []string {
	jsonType, boolType := "TEXT", "INTEGER"
	if r.driver == DriverPostgres {
		jsonType, boolType = "JSONB", "BOOLEAN"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			analysis_id       TEXT PRIMARY KEY,
			product_id        TEXT NOT NULL,
			analyzed_at       TEXT NOT NULL,
			total_reviews     INTEGER NOT NULL,
			fake_count        INTEGER NOT NULL,
			genuine_count     INTEGER NOT NULL,
			fake_percentage   DOUBLE PRECISION,
			original_rating   DOUBLE PRECISION,
			adjusted_rating   DOUBLE PRECISION,
			rating_difference DOUBLE PRECISION,
			grade             TEXT NOT NULL,
			grade_description TEXT NOT NULL,
			patterns          ` + jsonType + ` NOT NULL,
			summary           TEXT NOT NULL,
			degraded          ` + boolType + ` NOT NULL,
			model_version     TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS analyses_product_idx ON analyses (product_id, analyzed_at)`,
		`CREATE TABLE IF NOT EXISTS review_verdicts (
			analysis_id  TEXT NOT NULL REFERENCES analyses (analysis_id) ON DELETE CASCADE,
			position     INTEGER NOT NULL,
			review_id    TEXT NOT NULL,
			label        TEXT NOT NULL,
			confidence   DOUBLE PRECISION NOT NULL,
			rule_score   DOUBLE PRECISION NOT NULL,
			model_score  DOUBLE PRECISION,
			rule_only    ` + boolType + ` NOT NULL,
			reasons      ` + jsonType + ` NOT NULL,
			reason_codes ` + jsonType + ` NOT NULL,
			highlights   ` + jsonType + ` NOT NULL,
			PRIMARY KEY (analysis_id, review_id)
		)`,
	}
}

// SaveAnalysis stores the analysis row and one verdict row per review in a
// single transaction. Saving an analysis id twice is a no-op.
func (r *SQLRepository) SaveAnalysis(ctx context.Context, result domain.AnalysisResult) error {
	if r.db == nil {
		return nil
	}

	patterns, err := json.Marshal(nonNil(result.Patterns))
	if err != nil {
		return fmt.Errorf("marshal patterns: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	m := result.Metrics
	res, err := r.builder.RunWith(tx).
		Insert("analyses").
		Columns("analysis_id", "product_id", "analyzed_at", "total_reviews", "fake_count", "genuine_count",
			"fake_percentage", "original_rating", "adjusted_rating", "rating_difference",
			"grade", "grade_description", "patterns", "summary", "degraded", "model_version").
		Values(result.AnalysisID, result.ProductID, formatTime(result.AnalyzedAt), m.TotalReviews, m.FakeCount, m.GenuineCount,
			nullFloat(m.FakePercentage), nullFloat(m.OriginalRating), nullFloat(m.AdjustedRating), nullFloat(m.RatingDifference),
			string(m.Grade), m.GradeDescription, string(patterns), result.Summary, result.Degraded, result.ModelVersion).
		Suffix("ON CONFLICT (analysis_id) DO NOTHING").
		ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("insert analysis: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}

	for start := 0; start < len(result.Reviews); start += verdictChunk {
		end := min(start+verdictChunk, len(result.Reviews))
		insert := r.builder.RunWith(tx).
			Insert("review_verdicts").
			Columns("analysis_id", "position", "review_id", "label", "confidence", "rule_score",
				"model_score", "rule_only", "reasons", "reason_codes", "highlights")
		for i := start; i < end; i++ {
			v := result.Reviews[i].Verdict
			reasons, codes, highlights, err := marshalVerdictLists(v)
			if err != nil {
				return err
			}
			insert = insert.Values(result.AnalysisID, i, v.ReviewID, string(v.Label), v.Confidence, v.RuleScore,
				nullFloat(v.ModelScore), v.RuleOnly, reasons, codes, highlights)
		}
		if _, err := insert.ExecContext(ctx); err != nil {
			return fmt.Errorf("insert verdicts: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analysis: %w", err)
	}
	return nil
}

// LatestAnalysis returns the most recent analysis stored for productID.
func (r *SQLRepository) LatestAnalysis(ctx context.Context, productID string) (domain.StoredAnalysis, bool, error) {
	if r.db == nil {
		return domain.StoredAnalysis{}, false, nil
	}

	row := r.builder.RunWith(r.db).
		Select("analysis_id", "product_id", "analyzed_at", "total_reviews", "fake_count", "genuine_count",
			"fake_percentage", "original_rating", "adjusted_rating", "rating_difference",
			"grade", "grade_description", "patterns", "summary", "degraded", "model_version").
		From("analyses").
		Where(sq.Eq{"product_id": productID}).
		OrderBy("analyzed_at DESC", "analysis_id DESC").
		Limit(1).
		QueryRowContext(ctx)

	var (
		stored                              domain.StoredAnalysis
		analyzedAt, grade, patterns         string
		fakePct, original, adjusted, ratDif sql.NullFloat64
	)
	err := row.Scan(&stored.AnalysisID, &stored.ProductID, &analyzedAt,
		&stored.Metrics.TotalReviews, &stored.Metrics.FakeCount, &stored.Metrics.GenuineCount,
		&fakePct, &original, &adjusted, &ratDif,
		&grade, &stored.Metrics.GradeDescription, &patterns, &stored.Summary, &stored.Degraded, &stored.ModelVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredAnalysis{}, false, nil
	}
	if err != nil {
		return domain.StoredAnalysis{}, false, fmt.Errorf("query latest analysis: %w", err)
	}

	stored.AnalyzedAt, err = time.Parse(timeLayout, analyzedAt)
	if err != nil {
		return domain.StoredAnalysis{}, false, fmt.Errorf("parse analyzed_at: %w", err)
	}
	stored.Metrics.Grade = domain.Grade(grade)
	stored.Metrics.FakePercentage = floatPtr(fakePct)
	stored.Metrics.OriginalRating = floatPtr(original)
	stored.Metrics.AdjustedRating = floatPtr(adjusted)
	stored.Metrics.RatingDifference = floatPtr(ratDif)
	if err := json.Unmarshal([]byte(patterns), &stored.Patterns); err != nil {
		return domain.StoredAnalysis{}, false, fmt.Errorf("decode patterns: %w", err)
	}

	stored.Verdicts, err = r.verdicts(ctx, stored.AnalysisID)
	if err != nil {
		return domain.StoredAnalysis{}, false, err
	}
	return stored, true, nil
}

func (r *SQLRepository) verdicts(ctx context.Context, analysisID string) ([]domain.Verdict, error) {
	rows, err := r.builder.RunWith(r.db).
		Select("review_id", "label", "confidence", "rule_score", "model_score", "rule_only",
			"reasons", "reason_codes", "highlights").
		From("review_verdicts").
		Where(sq.Eq{"analysis_id": analysisID}).
		OrderBy("position").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}

	var out []domain.Verdict
	for rows.Next() {
		var (
			v                          domain.Verdict
			label                      string
			model                      sql.NullFloat64
			reasons, codes, highlights string
		)
		if err := rows.Scan(&v.ReviewID, &label, &v.Confidence, &v.RuleScore, &model, &v.RuleOnly,
			&reasons, &codes, &highlights); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		v.Label = domain.Label(label)
		v.ModelScore = floatPtr(model)
		if err := unmarshalVerdictLists(&v, reasons, codes, highlights); err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, v)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}
	return out, nil
}

func marshalVerdictLists(v domain.Verdict) (string, string, string, error) {
	reasons, err := json.Marshal(nonNil(v.Reasons))
	if err != nil {
		return "", "", "", fmt.Errorf("marshal reasons: %w", err)
	}
	codes, err := json.Marshal(nonNil(v.ReasonCodes))
	if err != nil {
		return "", "", "", fmt.Errorf("marshal reason codes: %w", err)
	}
	highlights, err := json.Marshal(nonNil(v.Highlights))
	if err != nil {
		return "", "", "", fmt.Errorf("marshal highlights: %w", err)
	}
	return string(reasons), string(codes), string(highlights), nil
}

func unmarshalVerdictLists(v *domain.Verdict, reasons, codes, highlights string) error {
	if err := json.Unmarshal([]byte(reasons), &v.Reasons); err != nil {
		return fmt.Errorf("decode reasons: %w", err)
	}
	if err := json.Unmarshal([]byte(codes), &v.ReasonCodes); err != nil {
		return fmt.Errorf("decode reason codes: %w", err)
	}
	if err := json.Unmarshal([]byte(highlights), &v.Highlights); err != nil {
		return fmt.Errorf("decode highlights: %w", err)
	}
	if len(v.Highlights) == 0 {
		v.Highlights = nil
	}
	return nil
}

// isUniqueViolation recognises duplicate-key errors from both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
