// Package httpapi exposes the analysis service over JSON HTTP endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/usecase"
)

const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 120 * time.Second
	maxBodyBytes          = 8 << 20
)

// Analyzer is the part of usecase.Service the handlers need.
type Analyzer interface {
	AnalyzeProduct(ctx context.Context, input string) (domain.AnalysisResult, error)
	AnalyzeReviews(ctx context.Context, productID string, raws []domain.RawReview) (domain.AnalysisResult, error)
	Latest(ctx context.Context, input string) (domain.StoredAnalysis, error)
	SourceConfigured() bool
}

// ModelStatus reports the classifier state for the health endpoint.
type ModelStatus interface {
	Available() bool
	Version() string
}

// Config holds listener settings.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
}

// Server routes API requests to the analysis service.
type Server struct {
	cfg      Config
	analyzer Analyzer
	model    ModelStatus
	logger   *slog.Logger
}

type analyzeRequest struct {
	URL string `json:"url"`
}

type reviewsRequest struct {
	ProductID string             `json:"product_id"`
	Reviews   []domain.RawReview `json:"reviews"`
}

type healthResponse struct {
	Status           string `json:"status"`
	SourceConfigured bool   `json:"source_configured"`
	ModelLoaded      bool   `json:"model_loaded"`
	ModelVersion     string `json:"model_version,omitempty"`
	Degraded         bool   `json:"degraded"`
}

// NewServer applies defaults to cfg.
func NewServer(cfg Config, analyzer Analyzer, model ModelStatus, logger *slog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg, analyzer: analyzer, model: model, logger: logger}
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/analyze/reviews", s.handleAnalyzeReviews)
	mux.HandleFunc("GET /api/product/{asin}", s.handleProduct)
	return logRequest(s.logger, mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", SourceConfigured: s.analyzer.SourceConfigured(), Degraded: true}
	if s.model != nil && s.model.Available() {
		resp.ModelLoaded = true
		resp.ModelVersion = s.model.Version()
		resp.Degraded = false
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid payload: url is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	result, err := s.analyzer.AnalyzeProduct(ctx, req.URL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyzeReviews(w http.ResponseWriter, r *http.Request) {
	var req reviewsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.ProductID == "" {
		req.ProductID = "manual"
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	result, err := s.analyzer.AnalyzeReviews(ctx, req.ProductID, req.Reviews)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	stored, err := s.analyzer.Latest(r.Context(), r.PathValue("asin"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, code, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidProduct):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNoReviews), errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequest(l *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		l.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
