package model

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/ports"
)

// Store holds the currently loaded classifier and swaps it atomically on reload.
// A Store with nothing loaded scores every review as unavailable.
type Store struct {
	current atomic.Pointer[Classifier]
	mu      sync.Mutex
	path    string
	logger  *slog.Logger
}

var _ ports.Classifier = (*Store)(nil)

// NewStore returns an empty store bound to an artifact path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the artifact location the store reloads from.
func (s *Store) Path() string {
	return s.path
}

// Reload loads the artifact from the configured path. Loading the same bytes
// twice is a no-op. On failure the previously loaded classifier stays active.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return &ArtifactError{Err: fmt.Errorf("no artifact path configured")}
	}

	art, err := LoadFile(s.path)
	if err != nil {
		if prev := s.current.Load(); prev != nil {
			s.warn("model reload failed, keeping previous artifact", "version", prev.Version(), "error", err)
		}
		return err
	}

	if prev := s.current.Load(); prev != nil && prev.artifact.Checksum() == art.Checksum() {
		return nil
	}

	s.current.Store(NewClassifier(art))
	s.info("model artifact loaded", "path", s.path, "version", art.Version, "terms", len(art.Vectorizer.Vocabulary))
	return nil
}

// Set installs an already parsed artifact.
func (s *Store) Set(art *Artifact) {
	if art == nil {
		s.current.Store(nil)
		return
	}
	s.current.Store(NewClassifier(art))
}

// Score delegates to the current classifier.
func (s *Store) Score(fv domain.FeatureVector) domain.SubScore {
	if c := s.current.Load(); c != nil {
		return c.Score(fv)
	}
	return domain.SubScore{Source: domain.SourceModel}
}

// Snapshot returns the classifier active right now, or Nop when nothing is
// loaded. Later reloads do not affect the returned value.
func (s *Store) Snapshot() ports.Classifier {
	if c := s.current.Load(); c != nil {
		return c
	}
	return Nop{}
}

// Available reports whether an artifact is loaded.
func (s *Store) Available() bool {
	return s.current.Load() != nil
}

// Version returns the loaded artifact version or "".
func (s *Store) Version() string {
	if c := s.current.Load(); c != nil {
		return c.Version()
	}
	return ""
}

func (s *Store) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Store) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

// Nop is a classifier that never has a model. The pipeline runs rule-only with it.
type Nop struct{}

var _ ports.Classifier = Nop{}

func (Nop) Score(domain.FeatureVector) domain.SubScore {
	return domain.SubScore{Source: domain.SourceModel}
}

func (Nop) Available() bool { return false }

func (Nop) Version() string { return "" }
