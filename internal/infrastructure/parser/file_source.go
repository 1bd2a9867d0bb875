package parser

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ReviewScanner/internal/domain"
)

// FileScanner serves reviews from <dir>/<ASIN>.json or <dir>/<ASIN>.ndjson.
type FileScanner struct {
	dir string
}

// NewFileScanner returns an offline strategy rooted at dir.
func NewFileScanner(dir string) *FileScanner {
	return &FileScanner{dir: dir}
}

// Name identifies the strategy inside the registry.
func (f *FileScanner) Name() string {
	return "file"
}

// FetchReviews loads the stored reviews of the product.
func (f *FileScanner) FetchReviews(ctx context.Context, product domain.ProductRef) ([]domain.RawReview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if product.ASIN == "" {
		return nil, fmt.Errorf("product asin is required")
	}
	for _, ext := range []string{".json", ".ndjson", ".jsonl"} {
		path := filepath.Join(f.dir, product.ASIN+ext)
		if _, err := os.Stat(path); err == nil {
			return ReadReviews(path)
		}
	}
	return nil, fmt.Errorf("no review file for %s in %s", product.ASIN, f.dir)
}

// ReadReviews reads a JSON array or NDJSON file of raw reviews. When the
// extension is unknown the content decides: a leading '[' means a JSON array.
func ReadReviews(path string) ([]domain.RawReview, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reviews: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	trimmed := bytes.TrimSpace(data)
	if ext == ".ndjson" || ext == ".jsonl" || (len(trimmed) > 0 && trimmed[0] != '[') {
		return DecodeNDJSON(bytes.NewReader(data))
	}

	var reviews []domain.RawReview
	if err := json.Unmarshal(trimmed, &reviews); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return reviews, nil
}

// DecodeNDJSON reads one review object per line; blank lines are ignored.
func DecodeNDJSON(r io.Reader) ([]domain.RawReview, error) {
	var out []domain.RawReview
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var review domain.RawReview
		if err := json.Unmarshal([]byte(text), &review); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, review)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no reviews found in ndjson")
	}
	return out, nil
}

// WriteNDJSON writes verdict-annotated reviews one per line.
func WriteNDJSON(w io.Writer, reviews []domain.AnnotatedReview) error {
	enc := json.NewEncoder(w)
	for _, r := range reviews {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
