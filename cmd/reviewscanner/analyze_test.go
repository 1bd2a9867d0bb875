package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ReviewScanner/internal/domain"
)

func TestAnalyzeCommandFromFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "B0CLITEST1.ndjson")
	lines := strings.Join([]string{
		`{"review_id": "c1", "rating": 5, "text": "Great product! Highly recommend!!!"}`,
		`{"review_id": "c2", "rating": 5, "text": "Great product! Highly recommend!!!"}`,
		`{"review_id": "c3", "rating": 3, "verified_purchase": true, "text": "Fits my 13 inch laptop, the zipper is stiff but the padding is thick enough for a daily commute."}`,
	}, "\n")
	if err := os.WriteFile(input, []byte(lines), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"analyze", "--input", input, "--config", filepath.Join(dir, "none.yaml")})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	if err := Execute(); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if result.ProductID != "B0CLITEST1" || result.Metrics.TotalReviews != 3 {
		t.Fatalf("unexpected result: %s %+v", result.ProductID, result.Metrics)
	}
	if !result.Degraded {
		t.Fatalf("expected rule-only analysis without an artifact")
	}
}

func TestWriteResultFormats(t *testing.T) {
	result := domain.AnalysisResult{
		ProductID: "B0FORMAT01",
		Metrics:   domain.AggregateMetrics{Grade: domain.GradeA, GradeDescription: "Excellent"},
		Summary:   "All good.",
		Reviews: []domain.AnnotatedReview{
			{Review: domain.RawReview{ID: "a"}, Verdict: domain.Verdict{ReviewID: "a", Label: domain.LabelGenuine}},
			{Review: domain.RawReview{ID: "b"}, Verdict: domain.Verdict{ReviewID: "b", Label: domain.LabelFake}},
		},
	}

	var buf bytes.Buffer
	if err := writeResult(&buf, result, "ndjson"); err != nil {
		t.Fatalf("ndjson: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Fatalf("expected 2 ndjson lines, got %d", n)
	}

	buf.Reset()
	if err := writeResult(&buf, result, "summary"); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(buf.String(), "grade A") || !strings.Contains(buf.String(), "All good.") {
		t.Fatalf("unexpected summary output %q", buf.String())
	}

	if err := writeResult(&buf, result, "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
