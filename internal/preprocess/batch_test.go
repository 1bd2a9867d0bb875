package preprocess

import (
	"fmt"
	"math"
	"testing"

	"ReviewScanner/internal/domain"
)

func buildFlags(ex *Extractor, raws []domain.RawReview) map[string]int {
	vectors := baseVectors(ex, raws)
	batch := ex.BuildBatch(vectors)

	out := map[string]int{}
	for i, fv := range vectors {
		out[fv.ReviewID] = batch.Apply(i, fv).DuplicateCount
	}
	return out
}

func TestNearDuplicateOrderIndependent(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultConfig())
	raws := []domain.RawReview{
		{ID: "a", Rating: 5, Body: "Great product! Highly recommend!!!"},
		{ID: "b", Rating: 4, Body: "The hinge cracked after a month but support replaced it quickly."},
		{ID: "c", Rating: 5, Body: "great product, highly recommend"},
		{ID: "d", Rating: 2, Body: ""},
		{ID: "e", Rating: 2, Body: ""},
	}

	forward := buildFlags(ex, raws)

	reversed := make([]domain.RawReview, len(raws))
	for i := range raws {
		reversed[len(raws)-1-i] = raws[i]
	}
	backward := buildFlags(ex, reversed)

	for id, count := range forward {
		if backward[id] != count {
			t.Fatalf("review %s: forward=%d backward=%d", id, count, backward[id])
		}
	}

	if forward["a"] != 1 || forward["c"] != 1 {
		t.Fatalf("expected a and c to duplicate each other, got %v", forward)
	}
	if forward["b"] != 0 {
		t.Fatalf("unique review flagged as duplicate: %v", forward)
	}
	if forward["d"] != 0 || forward["e"] != 0 {
		t.Fatalf("empty reviews must never match: %v", forward)
	}
}

func TestNearDuplicateBySimilarity(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultConfig())
	base := "this blender crushes ice in seconds and the jar is easy to clean after smoothies every morning"
	raws := []domain.RawReview{
		{ID: "x", Rating: 5, Body: base},
		{ID: "y", Rating: 5, Body: base + " really"},
	}

	flags := buildFlags(ex, raws)
	if flags["x"] != 1 || flags["y"] != 1 {
		t.Fatalf("expected near-duplicates above threshold, got %v", flags)
	}
}

func TestApplyNilIndex(t *testing.T) {
	t.Parallel()

	var idx *BatchIndex
	fv := idx.Apply(0, domain.FeatureVector{ReviewID: "z"})
	if fv.NearDuplicate {
		t.Fatalf("nil index must not flag duplicates")
	}

	built := NewExtractor(DefaultConfig()).BuildBatch(nil)
	if built.Apply(3, domain.FeatureVector{}).NearDuplicate {
		t.Fatalf("out-of-range position must not flag duplicates")
	}
}

func TestBatchIndexIgnoresReviewIDs(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultConfig())
	raws := []domain.RawReview{
		{Rating: 5, Body: "Great product! Highly recommend!!!"},
		{Rating: 4, Body: "The hinge cracked after a month but support replaced it quickly."},
		{Rating: 5, Body: "great product, highly recommend"},
		{ID: "dup", Rating: 3, Body: "Battery lasts two days with the screen at half brightness."},
		{ID: "dup", Rating: 3, Body: "Shipping took nine days and the box arrived dented."},
	}

	batch := ex.BuildBatch(baseVectors(ex, raws))
	want := []int{1, 0, 1, 0, 0}
	for i, raw := range raws {
		if got := ex.Extract(raw, i, batch).DuplicateCount; got != want[i] {
			t.Fatalf("position %d: duplicate count %d, want %d", i, got, want[i])
		}
	}
}

func TestCosineIsDeterministic(t *testing.T) {
	t.Parallel()

	var tokens, other []string
	for i := 0; i < 300; i++ {
		term := fmt.Sprintf("term%03d", i)
		for n := 0; n <= i%7; n++ {
			tokens = append(tokens, term)
		}
		if i%3 != 0 {
			other = append(other, term)
		}
	}
	a, b := newTermVector(tokens), newTermVector(other)

	first := math.Float64bits(a.cosine(b))
	firstNorm := math.Float64bits(a.norm)
	for i := 0; i < 500; i++ {
		if got := math.Float64bits(a.cosine(b)); got != first {
			t.Fatalf("cosine changed between calls: %x != %x", got, first)
		}
		if got := math.Float64bits(newTermVector(tokens).norm); got != firstNorm {
			t.Fatalf("norm changed between builds: %x != %x", got, firstNorm)
		}
	}
}

func baseVectors(ex *Extractor, raws []domain.RawReview) []domain.FeatureVector {
	vectors := make([]domain.FeatureVector, len(raws))
	for i, raw := range raws {
		vectors[i] = ex.Base(raw)
	}
	return vectors
}
