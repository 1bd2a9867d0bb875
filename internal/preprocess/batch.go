package preprocess

import (
	"math"
	"sort"
	"strings"

	"ReviewScanner/internal/domain"
)

// BatchIndex holds batch-relative signals computed once over every review of a
// request. Entries are addressed by the position of the vector passed to
// BuildBatch, so blank or repeated review IDs never share a slot. It is
// read-only after BuildBatch returns.
type BatchIndex struct {
	duplicates []int
}

// BuildBatch compares every pair of reviews. Review i is a near-duplicate when
// some other review has the same normalized text or a term-frequency cosine
// similarity at or above the configured threshold. The relation is symmetric,
// so the outcome does not depend on input order. Reviews without tokens never match.
func (e *Extractor) BuildBatch(vectors []domain.FeatureVector) *BatchIndex {
	idx := &BatchIndex{duplicates: make([]int, len(vectors))}

	docs := make([]termVector, len(vectors))
	for i, fv := range vectors {
		docs[i] = newTermVector(fv.Tokens)
	}

	for i := 0; i < len(docs); i++ {
		if docs[i].empty() {
			continue
		}
		for j := i + 1; j < len(docs); j++ {
			if docs[j].empty() {
				continue
			}
			if docs[i].key == docs[j].key || docs[i].cosine(docs[j]) >= e.cfg.DuplicateSimilarity {
				idx.duplicates[i]++
				idx.duplicates[j]++
			}
		}
	}

	return idx
}

// Apply returns a copy of fv, the vector at position i of the batch, with
// batch-relative features attached. A nil index or an out-of-range position
// leaves the vector untouched.
func (b *BatchIndex) Apply(i int, fv domain.FeatureVector) domain.FeatureVector {
	if b == nil || i < 0 || i >= len(b.duplicates) {
		return fv
	}
	fv.DuplicateCount = b.duplicates[i]
	fv.NearDuplicate = fv.DuplicateCount > 0
	return fv
}

// termVector keeps its terms sorted so every float sum runs in a fixed order.
type termVector struct {
	key   string
	terms []string
	freq  map[string]float64
	norm  float64
}

func newTermVector(tokens []string) termVector {
	tv := termVector{key: strings.Join(tokens, " "), freq: make(map[string]float64, len(tokens))}
	for _, tok := range tokens {
		if _, ok := tv.freq[tok]; !ok {
			tv.terms = append(tv.terms, tok)
		}
		tv.freq[tok]++
	}
	sort.Strings(tv.terms)

	var sum float64
	for _, term := range tv.terms {
		f := tv.freq[term]
		sum += f * f
	}
	tv.norm = math.Sqrt(sum)
	return tv
}

func (t termVector) empty() bool {
	return len(t.terms) == 0
}

func (t termVector) cosine(other termVector) float64 {
	if t.norm == 0 || other.norm == 0 {
		return 0
	}
	small, large := t, other
	if len(small.terms) > len(large.terms) {
		small, large = large, small
	}
	var dot float64
	for _, term := range small.terms {
		dot += small.freq[term] * large.freq[term]
	}
	return dot / (t.norm * other.norm)
}
