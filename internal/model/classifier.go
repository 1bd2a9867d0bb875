package model

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/ports"
)

var tokenExpr = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Classifier applies one loaded artifact. It is immutable and safe for concurrent use.
type Classifier struct {
	artifact *Artifact
	stop     map[string]struct{}
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier prepares an artifact for inference.
func NewClassifier(art *Artifact) *Classifier {
	stop := make(map[string]struct{}, len(art.Vectorizer.StopWords))
	for _, w := range art.Vectorizer.StopWords {
		stop[w] = struct{}{}
	}
	return &Classifier{artifact: art, stop: stop}
}

// Version reports the artifact version.
func (c *Classifier) Version() string {
	return c.artifact.Version
}

// Available is always true for a constructed classifier.
func (c *Classifier) Available() bool {
	return true
}

// Score returns the probability that the review text is fake. Empty text
// carries no signal and is reported as unavailable for that review.
func (c *Classifier) Score(fv domain.FeatureVector) domain.SubScore {
	out := domain.SubScore{Source: domain.SourceModel}
	if strings.TrimSpace(fv.Text) == "" {
		return out
	}
	out.Value = c.Probability(fv.Text)
	out.Available = true
	return out
}

// Probability runs the TF-IDF transform and the logistic function over text.
func (c *Classifier) Probability(text string) float64 {
	z := c.artifact.Model.Intercept
	for _, f := range c.features(text) {
		z += f.weight * c.artifact.Model.Coefficients[f.index]
	}
	return sigmoid(z)
}

// Transform produces the L2-normalised sparse TF-IDF vector for text.
func (c *Classifier) Transform(text string) map[int]float64 {
	feats := c.features(text)
	out := make(map[int]float64, len(feats))
	for _, f := range feats {
		out[f.index] = f.weight
	}
	return out
}

type feature struct {
	index  int
	weight float64
}

// features returns the TF-IDF vector ordered by vocabulary index. Sums over it
// always run in the same order, so equal text yields identical bits.
func (c *Classifier) features(text string) []feature {
	vec := c.artifact.Vectorizer

	counts := make(map[int]float64)
	for _, term := range c.terms(text) {
		if idx, ok := vec.Vocabulary[term]; ok {
			counts[idx]++
		}
	}

	feats := make([]feature, 0, len(counts))
	for idx, tf := range counts {
		feats = append(feats, feature{index: idx, weight: tf})
	}
	sort.Slice(feats, func(i, j int) bool { return feats[i].index < feats[j].index })

	var norm float64
	for i := range feats {
		tf := feats[i].weight
		if vec.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * vec.IDF[feats[i].index]
		feats[i].weight = w
		norm += w * w
	}
	if norm == 0 {
		return feats
	}
	norm = math.Sqrt(norm)
	for i := range feats {
		feats[i].weight /= norm
	}
	return feats
}

func (c *Classifier) terms(text string) []string {
	var words []string
	for _, w := range tokenExpr.FindAllString(strings.ToLower(text), -1) {
		if _, skip := c.stop[w]; !skip {
			words = append(words, w)
		}
	}

	maxN := c.artifact.Vectorizer.NgramMax
	if maxN <= 1 {
		return words
	}
	terms := append([]string(nil), words...)
	for n := 2; n <= maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
