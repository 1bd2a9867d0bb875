// Package preprocess turns raw reviews into feature vectors.
//
// Extraction runs in two phases. Base computes everything that depends on a
// single review and is safe to call concurrently. BuildBatch then indexes the
// whole batch once, and the resulting BatchIndex attaches batch-relative
// signals (near-duplicates) without mutating shared state.
package preprocess

import (
	"math"
	"strings"
	"unicode/utf8"

	"ReviewScanner/internal/domain"
)

// Extractor computes feature vectors with a fixed set of thresholds.
type Extractor struct {
	cfg Config
}

// NewExtractor builds an extractor; zero config fields take defaults.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg.withDefaults()}
}

// Config returns the effective thresholds.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract runs both phases for the review at position i of the batch the
// index was built from.
func (e *Extractor) Extract(raw domain.RawReview, i int, batch *BatchIndex) domain.FeatureVector {
	return batch.Apply(i, e.Base(raw))
}

// Base computes the review-local features. Empty text yields a valid vector.
func (e *Extractor) Base(raw domain.RawReview) domain.FeatureVector {
	text := Clean(raw.Body)
	title := Clean(raw.Title)
	tokens := Tokenize(text)
	rating := ClampRating(raw.Rating)

	fv := domain.FeatureVector{
		ReviewID:      raw.ID,
		Rating:        rating,
		Verified:      raw.Verified,
		Text:          text,
		Title:         title,
		Tokens:        tokens,
		WordCount:     len(tokens),
		CharCount:     utf8.RuneCountInString(text),
		SentenceCount: countSentences(text),
		ExtremeRating: rating == 1 || rating == 5,
	}

	fv.TooShort = fv.CharCount < e.cfg.ShortTextChars
	fv.Detailed = fv.CharCount > e.cfg.DetailedTextChars

	fv.Specificity, fv.SpecificTermCount = specificity(text, tokens, fv.SentenceCount)
	fv.Generic = fv.SpecificTermCount < e.cfg.GenericMaxTerms && fv.CharCount > e.cfg.GenericMinChars

	fv.Sentiment = Sentiment(tokens)
	fv.RatingMismatch = (rating >= 4 && fv.Sentiment < e.cfg.SentimentLow) ||
		(rating <= 2 && fv.Sentiment > e.cfg.SentimentHigh)

	fullTokens := tokens
	if title != "" {
		fullTokens = append(Tokenize(title), tokens...)
	}
	fv.PromoPhraseCount = countPromoPhrases(fullTokens)
	fv.MarketingPatternCount = countMarketingPatterns(strings.ToLower(title + " " + text))
	fv.Marketing = fv.MarketingPatternCount > 0 || fv.PromoPhraseCount >= e.cfg.MarketingPhrases
	fv.ExcessivePositivity = rating == 5 &&
		fv.Sentiment > e.cfg.PositivitySentiment &&
		fv.PromoPhraseCount >= e.cfg.MarketingPhrases

	fv.ExcessivePunctuation = len(punctRunExpr.FindAllString(text, -1)) > 0
	fv.ExcessiveCaps = len(capsWordExpr.FindAllString(text, -1)) > e.cfg.CapsWordsMax
	fv.MaxWordRepetition = maxRepetition(tokens)
	fv.RepetitiveWords = fv.MaxWordRepetition > e.cfg.RepeatMax

	return fv
}

// Sentiment scores lexicon polarity in [-1, 1]. A negator within the two
// preceding tokens flips a word's polarity. Texts without lexicon hits score 0.
func Sentiment(tokens []string) float64 {
	var pos, neg int
	for i, tok := range tokens {
		polarity := 0
		if _, ok := positiveWords[tok]; ok {
			polarity = 1
		} else if _, ok := negativeWords[tok]; ok {
			polarity = -1
		}
		if polarity == 0 {
			continue
		}
		if negated(tokens, i) {
			polarity = -polarity
		}
		if polarity > 0 {
			pos++
		} else {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

func negated(tokens []string, idx int) bool {
	for j := idx - 1; j >= 0 && j >= idx-negationWindow; j-- {
		if _, ok := negators[tokens[j]]; ok {
			return true
		}
	}
	return false
}

// specificity rewards concrete tokens (numbers, product-detail vocabulary),
// multi-sentence structure and length, and penalises a lone short exclamation.
// It also returns how many distinct concrete terms were seen.
func specificity(text string, tokens []string, sentences int) (float64, int) {
	if len(tokens) == 0 {
		return 0, 0
	}

	concrete := 0
	distinct := map[string]struct{}{}
	for _, tok := range tokens {
		_, term := specificTerms[tok]
		if term || hasDigit(tok) {
			concrete++
			distinct[tok] = struct{}{}
		}
	}

	ratio := float64(concrete) / float64(len(tokens))
	score := 0.6 * math.Min(ratio/concreteRatioTarget, 1)
	if sentences > 1 {
		score += 0.25 * math.Min(float64(sentences-1)/3, 1)
	}
	score += 0.15 * math.Min(float64(len(tokens))/60, 1)

	if sentences <= 1 && len(tokens) < exclamatoryMaxWords && strings.HasSuffix(text, "!") {
		score -= 0.3
	}

	return clamp01(score), len(distinct)
}

func countPromoPhrases(tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	padded := " " + strings.Join(tokens, " ") + " "
	count := 0
	for _, phrase := range promoPhrases {
		if strings.Contains(padded, " "+phrase+" ") {
			count++
		}
	}
	return count
}

func countMarketingPatterns(lower string) int {
	count := 0
	for _, expr := range marketingPatterns {
		if expr.MatchString(lower) {
			count++
		}
	}
	return count
}

func maxRepetition(tokens []string) int {
	counts := map[string]int{}
	best := 0
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) <= 3 {
			continue
		}
		counts[tok]++
		if counts[tok] > best {
			best = counts[tok]
		}
	}
	return best
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
