package preprocess

import "regexp"

var (
	htmlTagExpr     = regexp.MustCompile(`<[^>]+>`)
	urlExpr         = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailExpr       = regexp.MustCompile(`\S+@\S+\.\S+`)
	whitespaceExpr  = regexp.MustCompile(`\s+`)
	sentenceEndExpr = regexp.MustCompile(`[.!?]+`)
	punctRunExpr    = regexp.MustCompile(`[!?]{2,}`)
	capsWordExpr    = regexp.MustCompile(`\b[A-Z]{4,}\b`)
)

// promoPhrases are stock praise phrases common in incentivised reviews.
var promoPhrases = []string{
	"best product", "amazing product", "best ever", "must buy", "highly recommend",
	"5 stars", "five stars", "perfect", "excellent quality", "love it", "awesome",
	"fantastic", "wonderful", "great product", "best purchase", "worth every penny",
	"changed my life", "everyone should buy", "no complaints", "buy it now",
	"best in market", "superior quality", "game changer",
}

var marketingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`buy\s*(it\s*)?now`),
	regexp.MustCompile(`limited\s*time`),
	regexp.MustCompile(`don'?t\s*miss`),
	regexp.MustCompile(`order\s*today`),
	regexp.MustCompile(`best\s*deal`),
	regexp.MustCompile(`free\s*shipping`),
	regexp.MustCompile(`act\s*fast`),
}

// specificTerms are words that anchor a review in concrete product experience.
var specificTerms = toSet(
	"day", "days", "week", "weeks", "month", "months", "year", "years", "hour", "hours",
	"minute", "minutes", "bought", "purchased", "ordered", "received", "arrived",
	"battery", "charger", "cable", "screen", "button", "buttons", "app", "sound",
	"quality", "feature", "features", "works", "worked", "size", "fit", "color",
	"weight", "price", "value", "packaging", "delivery", "shipping", "material",
	"fabric", "inch", "inches", "setup", "install", "instructions", "manual",
	"warranty", "returned", "replacement", "refund", "customer", "service",
)

var positiveWords = toSet(
	"good", "great", "excellent", "amazing", "love", "loved", "loves", "best",
	"perfect", "awesome", "fantastic", "wonderful", "happy", "nice", "recommend",
	"satisfied", "reliable", "sturdy", "comfortable", "beautiful", "impressed",
	"solid", "pleased", "glad", "favorite",
)

var negativeWords = toSet(
	"bad", "poor", "terrible", "awful", "worst", "hate", "hated", "broken", "broke",
	"useless", "disappointed", "disappointing", "waste", "flimsy", "defective",
	"junk", "garbage", "horrible", "faulty", "failed", "fails", "stopped", "cheaply",
)

var negators = toSet(
	"not", "no", "never", "don't", "doesn't", "didn't", "isn't", "wasn't", "won't",
	"can't", "cannot", "hardly", "nothing",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
