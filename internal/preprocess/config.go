package preprocess

// Tunable thresholds used by feature extraction.
const (
	DefaultShortTextChars      = 50
	DefaultDetailedTextChars   = 300
	DefaultGenericMinChars     = 20
	DefaultGenericMaxTerms     = 2
	DefaultSentimentLow        = -0.3
	DefaultSentimentHigh       = 0.3
	DefaultPositivitySentiment = 0.5
	DefaultMarketingPhrases    = 3
	DefaultCapsWordsMax        = 2
	DefaultRepeatMax           = 3
	DefaultDuplicateSimilarity = 0.9

	// concreteRatioTarget is the share of concrete tokens that earns full specificity credit.
	concreteRatioTarget = 0.15
	negationWindow      = 2
	exclamatoryMaxWords = 12
)

// Config carries the extraction thresholds. Zero fields fall back to defaults.
type Config struct {
	ShortTextChars      int
	DetailedTextChars   int
	GenericMinChars     int
	GenericMaxTerms     int
	SentimentLow        float64
	SentimentHigh       float64
	PositivitySentiment float64
	MarketingPhrases    int
	CapsWordsMax        int
	RepeatMax           int
	DuplicateSimilarity float64
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		ShortTextChars:      DefaultShortTextChars,
		DetailedTextChars:   DefaultDetailedTextChars,
		GenericMinChars:     DefaultGenericMinChars,
		GenericMaxTerms:     DefaultGenericMaxTerms,
		SentimentLow:        DefaultSentimentLow,
		SentimentHigh:       DefaultSentimentHigh,
		PositivitySentiment: DefaultPositivitySentiment,
		MarketingPhrases:    DefaultMarketingPhrases,
		CapsWordsMax:        DefaultCapsWordsMax,
		RepeatMax:           DefaultRepeatMax,
		DuplicateSimilarity: DefaultDuplicateSimilarity,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ShortTextChars <= 0 {
		c.ShortTextChars = def.ShortTextChars
	}
	if c.DetailedTextChars <= 0 {
		c.DetailedTextChars = def.DetailedTextChars
	}
	if c.GenericMinChars <= 0 {
		c.GenericMinChars = def.GenericMinChars
	}
	if c.GenericMaxTerms <= 0 {
		c.GenericMaxTerms = def.GenericMaxTerms
	}
	if c.SentimentLow == 0 {
		c.SentimentLow = def.SentimentLow
	}
	if c.SentimentHigh == 0 {
		c.SentimentHigh = def.SentimentHigh
	}
	if c.PositivitySentiment == 0 {
		c.PositivitySentiment = def.PositivitySentiment
	}
	if c.MarketingPhrases <= 0 {
		c.MarketingPhrases = def.MarketingPhrases
	}
	if c.CapsWordsMax <= 0 {
		c.CapsWordsMax = def.CapsWordsMax
	}
	if c.RepeatMax <= 0 {
		c.RepeatMax = def.RepeatMax
	}
	if c.DuplicateSimilarity <= 0 || c.DuplicateSimilarity > 1 {
		c.DuplicateSimilarity = def.DuplicateSimilarity
	}
	return c
}
