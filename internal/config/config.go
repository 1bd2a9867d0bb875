package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv        = "REVIEW_SCANNER_CONFIG"
	databaseDSNEnv       = "DATABASE_DSN"
	databaseDriverEnv    = "DATABASE_DRIVER"
	brightDataTokenEnv   = "BRIGHT_DATA_API_TOKEN"
	brightDataDatasetEnv = "BRIGHT_DATA_DATASET_ID"
	modelPathEnv         = "MODEL_ARTIFACT_PATH"
	thresholdEnv         = "MODEL_CONFIDENCE_THRESHOLD"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	logLevelEnv          = "LOG_LEVEL"
	apiAddrEnv           = "API_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Source        SourceConfig       `yaml:"source"`
	Model         ModelConfig        `yaml:"model"`
	Scoring       ScoringConfig      `yaml:"scoring"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig selects slog level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP API listener.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// DatabaseConfig describes where analyses are stored. An empty DSN disables persistence.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SourceConfig lists the review strategies in fallback order and their settings.
type SourceConfig struct {
	Strategies []string         `yaml:"strategies"`
	MaxReviews int              `yaml:"maxReviews"`
	BrightData BrightDataConfig `yaml:"brightData"`
	HTML       ScraperConfig    `yaml:"html"`
	Browser    ScraperConfig    `yaml:"browser"`
	File       FileConfig       `yaml:"file"`
}

// BrightDataConfig wires the dataset API client.
type BrightDataConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Token        string        `yaml:"token"`
	DatasetID    string        `yaml:"datasetId"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"pollInterval"`
	MaxPolls     int           `yaml:"maxPolls"`
	MaxAttempts  int           `yaml:"maxAttempts"`
}

// ScraperConfig is shared by the plain HTML and headless browser strategies.
type ScraperConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// FileConfig points the offline strategy at a directory of review files.
type FileConfig struct {
	Dir string `yaml:"dir"`
}

// ModelConfig locates the classifier artifact.
type ModelConfig struct {
	ArtifactPath string        `yaml:"artifactPath"`
	Watch        bool          `yaml:"watch"`
	Debounce     time.Duration `yaml:"debounce"`
}

// ScoringConfig tunes feature thresholds, rules, blending and parallelism.
type ScoringConfig struct {
	DecisionThreshold   float64            `yaml:"decisionThreshold"`
	RuleWeight          float64            `yaml:"ruleWeight"`
	ModelWeight         float64            `yaml:"modelWeight"`
	MaxReasons          int                `yaml:"maxReasons"`
	Workers             int                `yaml:"workers"`
	LowSpecificity      float64            `yaml:"lowSpecificity"`
	DuplicateSimilarity float64            `yaml:"duplicateSimilarity"`
	ShortTextChars      int                `yaml:"shortTextChars"`
	DetailedTextChars   int                `yaml:"detailedTextChars"`
	GenericMinChars     int                `yaml:"genericMinChars"`
	GenericMaxTerms     int                `yaml:"genericMaxTerms"`
	SentimentLow        float64            `yaml:"sentimentLow"`
	SentimentHigh       float64            `yaml:"sentimentHigh"`
	PositivitySentiment float64            `yaml:"positivitySentiment"`
	MarketingPhrases    int                `yaml:"marketingPhrases"`
	CapsWordsMax        int                `yaml:"capsWordsMax"`
	RepeatMax           int                `yaml:"repeatMax"`
	DisabledRules       []string           `yaml:"disabledRules"`
	RuleWeights         map[string]float64 `yaml:"ruleWeights"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	MinGrade string         `yaml:"minGrade"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines the watchlist re-analysis.
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Products []string      `yaml:"products"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit path; an empty path means defaults plus env.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.validate()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(brightDataTokenEnv); v != "" {
		c.Source.BrightData.Token = v
	}
	if v := os.Getenv(brightDataDatasetEnv); v != "" {
		c.Source.BrightData.DatasetID = v
	}
	if v := os.Getenv(modelPathEnv); v != "" {
		c.Model.ArtifactPath = v
	}
	if v := os.Getenv(thresholdEnv); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Scoring.DecisionThreshold = f
		} else {
			log.Printf("config: cannot parse %s=%q: %v", thresholdEnv, v, err)
		}
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(apiAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

// validate replaces out-of-range values with defaults instead of failing.
func (c *Config) validate() {
	def := defaultConfig()

	if t := c.Scoring.DecisionThreshold; t <= 0 || t > 1 {
		log.Printf("config: decision threshold %v outside (0, 1], using %v", t, def.Scoring.DecisionThreshold)
		c.Scoring.DecisionThreshold = def.Scoring.DecisionThreshold
	}
	if c.Scoring.RuleWeight < 0 || c.Scoring.ModelWeight < 0 || c.Scoring.RuleWeight+c.Scoring.ModelWeight <= 0 {
		log.Printf("config: invalid blend weights %v/%v, using defaults", c.Scoring.RuleWeight, c.Scoring.ModelWeight)
		c.Scoring.RuleWeight, c.Scoring.ModelWeight = def.Scoring.RuleWeight, def.Scoring.ModelWeight
	}
	if s := c.Scoring.DuplicateSimilarity; s <= 0 || s > 1 {
		c.Scoring.DuplicateSimilarity = def.Scoring.DuplicateSimilarity
	}
	if lo, hi := c.Scoring.SentimentLow, c.Scoring.SentimentHigh; lo < -1 || hi > 1 || lo >= hi {
		log.Printf("config: sentiment bounds %v/%v invalid, using defaults", lo, hi)
		c.Scoring.SentimentLow, c.Scoring.SentimentHigh = def.Scoring.SentimentLow, def.Scoring.SentimentHigh
	}
	if p := c.Scoring.PositivitySentiment; p <= 0 || p > 1 {
		c.Scoring.PositivitySentiment = def.Scoring.PositivitySentiment
	}
	switch strings.ToUpper(strings.TrimSpace(c.Notifications.MinGrade)) {
	case "A", "B", "C", "D", "F":
		c.Notifications.MinGrade = strings.ToUpper(strings.TrimSpace(c.Notifications.MinGrade))
	default:
		log.Printf("config: unknown notification grade %q, using %s", c.Notifications.MinGrade, def.Notifications.MinGrade)
		c.Notifications.MinGrade = def.Notifications.MinGrade
	}
	if len(c.Source.Strategies) == 0 {
		c.Source.Strategies = def.Source.Strategies
	}
	if c.Scheduler.Interval <= 0 {
		c.Scheduler.Interval = def.Scheduler.Interval
	}
}

func mergeConfig(base, override Config) Config {
	mergeString(&base.Logging.Level, override.Logging.Level)
	mergeString(&base.Logging.Format, override.Logging.Format)

	mergeString(&base.Server.Addr, override.Server.Addr)
	mergeDuration(&base.Server.RequestTimeout, override.Server.RequestTimeout)

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
		mergeString(&base.Database.Driver, override.Database.Driver)
	}

	if len(override.Source.Strategies) > 0 {
		base.Source.Strategies = override.Source.Strategies
	}
	mergeInt(&base.Source.MaxReviews, override.Source.MaxReviews)
	bd, obd := &base.Source.BrightData, override.Source.BrightData
	mergeString(&bd.Endpoint, obd.Endpoint)
	mergeString(&bd.Token, obd.Token)
	mergeString(&bd.DatasetID, obd.DatasetID)
	mergeDuration(&bd.Timeout, obd.Timeout)
	mergeDuration(&bd.PollInterval, obd.PollInterval)
	mergeInt(&bd.MaxPolls, obd.MaxPolls)
	mergeInt(&bd.MaxAttempts, obd.MaxAttempts)
	mergeString(&base.Source.HTML.BaseURL, override.Source.HTML.BaseURL)
	mergeDuration(&base.Source.HTML.Timeout, override.Source.HTML.Timeout)
	mergeString(&base.Source.Browser.BaseURL, override.Source.Browser.BaseURL)
	mergeDuration(&base.Source.Browser.Timeout, override.Source.Browser.Timeout)
	mergeString(&base.Source.File.Dir, override.Source.File.Dir)

	mergeString(&base.Model.ArtifactPath, override.Model.ArtifactPath)
	if override.Model.Watch {
		base.Model.Watch = true
	}
	mergeDuration(&base.Model.Debounce, override.Model.Debounce)

	s, o := &base.Scoring, override.Scoring
	mergeFloat(&s.DecisionThreshold, o.DecisionThreshold)
	mergeFloat(&s.RuleWeight, o.RuleWeight)
	mergeFloat(&s.ModelWeight, o.ModelWeight)
	mergeInt(&s.MaxReasons, o.MaxReasons)
	mergeInt(&s.Workers, o.Workers)
	mergeFloat(&s.LowSpecificity, o.LowSpecificity)
	mergeFloat(&s.DuplicateSimilarity, o.DuplicateSimilarity)
	mergeInt(&s.ShortTextChars, o.ShortTextChars)
	mergeInt(&s.DetailedTextChars, o.DetailedTextChars)
	mergeInt(&s.GenericMinChars, o.GenericMinChars)
	mergeInt(&s.GenericMaxTerms, o.GenericMaxTerms)
	mergeFloat(&s.SentimentLow, o.SentimentLow)
	mergeFloat(&s.SentimentHigh, o.SentimentHigh)
	mergeFloat(&s.PositivitySentiment, o.PositivitySentiment)
	mergeInt(&s.MarketingPhrases, o.MarketingPhrases)
	mergeInt(&s.CapsWordsMax, o.CapsWordsMax)
	mergeInt(&s.RepeatMax, o.RepeatMax)
	if len(o.DisabledRules) > 0 {
		s.DisabledRules = o.DisabledRules
	}
	if len(o.RuleWeights) > 0 {
		s.RuleWeights = o.RuleWeights
	}

	mergeString(&base.Notifications.MinGrade, override.Notifications.MinGrade)
	mergeString(&base.Notifications.Telegram.BotToken, override.Notifications.Telegram.BotToken)
	mergeString(&base.Notifications.Telegram.ChatID, override.Notifications.Telegram.ChatID)

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	mergeDuration(&base.Scheduler.Interval, override.Scheduler.Interval)
	if len(override.Scheduler.Products) > 0 {
		base.Scheduler.Products = override.Scheduler.Products
	}

	return base
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func mergeFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func mergeDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server:  ServerConfig{Addr: ":8080", RequestTimeout: 120 * time.Second},
		Database: DatabaseConfig{
			Driver: "postgres",
			DSN:    "",
		},
		Source: SourceConfig{
			Strategies: []string{"brightdata", "html"},
			MaxReviews: 500,
			BrightData: BrightDataConfig{
				Endpoint:     "https://api.brightdata.com/datasets/v3",
				Timeout:      60 * time.Second,
				PollInterval: 3 * time.Second,
				MaxPolls:     60,
				MaxAttempts:  3,
			},
			HTML:    ScraperConfig{Timeout: 20 * time.Second},
			Browser: ScraperConfig{Timeout: 45 * time.Second},
		},
		Model: ModelConfig{ArtifactPath: "models/review_classifier.json", Watch: false, Debounce: 500 * time.Millisecond},
		Scoring: ScoringConfig{
			DecisionThreshold:   0.5,
			RuleWeight:          0.4,
			ModelWeight:         0.6,
			MaxReasons:          5,
			Workers:             8,
			LowSpecificity:      0.25,
			DuplicateSimilarity: 0.9,
			ShortTextChars:      50,
			DetailedTextChars:   300,
			GenericMinChars:     20,
			GenericMaxTerms:     2,
			SentimentLow:        -0.3,
			SentimentHigh:       0.3,
			PositivitySentiment: 0.5,
			MarketingPhrases:    3,
			CapsWordsMax:        2,
			RepeatMax:           3,
		},
		Notifications: NotificationConfig{
			MinGrade: "D",
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Scheduler: SchedulerConfig{Enabled: false, Interval: 24 * time.Hour},
	}
}
