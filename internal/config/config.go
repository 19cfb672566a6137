package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"NewsDigest/internal/domain"
)

const (
	defaultTimezone   = "Asia/Bangkok"
	configPathEnv     = "NEWSDIGEST_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	databaseDriverEnv = "DATABASE_DRIVER"
	llmAPIKeyEnv      = "LLM_API_KEY"
	llmModelEnv       = "LLM_MODEL"
	openAIKeyEnv      = "OPENAI_API_KEY"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	digestTimeEnv     = "DIGEST_TIME"
	digestTimezoneEnv = "DIGEST_TIMEZONE"
	logLevelEnv       = "LOG_LEVEL"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	defaultRecentLimit = 5
	maxRecentLimit     = 100
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds high-level settings required across the application.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Feeds      []FeedConfig     `yaml:"feeds"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Digest     DigestConfig     `yaml:"digest"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// DatabaseConfig describes the item store connection.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines when the daily digest fires.
type SchedulerConfig struct {
	DigestTime    string           `yaml:"digestTime"`
	Timezone      string           `yaml:"timezone"`
	CheckInterval time.Duration    `yaml:"checkInterval"`
	location      *time.Location   `yaml:"-"`
	trigger       domain.TimeOfDay `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	if loc, err := time.LoadLocation(s.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

// Trigger returns the parsed daily trigger time.
func (s SchedulerConfig) Trigger() domain.TimeOfDay {
	return s.trigger
}

// FeedConfig describes a single feed source.
type FeedConfig struct {
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url"`
	Kind    string            `yaml:"kind"`
	Options map[string]string `yaml:"options"`
}

// EnrichmentConfig defines how to contact the language model.
type EnrichmentConfig struct {
	Provider          string        `yaml:"provider"`
	Endpoint          string        `yaml:"endpoint"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"apiKey"`
	MaxTokens         int           `yaml:"maxTokens"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxAttempts       int           `yaml:"maxAttempts"`
	BaseDelay         time.Duration `yaml:"baseDelay"`
	FallbackLength    int           `yaml:"fallbackLength"`
	RequestsPerMinute int           `yaml:"requestsPerMinute"`
	RegionName        string        `yaml:"regionName"`
	Topic             string        `yaml:"topic"`
}

// TelegramConfig wires all data required to talk to the chat destination.
type TelegramConfig struct {
	BotToken         string        `yaml:"botToken"`
	ChatID           string        `yaml:"chatId"`
	APIBase          string        `yaml:"apiBase"`
	MaxMessageLength int           `yaml:"maxMessageLength"`
	SendInterval     time.Duration `yaml:"sendInterval"`
	PollTimeout      time.Duration `yaml:"pollTimeout"`
}

// DigestConfig controls digest rendering and the recent listing.
type DigestConfig struct {
	Title       string `yaml:"title"`
	RecentLimit int    `yaml:"recentLimit"`
	RegionFlag  string `yaml:"regionFlag"`
}

// LoggingConfig selects level and an optional rotating log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads defaults, the optional YAML file, .env and environment overrides.
// An explicit path wins over NEWSDIGEST_CONFIG.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	// .env never overrides variables already present in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: load .env: %v", ErrInvalid, err)
	}

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyProviderDefaults()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.Enrichment.Model = v
	}
	if v := os.Getenv(digestTimeEnv); v != "" {
		c.Scheduler.DigestTime = v
	}
	if v := os.Getenv(digestTimezoneEnv); v != "" {
		c.Scheduler.Timezone = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.Enrichment.APIKey = v
		return
	}
	providerKey := openAIKeyEnv
	if c.Enrichment.Provider == ProviderAnthropic {
		providerKey = anthropicKeyEnv
	}
	if v := os.Getenv(providerKey); v != "" {
		c.Enrichment.APIKey = v
	}
}

func (c *Config) applyProviderDefaults() {
	c.Enrichment.Provider = strings.ToLower(strings.TrimSpace(c.Enrichment.Provider))
	switch c.Enrichment.Provider {
	case ProviderAnthropic:
		if c.Enrichment.Endpoint == "" {
			c.Enrichment.Endpoint = "https://api.anthropic.com/v1/messages"
		}
		if c.Enrichment.Model == "" {
			c.Enrichment.Model = "claude-3-5-sonnet-20241022"
		}
	case ProviderOpenAI:
		if c.Enrichment.Endpoint == "" {
			c.Enrichment.Endpoint = "https://api.openai.com/v1/chat/completions"
		}
		if c.Enrichment.Model == "" {
			c.Enrichment.Model = "gpt-4o-mini"
		}
	}
	for i := range c.Feeds {
		if c.Feeds[i].Kind == "" {
			c.Feeds[i].Kind = "feed"
		}
	}
}

// ValidateDatabase checks only the settings needed to open the item store.
func (c *Config) ValidateDatabase() error {
	var problems []string
	c.validateDatabase(&problems)
	return joinProblems(problems)
}

// Validate checks every setting required to run the pipeline and binds
// derived values (timezone, trigger time).
func (c *Config) Validate() error {
	var problems []string
	c.validateDatabase(&problems)

	trigger, err := domain.ParseTimeOfDay(c.Scheduler.DigestTime)
	if err != nil {
		problems = append(problems, err.Error())
	}
	c.Scheduler.trigger = trigger

	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		problems = append(problems, fmt.Sprintf("unknown timezone %q", c.Scheduler.Timezone))
	}
	c.Scheduler.location = loc
	if c.Scheduler.CheckInterval <= 0 {
		problems = append(problems, "scheduler.checkInterval must be positive")
	}

	if len(c.Feeds) == 0 {
		problems = append(problems, "at least one feed must be configured")
	}
	for i, feed := range c.Feeds {
		if strings.TrimSpace(feed.Name) == "" {
			problems = append(problems, fmt.Sprintf("feeds[%d]: name is required", i))
		}
		if !isHTTPURL(feed.URL) {
			problems = append(problems, fmt.Sprintf("feeds[%d]: url %q must be http(s)", i, feed.URL))
		}
	}

	switch c.Enrichment.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		problems = append(problems, fmt.Sprintf("enrichment.provider %q is not supported", c.Enrichment.Provider))
	}
	if c.Enrichment.APIKey == "" {
		problems = append(problems, "enrichment API key is required")
	}
	if c.Enrichment.MaxAttempts < 1 {
		problems = append(problems, "enrichment.maxAttempts must be at least 1")
	}
	if c.Enrichment.BaseDelay < 0 {
		problems = append(problems, "enrichment.baseDelay must not be negative")
	}
	if c.Enrichment.Timeout <= 0 {
		problems = append(problems, "enrichment.timeout must be positive")
	}
	if c.Enrichment.FallbackLength < 1 {
		problems = append(problems, "enrichment.fallbackLength must be positive")
	}

	if c.Telegram.BotToken == "" {
		problems = append(problems, "telegram bot token is required")
	}
	if c.Telegram.ChatID == "" {
		problems = append(problems, "telegram chat id is required")
	}
	if c.Telegram.MaxMessageLength < 1 {
		problems = append(problems, "telegram.maxMessageLength must be positive")
	}

	c.Digest.RecentLimit = ClampRecentLimit(c.Digest.RecentLimit)

	return joinProblems(problems)
}

// ClampRecentLimit bounds a "recent items" request to 1..100, with 0 or less
// meaning the default of 5.
func ClampRecentLimit(n int) int {
	switch {
	case n <= 0:
		return defaultRecentLimit
	case n > maxRecentLimit:
		return maxRecentLimit
	default:
		return n
	}
}

func (c *Config) validateDatabase(problems *[]string) {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		*problems = append(*problems, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		*problems = append(*problems, "database.dsn is required")
	}
}

// LogAttrs describes the configuration without exposing secrets.
func (c Config) LogAttrs() []any {
	return []any{
		"database_driver", c.Database.Driver,
		"feeds", len(c.Feeds),
		"digest_time", c.Scheduler.DigestTime,
		"timezone", c.Scheduler.Timezone,
		"llm_provider", c.Enrichment.Provider,
		"llm_model", c.Enrichment.Model,
		"llm_key_set", c.Enrichment.APIKey != "",
		"telegram_token_set", c.Telegram.BotToken != "",
		"telegram_chat_set", c.Telegram.ChatID != "",
	}
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n  - %s", ErrInvalid, strings.Join(problems, "\n  - "))
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "file:news_digest.db?_busy_timeout=10000&_journal_mode=WAL"},
		Scheduler: SchedulerConfig{
			DigestTime:    "08:00",
			Timezone:      defaultTimezone,
			CheckInterval: time.Minute,
		},
		Enrichment: EnrichmentConfig{
			Provider:          ProviderOpenAI,
			MaxTokens:         300,
			Timeout:           30 * time.Second,
			MaxAttempts:       3,
			BaseDelay:         time.Second,
			FallbackLength:    200,
			RequestsPerMinute: 0,
			RegionName:        "Thailand",
			Topic:             "payment industry",
		},
		Telegram: TelegramConfig{
			APIBase:          "https://api.telegram.org",
			MaxMessageLength: 4096,
			SendInterval:     time.Second,
			PollTimeout:      30 * time.Second,
		},
		Digest: DigestConfig{
			Title:       "Payment Industry News Digest",
			RecentLimit: defaultRecentLimit,
			RegionFlag:  "🇹🇭",
		},
		Logging: LoggingConfig{Level: "info"},
		Feeds: []FeedConfig{
			{Name: "Finextra Payments", URL: "https://www.finextra.com/rss/channel.aspx?channel=payments", Kind: "feed"},
			{Name: "Payments Dive", URL: "https://www.paymentsdive.com/feeds/news/", Kind: "feed"},
		},
	}
}
