package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"DisclosureNotifier/internal/domain"
)

const (
	defaultTimezone = "Asia/Tokyo"

	configPathEnv       = "DISCLOSURE_NOTIFIER_CONFIG"
	earningsWebhookEnv  = "DISCORD_EARNINGS_WEBHOOK"
	newsWebhookEnv      = "DISCORD_NEWS_WEBHOOK"
	edinetAPIKeyEnv     = "EDINET_API_KEY"
	marketDataAPIKeyEnv = "MARKETDATA_API_KEY"
	historyDSNEnv       = "HISTORY_DSN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Discord    DiscordConfig    `yaml:"discord"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Sources    SourcesConfig    `yaml:"sources"`
	EDINET     EDINETConfig     `yaml:"edinet"`
	TDnet      TDnetConfig      `yaml:"tdnet"`
	MarketData MarketDataConfig `yaml:"marketData"`
	History    HistoryConfig    `yaml:"history"`
	Rules      RulesConfig      `yaml:"rules"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when the pipeline should run in daemon mode.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// DiscordConfig wires the two destination webhooks. Both are required;
// a missing webhook is a startup error, not a runtime no-op.
type DiscordConfig struct {
	EarningsWebhook string `yaml:"earningsWebhook" validate:"required,url"`
	NewsWebhook     string `yaml:"newsWebhook" validate:"required,url"`
}

// LedgerConfig describes the delivered-ids file and its capacity bound.
type LedgerConfig struct {
	Path     string `yaml:"path"`
	Capacity int    `yaml:"capacity" validate:"gt=0"`
}

// SourcesConfig lists enabled source adapters in polling priority order.
type SourcesConfig struct {
	Priority []string `yaml:"priority"`
}

// EDINETConfig describes the filings API adapter.
type EDINETConfig struct {
	BaseURL      string `yaml:"baseUrl" validate:"required,url"`
	APIKey       string `yaml:"apiKey"`
	LookbackDays int    `yaml:"lookbackDays" validate:"gte=1"`
}

// TDnetConfig describes the market-disclosure HTML listing adapter.
// An empty ListURL disables the adapter.
type TDnetConfig struct {
	ListURL string `yaml:"listUrl" validate:"omitempty,contains={date}"`
}

// MarketDataConfig describes the financial-metrics provider.
type MarketDataConfig struct {
	BaseURL      string `yaml:"baseUrl" validate:"required,url"`
	APIKey       string `yaml:"apiKey"`
	SymbolSuffix string `yaml:"symbolSuffix"`
}

// HistoryConfig enables the optional Postgres delivery-history store.
type HistoryConfig struct {
	DSN string `yaml:"dsn"`
}

// CategoryRule binds one category to its keyword list. Order in the
// Categories slice is the classification priority order.
type CategoryRule struct {
	Category domain.Category `yaml:"category"`
	Keywords []string        `yaml:"keywords"`
}

// RulesConfig holds the keyword rule lists driving classification.
type RulesConfig struct {
	Exclude    []string       `yaml:"exclude"`
	Categories []CategoryRule `yaml:"categories"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
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
	cfg.bindTimezone()

	if len(cfg.Rules.Categories) == 0 {
		cfg.Rules = defaultConfig().Rules
	}

	if len(cfg.Sources.Priority) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// Validate enforces the required configuration surface at startup.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(earningsWebhookEnv); v != "" {
		c.Discord.EarningsWebhook = v
	}

	if v := os.Getenv(newsWebhookEnv); v != "" {
		c.Discord.NewsWebhook = v
	}

	if v := os.Getenv(edinetAPIKeyEnv); v != "" {
		c.EDINET.APIKey = v
	}

	if v := os.Getenv(marketDataAPIKeyEnv); v != "" {
		c.MarketData.APIKey = v
	}

	if v := os.Getenv(historyDSNEnv); v != "" {
		c.History.DSN = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Discord.EarningsWebhook != "" {
		base.Discord.EarningsWebhook = override.Discord.EarningsWebhook
	}
	if override.Discord.NewsWebhook != "" {
		base.Discord.NewsWebhook = override.Discord.NewsWebhook
	}

	if override.Ledger.Path != "" {
		base.Ledger.Path = override.Ledger.Path
	}
	if override.Ledger.Capacity > 0 {
		base.Ledger.Capacity = override.Ledger.Capacity
	}

	if override.EDINET.BaseURL != "" {
		base.EDINET.BaseURL = override.EDINET.BaseURL
	}
	if override.EDINET.APIKey != "" {
		base.EDINET.APIKey = override.EDINET.APIKey
	}
	if override.EDINET.LookbackDays > 0 {
		base.EDINET.LookbackDays = override.EDINET.LookbackDays
	}

	if override.TDnet.ListURL != "" {
		base.TDnet = override.TDnet
	}

	if override.MarketData.BaseURL != "" {
		base.MarketData.BaseURL = override.MarketData.BaseURL
	}
	if override.MarketData.APIKey != "" {
		base.MarketData.APIKey = override.MarketData.APIKey
	}
	if override.MarketData.SymbolSuffix != "" {
		base.MarketData.SymbolSuffix = override.MarketData.SymbolSuffix
	}

	if override.History.DSN != "" {
		base.History = override.History
	}

	if len(override.Sources.Priority) > 0 {
		base.Sources = override.Sources
	}

	if len(override.Rules.Exclude) > 0 {
		base.Rules.Exclude = override.Rules.Exclude
	}
	if len(override.Rules.Categories) > 0 {
		base.Rules.Categories = override.Rules.Categories
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{CronExpression: "30 8 * * *", Timezone: defaultTimezone, location: tz},
		Ledger:    LedgerConfig{Path: "sent_ids.json", Capacity: 2000},
		Sources:   SourcesConfig{Priority: []string{"edinet", "tdnet"}},
		EDINET: EDINETConfig{
			BaseURL:      "https://api.edinet-fsa.go.jp/api/v2",
			LookbackDays: 5,
		},
		MarketData: MarketDataConfig{
			BaseURL:      "https://eodhd.com/api",
			SymbolSuffix: ".T",
		},
		Rules: RulesConfig{
			Exclude: []string{
				"有価証券報告書", "四半期報告書", "半期報告書",
				"臨時報告書", "内部統制報告書", "大量保有報告書",
				"変更報告書", "公開買付", "訂正",
			},
			Categories: []CategoryRule{
				{
					Category: domain.CategoryEarnings,
					Keywords: []string{"決算短信", "四半期決算短信", "中間決算短信"},
				},
				{
					Category: domain.CategoryGuidanceRevision,
					Keywords: []string{"上方修正", "下方修正", "業績修正", "業績予想の修正"},
				},
				{
					Category: domain.CategoryRegulatoryEvent,
					Keywords: []string{"薬事", "FDA", "治験", "新薬", "承認取得", "製造販売承認"},
				},
				{
					Category: domain.CategoryAnnualReport,
					Keywords: []string{"統合報告書", "アニュアルレポート", "株主通信"},
				},
				{
					Category: domain.CategorySectorNews,
					Keywords: []string{"業務提携", "資本提携", "合弁会社", "経営統合"},
				},
			},
		},
	}
}
