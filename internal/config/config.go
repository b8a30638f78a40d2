// Package config loads application configuration from file and
// environment, and initializes the global logger. Configuration is
// constructed once at process start and passed down explicitly — the
// matching and orchestration packages never read ambient environment
// state themselves.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	TCGPlayer  TCGPlayerConfig  `yaml:"tcgplayer" mapstructure:"tcgplayer"`
	CardTrader CardTraderConfig `yaml:"cardtrader" mapstructure:"cardtrader"`
	UPCFeed    UPCFeedConfig    `yaml:"upcfeed" mapstructure:"upcfeed"`
	Match      MatchConfig      `yaml:"match" mapstructure:"match"`
	Map        MapConfig        `yaml:"map" mapstructure:"map"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// TCGPlayerConfig holds TCGplayer API settings.
type TCGPlayerConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CardTraderConfig holds CardTrader API settings.
type CardTraderConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// UPCFeedConfig holds the UPC scraper feed settings.
type UPCFeedConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// MatchConfig holds the tunable matching thresholds.
type MatchConfig struct {
	StagingThreshold float64 `yaml:"staging_threshold" mapstructure:"staging_threshold"`
}

// MapConfig configures the bulk marketplace-mapping flow.
type MapConfig struct {
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
	// DelaySecs is the politeness interval between marketplace calls.
	DelaySecs float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
	// AutoVerify selects the post-match trust policy: verify entries
	// immediately, or stage proposals for manual review.
	AutoVerify bool `yaml:"auto_verify" mapstructure:"auto_verify"`
	// MaxBatches caps multi-batch runs so they always terminate.
	MaxBatches int `yaml:"max_batches" mapstructure:"max_batches"`
}

// SearchConfig bounds individual adapter search calls.
type SearchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries     int `yaml:"retries" mapstructure:"retries"`
}

// ServerConfig configures the HTTP facade.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "catalog.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("tcgplayer.base_url", "https://api.tcgplayer.com")
	v.SetDefault("cardtrader.base_url", "https://api.cardtrader.com/api/v2")
	v.SetDefault("match.staging_threshold", 0.30)
	v.SetDefault("map.batch_size", 20)
	v.SetDefault("map.delay_secs", 1.5)
	v.SetDefault("map.auto_verify", false)
	v.SetDefault("map.max_batches", 50)
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("search.retries", 1)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
