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
	Linkup     LinkupConfig     `yaml:"linkup" mapstructure:"linkup"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// LinkupConfig holds Linkup web-search API settings.
type LinkupConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec     float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PerplexityConfig holds Perplexity API settings (fallback answers only).
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	HaikuModel  string `yaml:"haiku_model" mapstructure:"haiku_model"`
	SonnetModel string `yaml:"sonnet_model" mapstructure:"sonnet_model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// DiscoveryConfig configures the candidate discovery stage.
type DiscoveryConfig struct {
	MaxCandidates int `yaml:"max_candidates" mapstructure:"max_candidates"`
	// ExtractRetries is the number of re-asks after an unparsable
	// extraction (0 or 1).
	ExtractRetries int `yaml:"extract_retries" mapstructure:"extract_retries"`
}

// EnrichConfig configures the per-candidate deep dive.
type EnrichConfig struct {
	// SearchAttempts bounds follow-up searches per attribute (2-5).
	SearchAttempts int `yaml:"search_attempts" mapstructure:"search_attempts"`
	// SnippetLimit caps evidence characters fed to extraction per attribute.
	SnippetLimit int `yaml:"snippet_limit" mapstructure:"snippet_limit"`
}

// PipelineConfig configures orchestration.
type PipelineConfig struct {
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("linkup.key", "")
	v.SetDefault("perplexity.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("linkup.base_url", "https://api.linkup.so/v1")
	v.SetDefault("linkup.rate_per_sec", 5)
	v.SetDefault("linkup.timeout_secs", 30)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.sonnet_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("discovery.max_candidates", 10)
	v.SetDefault("discovery.extract_retries", 1)
	v.SetDefault("enrich.search_attempts", 3)
	v.SetDefault("enrich.snippet_limit", 6000)
	v.SetDefault("pipeline.max_workers", 3)

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

// Validate checks that the credentials the pipeline depends on are set.
func (c *Config) Validate() error {
	if c.Linkup.Key == "" {
		return eris.New("config: linkup.key is required (SCOUT_LINKUP_KEY)")
	}
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic.key is required (SCOUT_ANTHROPIC_KEY)")
	}
	return nil
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
