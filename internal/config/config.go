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
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Tavily     TavilyConfig     `yaml:"tavily" mapstructure:"tavily"`
	Rentcast   RentcastConfig   `yaml:"rentcast" mapstructure:"rentcast"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	OCR        OCRConfig        `yaml:"ocr" mapstructure:"ocr"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// StorageConfig configures uploaded document storage.
type StorageConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	HaikuModel  string `yaml:"haiku_model" mapstructure:"haiku_model"`
	SonnetModel string `yaml:"sonnet_model" mapstructure:"sonnet_model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// TavilyConfig holds Tavily web search settings.
type TavilyConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// RentcastConfig holds Rentcast API settings.
type RentcastConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	RadiusMiles float64 `yaml:"radius_miles" mapstructure:"radius_miles"`
	Limit       int     `yaml:"limit" mapstructure:"limit"`
}

// PhaseConfig bounds one validation phase.
type PhaseConfig struct {
	MaxRounds   int    `yaml:"max_rounds" mapstructure:"max_rounds"`
	SearchDepth string `yaml:"search_depth" mapstructure:"search_depth"`
	MaxResults  int    `yaml:"max_results" mapstructure:"max_results"`
}

// ValidationConfig bounds the two market validation phases.
type ValidationConfig struct {
	Quick PhaseConfig `yaml:"quick" mapstructure:"quick"`
	Deep  PhaseConfig `yaml:"deep" mapstructure:"deep"`
}

// OCRConfig configures PDF text extraction and field normalization.
type OCRConfig struct {
	PdfToTextPath    string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	FieldCatalogPath string `yaml:"field_catalog_path" mapstructure:"field_catalog_path"`
}

// ExportConfig configures generated artifact output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("DEALDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.sonnet_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("tavily.requests_per_sec", 2.0)
	v.SetDefault("rentcast.base_url", "https://api.rentcast.io/v1")
	v.SetDefault("rentcast.radius_miles", 2.0)
	v.SetDefault("rentcast.limit", 10)
	v.SetDefault("validation.quick.max_rounds", 3)
	v.SetDefault("validation.quick.search_depth", "basic")
	v.SetDefault("validation.quick.max_results", 3)
	v.SetDefault("validation.deep.max_rounds", 10)
	v.SetDefault("validation.deep.search_depth", "advanced")
	v.SetDefault("validation.deep.max_results", 5)
	v.SetDefault("ocr.pdftotext_path", "pdftotext")

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
