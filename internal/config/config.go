// Package config loads the application configuration from file and
// environment and owns global logger initialization.
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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Router    RouterConfig    `yaml:"router" mapstructure:"router"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the question-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// DataConfig locates the dataset files. Locations are local paths or
// ftp:// URLs; UT is optional.
type DataConfig struct {
	PNL      string `yaml:"pnl" mapstructure:"pnl"`
	UT       string `yaml:"ut" mapstructure:"ut"`
	Sheet    string `yaml:"sheet" mapstructure:"sheet"`
	SkipRows int    `yaml:"skip_rows" mapstructure:"skip_rows"`
	// Prompts points at a local YAML prompt bank; it takes precedence
	// over the Notion source and the built-in bank.
	Prompts string `yaml:"prompts" mapstructure:"prompts"`
}

// NotionConfig holds Notion API credentials and the prompt-bank
// database ID. When unset, the built-in prompt bank is used.
type NotionConfig struct {
	Token    string `yaml:"token" mapstructure:"token"`
	PromptDB string `yaml:"prompt_db" mapstructure:"prompt_db"`
}

// JinaConfig holds the embeddings API settings.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings for the optional
// narrative layer.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// RouterConfig tunes routing behavior.
type RouterConfig struct {
	Threshold                 float64 `yaml:"threshold" mapstructure:"threshold"`
	FreeformBypassesOverrides bool    `yaml:"freeform_bypasses_overrides" mapstructure:"freeform_bypasses_overrides"`
}

// ServerConfig configures the HTTP API.
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
	v.SetEnvPrefix("AIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "aide.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("data.skip_rows", 0)
	v.SetDefault("jina.base_url", "https://api.jina.ai")
	v.SetDefault("jina.model", "jina-embeddings-v3")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("router.threshold", 0.72)
	v.SetDefault("router.freeform_bypasses_overrides", false)

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
