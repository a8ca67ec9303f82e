package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/cryguy/jsrun/internal/core"
)

var validate = validator.New()

type ServerConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr" validate:"required"`
	MaxConns     int    `mapstructure:"max_conns" yaml:"max_conns" validate:"gte=0"`
	IDEPath      string `mapstructure:"ide_path" yaml:"ide_path"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes" validate:"gt=0"`
	StrictStatus bool   `mapstructure:"strict_status" yaml:"strict_status"`
	Compress     bool   `mapstructure:"compress" yaml:"compress"`
}

type EngineConfig struct {
	ExecutionTimeoutMS int      `mapstructure:"execution_timeout_ms" yaml:"execution_timeout_ms" validate:"gte=0"`
	Console            bool     `mapstructure:"console" yaml:"console"`
	V8Flags            []string `mapstructure:"v8_flags" yaml:"v8_flags"`
	MaxLogEntries      int      `mapstructure:"max_log_entries" yaml:"max_log_entries" validate:"gte=0,lte=100000"`
}

type HistoryConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	DBPath      string `mapstructure:"db_path" yaml:"db_path" validate:"required_if=Enabled true"`
	RecentLimit int    `mapstructure:"recent_limit" yaml:"recent_limit" validate:"gt=0,lte=1000"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
}

// Load reads configuration. With an empty path it looks for jsrun.yaml in
// the working directory and $HOME/.jsrun and falls back to defaults when
// none exists; an explicit path must exist. JSRUN_* environment variables
// override file values (JSRUN_SERVER_ADDR, JSRUN_ENGINE_CONSOLE, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("jsrun")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.jsrun")
	}

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.max_conns", 0)
	v.SetDefault("server.ide_path", "")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.strict_status", false)
	v.SetDefault("server.compress", true)
	v.SetDefault("engine.execution_timeout_ms", 5000)
	v.SetDefault("engine.console", false)
	v.SetDefault("engine.v8_flags", []string{})
	v.SetDefault("engine.max_log_entries", core.MaxLogEntries)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.db_path", filepath.Join(os.Getenv("HOME"), ".jsrun", "history.db"))
	v.SetDefault("history.recent_limit", 50)

	v.SetEnvPrefix("JSRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// EngineConfig converts the engine section for the script engine.
func (c *Config) EngineConfig() core.EngineConfig {
	return core.EngineConfig{
		ExecutionTimeout: c.Engine.ExecutionTimeoutMS,
		Console:          c.Engine.Console,
		MaxLogEntries:    c.Engine.MaxLogEntries,
		V8Flags:          c.Engine.V8Flags,
	}
}
