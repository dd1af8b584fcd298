package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// ScrapeConfig holds the scrape pipeline defaults.
type ScrapeConfig struct {
	Results        int    `mapstructure:"results"`
	Depth          int    `mapstructure:"depth"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Headless       bool   `mapstructure:"headless"`
	ProfileDir     string `mapstructure:"profile_dir"`
	MaxScrolls     int    `mapstructure:"max_scrolls"`
}

// OpenAIConfig holds inference settings. The API key never lives in the
// config file; it comes from the environment or a .env file.
type OpenAIConfig struct {
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig holds log rotation settings.
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig holds dataset output settings.
type OutputConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// Load reads the configuration, falling back to defaults when no config
// file is present.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".psyduck"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scrape.results", 10)
	v.SetDefault("scrape.depth", 0)
	v.SetDefault("scrape.timeout_seconds", 900)
	v.SetDefault("scrape.headless", true)
	v.SetDefault("scrape.profile_dir", filepath.Join("data", "browser_profiles"))
	v.SetDefault("scrape.max_scrolls", 8)

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 4096)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("output.data_dir", "data")
}
