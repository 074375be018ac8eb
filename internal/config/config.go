package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig holds settings for link discovery and page rendering.
type CrawlerConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// RequestsPerSecond of 0 means unlimited.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	FollowRobotsTxt   bool    `mapstructure:"follow_robots_txt"`
}

// LLMConfig holds the text-reformatting API settings.
type LLMConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
	// SkipEmpty drops entries whose reformatted body is empty instead of
	// appending an empty block.
	SkipEmpty bool `mapstructure:"skip_empty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "console" or "json"
	OutputPath string `mapstructure:"output_path"`
}

// ErrMissingAPIKey is returned by Validate when no LLM credential is configured.
var ErrMissingAPIKey = errors.New("llm.api_key is not set (export GOOGLE_API_KEY or add it to .env)")

// Load reads configuration from .env files, an optional YAML file and the
// environment, in increasing order of precedence.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.sitescribe")
	}

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// loadEnvFiles loads .env.local then .env; existing variables are never
// overwritten, so the real environment wins.
func loadEnvFiles() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.user_agent", "Mozilla/5.0")
	v.SetDefault("crawler.timeout", "30s")
	v.SetDefault("crawler.requests_per_second", 0)
	v.SetDefault("crawler.follow_robots_txt", false)

	v.SetDefault("llm.endpoint", "https://generativelanguage.googleapis.com/")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.timeout", "120s")

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.skip_empty", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_path", "stderr")
}

func bindEnvVars(v *viper.Viper) error {
	v.SetEnvPrefix("SITESCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("llm.api_key", "SITESCRIBE_LLM_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return fmt.Errorf("bind llm.api_key: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.LLM.Endpoint == "" {
		return fmt.Errorf("llm.endpoint must be set")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must be set")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	if c.Crawler.Timeout <= 0 {
		return fmt.Errorf("crawler.timeout must be positive")
	}
	if c.Crawler.RequestsPerSecond < 0 {
		return fmt.Errorf("crawler.requests_per_second must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format)
	}
	return nil
}
