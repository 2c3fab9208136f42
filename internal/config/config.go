package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Directory struct {
		APIKey         string  `mapstructure:"api_key"`
		BaseURL        string  `mapstructure:"base_url"` // defaults to the public Places endpoint
		TimeoutSeconds int     `mapstructure:"timeout_seconds"`
		MaxResults     int     `mapstructure:"max_results"`
		MinRating      float64 `mapstructure:"min_rating"` // 0 disables the rating filter
		Cache          struct {
			Enabled    bool   `mapstructure:"enabled"`
			Backend    string `mapstructure:"backend"` // "memory" or "redis"
			Size       int    `mapstructure:"size"`
			TTLSeconds int    `mapstructure:"ttl_seconds"`
		} `mapstructure:"cache"`
	} `mapstructure:"directory"`

	Composer struct {
		Provider       string `mapstructure:"provider"` // "openai", "gemini" or "none"
		Model          string `mapstructure:"model"`
		OpenaiApiKey   string `mapstructure:"openai_api_key"`
		GeminiApiKey   string `mapstructure:"gemini_api_key"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"composer"`

	Rules struct {
		// Optional PostgreSQL DSN; empty means the compiled-in rule set.
		DatabaseDSN string `mapstructure:"database_dsn"`
	} `mapstructure:"rules"`

	Search struct {
		DefaultRadiusMeters int     `mapstructure:"default_radius_meters"`
		RadiusGraceFactor   float64 `mapstructure:"radius_grace_factor"`
		AlternativeLimit    int     `mapstructure:"alternative_limit"`
	} `mapstructure:"search"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
}

func LoadConfig() (*Config, error) {
	// A local .env is convenient in development; absence is not an error.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.BindEnv("directory.api_key", "GOOGLE_PLACES_API_KEY")
	viper.BindEnv("composer.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("composer.gemini_api_key", "GEMINI_API_KEY")
	viper.BindEnv("rules.database_dsn", "RULES_DATABASE_DSN")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("directory.timeout_seconds", 10)
	viper.SetDefault("directory.max_results", 20)
	viper.SetDefault("directory.cache.enabled", true)
	viper.SetDefault("directory.cache.backend", "memory")
	viper.SetDefault("directory.cache.size", 50)
	viper.SetDefault("directory.cache.ttl_seconds", 300)
	viper.SetDefault("composer.provider", "none")
	viper.SetDefault("composer.timeout_seconds", 8)
	viper.SetDefault("search.default_radius_meters", 500)
	viper.SetDefault("search.radius_grace_factor", 1.5)
	viper.SetDefault("search.alternative_limit", 3)
}

// DirectoryTimeout returns the directory call timeout as a duration.
func (c *Config) DirectoryTimeout() time.Duration {
	return time.Duration(c.Directory.TimeoutSeconds) * time.Second
}

// ComposerTimeout returns the composer call timeout as a duration.
func (c *Config) ComposerTimeout() time.Duration {
	return time.Duration(c.Composer.TimeoutSeconds) * time.Second
}

// CacheTTL returns the directory cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Directory.Cache.TTLSeconds) * time.Second
}
