package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	// Directory config
	if c.Directory.APIKey == "" {
		return errors.New("directory.api_key is required")
	}
	if c.Directory.TimeoutSeconds <= 0 {
		return errors.New("directory.timeout_seconds must be a positive integer")
	}
	if c.Directory.MaxResults <= 0 {
		return errors.New("directory.max_results must be a positive integer")
	}
	if c.Directory.MinRating < 0 || c.Directory.MinRating > 5 {
		return fmt.Errorf("directory.min_rating (%.1f) must be between 0 and 5", c.Directory.MinRating)
	}
	if c.Directory.Cache.Enabled {
		switch c.Directory.Cache.Backend {
		case "memory":
			if c.Directory.Cache.Size <= 0 {
				return errors.New("directory.cache.size must be positive when the memory backend is enabled")
			}
		case "redis":
			if c.Redis.Address == "" {
				return errors.New("redis.address is required when directory.cache.backend is 'redis'")
			}
		default:
			return fmt.Errorf("unknown directory cache backend: %s", c.Directory.Cache.Backend)
		}
		if c.Directory.Cache.TTLSeconds <= 0 {
			return errors.New("directory.cache.ttl_seconds must be a positive integer")
		}
	}

	// Composer config
	switch c.Composer.Provider {
	case "openai":
		if c.Composer.OpenaiApiKey == "" {
			return errors.New("composer.openai_api_key is required when composer.provider is 'openai'")
		}
	case "gemini":
		if c.Composer.GeminiApiKey == "" {
			return errors.New("composer.gemini_api_key is required when composer.provider is 'gemini'")
		}
	case "none":
		// Fallback-only composition; nothing to check.
	default:
		return fmt.Errorf("unknown or unsupported composer provider: %s", c.Composer.Provider)
	}
	if c.Composer.TimeoutSeconds <= 0 {
		return errors.New("composer.timeout_seconds must be a positive integer")
	}

	// Search config
	if c.Search.DefaultRadiusMeters < 100 || c.Search.DefaultRadiusMeters > 5000 {
		return fmt.Errorf("search.default_radius_meters (%d) must be between 100 and 5000", c.Search.DefaultRadiusMeters)
	}
	if c.Search.RadiusGraceFactor < 1.0 {
		return errors.New("search.radius_grace_factor must be at least 1.0")
	}
	if c.Search.AlternativeLimit <= 0 {
		return errors.New("search.alternative_limit must be a positive integer")
	}

	return nil
}
