package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound = errors.New("could not find stargazer.toml in any config path")
	ErrMissingToken       = errors.New("GITHUB_TOKEN environment variable is not set")
	ErrNoRepos            = errors.New("no repositories configured")
)

// TokenEnvVar is the environment variable holding the GitHub API token.
const TokenEnvVar = "GITHUB_TOKEN"

// Config represents the entire pipeline configuration.
type Config struct {
	// Repositories to crawl, as "owner/name" slugs.
	Repos  []string `koanf:"repos"`
	Log    Log      `koanf:"log"`
	Cache  Cache    `koanf:"cache"`
	Fetch  Fetch    `koanf:"fetch"`
	Output Output   `koanf:"output"`

	// GitHub API token, read from the environment, never from the file.
	Token string `koanf:"-"`
}

// Log contains logging configuration.
type Log struct {
	// Log level (debug, info, warn, error).
	Level string `koanf:"level"`
}

// Cache contains durable cache configuration.
type Cache struct {
	// Path of the JSON cache file.
	Path string `koanf:"path"`
	// Entry time-to-live in hours.
	TTLHours int `koanf:"ttl_hours"`
}

// TTL returns the cache entry time-to-live as a duration.
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// Fetch contains upstream API and batching configuration.
type Fetch struct {
	// Base URL of the GitHub REST API.
	APIURL string `koanf:"api_url"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Stargazer page size per request.
	PageSize int `koanf:"page_size"`
	// Hard cap on stargazers collected per repository.
	MaxStargazersPerRepo int `koanf:"max_stargazers_per_repo"`
	// Delay after each repository fetch in milliseconds.
	RepoDelay int `koanf:"repo_delay"`
	// Number of users enriched concurrently per batch.
	BatchSize int `koanf:"batch_size"`
	// Delay between enrichment batches in milliseconds.
	BatchDelay int `koanf:"batch_delay"`
	// Wait before retrying a rate-limited request, in milliseconds.
	RateLimitDelay int `koanf:"rate_limit_delay"`
	// Total attempts per rate-limited request before the unit is skipped.
	MaxAttempts int `koanf:"max_attempts"`
	// Cache flush interval, in enrichment batches.
	FlushEveryBatches int `koanf:"flush_every_batches"`
}

// Output contains final artifact configuration.
type Output struct {
	// Path of the intelligence JSON artifact.
	Path string `koanf:"path"`
}

// LoadConfig reads stargazer.toml from the given path, or from the default
// search paths when path is empty, and resolves the API token from the
// environment. A missing token is a fatal precondition.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else {
		configPaths := []string{
			"stargazer.toml",
			"config/stargazer.toml",
			"/etc/stargazer/stargazer.toml",
		}

		loaded := false

		for _, configPath := range configPaths {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				loaded = true
				break
			}
		}

		if !loaded {
			return nil, ErrConfigFileNotFound
		}
	}

	config := defaultConfig()
	if err := k.Unmarshal("", config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Token = os.Getenv(TokenEnvVar)
	if config.Token == "" {
		return nil, ErrMissingToken
	}

	if len(config.Repos) == 0 {
		return nil, ErrNoRepos
	}

	return config, nil
}

// defaultConfig returns a config populated with the pipeline defaults.
// File values override these during unmarshal.
func defaultConfig() *Config {
	return &Config{
		Log: Log{
			Level: "info",
		},
		Cache: Cache{
			Path:     "data/stargazer-cache.json",
			TTLHours: 168,
		},
		Fetch: Fetch{
			APIURL:               "https://api.github.com",
			RequestTimeout:       30000,
			PageSize:             100,
			MaxStargazersPerRepo: 1000,
			RepoDelay:            1000,
			BatchSize:            20,
			BatchDelay:           1000,
			RateLimitDelay:       15000,
			MaxAttempts:          3,
			FlushEveryBatches:    5,
		},
		Output: Output{
			Path: "data/stargazer-intelligence.json",
		},
	}
}
