package model

import (
	"fmt"
	"time"
)

// Config is the complete n4lint configuration
type Config struct {
	Vocabulary   VocabularyConfig   `yaml:"vocabulary" mapstructure:"vocabulary"`
	Suggest      SuggestConfig      `yaml:"suggest" mapstructure:"suggest"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// VocabularyConfig lists where arrow phrases are loaded from
type VocabularyConfig struct {
	// Sources are file paths, directories, globs, http(s) URLs or "builtin"
	Sources []string `yaml:"sources" mapstructure:"sources"`
	// KeywordsFile is an optional YAML map of phrase -> extra keywords
	KeywordsFile string `yaml:"keywords_file" mapstructure:"keywords_file"`
	// LoadWorkers bounds concurrent source reads within one load
	LoadWorkers int `yaml:"load_workers" mapstructure:"load_workers"`
}

// SuggestConfig controls the suggestion engine
type SuggestConfig struct {
	Limit        int  `yaml:"limit" mapstructure:"limit"`
	Alternatives bool `yaml:"alternatives" mapstructure:"alternatives"` // Suggest for valid arrows too
}

// HTTPConfig applies to http(s) vocabulary sources
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// RateLimitingConfig is applied per source host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls caching of remote sources and annotation results
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Vocabulary: VocabularyConfig{
			Sources:     []string{"builtin"},
			LoadWorkers: 4,
		},
		Suggest: SuggestConfig{
			Limit: 5,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "n4lint/0.1 (+https://github.com/ppiankov/n4lint)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".n4lint-cache",
			TTL:       24 * time.Hour,
			MemoryTTL: 10 * time.Minute,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if len(c.Vocabulary.Sources) == 0 {
		return fmt.Errorf("vocabulary.sources must list at least one location")
	}
	if c.Vocabulary.LoadWorkers <= 0 {
		return fmt.Errorf("vocabulary.load_workers must be positive, got %d", c.Vocabulary.LoadWorkers)
	}
	if c.Suggest.Limit <= 0 {
		return fmt.Errorf("suggest.limit must be positive, got %d", c.Suggest.Limit)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body_bytes must be positive")
	}
	if c.RateLimiting.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limiting.requests_per_second must be positive")
	}
	return nil
}
