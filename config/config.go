package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by Find
const FileName = "config.yaml"

// Config holds the application configuration
type Config struct {
	LLM          LLMConfig          `yaml:"llm"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache"`
	Database     DatabaseConfig     `yaml:"database"`
	Server       ServerConfig       `yaml:"server"`
	Output       OutputConfig       `yaml:"output"`
}

type LLMConfig struct {
	APIKey              string  `yaml:"api_key"`
	Model               string  `yaml:"model"`
	BaseURL             string  `yaml:"base_url"`
	Temperature         float32 `yaml:"temperature"`
	MaxTokensPerRequest int     `yaml:"max_tokens_per_request"`
	TimeoutSeconds      int     `yaml:"timeout_seconds"`
}

type RateLimitingConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

// CacheConfig selects where parsed schemas are cached. Backend is "file" or "redis".
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Backend       string `yaml:"backend"`
	Directory     string `yaml:"directory"`
	TTLHours      int    `yaml:"ttl_hours"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// ServerConfig configures the HTTP API. RequestsPerSecond limits schema
// generation per client IP; 0 disables the limit.
type ServerConfig struct {
	Address           string  `yaml:"address"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type OutputConfig struct {
	Directory   string `yaml:"directory"`
	SaveResults bool   `yaml:"save_results"`
}

// Default returns the configuration used when no config file exists. The
// API key is read from OPENAI_API_KEY.
func Default() *Config {
	loadDotEnv()

	return &Config{
		LLM: LLMConfig{
			APIKey:              os.Getenv("OPENAI_API_KEY"),
			Model:               "gpt-4o-mini",
			Temperature:         0.3,
			MaxTokensPerRequest: 2048,
			TimeoutSeconds:      120,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerMinute: 30,
			RequestsPerDay:    1000,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Backend:   "file",
			Directory: ".cache",
			TTLHours:  24,
			RedisAddr: "localhost:6379",
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: 4,
		},
		Server: ServerConfig{
			Address:           ":8080",
			RequestsPerSecond: 2,
		},
		Output: OutputConfig{
			Directory: "output",
		},
	}
}

// LoadConfig loads configuration from YAML file with environment variable substitution.
// Values missing from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Substitute environment variables
	content := expandEnvVars(string(data))

	// Parse YAML
	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Find loads the config file at path when given, otherwise searches the
// current directory and its parent for config.yaml. Without a file the
// defaults are used.
func Find(path string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	configPaths := []string{
		filepath.Join(cwd, FileName),       // Current directory
		filepath.Join(cwd, "..", FileName), // Parent directory
	}

	for _, candidate := range configPaths {
		if _, err := os.Stat(candidate); err == nil {
			return LoadConfig(candidate)
		}
	}

	config := Default()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM model is required")
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM temperature must be between 0 and 2")
	}

	if c.RateLimiting.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests per minute must be positive")
	}

	if c.RateLimiting.RequestsPerDay <= 0 {
		return fmt.Errorf("requests per day must be positive")
	}

	if c.Server.RequestsPerSecond < 0 {
		return fmt.Errorf("server requests per second must not be negative")
	}

	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case "file":
			if c.Cache.Directory == "" {
				return fmt.Errorf("cache directory is required for the file backend")
			}
		case "redis":
			if c.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required for the redis backend")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
		}
	}

	return nil
}

// RequireAPIKey reports a descriptive error when no API key is configured
func (c *Config) RequireAPIKey() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured. Please set OPENAI_API_KEY environment variable or update %s", FileName)
	}
	return nil
}

// GetCacheTTL returns the cache TTL as a time.Duration
func (c *Config) GetCacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// GetRequestTimeout returns the per-request LLM timeout
func (c *Config) GetRequestTimeout() time.Duration {
	if c.LLM.TimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// runModelCalls is the number of sequential model calls in one generation:
// schema, example queries and optimizations
const runModelCalls = 3

// GetRunTimeout returns the deadline for a whole generation run, enough for
// every model call to use its full request timeout
func (c *Config) GetRunTimeout() time.Duration {
	return runModelCalls * c.GetRequestTimeout()
}

// loadDotEnv loads a .env file if it exists
func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		// Only log if the error is NOT "file not found"
		if !os.IsNotExist(err) {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}
}

// expandEnvVars expands environment variables in the format ${VAR_NAME}
func expandEnvVars(content string) string {
	return os.Expand(content, func(key string) string {
		return os.Getenv(key)
	})
}
