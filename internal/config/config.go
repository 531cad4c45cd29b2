package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverRedis    = "redis"
	DriverValkey   = "valkey"
	DriverPostgres = "postgres"
)

// Taste extractors.
const (
	ExtractorHash   = "hash"
	ExtractorOpenAI = "openai"
)

// Config holds the matchmaker service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Taste    TasteConfig    `yaml:"taste"`
	Matching MatchingConfig `yaml:"matching"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds profile store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, postgres (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	DSN              string   `yaml:"dsn"` // postgres only
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// TasteConfig selects and tunes the taste extractor.
type TasteConfig struct {
	Extractor  string         `yaml:"extractor"` // hash (default), openai
	Dimensions int            `yaml:"dimensions"`
	TimeoutMs  int            `yaml:"timeout_ms"`
	Breaker    BreakerConfig  `yaml:"breaker"`
	Provider   ProviderConfig `yaml:"provider"`
	Cache      CacheConfig    `yaml:"cache"`
	Budget     BudgetConfig   `yaml:"budget"`
}

// BreakerConfig holds circuit breaker settings for the extractor.
type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold"` // 0 disables the breaker
	OpenTimeoutSec   int `yaml:"open_timeout_sec"`
	HalfOpenRequests int `yaml:"half_open_requests"`
}

// ProviderConfig holds embedding provider settings (openai extractor only).
// Dimensions is the width requested from the model, not the taste width:
// the embedding is folded down to taste.dimensions afterwards.
type ProviderConfig struct {
	Name        string `yaml:"name"`
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"` // 0 = model's native width
	TimeoutSec  int    `yaml:"timeout_sec"`
	Instruction string `yaml:"instruction"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"` // 0 = no expiry
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// MatchingConfig tunes ComputeMatches.
type MatchingConfig struct {
	StoreTimeoutMs int           `yaml:"store_timeout_ms"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	Weights        WeightsConfig `yaml:"weights"`
}

// WeightsConfig holds the score term weights. All zero means the defaults.
type WeightsConfig struct {
	Age      float64 `yaml:"age"`
	Location float64 `yaml:"location"`
	Gender   float64 `yaml:"gender"`
	Taste    float64 `yaml:"taste"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "matchmaker:"
	}
	c.Taste.applyDefaults()
	c.Matching.applyDefaults()
}

func (t *TasteConfig) applyDefaults() {
	if t.Extractor == "" {
		t.Extractor = ExtractorHash
	}
	if t.Dimensions <= 0 {
		t.Dimensions = 5
	}
	if t.TimeoutMs <= 0 {
		t.TimeoutMs = 500
	}
	if t.Breaker.OpenTimeoutSec <= 0 {
		t.Breaker.OpenTimeoutSec = 30
	}
	if t.Breaker.HalfOpenRequests <= 0 {
		t.Breaker.HalfOpenRequests = 1
	}
	if t.Provider.Name == "" {
		t.Provider.Name = "openai"
	}
	if t.Provider.Model == "" {
		t.Provider.Model = "text-embedding-3-small"
	}
	if t.Provider.TimeoutSec <= 0 {
		t.Provider.TimeoutSec = 10
	}
}

func (m *MatchingConfig) applyDefaults() {
	if m.StoreTimeoutMs <= 0 {
		m.StoreTimeoutMs = 2000
	}
	if m.MaxConcurrency <= 0 {
		m.MaxConcurrency = 16
	}
	if m.Weights == (WeightsConfig{}) {
		m.Weights = WeightsConfig{Age: 100, Location: 50, Gender: 30, Taste: 50}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be redis, valkey or postgres, got %q", c.Database.Driver)
	}

	switch c.Taste.Extractor {
	case ExtractorHash:
	case ExtractorOpenAI:
		if c.Taste.Provider.APIKey == "" {
			return fmt.Errorf("taste.provider.api_key is required for extractor %q", ExtractorOpenAI)
		}
		if c.Taste.Provider.Dimensions < 0 {
			return fmt.Errorf("taste.provider.dimensions must not be negative")
		}
		if c.Taste.Cache.Enabled && c.Database.Driver == DriverPostgres {
			return fmt.Errorf("taste.cache requires a redis or valkey database")
		}
	default:
		return fmt.Errorf("taste.extractor must be hash or openai, got %q", c.Taste.Extractor)
	}
	if c.Taste.Breaker.FailureThreshold < 0 {
		return fmt.Errorf("taste.breaker.failure_threshold must not be negative")
	}
	switch c.Taste.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf("taste.budget.action must be \"warn\" or \"reject\", got %q", c.Taste.Budget.Action)
	}

	w := c.Matching.Weights
	if w.Age < 0 || w.Location < 0 || w.Gender < 0 || w.Taste < 0 {
		return fmt.Errorf("matching.weights must not be negative")
	}
	return nil
}

// StoreTimeout returns matching.store_timeout_ms as a duration.
func (m MatchingConfig) StoreTimeout() time.Duration {
	return time.Duration(m.StoreTimeoutMs) * time.Millisecond
}

// Timeout returns taste.timeout_ms as a duration.
func (t TasteConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutMs) * time.Millisecond
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
