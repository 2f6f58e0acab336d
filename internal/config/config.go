package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the learnhub API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	AI       AIConfig       `yaml:"ai"`
	Serper   SerperConfig   `yaml:"serper"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
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

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	DSN              string `yaml:"dsn"`
	MaxConns         int    `yaml:"max_conns"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds Redis cache settings. Optional: with no addrs the
// enhancement cache and budget persistence are disabled.
type CacheConfig struct {
	Addrs             []string `yaml:"addrs"`
	Password          string   `yaml:"password"`
	EnhancementTTLSec int      `yaml:"enhancement_ttl_sec"`
	ReadinessTimeout  int      `yaml:"readiness_timeout_sec"`
}

// BudgetConfig holds LLM token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64 `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64 `yaml:"monthly_token_limit"` // 0 = unlimited
	// Per-million-token prices for analytics rows, per model family.
	CostPerMillionTokens         float64 `yaml:"cost_per_million_tokens"`
	ReasonerCostPerMillionTokens float64 `yaml:"reasoner_cost_per_million_tokens"`
	Action                       string  `yaml:"action"` // "reject" | "warn" (default)
}

// AIConfig holds LLM provider settings (DeepSeek over the OpenAI-compatible API).
type AIConfig struct {
	Provider      string       `yaml:"provider"`
	APIKey        string       `yaml:"api_key"`
	BaseURL       string       `yaml:"base_url"`
	ChatModel     string       `yaml:"chat_model"`
	ReasonerModel string       `yaml:"reasoner_model"`
	TimeoutSec    int          `yaml:"timeout_sec"`
	Budget        BudgetConfig `yaml:"budget"`
}

// SerperConfig holds web-search provider settings. An empty api_key disables
// live search: the resource finder then runs on trending fallback data only.
type SerperConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SearchConfig holds search pipeline tuning.
type SearchConfig struct {
	PerSourceLimit   int `yaml:"per_source_limit"`
	DefaultLimit     int `yaml:"default_limit"`
	MaxLimit         int `yaml:"max_limit"`
	SourceTimeoutSec int `yaml:"source_timeout_sec"`
	LogTimeoutSec    int `yaml:"log_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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
		// Enhancement calls ride inside the request, so the write timeout
		// must cover the LLM timeout.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 8
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.EnhancementTTLSec <= 0 {
		c.Cache.EnhancementTTLSec = 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "deepseek"
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.deepseek.com/v1"
	}
	if c.AI.ChatModel == "" {
		c.AI.ChatModel = "deepseek-chat"
	}
	if c.AI.ReasonerModel == "" {
		c.AI.ReasonerModel = "deepseek-reasoner"
	}
	if c.AI.TimeoutSec <= 0 {
		c.AI.TimeoutSec = 45
	}
	if c.AI.Budget.CostPerMillionTokens <= 0 {
		c.AI.Budget.CostPerMillionTokens = 0.27
	}
	if c.AI.Budget.ReasonerCostPerMillionTokens <= 0 {
		c.AI.Budget.ReasonerCostPerMillionTokens = 0.55
	}
	if c.Serper.BaseURL == "" {
		c.Serper.BaseURL = "https://google.serper.dev"
	}
	if c.Serper.TimeoutSec <= 0 {
		c.Serper.TimeoutSec = 10
	}
	if c.Search.PerSourceLimit <= 0 {
		c.Search.PerSourceLimit = 5
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 50
	}
	if c.Search.SourceTimeoutSec <= 0 {
		c.Search.SourceTimeoutSec = 5
	}
	if c.Search.LogTimeoutSec <= 0 {
		c.Search.LogTimeoutSec = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	switch c.AI.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"ai.budget.action must be \"warn\" or \"reject\", got %q",
			c.AI.Budget.Action,
		)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf(
			"search.default_limit (%d) must not exceed search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit,
		)
	}
	return nil
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
