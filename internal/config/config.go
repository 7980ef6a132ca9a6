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

// Config holds the talentdex API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Search   SearchConfig   `yaml:"search"`
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

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// LLMConfig holds inference provider settings.
type LLMConfig struct {
	APIKey             string  `yaml:"api_key"`
	BaseURL            string  `yaml:"base_url"`
	CompileModel       string  `yaml:"compile_model"`
	RerankModel        string  `yaml:"rerank_model"`
	CompileTemperature float32 `yaml:"compile_temperature"`
	RerankTemperature  float32 `yaml:"rerank_temperature"`
}

// SearchConfig holds pipeline tuning. The slice-vs-research thresholds are
// product tuning choices, not derived invariants, so they stay configurable.
type SearchConfig struct {
	PageSize           int `yaml:"page_size"`            // items per result page
	BatchSize          int `yaml:"batch_size"`           // pool fetch window
	ReviewCap          int `yaml:"review_cap"`           // max candidates sent to rerank
	RefineRowCap       int `yaml:"refine_row_cap"`       // first-pass row limit (100-300)
	PollIntervalMs     int `yaml:"poll_interval_ms"`     // job poll interval
	ExecutionBudgetSec int `yaml:"execution_budget_sec"` // job wall-clock budget
	RerankWorkers      int `yaml:"rerank_workers"`       // concurrent scoring calls
	Tier2MinPool       int `yaml:"tier2_min_pool"`       // tier 2 trigger: pool below this
	Tier3MinPool       int `yaml:"tier3_min_pool"`       // tier 3 trigger: pool below this
	BroadLimitBoost    int `yaml:"broad_limit_boost"`    // tier 3 limit escalation
	ScoreSumFloor      int `yaml:"score_sum_floor"`      // slice-vs-research boundary
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
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
		// Page resolutions can compile, execute, and rerank before replying.
		c.HTTP.WriteTimeoutSec = 180
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.LLM.CompileModel == "" {
		c.LLM.CompileModel = "gpt-4o-mini"
	}
	if c.LLM.RerankModel == "" {
		c.LLM.RerankModel = c.LLM.CompileModel
	}
	if c.LLM.CompileTemperature <= 0 {
		c.LLM.CompileTemperature = 0.2
	}
	if c.LLM.RerankTemperature <= 0 {
		c.LLM.RerankTemperature = 0.1
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 10
	}
	if c.Search.BatchSize <= 0 {
		c.Search.BatchSize = 50
	}
	if c.Search.ReviewCap <= 0 {
		c.Search.ReviewCap = 50
	}
	if c.Search.RefineRowCap <= 0 {
		c.Search.RefineRowCap = 200
	}
	if c.Search.PollIntervalMs <= 0 {
		c.Search.PollIntervalMs = 1500
	}
	if c.Search.ExecutionBudgetSec <= 0 {
		c.Search.ExecutionBudgetSec = 90
	}
	if c.Search.RerankWorkers <= 0 {
		c.Search.RerankWorkers = 16
	}
	if c.Search.Tier2MinPool <= 0 {
		c.Search.Tier2MinPool = 10
	}
	if c.Search.Tier3MinPool <= 0 {
		c.Search.Tier3MinPool = 5
	}
	if c.Search.BroadLimitBoost <= 0 {
		c.Search.BroadLimitBoost = 50
	}
	if c.Search.ScoreSumFloor <= 0 {
		c.Search.ScoreSumFloor = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "talentdex:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.Search.RefineRowCap < 100 || c.Search.RefineRowCap > 300 {
		return fmt.Errorf("search.refine_row_cap must be between 100 and 300, got %d", c.Search.RefineRowCap)
	}
	if c.Search.PageSize > c.Search.BatchSize {
		return fmt.Errorf("search.page_size %d exceeds batch_size %d", c.Search.PageSize, c.Search.BatchSize)
	}
	if c.Search.Tier3MinPool > c.Search.Tier2MinPool {
		return fmt.Errorf("search.tier3_min_pool %d exceeds tier2_min_pool %d",
			c.Search.Tier3MinPool, c.Search.Tier2MinPool)
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
