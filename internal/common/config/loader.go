// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// on top, expands ${VAR} placeholders and applies defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working
// directory, so tests under test/e2e pick up the root file too.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from well-known env names when the YAML
// left them blank.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty := func(dst *string, envs ...string) {
		if *dst != "" {
			return
		}
		for _, name := range envs {
			if val := os.Getenv(name); val != "" {
				*dst = val
				return
			}
		}
	}

	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.Acquisition.APIToken, "NIL_API_TOKEN")

	switch cfg.Qualitative.Provider {
	case ProviderGemini:
		setIfEmpty(&cfg.Qualitative.APIKey, "QUALITATIVE_API_KEY", "GEMINI_API_KEY")
	default:
		setIfEmpty(&cfg.Qualitative.APIKey, "QUALITATIVE_API_KEY", "ANTHROPIC_API_KEY")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "nil-matching"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if cfg.Database.Elasticsearch.AthleteIndex == "" {
		cfg.Database.Elasticsearch.AthleteIndex = "athletes"
	}

	if cfg.Acquisition.Source == "" {
		cfg.Acquisition.Source = SourceAPI
	}
	if cfg.Acquisition.Timeout == 0 {
		cfg.Acquisition.Timeout = 30000
	}
	if cfg.Acquisition.MaxRetries == 0 {
		cfg.Acquisition.MaxRetries = 2
	}
	if cfg.Acquisition.PageSize == 0 {
		cfg.Acquisition.PageSize = 100
	}

	if cfg.Qualitative.Provider == "" {
		cfg.Qualitative.Provider = ProviderClaude
	}
	if cfg.Qualitative.MaxTokens == 0 {
		cfg.Qualitative.MaxTokens = 1000
	}
	if cfg.Qualitative.Temperature == 0 {
		cfg.Qualitative.Temperature = 0.3
	}
	if cfg.Qualitative.Timeout == 0 {
		cfg.Qualitative.Timeout = 30000
	}
	if cfg.Qualitative.Weight == 0 {
		cfg.Qualitative.Weight = 0.3
	}
	if cfg.Qualitative.RateLimit > 0 && cfg.Qualitative.RateBurst == 0 {
		cfg.Qualitative.RateBurst = 1
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	switch cfg.Acquisition.Source {
	case SourceAPI:
		if cfg.Acquisition.BaseURL == "" {
			return fmt.Errorf("acquisition.base_url is required for the api source")
		}
	case SourcePostgres:
		if !cfg.Database.Postgres.Enabled() || cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.host and database are required for the postgres source")
		}
	default:
		return fmt.Errorf("acquisition.source must be %q or %q: got %q", SourceAPI, SourcePostgres, cfg.Acquisition.Source)
	}

	switch cfg.Qualitative.Provider {
	case ProviderClaude, ProviderGemini:
	default:
		return fmt.Errorf("qualitative.provider must be %q or %q: got %q", ProviderClaude, ProviderGemini, cfg.Qualitative.Provider)
	}
	if cfg.Qualitative.RateLimit < 0 {
		return fmt.Errorf("qualitative.rate_limit must not be negative")
	}
	if cfg.Qualitative.Weight < 0 || cfg.Qualitative.Weight > 1 {
		return fmt.Errorf("qualitative.weight must be within [0,1]")
	}
	if cfg.Qualitative.Temperature < 0 || cfg.Qualitative.Temperature > 1 {
		return fmt.Errorf("qualitative.temperature must be within [0,1]")
	}
	if cfg.Matching.Concurrency < 0 {
		return fmt.Errorf("matching.concurrency must not be negative")
	}
	return nil
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
