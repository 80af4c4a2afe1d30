package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces every environment variable the loader reads.
const envPrefix = "INSIGHTLENS"

// Config represents the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// PipelineConfig holds the analytics options. Column names are optional:
// when empty the column classifier's hints pick the columns.
type PipelineConfig struct {
	ClusterCount      int     `yaml:"cluster_count" envconfig:"CLUSTER_COUNT" default:"5" validate:"gte=1"`
	RevenueColumn     string  `yaml:"revenue_column" envconfig:"REVENUE_COLUMN"`
	CustomerColumn    string  `yaml:"customer_column" envconfig:"CUSTOMER_COLUMN"`
	DateColumn        string  `yaml:"date_column" envconfig:"DATE_COLUMN"`
	CategoryColumn    string  `yaml:"category_column" envconfig:"CATEGORY_COLUMN"`
	RegionColumn      string  `yaml:"region_column" envconfig:"REGION_COLUMN"`
	AgeColumn         string  `yaml:"age_column" envconfig:"AGE_COLUMN"`
	TestSplitFraction float64 `yaml:"test_split_fraction" envconfig:"TEST_SPLIT_FRACTION" default:"0.2" validate:"gt=0,lt=1"`
	RandomSeed        int64   `yaml:"random_seed" envconfig:"RANDOM_SEED" default:"42"`
	ForecastSplit     string  `yaml:"forecast_split" envconfig:"FORECAST_SPLIT" default:"random" validate:"oneof=random chronological"`
	TreeCount         int     `yaml:"tree_count" envconfig:"TREE_COUNT" default:"100" validate:"gte=1"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50" validate:"gte=1"`
}

// DatabaseConfig contains MySQL persistence configuration. Persistence is
// optional; with Enabled false the pipeline keeps results in memory only.
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	DSN     string `yaml:"dsn" envconfig:"DSN"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ModelsDir  string `yaml:"models_dir" envconfig:"MODELS_DIR" default:"models"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
}

// Load loads configuration from defaults, an optional YAML file named by
// INSIGHTLENS_CONFIG (or config.yaml in the working directory), and
// environment variables, in rising precedence.
func Load() (*Config, error) {
	var envCfg Config
	if err := envconfig.Process(envPrefix, &envCfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	cfg := envCfg
	if path := configFilePath(); path != "" {
		fileCfg := *Default()
		if err := loadFile(path, &fileCfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		cfg = mergeConfigs(fileCfg, envCfg, *Default())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// mergeConfigs resolves the three sources field by field: an environment
// value that differs from the default wins, otherwise the file value (which
// already overlays the defaults) is kept.
func mergeConfigs(fileCfg, envCfg, defCfg Config) Config {
	out := fileCfg

	mergeInt := func(dst *int, env, def int) {
		if env != def {
			*dst = env
		}
	}
	mergeInt64 := func(dst *int64, env, def int64) {
		if env != def {
			*dst = env
		}
	}
	mergeFloat := func(dst *float64, env, def float64) {
		if env != def {
			*dst = env
		}
	}
	mergeString := func(dst *string, env, def string) {
		if env != def {
			*dst = env
		}
	}
	mergeBool := func(dst *bool, env, def bool) {
		if env != def {
			*dst = env
		}
	}
	mergeDuration := func(dst *time.Duration, env, def time.Duration) {
		if env != def {
			*dst = env
		}
	}

	mergeInt(&out.Pipeline.ClusterCount, envCfg.Pipeline.ClusterCount, defCfg.Pipeline.ClusterCount)
	mergeString(&out.Pipeline.RevenueColumn, envCfg.Pipeline.RevenueColumn, defCfg.Pipeline.RevenueColumn)
	mergeString(&out.Pipeline.CustomerColumn, envCfg.Pipeline.CustomerColumn, defCfg.Pipeline.CustomerColumn)
	mergeString(&out.Pipeline.DateColumn, envCfg.Pipeline.DateColumn, defCfg.Pipeline.DateColumn)
	mergeString(&out.Pipeline.CategoryColumn, envCfg.Pipeline.CategoryColumn, defCfg.Pipeline.CategoryColumn)
	mergeString(&out.Pipeline.RegionColumn, envCfg.Pipeline.RegionColumn, defCfg.Pipeline.RegionColumn)
	mergeString(&out.Pipeline.AgeColumn, envCfg.Pipeline.AgeColumn, defCfg.Pipeline.AgeColumn)
	mergeFloat(&out.Pipeline.TestSplitFraction, envCfg.Pipeline.TestSplitFraction, defCfg.Pipeline.TestSplitFraction)
	mergeInt64(&out.Pipeline.RandomSeed, envCfg.Pipeline.RandomSeed, defCfg.Pipeline.RandomSeed)
	mergeString(&out.Pipeline.ForecastSplit, envCfg.Pipeline.ForecastSplit, defCfg.Pipeline.ForecastSplit)
	mergeInt(&out.Pipeline.TreeCount, envCfg.Pipeline.TreeCount, defCfg.Pipeline.TreeCount)

	mergeInt(&out.Server.Port, envCfg.Server.Port, defCfg.Server.Port)
	mergeDuration(&out.Server.ReadTimeout, envCfg.Server.ReadTimeout, defCfg.Server.ReadTimeout)
	mergeDuration(&out.Server.WriteTimeout, envCfg.Server.WriteTimeout, defCfg.Server.WriteTimeout)
	mergeDuration(&out.Server.IdleTimeout, envCfg.Server.IdleTimeout, defCfg.Server.IdleTimeout)
	mergeDuration(&out.Server.ShutdownTimeout, envCfg.Server.ShutdownTimeout, defCfg.Server.ShutdownTimeout)
	mergeBool(&out.Server.RateLimit.Enabled, envCfg.Server.RateLimit.Enabled, defCfg.Server.RateLimit.Enabled)
	mergeFloat(&out.Server.RateLimit.RPS, envCfg.Server.RateLimit.RPS, defCfg.Server.RateLimit.RPS)
	mergeInt(&out.Server.RateLimit.Burst, envCfg.Server.RateLimit.Burst, defCfg.Server.RateLimit.Burst)

	mergeBool(&out.Database.Enabled, envCfg.Database.Enabled, defCfg.Database.Enabled)
	mergeString(&out.Database.DSN, envCfg.Database.DSN, defCfg.Database.DSN)

	mergeString(&out.Logging.Level, envCfg.Logging.Level, defCfg.Logging.Level)
	mergeString(&out.Logging.Format, envCfg.Logging.Format, defCfg.Logging.Format)

	mergeString(&out.Paths.DataDir, envCfg.Paths.DataDir, defCfg.Paths.DataDir)
	mergeString(&out.Paths.ModelsDir, envCfg.Paths.ModelsDir, defCfg.Paths.ModelsDir)
	mergeString(&out.Paths.ReportsDir, envCfg.Paths.ReportsDir, defCfg.Paths.ReportsDir)

	return out
}

// Default returns the configuration with every field at its default value.
func Default() *Config {
	var cfg Config
	// Only parses struct tags; cannot fail for a well-formed struct.
	_ = envconfig.Process("INSIGHTLENS_UNUSED_PREFIX", &cfg)
	return &cfg
}

// Validate checks the configuration against its declared constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func configFilePath() string {
	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
