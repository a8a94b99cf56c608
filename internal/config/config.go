// Package config loads the application configuration from defaults, an
// optional YAML file, and environment variables (OPSIGHT_ prefix), in that
// order, and validates it before anything else starts.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for all environment variable overrides.
const EnvPrefix = "OPSIGHT"

// Config is the complete application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// LoggingConfig controls the slog handler set up at startup.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// AnalysisConfig carries every analyzer threshold. Values are handed to the
// analytics pipeline unchanged.
type AnalysisConfig struct {
	// Inventory optimizer
	MinOrderCountForEOQ int     `yaml:"min_order_count_for_eoq" envconfig:"MIN_ORDER_COUNT_FOR_EOQ" validate:"gte=1"`
	HoldingCostFraction float64 `yaml:"holding_cost_fraction" envconfig:"HOLDING_COST_FRACTION" validate:"gt=0"`
	ServiceLevelZ       float64 `yaml:"service_level_z" envconfig:"SERVICE_LEVEL_Z" validate:"gt=0"`

	// Seller risk scorer
	MinDelayDays    float64 `yaml:"min_delay_days" envconfig:"MIN_DELAY_DAYS" validate:"gte=0"`
	ChurnRiskCutoff float64 `yaml:"churn_risk_cutoff" envconfig:"CHURN_RISK_CUTOFF" validate:"gte=0,lte=1"`

	// Geospatial cluster engine
	ClusterRoundingDecimals int `yaml:"cluster_rounding_decimals" envconfig:"CLUSTER_ROUNDING_DECIMALS" validate:"gte=0,lte=6"`
	ClusterTopNVolume       int `yaml:"cluster_top_n_volume" envconfig:"CLUSTER_TOP_N_VOLUME" validate:"gte=1"`
	ClusterTopNCost         int `yaml:"cluster_top_n_cost" envconfig:"CLUSTER_TOP_N_COST" validate:"gte=1"`

	// Co-purchase margin analyzer
	MinCoPurchaseCount int `yaml:"min_co_purchase_count" envconfig:"MIN_CO_PURCHASE_COUNT" validate:"gte=1"`
}

// Default returns the configuration with every threshold at its documented
// default.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/opsight.log",
		},
		Analysis: AnalysisConfig{
			MinOrderCountForEOQ:     5,
			HoldingCostFraction:     0.20,
			ServiceLevelZ:           1.65,
			MinDelayDays:            5,
			ChurnRiskCutoff:         0.30,
			ClusterRoundingDecimals: 1,
			ClusterTopNVolume:       5,
			ClusterTopNCost:         3,
			MinCoPurchaseCount:      10,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at configPath
// (skipped when empty or missing), then environment overrides, then
// validation. Environment always wins over the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := loadFromFile(configPath, cfg); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", configPath, err)
			}
		}
	}

	// Unset variables leave the current values untouched.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks all struct-level constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
