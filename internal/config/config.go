package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Limits   LimitsConfig   `yaml:"limits" envconfig:"LIMITS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// LimitsConfig contains request limiting configuration
type LimitsConfig struct {
	RateEnabled    bool    `yaml:"rate_enabled" envconfig:"RATE_ENABLED"`
	RPS            float64 `yaml:"rps" envconfig:"RPS"`
	Burst          int     `yaml:"burst" envconfig:"BURST"`
	MaxUploadBytes int64   `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// PipelineConfig contains the KPI pipeline tuning knobs
type PipelineConfig struct {
	FuzzyThreshold  float64 `yaml:"fuzzy_threshold" envconfig:"FUZZY_THRESHOLD"`
	LabelDateFormat string  `yaml:"label_date_format" envconfig:"LABEL_DATE_FORMAT"`
	MaxDatasets     int     `yaml:"max_datasets" envconfig:"MAX_DATASETS"`
}

// defaultConfig returns the baseline configuration that the YAML overlay
// and environment variables refine.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Limits: LimitsConfig{
			RateEnabled:    true,
			RPS:            20,
			Burst:          10,
			MaxUploadBytes: 24 << 20,
		},
		Pipeline: PipelineConfig{
			FuzzyThreshold:  0.7,
			LabelDateFormat: "2006-01-02 15:04",
			MaxDatasets:     32,
		},
	}
}

// Load loads configuration from environment variables and, when
// present, a config.yaml overlay in the working directory.
func Load() (*Config, error) {
	return LoadFrom("config.yaml")
}

// LoadFrom loads configuration with an explicit YAML overlay path.
// Precedence, lowest to highest: built-in defaults, the YAML file,
// KPIDASH_* environment variables.
func LoadFrom(path string) (*Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("KPIDASH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Pipeline.FuzzyThreshold <= 0 || c.Pipeline.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in (0,1], got %f", c.Pipeline.FuzzyThreshold)
	}
	if c.Limits.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.Limits.MaxUploadBytes)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}
	return nil
}
