// Package config loads physiobill settings from the environment, an optional
// .env file and the clinic profile YAML.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"physiobill/pkg/domain"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "PHYSIOBILL"

// Config is the flattened process configuration. Field keys map to
// PHYSIOBILL_<KEY> environment variables.
type Config struct {
	Env             string `mapstructure:"ENV"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	StorageDriver   string `mapstructure:"STORAGE_DRIVER"`
	SQLitePath      string `mapstructure:"SQLITE_PATH"`
	PostgresDSN     string `mapstructure:"POSTGRES_DSN"`
	DataDir         string `mapstructure:"DATA_DIR"`
	DocumentsDriver string `mapstructure:"DOCUMENTS_DRIVER"`
	DocumentsRoot   string `mapstructure:"DOCUMENTS_ROOT"`
	S3Bucket        string `mapstructure:"S3_BUCKET"`
	S3Region        string `mapstructure:"S3_REGION"`
	S3Endpoint      string `mapstructure:"S3_ENDPOINT"`
	S3PathStyle     bool   `mapstructure:"S3_PATH_STYLE"`
	ClinicFile      string `mapstructure:"CLINIC_FILE"`
}

// Storage selects and configures the key-value backend for the billing blobs.
type Storage struct {
	Driver      domain.StorageDriver
	SQLitePath  string
	PostgresDSN string
	FSRoot      string
}

// Documents selects and configures the store for rendered invoices.
type Documents struct {
	Driver      string
	Root        string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

var keys = []string{
	"ENV", "LOG_LEVEL", "STORAGE_DRIVER", "SQLITE_PATH", "POSTGRES_DSN", "DATA_DIR",
	"DOCUMENTS_DRIVER", "DOCUMENTS_ROOT", "S3_BUCKET", "S3_REGION", "S3_ENDPOINT",
	"S3_PATH_STYLE", "CLINIC_FILE",
}

// Load reads configuration from the environment. When envFile is non-empty
// it must exist and is loaded first; otherwise a ./.env file is loaded if present.
// Variables already set in the process environment win over file values.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", string(domain.StorageSQLite))
	v.SetDefault("SQLITE_PATH", "physiobill.db")
	v.SetDefault("DATA_DIR", "./physiobill-data")
	v.SetDefault("DOCUMENTS_DRIVER", "fs")
	v.SetDefault("DOCUMENTS_ROOT", "./invoices")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_PATH_STYLE", false)
	v.SetDefault("CLINIC_FILE", "clinic.yaml")

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.DocumentsDriver = strings.ToLower(strings.TrimSpace(cfg.DocumentsDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDev reports whether the process runs in development mode.
func (c *Config) IsDev() bool { return c.Env == "development" }

// Validate checks driver names and driver-specific requirements.
func (c *Config) Validate() error {
	switch domain.StorageDriver(c.StorageDriver) {
	case domain.StorageMemory, domain.StorageSQLite, domain.StorageFS:
	case domain.StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%s_POSTGRES_DSN is required when STORAGE_DRIVER is postgres", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	switch c.DocumentsDriver {
	case "fs", "memory":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("%s_S3_BUCKET is required when DOCUMENTS_DRIVER is s3", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown documents driver %q", c.DocumentsDriver)
	}
	return nil
}

// Storage returns the key-value backend settings.
func (c *Config) Storage() Storage {
	return Storage{
		Driver:      domain.StorageDriver(c.StorageDriver),
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
		FSRoot:      c.DataDir,
	}
}

// Documents returns the rendered-invoice store settings.
func (c *Config) Documents() Documents {
	return Documents{
		Driver:      c.DocumentsDriver,
		Root:        c.DocumentsRoot,
		S3Bucket:    c.S3Bucket,
		S3Region:    c.S3Region,
		S3Endpoint:  c.S3Endpoint,
		S3PathStyle: c.S3PathStyle,
	}
}
