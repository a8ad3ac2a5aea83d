// Package config loads server settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "SOLSKIINVENTAR_"

// Config holds all server settings.
type Config struct {
	Addr     string `yaml:"addr"`
	DBPath   string `yaml:"db"`
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	// JWTSecret signs login tokens. When empty, a secret is generated on
	// first start and kept in the database.
	JWTSecret string `yaml:"jwt_secret"`

	Admin AdminConfig `yaml:"admin"`

	// SweepSchedule is a cron spec for the overdue sweep. Empty disables it.
	SweepSchedule string `yaml:"sweep_schedule"`

	ImageMaxDimension int           `yaml:"image_max_dimension"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// AdminConfig describes the default admin ensured at startup.
type AdminConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:     ":8080",
		DBPath:   "solskiinventar.sqlite3",
		LogLevel: "info",
		Admin: AdminConfig{
			Username: "admin",
			Email:    "admin@school.local",
		},
		SweepSchedule:     "@every 1h",
		ImageMaxDimension: 1024,
		ShutdownTimeout:   5 * time.Second,
	}
}

// Load builds the configuration. path names a YAML file and may be empty;
// a missing file is an error only when path was given explicitly. Variables
// from a .env file in the working directory are added to the environment
// without overriding variables that are already set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("ADDR", &c.Addr)
	str("DB", &c.DBPath)
	str("LOG_FILE", &c.LogFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("JWT_SECRET", &c.JWTSecret)
	str("ADMIN_USERNAME", &c.Admin.Username)
	str("ADMIN_EMAIL", &c.Admin.Email)
	str("ADMIN_PASSWORD", &c.Admin.Password)
	str("SWEEP_SCHEDULE", &c.SweepSchedule)

	if v, ok := lookup(EnvPrefix + "IMAGE_MAX_DIMENSION"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sIMAGE_MAX_DIMENSION: %w", EnvPrefix, err)
		}
		c.ImageMaxDimension = n
	}
	if v, ok := lookup(EnvPrefix + "SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSHUTDOWN_TIMEOUT: %w", EnvPrefix, err)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

// Validate checks settings that have no usable fallback.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if c.Admin.Username == "" {
		return errors.New("default admin username is required")
	}
	if c.ImageMaxDimension < 1 {
		return fmt.Errorf("image_max_dimension must be positive, got %d", c.ImageMaxDimension)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
