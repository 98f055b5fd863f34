// Package config resolves polycli settings from defaults, an optional HCL
// file and the environment. Command-line flags are layered on top by cmd.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

const (
	DefaultBaseURL   = "https://api.polygon.io"
	DefaultStreamURL = "wss://socket.polygon.io"
	DefaultFileName  = ".polycli.hcl"
)

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Config struct {
	APIKey    string
	BaseURL   string
	StreamURL string
	Timeout   time.Duration
	Retries   int
	// RateLimit is requests per minute; zero means unlimited.
	RateLimit int
	Output    string
	LogLevel  string
	LogFormat string
	Database  Database
}

// fileConfig mirrors the HCL layout:
//
//	api_key    = "..."
//	timeout    = "15s"
//	rate_limit = 5
//	database {
//	  host = "db.internal"
//	}
type fileConfig struct {
	APIKey    string        `hcl:"api_key,optional"`
	BaseURL   string        `hcl:"base_url,optional"`
	StreamURL string        `hcl:"stream_url,optional"`
	Timeout   string        `hcl:"timeout,optional"`
	Retries   *int          `hcl:"retries,optional"`
	RateLimit *int          `hcl:"rate_limit,optional"`
	Output    string        `hcl:"output,optional"`
	LogLevel  string        `hcl:"log_level,optional"`
	LogFormat string        `hcl:"log_format,optional"`
	Database  *fileDatabase `hcl:"database,block"`
}

type fileDatabase struct {
	Host     string `hcl:"host,optional"`
	Port     string `hcl:"port,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	Name     string `hcl:"name,optional"`
	SSLMode  string `hcl:"sslmode,optional"`
}

func Default() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		StreamURL: DefaultStreamURL,
		Timeout:   30 * time.Second,
		Retries:   2,
		Output:    "json",
		LogLevel:  "warn",
		LogFormat: "text",
		Database: Database{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "password",
			Name:     "polycli",
			SSLMode:  "disable",
		},
	}
}

// DefaultPath is $HOME/.polycli.hcl, or empty when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultFileName)
}

// Load builds a Config from defaults, then the HCL file at path, then the
// environment. An empty path means DefaultPath, which may be absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFile(path); err != nil {
				return nil, err
			}
		} else if explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	var fc fileConfig
	if err := hclsimple.DecodeFile(path, nil, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.APIKey, fc.APIKey)
	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.StreamURL, fc.StreamURL)
	setString(&c.Output, fc.Output)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("config file %s: invalid timeout: %w", path, err)
		}
		c.Timeout = d
	}
	if fc.Retries != nil {
		c.Retries = *fc.Retries
	}
	if fc.RateLimit != nil {
		c.RateLimit = *fc.RateLimit
	}
	if db := fc.Database; db != nil {
		setString(&c.Database.Host, db.Host)
		setString(&c.Database.Port, db.Port)
		setString(&c.Database.User, db.User)
		setString(&c.Database.Password, db.Password)
		setString(&c.Database.Name, db.Name)
		setString(&c.Database.SSLMode, db.SSLMode)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.APIKey = getEnv("POLYGON_API_KEY", c.APIKey)
	c.BaseURL = getEnv("POLYGON_BASE_URL", c.BaseURL)
	c.StreamURL = getEnv("POLYGON_STREAM_URL", c.StreamURL)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)

	if v := os.Getenv("POLYGON_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POLYGON_RATE_LIMIT %q: %w", v, err)
		}
		c.RateLimit = n
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Output) {
	case "json", "table", "csv":
	default:
		errs = append(errs, fmt.Errorf("invalid output %q: must be 'json', 'table' or 'csv'", c.Output))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", c.LogFormat))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate-limit must not be negative, got %d", c.RateLimit))
	}
	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// getEnv returns the environment value for key, or fallback when it is unset
// or empty.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
