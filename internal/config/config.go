package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/meliem/meliem.github.io/internal/particles"
	"gopkg.in/yaml.v3"
)

// Config holds all portfolio server configuration.
type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Database  DatabaseConfig    `yaml:"database"`
	Content   ContentConfig     `yaml:"content"`
	Mail      MailConfig        `yaml:"mail"`
	Admin     AdminConfig       `yaml:"admin"`
	Cache     CacheConfig       `yaml:"cache"`
	Privacy   PrivacyConfig     `yaml:"privacy"`
	Logging   LoggingConfig     `yaml:"logging"`
	Particles particles.Options `yaml:"particles"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string `yaml:"port"`
	Mode            string `yaml:"mode"` // debug, release, test
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ContentConfig points at the site content file. An empty path serves the
// built-in content.
type ContentConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// MailConfig configures SMTP delivery of contact messages.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	To       string `yaml:"to"`
}

// AdminConfig holds dashboard credentials.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CacheConfig configures the asset cache in front of the router.
type CacheConfig struct {
	Enabled           bool     `yaml:"enabled"`
	Version           string   `yaml:"version"`
	Precache          []string `yaml:"precache"`
	RevalidateTimeout string   `yaml:"revalidate_timeout"`
	MaxEntryBytes     int      `yaml:"max_entry_bytes"`
}

// PrivacyConfig configures visitor tracking retention.
type PrivacyConfig struct {
	RetentionMonths int    `yaml:"retention_months"`
	CleanupInterval string `yaml:"cleanup_interval"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "debug",
			ShutdownTimeout: "10s",
		},
		Database: DatabaseConfig{
			Path: "data/portfolio.db",
		},
		Mail: MailConfig{
			Host: "smtp.gmail.com",
			Port: "587",
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin123",
		},
		Cache: CacheConfig{
			Enabled: true,
			Version: "v1",
			Precache: []string{
				"/static/css/style.css",
				"/static/js/site.js",
				"/static/js/particles.js",
			},
			RevalidateTimeout: "10s",
			MaxEntryBytes:     2 << 20,
		},
		Privacy: PrivacyConfig{
			RetentionMonths: 12,
			CleanupInterval: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Particles: particles.DefaultOptions(),
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment variables override both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides reads the variables a deployment sets in .env.
func (c *Config) applyEnvOverrides() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "PORT")
	set(&c.Server.Mode, "GIN_MODE")
	set(&c.Database.Path, "DATABASE_PATH")
	set(&c.Content.Path, "CONTENT_PATH")
	set(&c.Mail.Host, "SMTP_HOST")
	set(&c.Mail.Port, "SMTP_PORT")
	set(&c.Mail.User, "SMTP_USER")
	set(&c.Mail.Password, "SMTP_PASS")
	set(&c.Mail.To, "TO_EMAIL")
	set(&c.Admin.Username, "ADMIN_USERNAME")
	set(&c.Admin.Password, "ADMIN_PASSWORD")
	set(&c.Logging.Level, "LOG_LEVEL")
	set(&c.Cache.Version, "CACHE_VERSION")

	if v := os.Getenv("CONTENT_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Content.Watch = b
		}
	}
}

// Validate checks the values that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric, got %q", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	for name, d := range map[string]string{
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
		"cache.revalidate_timeout": c.Cache.RevalidateTimeout,
		"privacy.cleanup_interval": c.Privacy.CleanupInterval,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Privacy.RetentionMonths <= 0 {
		return fmt.Errorf("privacy.retention_months must be positive")
	}
	if err := c.Particles.Validate(); err != nil {
		return fmt.Errorf("particles: %w", err)
	}
	return nil
}

// Duration parses one of the validated duration fields.
func Duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// MailConfigured reports whether SMTP credentials are present.
func (c *Config) MailConfigured() bool {
	return c.Mail.User != "" && c.Mail.Password != ""
}
