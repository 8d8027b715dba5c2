// Package config assembles runtime settings from defaults, an optional YAML
// file, a .env file, and the environment.
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

// Config is the full runtime configuration.
type Config struct {
	// Model is a provider alias (gemini-flash, haiku, nova-lite, ...) or a
	// full model id.
	Model string `yaml:"model"`
	// ArtistConfig is the persona document: a local path or s3://bucket/key.
	ArtistConfig string `yaml:"artist_config"`
	Port         int    `yaml:"port"`
	LogLevel     string `yaml:"log_level"`
	AWSRegion    string `yaml:"aws_region"`
	// SecretPrefix enables Secrets Manager lookup of unset credentials.
	SecretPrefix string `yaml:"secret_prefix"`

	GoogleAPIKey    string `yaml:"google_api_key,omitempty"`
	AnthropicAPIKey string `yaml:"anthropic_api_key,omitempty"`

	SMTP    SMTPConfig    `yaml:"smtp"`
	Backup  BackupConfig  `yaml:"backup"`
	History HistoryConfig `yaml:"history"`
	Media   MediaConfig   `yaml:"media"`
}

type SMTPConfig struct {
	Server    string `yaml:"server"`
	Port      int    `yaml:"port"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password,omitempty"`
	Recipient string `yaml:"recipient"`
}

type BackupConfig struct {
	// S3Bucket, when set, archives every saved document under backups/.
	S3Bucket string `yaml:"s3_bucket"`
}

type HistoryConfig struct {
	// DB is a SQLite path. Table, when set, takes precedence and stores
	// history in DynamoDB.
	DB    string `yaml:"db"`
	Table string `yaml:"table"`
}

type MediaConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxPolls     int           `yaml:"max_polls"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:        "gemini-flash",
		ArtistConfig: "artist-config.json",
		Port:         8501,
		LogLevel:     "info",
		AWSRegion:    "us-east-1",
		History: HistoryConfig{
			DB: "socialai-history.db",
		},
		Media: MediaConfig{
			PollInterval: 2 * time.Second,
			MaxPolls:     90,
		},
	}
}

// Load builds the configuration. path may be empty; a named file that does
// not exist is an error. Variables in .env are loaded first without
// overriding the real environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ArtistConfig == "" {
		return fmt.Errorf("artist_config must not be empty")
	}
	if c.Media.PollInterval <= 0 {
		return fmt.Errorf("media.poll_interval must be positive")
	}
	if c.Media.MaxPolls < 1 {
		return fmt.Errorf("media.max_polls must be at least 1")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	setString(&c.Model, "SOCIALAI_MODEL")
	setString(&c.ArtistConfig, "ARTIST_CONFIG")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.AWSRegion, "AWS_REGION")
	setString(&c.SecretPrefix, "SECRET_PREFIX")

	// GOOGLE_API_KEY wins over the GEMINI_API_KEY alias.
	setString(&c.GoogleAPIKey, "GEMINI_API_KEY")
	setString(&c.GoogleAPIKey, "GOOGLE_API_KEY")
	setString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")

	setString(&c.SMTP.Server, "SMTP_SERVER")
	setString(&c.SMTP.Email, "SMTP_EMAIL")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.Recipient, "BACKUP_EMAIL_RECIPIENT")
	setString(&c.Backup.S3Bucket, "BACKUP_S3_BUCKET")
	setString(&c.History.DB, "HISTORY_DB")
	setString(&c.History.Table, "HISTORY_TABLE")

	if err := setInt(&c.Port, "PORT"); err != nil {
		return err
	}
	return setInt(&c.SMTP.Port, "SMTP_PORT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
