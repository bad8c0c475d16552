package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const (
	DefaultConfigPath   = "config.toml"
	DefaultHTTPAddr     = ":8090"
	DefaultJWTExpiresIn = "24h"
	DefaultPGHost       = "127.0.0.1"
	DefaultPGPort       = 5432
	DefaultPGUser       = "postgres"
	DefaultPGDatabase   = "lumo"
	DefaultPGSSLMode    = "disable"
	DefaultStorageRoot  = "data/attachments"

	// DefaultMaxAttachments caps how many uploads a single message may bind.
	DefaultMaxAttachments = 4
	// DefaultMaxAttachmentBytes caps a single upload payload.
	DefaultMaxAttachmentBytes int64 = 20 * 1024 * 1024
	// DefaultAttachmentRetention is how long an unbound upload survives
	// before the reaper deletes it.
	DefaultAttachmentRetention = "24h"
	// DefaultReapSchedule runs the attachment reaper hourly.
	DefaultReapSchedule = "@hourly"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Postgres PostgresConfig `toml:"postgres"`
	Storage  StorageConfig  `toml:"storage"`
	Limits   LimitsConfig   `toml:"limits"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LUMO_LOG_LEVEL"`
	Format string `toml:"format" env:"LUMO_LOG_FORMAT"`
}

type ServerConfig struct {
	Addr string `toml:"addr" env:"LUMO_ADDR"`
}

type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret" env:"LUMO_JWT_SECRET"`
	JWTExpiresIn string `toml:"jwt_expires_in" env:"LUMO_JWT_EXPIRES_IN"`
}

type PostgresConfig struct {
	Host     string `toml:"host" env:"LUMO_PG_HOST"`
	Port     int    `toml:"port" env:"LUMO_PG_PORT"`
	User     string `toml:"user" env:"LUMO_PG_USER"`
	Password string `toml:"password" env:"LUMO_PG_PASSWORD"`
	Database string `toml:"database" env:"LUMO_PG_DATABASE"`
	SSLMode  string `toml:"sslmode" env:"LUMO_PG_SSLMODE"`
}

// DSN renders the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type StorageConfig struct {
	Root string `toml:"root" env:"LUMO_STORAGE_ROOT"`
}

type LimitsConfig struct {
	MaxAttachments      int    `toml:"max_attachments" env:"LUMO_MAX_ATTACHMENTS"`
	MaxAttachmentBytes  int64  `toml:"max_attachment_bytes" env:"LUMO_MAX_ATTACHMENT_BYTES"`
	AttachmentRetention string `toml:"attachment_retention" env:"LUMO_ATTACHMENT_RETENTION"`
	ReapSchedule        string `toml:"reap_schedule" env:"LUMO_REAP_SCHEDULE"`
}

// RetentionDuration parses the attachment retention window.
func (c LimitsConfig) RetentionDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.AttachmentRetention)
	if err != nil {
		return 0, fmt.Errorf("invalid attachment retention: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("attachment retention must be positive")
	}
	return d, nil
}

// JWTExpiry parses the configured token lifetime.
func (c AuthConfig) JWTExpiry() (time.Duration, error) {
	d, err := time.ParseDuration(c.JWTExpiresIn)
	if err != nil {
		return 0, fmt.Errorf("invalid jwt expires in: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("jwt expires in must be positive")
	}
	return d, nil
}

// Load reads the TOML config at path (falling back to defaults when the file
// is absent) and then applies LUMO_* environment overrides on top.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Storage: StorageConfig{
			Root: DefaultStorageRoot,
		},
		Limits: LimitsConfig{
			MaxAttachments:      DefaultMaxAttachments,
			MaxAttachmentBytes:  DefaultMaxAttachmentBytes,
			AttachmentRetention: DefaultAttachmentRetention,
			ReapSchedule:        DefaultReapSchedule,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("apply env overrides: %w", err)
	}
	return cfg, nil
}
