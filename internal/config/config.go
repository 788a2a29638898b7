package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Import   ImportConfig
	Redis    RedisConfig
	Auth     AuthConfig
	S3       S3Config
	Log      LogConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL         string
	AutoMigrate bool
}

type UploadConfig struct {
	// MaxFileSize is the request body limit in bytes.
	MaxFileSize int64
}

type ImportConfig struct {
	MaxUsernameProbes int
	MaxCreateAttempts int
	MaxStoredFailures int
	// BaseDir resolves relative paths given to the CLI.
	BaseDir string
	LockTTL time.Duration
}

// RedisConfig enables the cross-process import lock when URL is set.
type RedisConfig struct {
	URL string
}

// AuthConfig enables the admin JWT guard when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string
}

type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type LogConfig struct {
	Level  string
	Format string
}

// BodyLimit renders Upload.MaxFileSize in the form echo's BodyLimit expects.
func (c *Config) BodyLimit() string {
	return fmt.Sprintf("%dB", c.Upload.MaxFileSize)
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.URL == "" {
		errs = append(errs, "database.url is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "upload.max_file_size must be positive")
	}
	if c.Import.MaxUsernameProbes <= 0 {
		errs = append(errs, "import.max_username_probes must be positive")
	}
	if c.Import.MaxCreateAttempts <= 0 {
		errs = append(errs, "import.max_create_attempts must be positive")
	}
	if c.Import.MaxStoredFailures < 0 {
		errs = append(errs, "import.max_stored_failures must be non-negative")
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		errs = append(errs, "s3.access_key_id and s3.secret_access_key must be set together")
	}
	if c.Redis.URL != "" && c.Import.LockTTL <= 0 {
		errs = append(errs, "import.lock_ttl must be positive when redis.url is set")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format (%q) must be text or json", c.Log.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level (%q) must be debug, info, warn or error", c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// String returns a loggable summary with credentials masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: :%d, Database: %s, Redis: %s, Upload.MaxFileSize: %d, Import.MaxUsernameProbes: %d, Log: %s/%s}",
		c.Server.Port,
		maskURL(c.Database.URL),
		maskURL(c.Redis.URL),
		c.Upload.MaxFileSize,
		c.Import.MaxUsernameProbes,
		c.Log.Level,
		c.Log.Format,
	)
}

func maskURL(raw string) string {
	if raw == "" {
		return "<unset>"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
