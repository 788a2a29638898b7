package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("upload.max_file_size", 10<<20)
	v.SetDefault("import.max_username_probes", 1000)
	v.SetDefault("import.max_create_attempts", 3)
	v.SetDefault("import.max_stored_failures", 100)
	v.SetDefault("import.base_dir", ".")
	v.SetDefault("import.lock_ttl", "15m")
	v.SetDefault("redis.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from defaults, an optional config.yaml in
// configPath, and environment variables (DATABASE_URL for database.url and
// so on), in increasing order of precedence. A .env file in the working
// directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config load: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			URL:         v.GetString("database.url"),
			AutoMigrate: v.GetBool("database.auto_migrate"),
		},
		Upload: UploadConfig{
			MaxFileSize: v.GetInt64("upload.max_file_size"),
		},
		Import: ImportConfig{
			MaxUsernameProbes: v.GetInt("import.max_username_probes"),
			MaxCreateAttempts: v.GetInt("import.max_create_attempts"),
			MaxStoredFailures: v.GetInt("import.max_stored_failures"),
			BaseDir:           v.GetString("import.base_dir"),
			LockTTL:           v.GetDuration("import.lock_ttl"),
		},
		Redis: RedisConfig{
			URL: v.GetString("redis.url"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
		},
		S3: S3Config{
			Region:          v.GetString("s3.region"),
			Endpoint:        v.GetString("s3.endpoint"),
			AccessKeyID:     v.GetString("s3.access_key_id"),
			SecretAccessKey: v.GetString("s3.secret_access_key"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}
