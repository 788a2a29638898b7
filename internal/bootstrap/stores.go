package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	"github.com/mohammadpnp/csv-user-import/internal/config"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/db/migrations"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/file"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/lock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Stores holds the database handles shared by the server and the CLI.
type Stores struct {
	DB   *gorm.DB
	Pool *pgxpool.Pool
}

// OpenStores connects gorm and a pgx pool to database.url and applies the
// embedded migrations when database.auto_migrate is set.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	return &Stores{DB: db, Pool: pool}, nil
}

func (s *Stores) Close() {
	s.Pool.Close()
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// NewImportLock returns a Redis lock when redis.url is set and an
// in-process lock otherwise. The returned close func releases the client.
func NewImportLock(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app.ImportLock, func(), error) {
	if cfg.Redis.URL == "" {
		logger.Info("redis.url is not set; imports are serialized per process")
		return app.NewLocalImportLock(), func() {}, nil
	}

	client, err := lock.Connect(cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	return lock.NewRedisImportLock(client, cfg.Import.LockTTL), func() { _ = client.Close() }, nil
}

// NewSources returns the import source used for source_path imports.
// confined restricts local paths to import.base_dir. S3 is enabled when
// s3.region or s3.endpoint is set.
func NewSources(ctx context.Context, cfg *config.Config, confined bool) (*file.Source, error) {
	local := file.NewLocalSource(cfg.Import.BaseDir, confined)

	var s3Source *file.S3Source
	if cfg.S3.Region != "" || cfg.S3.Endpoint != "" {
		var err error
		s3Source, err = file.NewS3Source(ctx, file.S3Options{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
	}

	return file.NewSource(local, s3Source), nil
}
