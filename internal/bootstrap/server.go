package bootstrap

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	"github.com/mohammadpnp/csv-user-import/internal/config"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/file"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/repository"
	httpecho "github.com/mohammadpnp/csv-user-import/internal/interfaces/http/echo"
	"gorm.io/gorm"
)

// NewImportUseCase wires the CSV import runner to the Postgres account
// directory and import run history.
func NewImportUseCase(cfg *config.Config, db *gorm.DB, pool *pgxpool.Pool, lock app.ImportLock) app.ImportUsersFromCSV {
	directory := repository.NewAccountDirectory(pool)
	runs := repository.NewImportRunRepository(db)

	return app.NewImportUsersFromCSV(directory, runs, lock, app.ImportUsersFromCSVConfig{
		MaxUsernameProbes: cfg.Import.MaxUsernameProbes,
		MaxCreateAttempts: cfg.Import.MaxCreateAttempts,
		MaxStoredFailures: cfg.Import.MaxStoredFailures,
	})
}

func NewHTTPServer(cfg *config.Config, logger *slog.Logger, db *gorm.DB, pool *pgxpool.Pool, lock app.ImportLock, sources *file.Source) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.Renderer = httpecho.NewTemplateRenderer()

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(httpecho.RequestContextLogger(logger))
	server.Use(httpecho.AccessLog())
	server.Use(middleware.BodyLimit(cfg.BodyLimit()))

	importUsers := NewImportUseCase(cfg, db, pool, lock)
	userQueryRepo := repository.NewUserQueryRepository(db)
	directory := repository.NewAccountDirectory(pool)
	importRunRepo := repository.NewImportRunRepository(db)

	handlers := httpecho.Handlers{
		Import:     httpecho.NewImportHandler(importUsers, sources),
		ImportForm: httpecho.NewImportFormHandler(importUsers),
		ImportRun:  httpecho.NewImportRunHandler(app.NewGetImportRun(importRunRepo)),
		User:       httpecho.NewUserHandler(app.NewGetUserByID(userQueryRepo), app.NewFindUsersByUsername(directory)),
	}

	var guards []echo.MiddlewareFunc
	if cfg.Auth.JWTSecret != "" {
		guards = append(guards, httpecho.RequireAdmin([]byte(cfg.Auth.JWTSecret)))
	} else {
		logger.Warn("auth.jwt_secret is not set; import endpoints are unauthenticated")
	}

	httpecho.RegisterRoutes(server, handlers, guards...)

	return server
}
