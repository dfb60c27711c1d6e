//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"soundtrack-server/services/upload-api/internal/config"
	domain "soundtrack-server/services/upload-api/internal/domain/upload"
	"soundtrack-server/services/upload-api/internal/infrastructure/database"
	"soundtrack-server/services/upload-api/internal/infrastructure/logger"
	repo "soundtrack-server/services/upload-api/internal/infrastructure/repository/upload"
	"soundtrack-server/services/upload-api/internal/infrastructure/storage"
	"soundtrack-server/services/upload-api/internal/interfaces/httpserver"
)

var uploadSet = wire.NewSet(
	repo.NewRepository,
	wire.Bind(new(domain.Repository), new(*repo.Repository)),
	provideStorage,
	domain.NewService,
)

// BuildApplication assembles the upload API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		uploadSet,
		newHTTPServer,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseDSN,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

// provideStorage creates the appropriate storage backend based on configuration.
func provideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Storage, error) {
	if cfg.IsLocalStorage() {
		localStorage, err := storage.NewLocalStorage(cfg, log)
		if err != nil {
			return nil, err
		}
		return localStorage, nil
	}

	s3Storage, err := storage.NewS3Storage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return s3Storage, nil
}

func newHTTPServer(cfg *config.Config, log zerolog.Logger, service domain.Service, db *gorm.DB) *httpserver.HttpServer {
	return httpserver.New(cfg, log, service, databaseCheck(db))
}
