package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"soundtrack-server/services/upload-api/internal/config"
	domain "soundtrack-server/services/upload-api/internal/domain/upload"
	"soundtrack-server/services/upload-api/internal/infrastructure/database"
	"soundtrack-server/services/upload-api/internal/infrastructure/logger"
	"soundtrack-server/services/upload-api/internal/infrastructure/observability"
	repo "soundtrack-server/services/upload-api/internal/infrastructure/repository/upload"
	"soundtrack-server/services/upload-api/internal/infrastructure/storage"
	"soundtrack-server/services/upload-api/internal/interfaces/httpserver"
)

// @title Upload API
// @version 1.0
// @description Media upload ingestion and retrieval service
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseDSN,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	storageBackend, storageCheck, err := newStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	uploadRepository := repo.NewRepository(db)
	uploadService := domain.NewService(cfg, uploadRepository, storageBackend, log)

	httpServer := httpserver.New(cfg, log, uploadService, databaseCheck(db), storageCheck)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// newStorage selects the blob storage backend from configuration.
func newStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Storage, httpserver.HealthCheck, error) {
	if cfg.IsLocalStorage() {
		localStorage, err := storage.NewLocalStorage(cfg, log)
		if err != nil {
			return nil, httpserver.HealthCheck{}, err
		}
		return localStorage, httpserver.HealthCheck{Name: "local-storage", Check: localStorage.Health}, nil
	}

	s3Storage, err := storage.NewS3Storage(ctx, cfg, log)
	if err != nil {
		return nil, httpserver.HealthCheck{}, err
	}
	return s3Storage, httpserver.HealthCheck{Name: "s3-storage", Check: s3Storage.Health}, nil
}

func databaseCheck(db *gorm.DB) httpserver.HealthCheck {
	return httpserver.HealthCheck{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
