package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"medialib/docs"
	"medialib/internal/config"
	"medialib/internal/database"
	"medialib/internal/database/migration"
	handlers "medialib/internal/http/handler"
	"medialib/internal/http/middleware"
	"medialib/internal/observability"
	"medialib/internal/otel"
	"medialib/internal/preview"
	"medialib/internal/repository/postgres"
	"medialib/internal/service"
	"medialib/internal/storage"
)

// @title Media Library API
// @version 1.0
// @description Owner-scoped media library: batch uploads, virtual folders and previews.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger, err := observability.InitLogger(cfg.LogDev)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	objStore, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize object storage", zap.Error(err), zap.String("driver", cfg.StorageDriver))
	}

	metrics, err := service.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("failed to register service metrics", zap.Error(err))
	}

	mediaRepo := postgres.NewMediaPostgres(db)
	mediaSvc := service.NewMediaService(objStore, mediaRepo, service.Options{
		Concurrency:     cfg.Upload.Concurrency,
		DefaultCategory: cfg.Upload.DefaultCategory,
		PresignTTL:      time.Duration(cfg.Preview.PresignTTLSec) * time.Second,
		Logger:          logger,
		Metrics:         metrics,
	})

	prober := preview.NewHTTPProber(time.Duration(cfg.Preview.ProbeTimeoutSec) * time.Second)
	renderer := preview.NewRenderer(objStore, prober, cfg.Preview.MaxWidth, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Upload.MaxBodyBytes,
	})

	promMw, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("failed to register http metrics", zap.Error(err))
	}

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMw.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, mediaSvc, renderer)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	logger.Info("server_starting", zap.String("addr", addr), zap.String("storage_driver", cfg.StorageDriver))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func newStorage(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	if cfg.StorageDriver == config.StorageDriverS3 {
		return storage.NewS3(ctx, cfg.S3)
	}
	return storage.NewMinIO(cfg.MinIO)
}
