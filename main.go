package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"github.com/mrops-br/shopping-browser-api/internal/app/service"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/cache"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/config"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/http"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/imaging"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/remote"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/repository/memory"
	redisstore "github.com/mrops-br/shopping-browser-api/internal/infrastructure/repository/redis"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/telemetry"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "shopping-browser-api"

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize OpenTelemetry
	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		var err error
		telem, err = telemetry.NewTelemetry(&cfg.OTLP)
		if err != nil {
			log.Fatalf("Failed to initialize telemetry: %v", err)
		}
	} else {
		telem = telemetry.NewNoOpTelemetry(&cfg.OTLP)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ensure telemetry is shutdown on exit
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := telem.TracerProvider.Tracer(instrumentationName)
	meter := telem.MeterProvider.Meter(instrumentationName)
	logger := telem.Logger

	logger.Info("Starting Shopping Browser API",
		slog.String("catalog_url", cfg.Catalog.BaseURL),
		slog.String("storage_backend", cfg.Storage.Backend),
	)

	// Durable key-value storage for the cart and recent searches
	storage, closeStorage, err := newStorage(ctx, &cfg.Storage, tracer, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		return
	}
	defer closeStorage()

	// Remote catalog and stores (dependency injection)
	client := remote.NewCatalogClient(cfg.Catalog.BaseURL, cfg.Catalog.RequestTimeout, logger)
	catalog := service.NewCatalogStore(client, cfg.Catalog.PageLimit, tracer, meter, logger)
	filtered := service.NewFilteredCatalog(catalog, logger)
	history := service.NewSearchHistory(ctx, storage, meter, logger)
	session := service.NewBrowseSession(catalog, filtered, history, logger)
	cart := service.NewCartStore(ctx, storage, imaging.NewJPEGCodec(cfg.Images.JPEGQuality), tracer, meter, logger)

	imageCache := cache.New(cfg.Images.CacheTTL)
	go imageCache.RunJanitor(ctx, cfg.Images.CacheTTL)
	images := service.NewImageLoader(catalog, imageCache, logger)

	// Initialize handlers
	handlers := http.Handlers{
		Products: handler.NewProductHandler(session, catalog, images, logger),
		Cart:     handler.NewCartHandler(cart, catalog, images, logger),
		Searches: handler.NewSearchHandler(history, logger),
	}

	// Initialize HTTP server
	server := http.NewServer(&cfg.Server, handlers, telem.MeterProvider, logger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Error("Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	}

	// Ends open event streams and the cache janitor
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}

	logger.Info("Server stopped")
}

// newStorage selects the BlobStore backend from configuration.
func newStorage(
	ctx context.Context,
	cfg *config.StorageConfig,
	tracer trace.Tracer,
	logger *slog.Logger,
) (domain.BlobStore, func(), error) {
	if cfg.Backend != "redis" {
		return memory.NewBlobStore(tracer, logger), func() {}, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	store := redisstore.NewBlobStore(client, cfg.KeyPrefix, tracer, logger)
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return store, func() { _ = client.Close() }, nil
}
