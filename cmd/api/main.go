package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/speedrun/backend/internal/config"
	"github.com/speedrun/backend/internal/handlers"
	"github.com/speedrun/backend/internal/logger"
	"github.com/speedrun/backend/internal/middleware"
	"github.com/speedrun/backend/internal/models"
	"github.com/speedrun/backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.New()

	logg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	if err := cfg.Validate(); err != nil {
		logg.Fatal("Invalid configuration", "error", err)
	}

	// Store clients are built once and shared by every request.
	db, err := models.InitDB(cfg, logg)
	if err != nil {
		logg.Fatal("Failed to initialize metadata store", "error", err)
	}
	if err := models.Migrate(db, cfg.MetadataContainer); err != nil {
		logg.Fatal("Failed to run migrations", "error", err)
	}

	redisClient := models.InitRedis(cfg, logg)
	defer redisClient.Close()

	objectStore, closeObjectStore, err := newObjectStore(context.Background(), cfg)
	if err != nil {
		logg.Fatal("Failed to initialize object store", "provider", cfg.ObjectStoreProvider, "error", err)
	}
	defer closeObjectStore()

	observer, err := services.NewPrometheusObserver("asset_records", prometheus.DefaultRegisterer)
	if err != nil {
		logg.Fatal("Failed to register metrics", "error", err)
	}

	metadataStore := services.NewGormMetadataStore(db, cfg.MetadataContainer)
	assetService := services.NewAssetService(metadataStore, objectStore, cfg, logg, observer)
	videoHandler := handlers.NewVideoHandler(assetService)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logg))
	router.Use(middleware.CORS(cfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	videos := []gin.HandlerFunc{
		middleware.RateLimiter(redisClient, cfg, logg),
		middleware.MutationRateLimit(redisClient, cfg, logg),
		videoHandler.Handle,
	}
	router.Any("/api/v1/videos", videos...)
	// Legacy function path kept for existing frontends.
	router.Any("/api/deleteSpeedRun", videos...)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logg.Info("Starting server", "port", cfg.Port, "object_store", cfg.ObjectStoreProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logg.Error("Server forced to shutdown", "error", err)
	}

	logg.Info("Server exited")
}

func newObjectStore(ctx context.Context, cfg *config.Config) (services.ObjectStore, func(), error) {
	switch cfg.ObjectStoreProvider {
	case "gcs":
		gcs, err := services.NewGCSService(ctx, cfg.GCSEmulatorHost)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { _ = gcs.Close() }, nil
	default:
		s3, err := services.NewS3Service(ctx, cfg.BlobConnection)
		if err != nil {
			return nil, nil, err
		}
		return s3, func() {}, nil
	}
}
