package models

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/speedrun/backend/internal/config"
	"github.com/speedrun/backend/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the metadata store connection pool.
func InitDB(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Info),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true,
	}

	if cfg.Env == "production" {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Error)
	}

	db, err := gorm.Open(postgres.Open(cfg.MetadataDSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to metadata store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Metadata store connection established", "endpoint", cfg.MetadataEndpoint, "database", cfg.MetadataDatabase)
	return db, nil
}

// InitRedis initializes the Redis client used for rate limiting.
func InitRedis(cfg *config.Config, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	log.Info("Redis client initialized", "addr", client.Options().Addr)
	return client
}

// Migrate creates or updates the asset table named by container.
func Migrate(db *gorm.DB, container string) error {
	return db.Table(container).AutoMigrate(&Asset{})
}
