package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Metadata store (postgres)
	MetadataEndpoint  string
	MetadataKey       string
	MetadataUser      string
	MetadataDatabase  string
	MetadataContainer string
	MetadataSSLMode   string

	// Object store
	ObjectStoreProvider string // "s3" | "gcs"
	BlobConnection      BlobConnection
	GCSEmulatorHost     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// CORS
	AllowedOrigin  string
	AllowedMethods []string
	AllowedHeaders []string

	// Rate limiting
	RateLimitRequests        int
	RateLimitDuration        time.Duration
	MutationRateLimit        int
	MutationRateLimitWindow  time.Duration
	CommentAppendMaxAttempts int
}

func New() *Config {
	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Metadata store
		MetadataEndpoint:  getEnv("METADATA_STORE_ENDPOINT", "localhost:5432"),
		MetadataKey:       getEnv("METADATA_STORE_KEY", ""),
		MetadataUser:      getEnv("METADATA_STORE_USER", "speedrun"),
		MetadataDatabase:  getEnv("METADATA_STORE_DATABASE", "websiteData"),
		MetadataContainer: getEnv("METADATA_STORE_CONTAINER", "websiteData"),
		MetadataSSLMode:   getEnv("METADATA_STORE_SSL_MODE", "disable"),

		// Object store
		ObjectStoreProvider: strings.ToLower(getEnv("OBJECT_STORE_PROVIDER", "s3")),
		BlobConnection:      ParseBlobConnection(getEnv("BLOB_STORAGE_CONNECTION_STRING", "")),
		GCSEmulatorHost:     getEnv("GCS_EMULATOR_HOST", ""),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// CORS
		AllowedOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "https://nice-field-0178e0003.4.azurestaticapps.net"),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS", "PUT", "DELETE"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),

		// Rate limiting
		RateLimitRequests:        getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration:        getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),
		MutationRateLimit:        getEnvAsInt("MUTATION_RATE_LIMIT", 30),
		MutationRateLimitWindow:  getEnvAsDuration("MUTATION_RATE_LIMIT_WINDOW", "1m"),
		CommentAppendMaxAttempts: getEnvAsInt("COMMENT_APPEND_MAX_ATTEMPTS", 3),
	}
}

// Validate reports deployment secrets that must be present before the
// stores can be reached.
func (c *Config) Validate() error {
	var missing []string
	if c.MetadataEndpoint == "" {
		missing = append(missing, "METADATA_STORE_ENDPOINT")
	}
	if c.MetadataKey == "" {
		missing = append(missing, "METADATA_STORE_KEY")
	}
	switch c.ObjectStoreProvider {
	case "s3":
		if c.BlobConnection.AccessKeyID == "" || c.BlobConnection.SecretAccessKey == "" {
			missing = append(missing, "BLOB_STORAGE_CONNECTION_STRING")
		}
	case "gcs":
	default:
		return fmt.Errorf("unsupported OBJECT_STORE_PROVIDER %q", c.ObjectStoreProvider)
	}
	if c.CommentAppendMaxAttempts < 1 {
		return fmt.Errorf("COMMENT_APPEND_MAX_ATTEMPTS must be at least 1")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MetadataDSN builds the postgres DSN for the metadata store.
func (c *Config) MetadataDSN() string {
	host, port := c.MetadataEndpoint, "5432"
	if h, p, ok := strings.Cut(c.MetadataEndpoint, ":"); ok {
		host, port = h, p
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, c.MetadataUser, c.MetadataKey, c.MetadataDatabase, c.MetadataSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Minute
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
