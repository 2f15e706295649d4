package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	Ingest   IngestConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr     string
	RateLimitDur time.Duration
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	// Backend is "file" or "postgres"
	Backend string
	// DataDir holds the JSON snapshot files for the file backend
	DataDir string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Backend   string // "memory" or "redis"
	TTL       time.Duration
	RedisAddr string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// AuthConfig holds admin authentication configuration
type AuthConfig struct {
	// AdminToken is compared verbatim against the x-admin-token header.
	// The default is for local development only.
	AdminToken string
}

// IngestConfig holds feed ingestion configuration
type IngestConfig struct {
	// ActorsFile seeds the actor roster at startup when it exists
	ActorsFile string
	// DryRun skips persistence, reporting what would have been ingested
	DryRun bool
}

// DefaultAdminToken is the development fallback for ADMIN_TOKEN.
const DefaultAdminToken = "secret_admin_token"

// Load parses flags and environment variables to build configuration
func Load() *Config {
	cfg := &Config{}

	// Define flags with defaults
	httpAddr := flag.String("http", ":8080", "HTTP server address")
	storageBackend := flag.String("storage", "file", "Storage backend: file or postgres")
	dataDir := flag.String("data-dir", "data", "Directory for JSON snapshot files (file backend)")
	cacheTTL := flag.Duration("cache-ttl", 5*time.Minute, "Cache TTL for the actor roster")
	cacheBackend := flag.String("cache-backend", "memory", "Cache backend: memory or redis")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis server address")
	rateLimitDur := flag.Duration("rate-limit", time.Second, "Minimum delay between requests to same host")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	actorsFile := flag.String("actors-file", "actors.yaml", "Actor seed file (YAML)")
	ingestDryRun := flag.Bool("ingest-dry-run", false, "Fetch feeds without persisting articles")
	dbHost := flag.String("db-host", "localhost", "PostgreSQL host")
	dbPort := flag.Int("db-port", 5432, "PostgreSQL port")
	dbUser := flag.String("db-user", "postgres", "PostgreSQL user")
	dbPassword := flag.String("db-password", "postgres", "PostgreSQL password")
	dbName := flag.String("db-name", "curiosinfo", "PostgreSQL database name")
	dbSSLMode := flag.String("db-sslmode", "disable", "PostgreSQL SSL mode")

	flag.Parse()

	// Apply environment variable overrides
	applyEnvOverrides(httpAddr, storageBackend, dataDir, cacheTTL, cacheBackend, redisAddr, rateLimitDur, logLevel, actorsFile, ingestDryRun, dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	// Build config struct
	cfg.Server = ServerConfig{
		HTTPAddr:     *httpAddr,
		RateLimitDur: *rateLimitDur,
	}

	cfg.Storage = StorageConfig{
		Backend: *storageBackend,
		DataDir: *dataDir,
	}

	cfg.Cache = CacheConfig{
		Backend:   *cacheBackend,
		TTL:       *cacheTTL,
		RedisAddr: *redisAddr,
	}

	cfg.Database = DatabaseConfig{
		Host:     *dbHost,
		Port:     *dbPort,
		User:     *dbUser,
		Password: *dbPassword,
		Database: *dbName,
		SSLMode:  *dbSSLMode,
	}

	cfg.Logging = LoggingConfig{
		Level: *logLevel,
	}

	cfg.Auth = AuthConfig{
		AdminToken: getEnvOrDefault("ADMIN_TOKEN", DefaultAdminToken),
	}

	cfg.Ingest = IngestConfig{
		ActorsFile: *actorsFile,
		DryRun:     *ingestDryRun,
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func applyEnvOverrides(
	httpAddr *string,
	storageBackend *string,
	dataDir *string,
	cacheTTL *time.Duration,
	cacheBackend *string,
	redisAddr *string,
	rateLimitDur *time.Duration,
	logLevel *string,
	actorsFile *string,
	ingestDryRun *bool,
	dbHost *string,
	dbPort *int,
	dbUser *string,
	dbPassword *string,
	dbName *string,
	dbSSLMode *string,
) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		*httpAddr = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		*storageBackend = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		*dataDir = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*cacheTTL = d
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		*cacheBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*redisAddr = v
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*rateLimitDur = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*logLevel = v
	}
	if v := os.Getenv("ACTORS_FILE"); v != "" {
		*actorsFile = v
	}
	if v := os.Getenv("INGEST_DRY_RUN"); v == "true" || v == "1" {
		*ingestDryRun = true
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		*dbHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			*dbPort = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		*dbUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		*dbPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		*dbName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		*dbSSLMode = v
	}
}
