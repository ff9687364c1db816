package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseKey     string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	DatabaseURL     string
	CORSOrigins     string
	TablePrefix     string
	// Blob storage
	StorageDriver  string // "minio" or "memory"
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	// Tree behaviour
	MaxUploadBytes int64
	StrictNames    bool // reject duplicate sibling names on folder create/rename and file rename
	// Logging
	LogLevel    slog.Level
	LogDir      string // empty = stdout only
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	// Construct JWKS URL from Supabase URL
	jwksURL := supabaseURL + "/auth/v1/.well-known/jwks.json"

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		SupabaseURL:     supabaseURL,
		SupabaseKey:     getEnv("SUPABASE_KEY", ""),
		SupabaseJWKSURL: jwksURL,
		// SUPABASE_DB_URL is still honoured for existing deployments
		DatabaseURL:    getEnv("DATABASE_URL", getEnv("SUPABASE_DB_URL", "")),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:    tablePrefix,
		StorageDriver:  getEnv("STORAGE_DRIVER", getDefaultStorageDriver(env)),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "client-portal"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		StrictNames:    getEnvBool("PORTAL_STRICT_NAMES", false),
		LogLevel:       getLogLevel(env),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    int(getEnvInt64("LOG_MAX_FILES", 10)),
	}
}

// getDefaultStorageDriver keeps tests free of an object store
func getDefaultStorageDriver(env string) string {
	if env == "test" {
		return "memory"
	}
	return "minio"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

// getLogLevel honours LOG_LEVEL, defaulting to debug in dev
func getLogLevel(env string) slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == "dev" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
