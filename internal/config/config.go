package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// TLS/mTLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // CA for verifying client certs (mTLS)

	// Relational store (favorites and recommendations)
	DatabaseURL string

	// Document store (publication trends and keyword catalog)
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Graph store (faculty, institute and keyword relationships)
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Catalog cache. Empty RedisURL disables caching.
	RedisURL            string
	CatalogCacheTTL     time.Duration
	CatalogWarmInterval time.Duration // 0 disables the background warmer

	// StoreTimeout bounds every single store call.
	StoreTimeout time.Duration

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// RateLimit is the number of requests allowed per IP per minute.
	RateLimit int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		TLSEnabled:  getEnv("TLS_ENABLED", "") != "",
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),
		TLSCAFile:   getEnv("TLS_CA_FILE", ""),

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/academicworld?sslmode=disable"),

		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "academicworld"),
		MongoCollection: getEnv("MONGO_COLLECTION", "publications"),

		Neo4jURI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase: getEnv("NEO4J_DATABASE", "academicworld"),

		RedisURL:            getEnv("REDIS_URL", ""),
		CatalogCacheTTL:     getDuration("CATALOG_CACHE_TTL", time.Hour),
		CatalogWarmInterval: getDuration("CATALOG_WARM_INTERVAL", 30*time.Minute),

		StoreTimeout: getDuration("STORE_TIMEOUT", 5*time.Second),
		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		RateLimit:    getInt("RATE_LIMIT", 100),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsMTLSEnabled returns true if mTLS is configured with a CA file.
func (c *Config) IsMTLSEnabled() bool {
	return c.TLSEnabled && c.TLSCAFile != ""
}

// CacheEnabled returns true if a redis catalog cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}
