// config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMongo     = "mongo"
	StoreCassandra = "cassandra"
	StoreRedis     = "redis"
	StoreMemory    = "memory"
)

// Configuration constants for the application
var (
	// MongoDB configuration
	MongoURI      string
	MongoDatabase string

	// Cassandra configuration
	CassandraHost     string
	CassandraUsername string
	CassandraPassword string
	CassandraKeyspace string
	CassandraPort     int

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Storage backend selection
	ProfileStore string
	MessageStore string
	StateStore   string
	StoreTimeout time.Duration

	// MatchReservationEnabled pins the first match of the day for both participants
	MatchReservationEnabled bool

	// ServerPort is the port on which the server will run
	ServerPort  int
	CORSOrigins string

	// Logging configuration
	LogLevel  string
	LogFormat string

	// Application configuration
	AppName    = "LONETOWN"
	AppVersion = "1.0.0"
)

func init() {
	Load()
}

// Load reads the environment (and .env files, if present) into the package variables
func Load() {
	// Missing files are fine, the process environment still applies
	_ = godotenv.Load(".env.localdev")
	_ = godotenv.Load()

	// MongoDB configuration
	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	MongoDatabase = getEnv("MONGO_DATABASE", "lonetown")

	// Cassandra configuration
	CassandraHost = getEnv("CASSANDRA_HOST", "localhost")
	CassandraUsername = getEnv("CASSANDRA_USERNAME", "cassandra")
	CassandraPassword = getEnv("CASSANDRA_PASSWORD", "cassandra")
	CassandraKeyspace = getEnv("CASSANDRA_KEYSPACE", "lonetown")
	CassandraPort = getIntEnv("CASSANDRA_PORT", 9042)

	// Redis configuration
	RedisURL = getEnv("REDIS_URL", "localhost:6379")
	RedisPassword = getEnv("REDIS_PASSWORD", "")
	RedisDB = getIntEnv("REDIS_DB", 0)

	// Storage configuration
	ProfileStore = strings.ToLower(getEnv("PROFILE_STORE", StoreMongo))
	MessageStore = strings.ToLower(getEnv("MESSAGE_STORE", StoreMongo))
	StateStore = strings.ToLower(getEnv("STATE_STORE", StoreRedis))
	StoreTimeout = getDurationEnv("STORE_TIMEOUT", 5*time.Second)
	MatchReservationEnabled = getBoolEnv("MATCH_RESERVATION_ENABLED", false)

	// Server configuration
	ServerPort = getIntEnv("SERVER_PORT", getIntEnv("PORT", 5000))
	CORSOrigins = getEnv("CORS_ORIGINS", "*")

	// Logging configuration
	LogLevel = getEnv("LOG_LEVEL", "info")
	LogFormat = getEnv("LOG_FORMAT", "text")
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
