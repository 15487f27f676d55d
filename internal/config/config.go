package config

import (
	"os"      // For environment variables
	"strconv" // For string to int/float conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration, loaded once at startup and
// immutable afterwards
type Config struct {
	AppPort        string  // Application port
	DBDriver       string  // Database driver: "mysql" or "sqlite"
	DBUser         string  // Database user (mysql)
	DBPassword     string  // Database password (mysql)
	DBHost         string  // Database host (mysql)
	DBPort         string  // Database port (mysql)
	DBName         string  // Database name (mysql)
	DBPath         string  // Database file path (sqlite)
	JWTSecret      string  // Signing secret for issued admin tokens
	RedisAddr      string  // Redis server address
	RedisPass      string  // Redis password
	RedisDB        int     // Redis database number
	InitialBalance float64 // Balance granted to newly registered users
	CORSOrigins    string  // Comma-separated allowed CORS origins, "*" for any
	IsProd         bool    // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	initialBalance, _ := strconv.ParseFloat(os.Getenv("INITIAL_BALANCE"), 64)
	return &Config{
		AppPort:        envOrDefault("APP_PORT", "8080"),      // Application port
		DBDriver:       envOrDefault("DB_DRIVER", "sqlite"),   // Server-backed mysql or file-backed sqlite
		DBUser:         os.Getenv("DB_USER"),                  // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),              // Database password
		DBHost:         os.Getenv("DB_HOST"),                  // Database host
		DBPort:         os.Getenv("DB_PORT"),                  // Database port
		DBName:         os.Getenv("DB_NAME"),                  // Database name
		DBPath:         envOrDefault("DB_PATH", "ledger.db"),  // SQLite database file
		JWTSecret:      os.Getenv("JWT_SECRET"),               // Token signing secret
		RedisAddr:      os.Getenv("REDIS_ADDR"),               // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),               // Redis password
		RedisDB:        redisDB,                               // Redis database number
		InitialBalance: initialBalance,                        // Starting balance policy (default 0)
		CORSOrigins:    envOrDefault("CORS_ORIGINS", "*"),     // Allowed CORS origins
		IsProd:         os.Getenv("IS_PROD") == "true",        // Is production environment
	}
}

// envOrDefault returns the environment variable value or a fallback when unset
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v // Use the configured value
	}
	return fallback // Fall back to the default
}
