package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode   string
	Port      string
	Mongo     MongoConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Estimator EstimatorConfig
	Client    ClientConfig
}

// MongoConfig holds session store configuration
type MongoConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds realtime pub/sub configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds admin token configuration
type JWTConfig struct {
	Secret          string
	AccessTokenMins int
}

// EstimatorConfig holds the external wait-time predictor configuration
type EstimatorConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	TimeoutSec int
}

// ClientConfig holds settings for the browser clients
type ClientConfig struct {
	// BaseURL is the customer-facing origin join links point at
	BaseURL string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "60"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	estimatorTimeout, _ := strconv.Atoi(getEnv("ESTIMATOR_TIMEOUT_SECONDS", "10"))

	config := &Config{
		AppMode: appMode,
		Port:    getEnv("PORT", "3000"),
		Mongo: MongoConfig{
			URI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName: getEnv("MONGO_DBNAME", "queueflow"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "default_secret"),
			AccessTokenMins: accessMins,
		},
		Estimator: EstimatorConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL:    getEnv("GEMINI_BASE_URL", ""),
			TimeoutSec: estimatorTimeout,
		},
		Client: ClientConfig{
			BaseURL: getEnv("CLIENT_BASE_URL", "http://localhost:5173"),
		},
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// EstimatorTimeout returns the predictor call timeout as a duration
func (c *Config) EstimatorTimeout() time.Duration {
	return time.Duration(c.Estimator.TimeoutSec) * time.Second
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return c.Client.BaseURL
	}
	return origins
}
