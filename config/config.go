package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Files     FilesConfig
	Auth      AuthConfig
	Retention RetentionConfig
	App       AppConfig
}

type ServerConfig struct {
	Port string
	// RateLimit is requests per second per client; RateBurst the bucket size.
	RateLimit float64
	RateBurst int
}

type DatabaseConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FilesConfig struct {
	// Backend is "s3" or "local".
	Backend  string
	Region   string
	Bucket   string
	Prefix   string
	LocalDir string
}

type AuthConfig struct {
	// CredentialsPath empty → dev header auth instead of Firebase.
	CredentialsPath string
}

type RetentionConfig struct {
	// Days a soft-deleted document survives before the nightly sweep
	// removes it for good.
	Days int
}

type AppConfig struct {
	Environment string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "8080"),
			RateLimit: getEnvAsFloat("RATE_LIMIT_RPS", 25),
			RateBurst: getEnvAsInt("RATE_LIMIT_BURST", 50),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Files: FilesConfig{
			Backend:  getEnv("FILES_BACKEND", "local"),
			Region:   getEnv("AWS_REGION", "us-east-1"),
			Bucket:   getEnv("S3_BUCKET", ""),
			Prefix:   getEnv("S3_PREFIX", "review-documents"),
			LocalDir: getEnv("FILES_LOCAL_DIR", "uploads"),
		},
		Auth: AuthConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Retention: RetentionConfig{
			Days: getEnvAsInt("RETENTION_DAYS", 30),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Files.Backend == "s3" && c.Files.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when FILES_BACKEND=s3")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}
