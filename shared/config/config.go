package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// HTTP
	Port        string
	FrontendURL string

	// External credential service
	CredentialAPI string

	// Permission scope: the seeded "Admin" service row
	AdminServiceUUID string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// Login Rate Limiting
	LoginRateLimitMaxAttempts   string
	LoginRateLimitWindowSeconds string
	LoginRateLimitBlockMinutes  string

	// Register Rate Limiting
	RegisterRateLimitMaxAttempts string
	RegisterRateLimitWindowHours string
	RegisterRateLimitBlockHours  string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg = &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "tenantadmin"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// HTTP
		Port:        getEnv("PORT", "3000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3001"),

		// Credential service
		CredentialAPI: getEnv("CREDENTIAL_API", "http://localhost:8100"),

		// Admin service scope for permission checks
		AdminServiceUUID: getEnv("ADMIN_SERVICE_UUID", "6f1f3d7a-0000-4000-8000-000000000001"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// Login Rate Limiting
		LoginRateLimitMaxAttempts:   getEnv("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", "5"),
		LoginRateLimitWindowSeconds: getEnv("LOGIN_RATE_LIMIT_WINDOW_SECONDS", "300"),
		LoginRateLimitBlockMinutes:  getEnv("LOGIN_RATE_LIMIT_BLOCK_MINUTES", "30"),

		// Register Rate Limiting
		RegisterRateLimitMaxAttempts: getEnv("REGISTER_RATE_LIMIT_MAX_ATTEMPTS", "3"),
		RegisterRateLimitWindowHours: getEnv("REGISTER_RATE_LIMIT_WINDOW_HOURS", "24"),
		RegisterRateLimitBlockHours:  getEnv("REGISTER_RATE_LIMIT_BLOCK_HOURS", "48"),
	}

	log.Println("✅ Configuration loaded successfully")
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetLoginRateLimitMaxAttempts returns the login attempt limit as integer
func (c *Config) GetLoginRateLimitMaxAttempts() int {
	if value, err := strconv.Atoi(c.LoginRateLimitMaxAttempts); err == nil {
		return value
	}
	return 5
}

// GetLoginRateLimitWindowSeconds returns the login window as integer
func (c *Config) GetLoginRateLimitWindowSeconds() int {
	if value, err := strconv.Atoi(c.LoginRateLimitWindowSeconds); err == nil {
		return value
	}
	return 300
}

// GetLoginRateLimitBlockMinutes returns the login block duration as integer
func (c *Config) GetLoginRateLimitBlockMinutes() int {
	if value, err := strconv.Atoi(c.LoginRateLimitBlockMinutes); err == nil {
		return value
	}
	return 30
}

// GetRegisterRateLimitMaxAttempts returns the register attempt limit as integer
func (c *Config) GetRegisterRateLimitMaxAttempts() int {
	if value, err := strconv.Atoi(c.RegisterRateLimitMaxAttempts); err == nil {
		return value
	}
	return 3
}

// GetRegisterRateLimitWindowHours returns the register window as integer
func (c *Config) GetRegisterRateLimitWindowHours() int {
	if value, err := strconv.Atoi(c.RegisterRateLimitWindowHours); err == nil {
		return value
	}
	return 24
}

// GetRegisterRateLimitBlockHours returns the register block duration as integer
func (c *Config) GetRegisterRateLimitBlockHours() int {
	if value, err := strconv.Atoi(c.RegisterRateLimitBlockHours); err == nil {
		return value
	}
	return 48
}
