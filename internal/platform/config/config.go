package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	APIPort string
	AppEnv  string

	JWTSecret string
	JWTIssuer string
	JWTExp    time.Duration

	BcryptCost int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TokenRevocationEnabled bool
	CORSAllowedOrigins     []string

	BootstrapAdmin           bool
	BootstrapAdminUsername   string
	BootstrapAdminEmail      string
	InitialAdminPasswordPath string
}

var defaultCORSOrigins = []string{
	"http://localhost:5500",
	"http://127.0.0.1:5500",
	"http://localhost:3000",
	"http://localhost:8081",
}

// Load reads the process environment, after merging an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIPort:       getEnv("API_PORT", "8080"),
		AppEnv:        getEnv("APP_ENV", "development"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "academic-records"),
		JWTExp:        getEnvAsDuration("JWT_EXPIRATION", time.Hour),
		BcryptCost:    getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "academic_records"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		TokenRevocationEnabled: getEnvAsBool("TOKEN_REVOCATION_ENABLED", true),
		CORSAllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),

		BootstrapAdmin:           getEnvAsBool("BOOTSTRAP_ADMIN", false),
		BootstrapAdminUsername:   getEnv("BOOTSTRAP_ADMIN_USERNAME", "admin"),
		BootstrapAdminEmail:      getEnv("BOOTSTRAP_ADMIN_EMAIL", "admin@localhost"),
		InitialAdminPasswordPath: getEnv("INITIAL_ADMIN_PASSWORD_PATH", ""),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration the server must refuse to start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.JWTSecret))
	}
	if c.JWTExp <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive, got %s", c.JWTExp)
	}
	if c.BootstrapAdmin && c.InitialAdminPasswordPath == "" {
		return errors.New("INITIAL_ADMIN_PASSWORD_PATH is required when BOOTSTRAP_ADMIN is enabled")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90m") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
