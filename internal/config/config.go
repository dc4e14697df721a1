package config

import (
	"errors"  // Validation errors
	"fmt"     // DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // List parsing
	"time"    // Token lifetime

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"    // Default driver
	DriverPostgres = "postgres" // PostgreSQL via pgx
	DriverSQLite   = "sqlite"   // Local file database
)

// Config holds the configuration shared by the auth and shop services
type Config struct {
	AppPort         string        // Application port
	DBDriver        string        // Database driver: mysql, postgres or sqlite
	DatabaseURL     string        // Full connection string, overrides the parts below
	DBUser          string        // Database user
	DBPassword      string        // Database password
	DBHost          string        // Database host
	DBPort          string        // Database port
	DBName          string        // Database name (file path for sqlite)
	JWTSecret       string        // JWT secret key shared with token consumers
	JWTTTL          time.Duration // Lifetime of issued tokens
	AuthServiceHost string        // host:port of the auth service used by the shop service
	RedisAddr       string        // Redis server address, empty disables caching
	RedisPass       string        // Redis password
	RedisDB         int           // Redis database number
	CORSOrigins     []string      // Allowed CORS origins, empty allows all
	LoginRatePerMin int           // Login attempts per minute per IP, 0 disables
	LogLevel        string        // Logrus level name
	IsProd          bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	loginRate, err := strconv.Atoi(getEnv("LOGIN_RATE_PER_MIN", "10"))
	if err != nil {
		loginRate = 10 // Fall back to the default on garbage input
	}
	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour // Fall back to the default on garbage input
	}
	driver := strings.ToLower(getEnv("DB_DRIVER", DriverMySQL))
	return &Config{
		AppPort:         getEnv("APP_PORT", "5000"),                    // Application port
		DBDriver:        driver,                                        // Database driver
		DatabaseURL:     os.Getenv("DATABASE_URL"),                     // Full connection string
		DBUser:          os.Getenv("DB_USER"),                          // Database user
		DBPassword:      os.Getenv("DB_PASSWORD"),                      // Database password
		DBHost:          os.Getenv("DB_HOST"),                          // Database host
		DBPort:          os.Getenv("DB_PORT"),                          // Database port
		DBName:          os.Getenv("DB_NAME"),                          // Database name
		JWTSecret:       os.Getenv("JWT_SECRET"),                       // JWT secret key
		JWTTTL:          ttl,                                           // Token lifetime
		AuthServiceHost: getEnv("AUTH_SERVICE_HOST", "localhost:5000"), // Auth service address
		RedisAddr:       os.Getenv("REDIS_ADDR"),                       // Redis server address
		RedisPass:       os.Getenv("REDIS_PASS"),                       // Redis password
		RedisDB:         redisDB,                                       // Redis database number
		CORSOrigins:     splitList(os.Getenv("CORS_ORIGINS")),          // Allowed origins
		LoginRatePerMin: loginRate,                                     // Login throttling
		LogLevel:        getEnv("LOG_LEVEL", "info"),                   // Log level
		IsProd:          os.Getenv("IS_PROD") == "true",                // Is production environment
	}
}

// Validate checks the settings a service cannot start without
func (c *Config) Validate(service string) error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseURL == "" && c.DBName == "" {
		return errors.New("DB_NAME or DATABASE_URL must be set")
	}
	if service == "auth" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set for the auth service")
	}
	if service == "shop" && c.AuthServiceHost == "" {
		return errors.New("AUTH_SERVICE_HOST must be set for the shop service")
	}
	return nil
}

// DSN builds the connection string for the configured driver
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	switch c.DBDriver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	case DriverSQLite:
		return c.DBName + "?_foreign_keys=1"
	default:
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
	}
}

// String returns a printable summary with secrets masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, DB: %s/%s, AuthService: %s, Redis: %q, Prod: %t}",
		c.AppPort, c.DBDriver, c.DBName, c.AuthServiceHost, c.RedisAddr, c.IsProd)
}

// getEnv retrieves an environment variable with a default fallback
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

// splitList parses a comma separated list, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
