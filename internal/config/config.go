package config

import (
	"errors"  // For validation errors
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort string // Application port
	IsProd  bool   // Is production environment

	DBDriver          string        // mysql, postgres or sqlite
	DBUser            string        // Database user
	DBPassword        string        // Database password
	DBHost            string        // Database host
	DBPort            string        // Database port
	DBName            string        // Database name (file path for sqlite)
	DBDSN             string        // Full DSN, overrides the parts above
	DBMaxOpenConns    int           // Pool size
	DBMaxIdleConns    int           // Idle connections kept
	DBConnMaxLifetime time.Duration // Connection recycle interval
	AutoMigrate       bool          // Run schema migration on server start

	AuthToken string // Static bearer token accepted by the wallet routes
	JWTSecret string // Secret for login tokens

	RedisAddr string        // Redis server address, empty disables the cache
	RedisPass string        // Redis password
	RedisDB   int           // Redis database number
	CacheTTL  time.Duration // Wallet snapshot TTL

	BlacklistURL     string        // Karma lookup base URL, empty disables the check
	BlacklistAPIKey  string        // Bearer key for the lookup service
	BlacklistTimeout time.Duration // Per-lookup timeout

	TxTimeout   time.Duration // Upper bound for one unit of work
	BcryptCost  int           // Password hashing cost
	CORSOrigins []string      // Allowed CORS origins
	LogLevel    string        // logrus level name
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		IsProd:  os.Getenv("IS_PROD") == "true",

		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DBUser:            getEnv("DB_USER", "root"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBHost:            getEnv("DB_HOST", "127.0.0.1"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBName:            getEnv("DB_NAME", "demo_wallet_db"),
		DBDSN:             os.Getenv("DB_DSN"),
		DBMaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		AutoMigrate:       os.Getenv("AUTO_MIGRATE") == "true",

		AuthToken: os.Getenv("AUTH_TOKEN"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   getIntEnv("REDIS_DB", 0),
		CacheTTL:  getDurationEnv("CACHE_TTL", 60*time.Second),

		BlacklistURL:     strings.TrimRight(os.Getenv("BLACKLIST_BASE_URL"), "/"),
		BlacklistAPIKey:  os.Getenv("BLACKLIST_API_KEY"),
		BlacklistTimeout: getDurationEnv("BLACKLIST_TIMEOUT", 5*time.Second),

		TxTimeout:   getDurationEnv("TX_TIMEOUT", 5*time.Second),
		BcryptCost:  getIntEnv("BCRYPT_COST", 10),
		CORSOrigins: getListEnv("CORS_ORIGINS", []string{"*"}),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.AuthToken == "" {
		errs = append(errs, errors.New("AUTH_TOKEN is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TxTimeout <= 0 {
		errs = append(errs, errors.New("TX_TIMEOUT must be positive"))
	}
	if c.IsProd && c.BlacklistURL == "" {
		errs = append(errs, errors.New("BLACKLIST_BASE_URL is required in production"))
	}
	return errors.Join(errs...)
}

// DSN builds the driver specific data source name
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	case DriverSQLite:
		return c.DBName
	default:
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&loc=UTC"
	}
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// getIntEnv returns an int environment variable or a default value
func getIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getDurationEnv parses a Go duration ("5s", "1h") or falls back to the default
func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getListEnv splits a comma separated variable
func getListEnv(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
