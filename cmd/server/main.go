package main

import (
	"context" // context package is needed for Redis operations
	"os"      // Process exit

	"demo_wallet/internal/api"       // HTTP handlers and router
	"demo_wallet/internal/blacklist" // Karma blacklist client
	"demo_wallet/internal/cache"     // Wallet snapshot cache
	"demo_wallet/internal/config"    // Custom package for configuration
	"demo_wallet/internal/db"        // Database connection and migration
	"demo_wallet/internal/metrics"   // Prometheus metrics
	"demo_wallet/internal/service"   // Orchestrators
	"demo_wallet/internal/store"     // Persistence
	"demo_wallet/internal/utils"     // Password hashing and tokens

	"github.com/gin-gonic/gin"                                  // Gin web framework
	"github.com/prometheus/client_golang/prometheus"            // Metrics registry
	"github.com/prometheus/client_golang/prometheus/collectors" // Runtime collectors
	"github.com/redis/go-redis/v9"                              // Redis client
	"github.com/sirupsen/logrus"                                // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	log := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	gdb, err := db.Open(cfg, log)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gdb, log); err != nil {
			log.Fatalf("failed to migrate DB: %v", err)
		}
	}
	st := store.New(gdb)

	// Wallet cache is optional; without Redis every read goes to the database
	var walletCache cache.WalletCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		walletCache = cache.NewRedis(redisClient, cfg.CacheTTL, log)
	}

	var checker blacklist.Checker = blacklist.AllowAll{}
	if cfg.BlacklistURL != "" {
		checker = blacklist.NewClient(cfg.BlacklistURL, cfg.BlacklistAPIKey, cfg.BlacklistTimeout, log)
	} else {
		log.Warn("BLACKLIST_BASE_URL is not set, onboarding will not screen users")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	issue := func(userID string) (string, error) { return utils.GenerateJWT(userID, cfg.JWTSecret) }
	users := service.NewUserService(st, checker, hasher, issue, log, cfg.TxTimeout)
	wallets := service.NewWalletService(st, hasher, log, cfg.TxTimeout,
		service.WithWalletCache(walletCache),
		service.WithMetrics(metrics.NewPrometheus(reg)),
	)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(api.RouterConfig{
		Users:       users,
		Wallets:     wallets,
		AuthToken:   cfg.AuthToken,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Gatherer:    reg,
		Log:         log,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		log.Fatalf("failed to set trusted proxies: %v", err)
	}

	log.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

// newLogger builds the process logger: text in development, JSON in production
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.IsProd {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
	}
	log.SetLevel(level)
	return log
}
