package api

import (
	"net/http" // HTTP status codes
	"slices"   // Origin list lookup
	"time"     // CORS max age

	"demo_wallet/internal/middleware" // Auth gate and request logging
	"demo_wallet/internal/service"    // Orchestrators

	"github.com/gin-contrib/cors"                             // CORS middleware
	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus"          // Metrics registry
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics exposition
	"github.com/sirupsen/logrus"                              // Logging library
)

// HealthMessage is served on the root route
const HealthMessage = "Demo Credit Wallet Service API is ready"

// RouterConfig carries everything the HTTP layer depends on
type RouterConfig struct {
	Users       *service.UserService
	Wallets     *service.WalletService
	AuthToken   string              // Static bearer token for the wallet routes
	JWTSecret   string              // Secret the login tokens are signed with
	CORSOrigins []string            // "*" allows any origin
	Gatherer    prometheus.Gatherer // Served on /metrics, nil disables the route
	Log         logrus.FieldLogger
}

// NewRouter builds the gin engine with every route mounted
func NewRouter(rc RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(rc.Log), cors.New(corsConfig(rc.CORSOrigins)))

	// Basic route for health check
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, HealthMessage)
	})
	if rc.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(rc.Gatherer, promhttp.HandlerOpts{})))
	}

	// User routes
	users := r.Group("/api/users")
	users.POST("/create-account", CreateAccountHandler(rc.Users, rc.Log)) // Registration endpoint
	users.POST("/login", LoginHandler(rc.Users, rc.Log))                  // Login endpoint

	// Wallet routes (protected by the auth gate)
	wallets := r.Group("/api/wallets")
	wallets.Use(middleware.AuthMiddleware(rc.AuthToken, rc.JWTSecret))
	wallets.POST("/fund-wallet", FundHandler(rc.Wallets, rc.Log))                            // Fund endpoint
	wallets.POST("/withdraw-funds", WithdrawHandler(rc.Wallets, rc.Log))                     // Withdraw endpoint
	wallets.POST("/transfer-funds", TransferHandler(rc.Wallets, rc.Log))                     // Transfer endpoint
	wallets.GET("/:walletId", GetWalletHandler(rc.Wallets, rc.Log))                          // Wallet snapshot endpoint
	wallets.GET("/:walletId/transactions", GetTransactionHistoryHandler(rc.Wallets, rc.Log)) // Transaction history endpoint

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
