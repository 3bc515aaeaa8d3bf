package handler

import (
	"sweeps-casino/internal/adapter/http/middleware"
	"sweeps-casino/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	GrantSvc       ports.GrantService
	PurchaseSvc    ports.PurchaseService
	RedemptionSvc  ports.RedemptionService
	RoundSvc       ports.RoundService
	TokenSvc       ports.TokenService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// API v1 routes — all player-facing, all JWT-authenticated
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1", jwtAuth)

	walletHandler := NewWalletHandler(deps.WalletSvc, deps.GrantSvc, deps.PurchaseSvc, deps.RedemptionSvc)
	roundHandler := NewRoundHandler(deps.RoundSvc)

	wallets := v1.Group("/wallets")
	{
		wallets.GET("/balances", walletHandler.Balances)
	}

	grants := v1.Group("/grants")
	{
		grants.POST("/daily", walletHandler.ClaimDailyGrant)
	}

	store := v1.Group("/store")
	{
		store.POST("/purchase", walletHandler.Purchase)
	}

	redemptions := v1.Group("/redemptions")
	{
		redemptions.POST("", walletHandler.LockRedemption)
	}

	rounds := v1.Group("/rounds")
	{
		rounds.POST("", roundHandler.Start)
		rounds.POST("/:id/resolve", roundHandler.Resolve)
	}

	return r
}
