package router

import (
	"time"

	"sokoni/config"
	"sokoni/internal/handler"
	"sokoni/internal/middleware"
	"sokoni/internal/repository"
	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cache *redis.Client, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewSlidingWindowLimiter(100, 60*time.Second)))

	// Repositories
	ledgerRepo := repository.NewLedgerRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	streakRepo := repository.NewStreakRepository(db)
	rankRepo := repository.NewRankRepository(db)
	sellerRepo := repository.NewSellerRepository(db)

	// Services
	txSvc := service.NewTransactionService(ledgerRepo, walletRepo, cfg.Credits, log)
	rankSvc := service.NewRankService(sellerRepo, walletRepo, streakRepo, rankRepo, cache, cfg.Ranking.LeaderboardCacheTTL, log)
	streakSvc := service.NewStreakService(streakRepo, txSvc, rankSvc, log)

	// Handlers
	walletHandler := handler.NewWalletHandler(txSvc)
	streakHandler := handler.NewStreakHandler(streakSvc)
	rankHandler := handler.NewRankHandler(rankSvc, cfg.Ranking.LeaderboardLimit)
	adminHandler := handler.NewAdminHandler(cfg, txSvc, sellerRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		api.POST("/admin/login", adminHandler.Login)

		seller := api.Group("")
		seller.Use(authMw)
		{
			seller.GET("/wallet", walletHandler.GetWallet)
			seller.GET("/wallet/transactions", walletHandler.ListTransactions)
			seller.POST("/wallet/earn", walletHandler.Earn)
			seller.POST("/wallet/spend", walletHandler.Spend)
			seller.POST("/checkin", streakHandler.CheckIn)
			seller.GET("/streak", streakHandler.GetStreak)
			seller.GET("/rank/me", rankHandler.GetMyRank)
			seller.GET("/rank/leaderboard", rankHandler.GetLeaderboard)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.POST("/wallets/:sellerID/adjust", adminHandler.AdjustWallet)
			admin.GET("/wallets/:sellerID/audit", adminHandler.AuditWallet)
			admin.POST("/transactions/:id/reverse", adminHandler.ReverseTransaction)
			admin.PUT("/sellers/:sellerID", adminHandler.UpsertSeller)
			admin.PUT("/sellers/:sellerID/aggregates", adminHandler.UpdateAggregates)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
