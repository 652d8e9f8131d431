package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sokoni/config"
	"sokoni/internal/database"
	"sokoni/internal/repository"
	"sokoni/internal/router"
	"sokoni/internal/service"
	"sokoni/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := cache.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, leaderboard cache disabled")
			cache = nil
		}
	}

	engine := router.Setup(cfg, db, cache, log)

	if cfg.Scheduler.RankRefreshEnabled {
		rankSvc := service.NewRankService(
			repository.NewSellerRepository(db),
			repository.NewWalletRepository(db),
			repository.NewStreakRepository(db),
			repository.NewRankRepository(db),
			cache, cfg.Ranking.LeaderboardCacheTTL, log,
		)
		sched, err := service.StartRankScheduler(rankSvc, cfg.Scheduler.RankRefreshInterval, log)
		if err != nil {
			log.Fatal().Err(err).Msg("rank scheduler failed to start")
		}
		defer func() { _ = sched.Shutdown() }()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
