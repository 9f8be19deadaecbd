package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"giveaway-bot-backend/internal/common/config"
	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/common/middleware"
	giveawayHTTP "giveaway-bot-backend/internal/features/giveaway/delivery/http"
	"giveaway-bot-backend/internal/features/giveaway/repository"
	jsonRepo "giveaway-bot-backend/internal/features/giveaway/repository/json"
	redisRepo "giveaway-bot-backend/internal/features/giveaway/repository/redis"
	giveawayService "giveaway-bot-backend/internal/features/giveaway/service"
	"giveaway-bot-backend/internal/platform/redis"
	"giveaway-bot-backend/internal/platform/webhook"
)

func main() {
	cfg := config.Load()

	logger.Init("giveaway-bot-backend", cfg.Debug, cfg.LogFile)
	logger.Info().
		Bool("debug", cfg.Debug).
		Str("storage", cfg.Storage.Backend).
		Msg("starting giveaway backend")

	repo, err := buildRepository(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	var presenter giveawayService.Presenter
	if cfg.Announce.WebhookURL != "" {
		presenter = webhook.NewClient(cfg.Announce.WebhookURL)
		logger.Info().Msg("announce webhook configured")
	} else {
		logger.Warn().Msg("no announce webhook configured, giveaways will not be posted")
	}

	svc := giveawayService.NewGiveawayService(repo, cfg, presenter)

	expiration := giveawayService.NewExpirationService(svc, repo, cfg)
	expiration.Start()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "X-User-ID", "X-Role-IDs", "X-Administrator", "X-Manage-Guild"}
	router.Use(cors.New(corsConfig))

	handler := giveawayHTTP.NewGiveawayHandler(svc, cfg)
	handler.RegisterRoutes(router.Group("/api/v1"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "giveaway-bot-backend",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http server forced to shut down")
	}

	expiration.Stop()

	// Close flushes any pending giveaway state to disk.
	if err := repo.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close storage")
	}

	logger.Info().Msg("stopped")
}

func buildRepository(cfg *config.Config) (repository.GiveawayRepository, error) {
	switch cfg.Storage.Backend {
	case "redis":
		client, err := redis.New(cfg)
		if err != nil {
			return nil, err
		}
		return redisRepo.NewRedisGiveawayRepository(client), nil
	case "json":
		return jsonRepo.NewJSONGiveawayRepository(cfg.Storage.Path, cfg.FlushDebounce())
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
