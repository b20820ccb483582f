package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/league-stats/cache"
	"github.com/Dosada05/league-stats/config"
	"github.com/Dosada05/league-stats/db"
	"github.com/Dosada05/league-stats/handlers"
	"github.com/Dosada05/league-stats/live"
	"github.com/Dosada05/league-stats/mcpserver"
	"github.com/Dosada05/league-stats/repositories"
	api "github.com/Dosada05/league-stats/routes"
	"github.com/Dosada05/league-stats/scoring"
	"github.com/Dosada05/league-stats/services"
	"github.com/Dosada05/league-stats/sources"
	"github.com/Dosada05/league-stats/storage"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("source", string(cfg.Source.Kind)),
		slog.String("format", string(cfg.Source.Format)))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var objectStore storage.ObjectStore
	if cfg.R2.Configured() {
		objectStore, err = storage.NewCloudflareR2Store(ctx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 store initialized", slog.String("bucket", cfg.R2.BucketName))
	}

	var standingRepo repositories.StandingRepository
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(ctx, cfg.DatabaseURL, 5*time.Second, db.DefaultPool, logger)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		standingRepo = repositories.NewPostgresStandingRepository(dbConn)
		if err := standingRepo.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare database schema", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database connection established")
	}

	var resultCache cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" {
		redisClient, err := cache.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisClient.Close()
		resultCache = cache.NewRedis(redisClient)
		logger.Info("redis cache enabled")
	}

	fetcher, err := sources.NewFetcher(cfg.Source, objectStore)
	if err != nil {
		logger.Error("failed to initialize data source", slog.Any("error", err))
		os.Exit(1)
	}
	loader, err := sources.NewLoader(cfg.Source, fetcher, logger)
	if err != nil {
		logger.Error("failed to initialize loader", slog.Any("error", err))
		os.Exit(1)
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	snapshotService := services.NewSnapshotService(standingRepo, objectStore, logger)
	statsService, err := services.NewStatsService(scoring.NewEngine(cfg.Scoring, nil), loader, services.StatsServiceOptions{
		Cache:       resultCache,
		CacheTTL:    cfg.CacheTTL,
		Broadcaster: wsHub,
		Snapshots:   snapshotService,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to initialize stats service", slog.Any("error", err))
		os.Exit(1)
	}
	authService, err := services.NewAuthService(services.AuthConfig{
		Username:     cfg.CommissionerUsername,
		PasswordHash: cfg.CommissionerPasswordHash,
		JWTSecret:    cfg.JWTSecretKey,
	})
	if err != nil {
		logger.Error("failed to initialize auth service", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Services initialized")

	// A failed first load is not fatal: the API answers 503 until a refresh succeeds.
	if _, err := statsService.Refresh(ctx); err != nil {
		logger.Error("initial season load failed", slog.Any("error", err))
	}
	go statsService.RunRefresher(ctx, cfg.RefreshInterval)
	if cfg.RefreshInterval > 0 {
		logger.Info("season refresh scheduler started", slog.Duration("interval", cfg.RefreshInterval))
	}

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:          cfg.JWTSecretKey,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			MCPHandler:         mcpserver.New(statsService, version).Handler(),
		},
		handlers.NewStatsHandler(statsService),
		handlers.NewSnapshotHandler(statsService, snapshotService),
		handlers.NewAuthHandler(authService),
		handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins),
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stop()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
