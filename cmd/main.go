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
	"github.com/robfig/cron/v3"

	"github.com/Dosada05/league-system/config"
	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/repositories"
	api "github.com/Dosada05/league-system/routes"
	"github.com/Dosada05/league-system/services"
	"github.com/Dosada05/league-system/storage"
)

const (
	limiterCleanupSpec = "@every 5m"
	loginBurst         = 10
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Int("points_per_win", cfg.PointsPerWin),
		slog.String("league_timezone", cfg.Location().String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
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
	logger.Info("database connection established")

	if err := db.Migrate(dbConn, logger); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	// Архив таблиц: R2, если настроен, иначе в памяти процесса
	var store storage.ObjectStore
	if cfg.R2().Enabled() {
		store, err = storage.NewR2Store(ctx, cfg.R2())
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 store initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		store = storage.NewMemoryStore(fmt.Sprintf("http://localhost:%d/archive", cfg.ServerPort))
		logger.Warn("R2 is not configured, standings snapshots are kept in memory")
	}
	archiver := storage.NewArchiver(store)

	// Инициализация WebSocket Hub
	hub := live.NewHub(logger)
	go hub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	standingsService := services.NewStandingsService(categoryRepo, playerRepo, matchRepo, standingRepo, cfg.PointsPerWin, hub, archiver, logger)
	roundService := services.NewRoundService(dbConn, categoryRepo, roundRepo, matchRepo, standingsService, hub, logger)
	expiryService := services.NewExpiryService(roundRepo, roundService, cfg.Location(), logger)
	fixtureService := services.NewFixtureService(dbConn, categoryRepo, playerRepo, roundRepo, matchRepo, standingRepo, cfg.DefaultRoundLengthDays, cfg.MinPlayers, logger)
	matchService := services.NewMatchService(dbConn, categoryRepo, playerRepo, roundRepo, matchRepo, hub, logger)
	categoryService := services.NewCategoryService(dbConn, categoryRepo, logger)
	playerService := services.NewPlayerService(categoryRepo, playerRepo, logger)
	authService := services.NewAuthService(userRepo, playerRepo, cfg.JWTSecretKey, logger)
	logger.Info("Services initialized")

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("failed to ensure admin account", slog.Any("error", err))
			os.Exit(1)
		}
	}

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerSecond, loginBurst, logger)

	// Планировщик: очистка лимитера и, если задано, истечение раундов
	scheduler := cron.New(cron.WithLocation(cfg.Location()))
	if _, err := scheduler.AddFunc(limiterCleanupSpec, loginLimiter.Cleanup); err != nil {
		logger.Error("failed to schedule limiter cleanup", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.ExpiryCron != "" {
		_, err := scheduler.AddFunc(cfg.ExpiryCron, func() {
			report, err := expiryService.ExpireElapsed(ctx, time.Now())
			if err != nil {
				logger.Error("scheduler: expiry run failed", slog.Any("error", err))
				return
			}
			logger.Info("scheduler: expiry run finished",
				slog.String("run_id", report.RunID),
				slog.Int("rounds", len(report.Rounds)),
				slog.Int("failed", report.Failed()))
		})
		if err != nil {
			logger.Error("invalid EXPIRY_CRON", slog.String("spec", cfg.ExpiryCron), slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("in-process expiry trigger scheduled", slog.String("spec", cfg.ExpiryCron))
	}
	scheduler.Start()

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Category:  handlers.NewCategoryHandler(categoryService, playerService),
		Player:    handlers.NewPlayerHandler(playerService, authService),
		Fixture:   handlers.NewFixtureHandler(fixtureService, matchService, standingsService),
		Round:     handlers.NewRoundHandler(roundService),
		Match:     handlers.NewMatchHandler(matchService),
		Cron:      handlers.NewCronHandler(expiryService),
		WebSocket: handlers.NewWebSocketHandler(hub, categoryService, cfg.CORSAllowedOrigins),
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, h, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		CronSecret:     cfg.CronSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		LoginLimiter:   loginLimiter,
		Logger:         logger,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // закрытие раунда пересчитывает таблицу
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		<-scheduler.Stop().Done()
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
