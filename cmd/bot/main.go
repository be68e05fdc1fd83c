package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/dispatch_bot/internal/app"
	"github.com/Freeeeeet/dispatch_bot/internal/config"
	"github.com/Freeeeeet/dispatch_bot/internal/controller"
	"github.com/Freeeeeet/dispatch_bot/internal/repository"
	"github.com/Freeeeeet/dispatch_bot/internal/service"
	"github.com/Freeeeeet/dispatch_bot/migrations"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required but not set")
	}

	logger := app.NewLogger(cfg.Environment, app.LogOptions{File: cfg.LogFile})
	defer logger.Sync()

	logger.Sugar().Infow("Starting dispatch bot",
		"environment", cfg.Environment,
		"timezone", cfg.Timezone,
		"admins", len(cfg.AdminIDs))

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// База данных
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("✅ Connected to database")

	migrator, err := app.NewMigrator(pool, migrations.FS, cfg.MigrationsDir, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	_ = migrator.Close()

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	driverRepo := repository.NewDriverRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	eventRepo := repository.NewAssignmentEventRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	// Сервисы
	settingsService := service.NewSettingsService(settingsRepo, cfg.Planning, logger)
	planningService := service.NewPlanningService(courseRepo, driverRepo, eventRepo, settingsService, loc, logger)
	if err := planningService.Reload(ctx); err != nil {
		logger.Fatal("Failed to load planning", zap.Error(err))
	}

	userService := service.NewUserService(userRepo, driverRepo, cfg.AdminIDs, logger)
	clientService := service.NewClientService(clientRepo, logger)
	driverService := service.NewDriverService(driverRepo, planningService, logger)

	scheduler := app.NewScheduler(planningService, cfg.ReloadInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Telegram
	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(b, userService, planningService, clientService, driverService, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Failed to register bot commands menu", zap.Error(err))
	}

	if err := botController.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}
