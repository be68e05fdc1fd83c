package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Freeeeeet/dispatch_bot/internal/app"
	"github.com/Freeeeeet/dispatch_bot/internal/cli"
	"github.com/Freeeeeet/dispatch_bot/internal/config"
	"github.com/Freeeeeet/dispatch_bot/internal/repository"
	"github.com/Freeeeeet/dispatch_bot/internal/service"
	"github.com/Freeeeeet/dispatch_bot/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := app.NewCLILogger(os.Getenv("DISPATCHCTL_VERBOSE") != "")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var pool *pgxpool.Pool
	connect := func(ctx context.Context) (*pgxpool.Pool, error) {
		if pool != nil {
			return pool, nil
		}
		p, err := pgxpool.New(ctx, cfg.GetDBDSN())
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		pool = p
		return pool, nil
	}
	defer func() {
		if pool != nil {
			pool.Close()
		}
	}()

	a := &cli.App{
		Migrate: func(ctx context.Context) (int64, error) {
			p, err := connect(ctx)
			if err != nil {
				return 0, err
			}
			migrator, err := app.NewMigrator(p, migrations.FS, cfg.MigrationsDir, logger)
			if err != nil {
				return 0, err
			}
			defer migrator.Close()

			if err := migrator.Run(ctx); err != nil {
				return 0, err
			}
			return migrator.Version(ctx)
		},
		Open: func(ctx context.Context) (cli.Planner, error) {
			p, err := connect(ctx)
			if err != nil {
				return nil, err
			}
			loc, err := cfg.Location()
			if err != nil {
				return nil, err
			}

			settings := service.NewSettingsService(repository.NewSettingsRepository(p), cfg.Planning, logger)
			planning := service.NewPlanningService(
				repository.NewCourseRepository(p),
				repository.NewDriverRepository(p),
				repository.NewAssignmentEventRepository(p),
				settings,
				loc,
				logger,
			)
			if err := planning.Reload(ctx); err != nil {
				logger.Error("Failed to load planning", zap.Error(err))
				return nil, err
			}
			return planning, nil
		},
	}

	return cli.NewRootCmd(a).ExecuteContext(ctx)
}
