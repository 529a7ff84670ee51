// Package internal contains core application functionality
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pagepulse/internal/analytics"
	"pagepulse/internal/config"
	"pagepulse/internal/database"
	"pagepulse/internal/jobs"
	"pagepulse/internal/logging"
	"pagepulse/internal/metrics"
	"pagepulse/internal/timeframe"
)

// Application wires the HTTP server, database and background jobs together.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.DBManager
	Metrics   *metrics.Metrics
	Reports   *analytics.ReportService
	Scheduler *jobs.Scheduler

	fiber *fiber.App
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := logging.NewLogger(cfg)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return newApplication(cfg, logger, dbManager, &timeframe.DefaultTimeProvider{}), nil
}

// NewAppWithConnection builds the application around an open connection and a
// custom clock, as tests do.
func NewAppWithConnection(cfg *config.Config, db *gorm.DB, logger *slog.Logger, timeProvider timeframe.TimeProvider) (*Application, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return newApplication(cfg, logger, database.NewDBManagerWithConnection(db, logger), timeProvider), nil
}

func newApplication(cfg *config.Config, logger *slog.Logger, dbManager *database.DBManager, timeProvider timeframe.TimeProvider) *Application {
	m := metrics.NewMetrics(cfg.AppName)

	resolver := timeframe.NewResolver(timeframe.ResolverParams{
		Location:    cfg.Location(),
		DefaultSpan: cfg.DefaultSpanDays,
		Strict:      cfg.StrictSpan,
	}, timeProvider)

	reports := analytics.NewReportService(analytics.ReportServiceParams{
		Fetcher:      metrics.InstrumentFetcher(analytics.NewStore(dbManager.GetConnection()), m),
		Resolver:     resolver,
		Logger:       logger,
		FetchTimeout: cfg.FetchTimeout(),
	})

	scheduler := jobs.NewScheduler(logger)
	scheduler.Register(jobs.NewCheckpointJob(dbManager, logger), cfg.CheckpointInterval())

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		Metrics:   m,
		Reports:   reports,
		Scheduler: scheduler,
		fiber: fiber.New(fiber.Config{
			AppName:               cfg.AppName,
			DisableStartupMessage: !cfg.IsDevelopment(),
			ReadTimeout:           15 * time.Second,
			WriteTimeout:          cfg.FetchTimeout() + 15*time.Second,
			ErrorHandler:          errorHandler(logger),
		}),
	}

	MountAppRoutes(app)
	return app
}

// Fiber returns the underlying Fiber app.
func (a *Application) Fiber() *fiber.App {
	return a.fiber
}

// StartAsync starts the background jobs and the HTTP listener without blocking.
func (a *Application) StartAsync() error {
	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start background jobs: %w", err)
	}

	addr := ":" + a.Config.AppPort
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server listening", slog.String("addr", addr))
		if err := a.fiber.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	// Surface immediate bind failures.
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start http server: %w", err)
	case <-time.After(250 * time.Millisecond):
		return nil
	}
}

// Shutdown stops the HTTP server and background jobs, then closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	var firstErr error

	if err := a.fiber.ShutdownWithContext(ctx); err != nil {
		a.Logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		firstErr = err
	}

	a.Scheduler.Stop()

	if err := a.DBManager.CheckpointWAL("TRUNCATE"); err != nil {
		a.Logger.Warn("Failed to checkpoint WAL on shutdown", slog.Any("error", err))
	}
	if err := a.DBManager.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		if fiberErr, ok := err.(*fiber.Error); ok {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			logger.Error("Unhandled request error",
				slog.String("path", c.Path()),
				slog.Any("error", err))
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}
