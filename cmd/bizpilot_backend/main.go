package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/BizPilotApp/bizpilot_backend/internal/adapters/notification"
	"github.com/BizPilotApp/bizpilot_backend/internal/cache"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/handlers"
	"github.com/BizPilotApp/bizpilot_backend/internal/middleware"
	"github.com/BizPilotApp/bizpilot_backend/internal/platform/config"
	"github.com/BizPilotApp/bizpilot_backend/internal/render"
	"github.com/BizPilotApp/bizpilot_backend/internal/repositories/database/pgsql"
	"github.com/BizPilotApp/bizpilot_backend/internal/scheduler"
	"github.com/BizPilotApp/bizpilot_backend/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
)

// @title BizPilot Backend API
// @version 1.0
// @description Invoice lifecycle, payment ledger and recurring billing API.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:          "bizpilot_backend",
		Short:        "Invoice lifecycle and payment ledger backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(logger)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations, start the HTTP server and the job scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(logger)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runMigrations(logger, cfg.DatabaseURL)
		},
	}

	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run scheduled jobs on demand",
	}
	jobsCmd.AddCommand(&cobra.Command{
		Use:       "run [generate|overdue|latefees]",
		Short:     "Run one job immediately and print its result",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"generate", "overdue", "latefees"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(logger, args[0])
		},
	})

	rootCmd.AddCommand(serveCmd, migrateCmd, jobsCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runServe wires the full application: database, migrations, services, HTTP
// routes and the background job scheduler.
func runServe(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database pool: %w", err)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		return err
	}

	container, reportCache, err := buildServices(cfg, dbPool)
	if err != nil {
		return err
	}
	defer reportCache.Close()

	if cfg.SchedulerEnabled {
		sched := scheduler.New(logger, cfg.SchedulerTickInterval)
		sched.RegisterDailyJob("generate-invoices", container.Recurring.GenerateDueInvoices)
		sched.RegisterDailyJob("detect-overdue", container.Overdue.DetectOverdue)
		sched.RegisterWeeklyJob("apply-late-fees", container.Overdue.ApplyLateFees)
		go sched.Run(ctx)
		logger.Info("Job scheduler started", slog.Duration("tick_interval", cfg.SchedulerTickInterval))
	} else {
		logger.Warn("Job scheduler disabled by configuration")
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, container)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("server failed to run: %w", err)
	}
	return nil
}

// buildServices assembles the repository and service containers with their
// collaborators. The returned cache must be closed on shutdown.
func buildServices(cfg *config.Config, dbPool *pgxpool.Pool) (*portssvc.ServiceContainer, *cache.TTLCache, error) {
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build invoice renderer: %w", err)
	}
	reportCache := cache.NewTTLCache(time.Minute)

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(cfg, repos, services.Collaborators{
		Notification: notification.NewLogSender(),
		Renderer:     renderer,
		Cache:        reportCache,
	})
	return container, reportCache, nil
}

// runJob executes one scheduled job immediately, outside the scheduler.
func runJob(logger *slog.Logger, name string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := middleware.WithLogger(context.Background(), logger.With(slog.String("job", name)))
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database pool: %w", err)
	}
	defer dbPool.Close()

	container, reportCache, err := buildServices(cfg, dbPool)
	if err != nil {
		return err
	}
	defer reportCache.Close()

	now := time.Now().UTC()
	var result domain.JobResult
	switch name {
	case "generate":
		result = container.Recurring.GenerateDueInvoices(ctx, now)
	case "overdue":
		result = container.Overdue.DetectOverdue(ctx, now)
	case "latefees":
		result = container.Overdue.ApplyLateFees(ctx, now)
	default:
		return fmt.Errorf("unknown job %q", name)
	}

	logger.Info("Job finished",
		slog.String("job", name),
		slog.Int("processed", result.Processed),
		slog.Int("generated", result.Generated),
		slog.Int("errors", len(result.Errors)),
	)
	for _, jobErr := range result.Errors {
		logger.Error("Job item failed", slog.String("job", name), slog.String("error", jobErr))
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d job item(s) failed", len(result.Errors))
	}
	return nil
}

// runMigrations applies all pending "up" migrations using a standalone
// database/sql connection; the pgx pool stays untouched.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
