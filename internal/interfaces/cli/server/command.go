package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/orris-inc/tenancy/internal/infrastructure/config"
	"github.com/orris-inc/tenancy/internal/infrastructure/database"
	"github.com/orris-inc/tenancy/internal/infrastructure/migration"
	"github.com/orris-inc/tenancy/internal/infrastructure/scheduler"
	"github.com/orris-inc/tenancy/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/orris-inc/tenancy/internal/interfaces/http"
	"github.com/orris-inc/tenancy/internal/shared/constants"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

var (
	opts               bootstrap.Options
	autoMigrate        bool
	skipMigrationCheck bool
	withScheduler      bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Tenancy HTTP API with the specified configuration.`,
		RunE:  run,
	}

	opts.BindFlags(cmd)
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "Run the reminder and expiry jobs inside the server process")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Setup(&opts)
	if err != nil {
		return err
	}
	env := opts.Environment()
	cfg.Server.Mode = mapEnvToGinMode(env)

	log.Infow("starting server",
		"environment", env,
		"auto_migrate", autoMigrate,
		"with_scheduler", withScheduler)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	db, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := handleMigrations(cfg, env, log); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	container, err := httpRouter.NewContainer(cfg, db, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer container.Close()

	router, err := httpRouter.NewRouter(container, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}
	router.SetupRoutes()

	var sched *scheduler.SchedulerManager
	if withScheduler {
		sched = scheduler.NewSchedulerManager(log)
		if err := sched.RegisterSubscriptionJobs(scheduler.Schedules{
			Reminders:   cfg.Subscription.ReminderSchedule,
			ExpirySweep: cfg.Subscription.ExpirySweepSchedule,
		}, container.Service.ReminderJob(), container.Service.ExpiryJob()); err != nil {
			return fmt.Errorf("failed to register jobs: %w", err)
		}
		sched.Start()
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infow("shutting down server", "signal", sig.String())
	case err := <-serveErr:
		log.Errorw("failed to start server", "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			log.Warnw("scheduler did not stop cleanly", "error", err)
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(cfg *config.Config, environment string, log logger.Interface) error {
	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	if autoMigrate {
		if environment == constants.EnvProduction {
			log.Warnw("auto-migration is enabled in production environment")
		}

		manager, err := migration.NewManager(environment, cfg.Database.Driver, log)
		if err != nil {
			return err
		}
		log.Infow("running auto-migration", "strategy", manager.GetStrategy().GetName())
		if err := manager.Migrate(database.Get()); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Infow("auto-migration completed successfully")
		return nil
	}

	strategy, err := migration.NewGooseStrategy(cfg.Database.Driver, log)
	if err != nil {
		return err
	}
	version, err := strategy.GetVersion(database.Get())
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
