// Package worker runs the scheduled subscription jobs outside the API process.
package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/tenancy/internal/infrastructure/database"
	"github.com/orris-inc/tenancy/internal/infrastructure/scheduler"
	"github.com/orris-inc/tenancy/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/orris-inc/tenancy/internal/interfaces/http"
)

var (
	opts bootstrap.Options
	once bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run expiry reminders and the expiry sweep",
		Long:  `Run the reminder and expiry sweep jobs on their cron schedules, or once with --once.`,
		RunE:  run,
	}

	opts.BindFlags(cmd)
	cmd.Flags().BoolVar(&once, "once", false, "Run both jobs immediately and exit")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Setup(&opts)
	if err != nil {
		return err
	}
	log = log.Named("worker")

	db, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	container, err := httpRouter.NewContainer(cfg, db, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer container.Close()

	reminders := container.Service.ReminderJob()
	expiry := container.Service.ExpiryJob()

	if once {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		expired, err := expiry.Execute(ctx)
		if err != nil {
			return fmt.Errorf("expiry sweep failed: %w", err)
		}
		if err := reminders.ProcessReminders(ctx); err != nil {
			return fmt.Errorf("reminder run failed: %w", err)
		}
		log.Infow("worker run completed", "expired", expired)
		return nil
	}

	sched := scheduler.NewSchedulerManager(log)
	if err := sched.RegisterSubscriptionJobs(scheduler.Schedules{
		Reminders:   cfg.Subscription.ReminderSchedule,
		ExpirySweep: cfg.Subscription.ExpirySweepSchedule,
	}, reminders, expiry); err != nil {
		return fmt.Errorf("failed to register jobs: %w", err)
	}
	sched.Start()
	log.Infow("worker started",
		"reminder_schedule", cfg.Subscription.ReminderSchedule,
		"expiry_schedule", cfg.Subscription.ExpirySweepSchedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infow("received signal, shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(ctx); err != nil {
		log.Warnw("running jobs did not finish before shutdown", "error", err)
	}

	log.Infow("worker stopped")
	return nil
}
