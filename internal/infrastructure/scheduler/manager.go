// Package scheduler runs the subscription maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/orris-inc/tenancy/internal/shared/biztime"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

// BatchJob processes one batch and returns the number of items handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// ReminderProcessor defines the interface for processing reminders.
type ReminderProcessor interface {
	ProcessReminders(ctx context.Context) error
}

// Schedules holds the cron expressions, evaluated in the business timezone.
type Schedules struct {
	Reminders   string
	ExpirySweep string
}

const (
	DefaultReminderSchedule    = "0 9 * * *"
	DefaultExpirySweepSchedule = "5 0 * * *"

	jobTimeout = 10 * time.Minute
)

// SchedulerManager owns a single cron instance. Overlapping runs of the same
// job are skipped and panics are recovered by the job chain.
type SchedulerManager struct {
	cron   *cron.Cron
	logger logger.Interface

	started   bool
	startedMu sync.Mutex
}

func NewSchedulerManager(log logger.Interface) *SchedulerManager {
	cronLog := cronLogger{log: log}
	return &SchedulerManager{
		cron: cron.New(
			cron.WithLocation(biztime.Location()),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
			cron.WithLogger(cronLog),
		),
		logger: log,
	}
}

// RegisterSubscriptionJobs registers the daily reminder run and the nightly
// expiry sweep. Empty schedules fall back to the defaults.
func (m *SchedulerManager) RegisterSubscriptionJobs(schedules Schedules, reminders ReminderProcessor, expiry BatchJob) error {
	if schedules.Reminders == "" {
		schedules.Reminders = DefaultReminderSchedule
	}
	if schedules.ExpirySweep == "" {
		schedules.ExpirySweep = DefaultExpirySweepSchedule
	}

	if _, err := m.cron.AddFunc(schedules.Reminders, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		m.processReminders(ctx, reminders)
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedules.Reminders, err)
	}

	if _, err := m.cron.AddFunc(schedules.ExpirySweep, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		m.processExpiredSubscriptions(ctx, expiry)
	}); err != nil {
		return fmt.Errorf("invalid expiry sweep schedule %q: %w", schedules.ExpirySweep, err)
	}

	m.logger.Infow("registered subscription jobs",
		"reminders", schedules.Reminders,
		"expiry_sweep", schedules.ExpirySweep,
		"timezone", biztime.Location().String(),
	)
	return nil
}

func (m *SchedulerManager) processReminders(ctx context.Context, processor ReminderProcessor) {
	m.logger.Debugw("processing reminders task started")

	if err := processor.ProcessReminders(ctx); err != nil {
		// Graceful shutdown cancels ctx.
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("failed to process reminders", "error", err)
		return
	}

	m.logger.Debugw("reminders processed successfully")
}

func (m *SchedulerManager) processExpiredSubscriptions(ctx context.Context, job BatchJob) {
	startTime := biztime.NowUTC()

	expiredCount, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("failed to process expired subscriptions",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if expiredCount > 0 {
		m.logger.Infow("expired subscriptions processed",
			"count", expiredCount,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no expired subscriptions to process",
			"duration", time.Since(startTime),
		)
	}
}

func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.cron.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.cron.Entries()))
}

// Stop waits for running jobs until ctx is done.
func (m *SchedulerManager) Stop(ctx context.Context) error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}
	m.started = false

	m.logger.Infow("stopping scheduler manager")
	select {
	case <-m.cron.Stop().Done():
		m.logger.Infow("scheduler manager stopped")
		return nil
	case <-ctx.Done():
		m.logger.Warnw("scheduler manager stop timed out with jobs still running")
		return ctx.Err()
	}
}

func (m *SchedulerManager) Entries() []cron.Entry {
	return m.cron.Entries()
}

// cronLogger adapts logger.Interface to cron.Logger.
type cronLogger struct {
	log logger.Interface
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
