// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - HTTP mode: health, metrics and the /api/alerts/* endpoints
//   - Daily mode: one production run, then exit (for external cron)
//   - Scheduler mode: HTTP mode plus an in-process daily trigger
//
// Any collaborator whose configuration is missing stays unset and the
// endpoints that need it report a configuration error per request.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/alerts"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/alertsapi"
	apperrors "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/errors"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/dispatch"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/identity"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/platform/config"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/platform/observability"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/platform/schedule"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/platform/worker"
	db "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/storage"
)

const (
	dailyTaskName       = "daily_alerts"
	schedulerWorkerName = "alert_scheduler"
	defaultPollInterval = time.Minute

	logFieldTimezone = "timezone"
	logFieldHour     = "hour"
	logFieldRunID    = "run_id"
)

var errDatabaseMissing = errors.New("POSTGRES_DSN is required for the daily run")

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
	location *time.Location
}

// New creates an App. database may be nil when no DSN is configured.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	loc, err := schedule.LoadLocation(cfg.Alerts.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str(logFieldTimezone, cfg.Alerts.Timezone).Msg("invalid alert timezone, using UTC")

		loc = time.UTC
	}

	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
		location: loc,
	}
}

// lastRunStore reports when the daily run last dispatched anything.
type lastRunStore interface {
	LastDispatchAt(ctx context.Context) (time.Time, bool, error)
}

// advisoryLocker adapts the database advisory lock to alerts.Locker.
type advisoryLocker struct {
	database *db.DB
	lockID   int64
}

func (l advisoryLocker) TryLock(ctx context.Context) (alerts.RunLock, bool, error) {
	lock, acquired, err := l.database.TryAcquireAdvisoryLock(ctx, l.lockID)
	if err != nil || !acquired {
		return nil, acquired, err
	}

	return lock, true, nil
}

func (a *App) newDispatcher() *dispatch.Dispatcher {
	slack := dispatch.NewSlackClient(a.cfg.Slack.WebhookURL, a.cfg.Slack.Timeout)
	email := dispatch.NewEmailClient(a.cfg.Email.ResendAPIKey, a.cfg.Email.From, a.cfg.Email.FromName)

	if email == nil {
		a.logger.Info().Msg("email channel not configured, email alerts are recorded as not implemented")
	}

	return dispatch.NewDispatcher(slack, email, a.logger)
}

// newRunner returns nil without a database.
func (a *App) newRunner() *alerts.Runner {
	if a.database == nil {
		return nil
	}

	collector := alerts.NewCollector(a.database, a.logger)
	locker := advisoryLocker{database: a.database, lockID: db.DailyRunLockID}

	return alerts.NewRunner(collector, a.database, a.newDispatcher(), a.database, locker, alerts.RunnerConfig{
		Thresholds:   a.cfg.CategoryThresholds(),
		Location:     a.location,
		DashboardURL: a.cfg.Alerts.DashboardURL,
		DispatchRPS:  a.cfg.Alerts.DispatchRPS,
	}, a.logger)
}

// newAPIHandler only sets the Deps fields whose backing client exists.
func (a *App) newAPIHandler(runner *alerts.Runner) *alertsapi.Handler {
	deps := alertsapi.Deps{Location: a.location}

	if a.database != nil {
		deps.Source = a.database
	}

	if a.cfg.Identity.Configured() {
		deps.Identity = identity.New(a.cfg.Identity.URL, a.cfg.Identity.APIKey(), a.cfg.Identity.Timeout)
	}

	if slack := dispatch.NewSlackClient(a.cfg.Slack.WebhookURL, a.cfg.Slack.Timeout); slack != nil {
		deps.Slack = slack
	}

	if runner != nil {
		deps.Runner = runner
	}

	return alertsapi.NewHandler(a.cfg, deps, a.logger)
}

func (a *App) newServer(runner *alerts.Runner) *observability.Server {
	var pinger observability.Pinger
	if a.database != nil {
		pinger = a.database
	}

	return observability.NewServerWithAPI(pinger, a.cfg.HTTPPort, alertsapi.PathPrefix, a.newAPIHandler(runner), a.logger)
}

// StartHealthServer serves health, metrics and the alerts API until ctx is done.
func (a *App) StartHealthServer(ctx context.Context, runner *alerts.Runner) error {
	if err := a.newServer(runner).Start(ctx); err != nil {
		return fmt.Errorf("http server start: %w", err)
	}

	return nil
}

// RunHTTP runs the HTTP-only mode.
func (a *App) RunHTTP(ctx context.Context) error {
	a.logger.Info().Msg("Starting HTTP mode")
	observability.BuildInfo.WithLabelValues("http", a.cfg.AppEnv).Set(1)

	return a.StartHealthServer(ctx, a.newRunner())
}

// RunDaily runs one production daily run and returns.
func (a *App) RunDaily(ctx context.Context) error {
	a.logger.Info().Msg("Starting daily mode")
	observability.BuildInfo.WithLabelValues("daily", a.cfg.AppEnv).Set(1)

	runner := a.newRunner()
	if runner == nil {
		return errDatabaseMissing
	}

	report, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrLockHeld) {
			a.logger.Info().Msg("daily run skipped, another instance holds the lock")

			return nil
		}

		return fmt.Errorf("daily run: %w", err)
	}

	a.logReport(report)

	return nil
}

// RunScheduler serves HTTP and triggers the daily run at the configured local hour.
func (a *App) RunScheduler(ctx context.Context) error {
	a.logger.Info().
		Int(logFieldHour, a.cfg.Alerts.DailyHour).
		Str(logFieldTimezone, a.location.String()).
		Msg("Starting scheduler mode")
	observability.BuildInfo.WithLabelValues("scheduler", a.cfg.AppEnv).Set(1)

	runner := a.newRunner()
	if runner == nil {
		return errDatabaseMissing
	}

	go func() {
		if err := a.StartHealthServer(ctx, runner); err != nil {
			a.logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	scheduler := a.newDailyScheduler(runner)
	a.seedLastRun(ctx, scheduler, a.database)

	poll := time.Duration(a.cfg.Alerts.SchedulerPollSeconds) * time.Second
	if poll <= 0 {
		poll = defaultPollInterval
	}

	if err := worker.Loop(ctx, worker.Config{
		Name:         schedulerWorkerName,
		PollInterval: poll,
		Process:      scheduler.CheckAndRun,
		Logger:       a.logger,
	}); err != nil {
		return fmt.Errorf("scheduler loop: %w", err)
	}

	return nil
}

// newDailyScheduler registers the daily alert task.
func (a *App) newDailyScheduler(runner *alerts.Runner) *worker.DailyScheduler {
	scheduler := worker.NewDailyScheduler(a.logger)
	scheduler.AddTask(&worker.DailyTask{
		Name:     dailyTaskName,
		Hour:     a.cfg.Alerts.DailyHour,
		Location: a.location,
		Run: func(ctx context.Context, logger *zerolog.Logger) error {
			report, err := runner.Run(ctx)
			if errors.Is(err, apperrors.ErrLockHeld) {
				logger.Info().Msg("daily run skipped, another instance holds the lock")

				return nil
			}

			if err != nil {
				return fmt.Errorf("daily run: %w", err)
			}

			a.logReport(report)

			return nil
		},
	})

	return scheduler
}

// seedLastRun restores the last run time so a restart inside the trigger hour
// does not dispatch the same day twice.
func (a *App) seedLastRun(ctx context.Context, scheduler *worker.DailyScheduler, store lastRunStore) {
	last, ok, err := store.LastDispatchAt(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to load last dispatch time, scheduler starts without it")

		return
	}

	if !ok {
		return
	}

	scheduler.SetLastRun(dailyTaskName, last)
	a.logger.Info().Time("last_run", last).Msg("daily scheduler seeded from dispatch log")
}

func (a *App) logReport(report *alerts.DailyReport) {
	a.logger.Info().
		Str(logFieldRunID, report.RunID).
		Int("consultants", report.Consultants).
		Int("unassigned", report.Unassigned).
		Int("dispatched", report.Dispatched).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Int("source_errors", len(report.Errors)).
		Msg("daily report")
}
