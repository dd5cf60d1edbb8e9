package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	// HoursPerDay is used for daily task scheduling calculations.
	HoursPerDay = 24
	// defaultDailyGracePeriod prevents a second run inside the same trigger hour
	// and across small clock adjustments.
	defaultDailyGracePeriod = 20 * time.Hour
)

// DailyTask represents a task that runs once per day at a given hour.
type DailyTask struct {
	// Name identifies the task for logging.
	Name string

	// Hour is the local hour of the day to run (0-23).
	Hour int

	// Location is the clock the hour is read in (default: UTC).
	Location *time.Location

	// GracePeriod prevents duplicate runs within this duration (default: 20h).
	GracePeriod time.Duration

	// IsEnabled returns whether the task is currently enabled.
	// If nil, task is always enabled.
	IsEnabled func(ctx context.Context) bool

	// Run executes the task.
	Run func(ctx context.Context, logger *zerolog.Logger) error

	// OnError is called when Run returns an error.
	// If nil, errors are only logged.
	OnError func(err error)

	// lastRun tracks when the task last executed successfully.
	lastRun time.Time
}

// DailyScheduler manages a collection of daily tasks.
type DailyScheduler struct {
	tasks  []*DailyTask
	logger *zerolog.Logger
	now    func() time.Time
}

// NewDailyScheduler creates a new daily task scheduler.
func NewDailyScheduler(logger *zerolog.Logger) *DailyScheduler {
	return &DailyScheduler{
		tasks:  make([]*DailyTask, 0),
		logger: logger,
		now:    time.Now,
	}
}

// AddTask adds a task to the scheduler.
func (ds *DailyScheduler) AddTask(task *DailyTask) {
	if task.GracePeriod == 0 {
		task.GracePeriod = defaultDailyGracePeriod
	}

	if task.Location == nil {
		task.Location = time.UTC
	}

	ds.tasks = append(ds.tasks, task)
}

// CheckAndRun checks all tasks and runs any that are due.
// Its signature matches ProcessFunc so it can drive Loop directly.
func (ds *DailyScheduler) CheckAndRun(ctx context.Context) error {
	for _, task := range ds.tasks {
		ds.checkAndRunTask(ctx, task)
	}

	return nil
}

func (ds *DailyScheduler) checkAndRunTask(ctx context.Context, task *DailyTask) {
	if task.IsEnabled != nil && !task.IsEnabled(ctx) {
		return
	}

	now := ds.now().In(task.Location)

	if !ShouldRunDaily(now, task.Hour, task.lastRun, task.GracePeriod) {
		return
	}

	logger := ds.logger.With().Str(logFieldTask, task.Name).Logger()
	logger.Info().Msgf("Starting daily %s", task.Name)

	if err := ds.runTask(ctx, task, &logger); err != nil {
		logger.Error().Err(err).Msgf("failed to run daily %s", task.Name)

		if task.OnError != nil {
			task.OnError(err)
		}

		return
	}

	task.lastRun = now
}

func (ds *DailyScheduler) runTask(ctx context.Context, task *DailyTask, logger *zerolog.Logger) error {
	defer RecoverPanic(logger, task.Name)

	return task.Run(ctx, logger)
}

// SetLastRun allows setting the last run time for a task (e.g., from persisted state).
func (ds *DailyScheduler) SetLastRun(taskName string, lastRun time.Time) {
	for _, task := range ds.tasks {
		if task.Name == taskName {
			task.lastRun = lastRun
			return
		}
	}
}

// GetLastRun returns the last run time for a task.
func (ds *DailyScheduler) GetLastRun(taskName string) (time.Time, bool) {
	for _, task := range ds.tasks {
		if task.Name == taskName {
			return task.lastRun, true
		}
	}

	return time.Time{}, false
}

// ShouldRunDaily reports whether a daily task at hour is due at now.
// now must already be in the task's location.
func ShouldRunDaily(now time.Time, hour int, lastRun time.Time, gracePeriod time.Duration) bool {
	if now.Hour() != hour {
		return false
	}

	if gracePeriod == 0 {
		gracePeriod = defaultDailyGracePeriod
	}

	if !lastRun.IsZero() && now.Sub(lastRun) <= gracePeriod {
		return false
	}

	return true
}
