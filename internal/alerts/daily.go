package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
	apperrors "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/errors"
	db "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/storage"
)

const (
	logFieldConsultant = "consultant_id"
	logFieldChannel    = "channel"
	logFieldCompanies  = "companies"

	runStatusOK     = "ok"
	runStatusLocked = "locked"
	runStatusError  = "error"
)

// PreferenceStore loads stored preferences keyed by company id.
type PreferenceStore interface {
	GetAlertPreferences(ctx context.Context, consultantID string, companyIDs []string) (map[string]domain.AlertPreference, error)
}

// Dispatcher delivers one notification.
type Dispatcher interface {
	Send(ctx context.Context, n domain.Notification) error
}

// DispatchLogger persists dispatch outcomes.
type DispatchLogger interface {
	InsertDispatchLog(ctx context.Context, e db.DispatchLogEntry) error
}

// RunLock is a held cross-instance lock.
type RunLock interface {
	Release(ctx context.Context) error
}

// Locker acquires the daily run lock without blocking.
type Locker interface {
	TryLock(ctx context.Context) (RunLock, bool, error)
}

// RunnerConfig holds the daily run settings.
type RunnerConfig struct {
	Thresholds   domain.CategoryThresholds
	Location     *time.Location
	DashboardURL string
	DispatchRPS  float64
}

// DispatchResult is the outcome of one consultant and channel pair.
type DispatchResult struct {
	ConsultantID string         `json:"consultant_id"`
	Consultant   string         `json:"consultant"`
	Channel      domain.Channel `json:"channel,omitempty"`
	Status       string         `json:"status"`
	Companies    int            `json:"companies"`
	TopScore     int            `json:"top_score"`
	Error        string         `json:"error,omitempty"`
}

// DailyReport summarizes one daily run.
type DailyReport struct {
	RunID       string           `json:"run_id"`
	Timestamp   time.Time        `json:"timestamp"`
	Consultants int              `json:"consultants"`
	Unassigned  int              `json:"unassigned"`
	Dispatched  int              `json:"dispatched"`
	Failed      int              `json:"failed"`
	Skipped     int              `json:"skipped"`
	Errors      []SourceError    `json:"errors,omitempty"`
	Results     []DispatchResult `json:"results"`
}

func (r *DailyReport) add(res DispatchResult) {
	switch res.Status {
	case db.DispatchStatusSent:
		r.Dispatched++
	case db.DispatchStatusFailed:
		r.Failed++
	default:
		r.Skipped++
	}

	r.Results = append(r.Results, res)
}

// Runner is the production daily alert run: collect, group, score and dispatch
// one message per consultant and enabled channel.
type Runner struct {
	collector   *Collector
	prefs       PreferenceStore
	dispatcher  Dispatcher
	dispatchLog DispatchLogger
	locker      Locker
	cfg         RunnerConfig
	limiter     *rate.Limiter
	logger      *zerolog.Logger
	now         func() time.Time
}

// NewRunner creates a daily runner. dispatchLog and locker may be nil.
func NewRunner(collector *Collector, prefs PreferenceStore, dispatcher Dispatcher, dispatchLog DispatchLogger, locker Locker, cfg RunnerConfig, logger *zerolog.Logger) *Runner {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	limit := rate.Inf
	if cfg.DispatchRPS > 0 {
		limit = rate.Limit(cfg.DispatchRPS)
	}

	return &Runner{
		collector:   collector,
		prefs:       prefs,
		dispatcher:  dispatcher,
		dispatchLog: dispatchLog,
		locker:      locker,
		cfg:         cfg,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes one daily run. It returns apperrors.ErrLockHeld when another
// instance is already running. Per consultant failures are recorded in the
// report and never abort the run.
func (r *Runner) Run(ctx context.Context) (*DailyReport, error) {
	start := time.Now()

	if r.locker != nil {
		lock, acquired, err := r.locker.TryLock(ctx)
		if err != nil {
			dailyRunsTotal.WithLabelValues(runStatusError).Inc()
			return nil, fmt.Errorf("acquire daily run lock: %w", err)
		}

		if !acquired {
			dailyRunsTotal.WithLabelValues(runStatusLocked).Inc()
			return nil, apperrors.ErrLockHeld
		}

		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn().Err(err).Msg("failed to release daily run lock")
			}
		}()
	}

	report := &DailyReport{
		RunID:     uuid.NewString(),
		Timestamp: r.now().In(r.cfg.Location),
		Results:   []DispatchResult{},
	}

	logger := r.logger.With().Str(logFieldRunID, report.RunID).Logger()
	logger.Info().Msg("daily alert run started")

	collection := r.collector.Collect(ctx, r.cfg.Thresholds.Query())
	report.Errors = collection.Errors

	grouped := collection.Group()
	report.Consultants = grouped.ConsultantCount()

	if un, ok := grouped[UnassignedKey]; ok {
		report.Unassigned = un.Total()
		logger.Info().Int("anomalies", un.Total()).Msg("anomalies without consultant are not dispatched")
	}

	for _, id := range grouped.ConsultantIDs() {
		if err := ctx.Err(); err != nil {
			dailyRunsTotal.WithLabelValues(runStatusError).Inc()
			return report, fmt.Errorf("daily run interrupted: %w", err)
		}

		if err := r.processConsultant(ctx, &logger, report, id, grouped[id]); err != nil {
			dailyRunsTotal.WithLabelValues(runStatusError).Inc()
			return report, err
		}
	}

	dailyRunsTotal.WithLabelValues(runStatusOK).Inc()
	dailyRunDuration.Observe(time.Since(start).Seconds())

	logger.Info().
		Int("consultants", report.Consultants).
		Int("dispatched", report.Dispatched).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("daily alert run finished")

	return report, nil
}

// processConsultant only returns an error when ctx is done.
func (r *Runner) processConsultant(ctx context.Context, logger *zerolog.Logger, report *DailyReport, id string, b *Bundle) error {
	observations := ObserveBundle(b)

	companyIDs := make([]string, 0, len(observations))
	for _, o := range observations {
		companyIDs = append(companyIDs, o.CompanyID)
	}

	prefs, err := r.prefs.GetAlertPreferences(ctx, id, companyIDs)
	if err != nil {
		logger.Warn().Err(err).Str(logFieldConsultant, id).Msg("failed to load alert preferences, using defaults")

		prefs = nil
	}

	byChannel := map[domain.Channel][]CompanyAlert{}

	for _, o := range observations {
		pref, ok := prefs[o.CompanyID]
		if !ok {
			pref = domain.DefaultAlertPreference(id, o.CompanyID)
		}

		res := ScoreCompany(r.cfg.Thresholds, pref, o)
		if res.Score == 0 {
			continue
		}

		alert := CompanyAlert{CompanyID: o.CompanyID, Name: o.Name, Score: res.Score, Deviations: res.Deviations}

		for _, ch := range []domain.Channel{domain.ChannelSlack, domain.ChannelEmail} {
			if pref.ChannelEnabled(ch) {
				byChannel[ch] = append(byChannel[ch], alert)
			}
		}
	}

	if len(byChannel) == 0 {
		report.add(DispatchResult{ConsultantID: id, Consultant: b.Consultant, Status: db.DispatchStatusSkipped})
		return nil
	}

	for _, ch := range []domain.Channel{domain.ChannelSlack, domain.ChannelEmail} {
		alerts, ok := byChannel[ch]
		if !ok {
			continue
		}

		SortAlerts(alerts)

		res := DispatchResult{
			ConsultantID: id,
			Consultant:   b.Consultant,
			Channel:      ch,
			Companies:    len(alerts),
			TopScore:     alerts[0].Score,
		}

		n, ok := r.notification(ch, b, alerts)
		if !ok {
			res.Status = db.DispatchStatusSkipped
			res.Error = "no recipient address"
		} else {
			if err := r.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("wait for dispatch slot: %w", err)
			}

			res.Status, res.Error = r.send(ctx, n)
		}

		dispatchTotal.WithLabelValues(string(ch), res.Status).Inc()

		ev := logger.Info()
		if res.Status == db.DispatchStatusFailed {
			ev = logger.Warn()
		}

		ev.Str(logFieldConsultant, id).
			Str(logFieldChannel, string(ch)).
			Int(logFieldCompanies, res.Companies).
			Str("status", res.Status).
			Str("error", res.Error).
			Msg("alert dispatch")

		r.record(ctx, logger, report.RunID, res)
		report.add(res)
	}

	return nil
}

func (r *Runner) notification(ch domain.Channel, b *Bundle, alerts []CompanyAlert) (domain.Notification, bool) {
	opts := MessageOptions{
		RecipientName: b.Consultant,
		SlackUserID:   b.SlackUserID,
		Now:           r.now().In(r.cfg.Location),
		DashboardURL:  r.cfg.DashboardURL,
	}

	switch ch {
	case domain.ChannelEmail:
		if b.Email == "" {
			return domain.Notification{}, false
		}

		return domain.Notification{
			Channel: ch,
			To:      b.Email,
			Subject: EmailSubject(opts, alerts),
			Text:    FormatSlackMessage(opts, alerts),
			HTML:    FormatEmailHTML(opts, alerts),
		}, true
	default:
		return domain.Notification{Channel: ch, Text: FormatSlackMessage(opts, alerts)}, true
	}
}

func (r *Runner) send(ctx context.Context, n domain.Notification) (string, string) {
	err := r.dispatcher.Send(ctx, n)

	switch {
	case err == nil:
		return db.DispatchStatusSent, ""
	case apperrors.Is(err, apperrors.ErrNotImplemented):
		return db.DispatchStatusNotImplemented, err.Error()
	default:
		return db.DispatchStatusFailed, err.Error()
	}
}

func (r *Runner) record(ctx context.Context, logger *zerolog.Logger, runID string, res DispatchResult) {
	if r.dispatchLog == nil {
		return
	}

	err := r.dispatchLog.InsertDispatchLog(ctx, db.DispatchLogEntry{
		RunID:        runID,
		ConsultantID: res.ConsultantID,
		Channel:      string(res.Channel),
		Status:       res.Status,
		Companies:    res.Companies,
		TopScore:     res.TopScore,
		Error:        res.Error,
	})
	if err != nil {
		logger.Warn().Err(err).Str(logFieldConsultant, res.ConsultantID).Msg("failed to write dispatch log")
	}
}
