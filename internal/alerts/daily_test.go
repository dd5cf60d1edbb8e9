package alerts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
	apperrors "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/errors"
	db "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/storage"
)

type fakePrefs struct {
	prefs map[string]map[string]domain.AlertPreference
	err   error
}

func (f *fakePrefs) GetAlertPreferences(_ context.Context, consultantID string, _ []string) (map[string]domain.AlertPreference, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.prefs[consultantID], nil
}

type fakeDispatcher struct {
	mu     sync.Mutex
	sent   []domain.Notification
	failOn map[string]error
}

func (f *fakeDispatcher) Send(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, n)

	for needle, err := range f.failOn {
		if strings.Contains(n.Text, needle) {
			return err
		}
	}

	if n.Channel == domain.ChannelEmail {
		return fmt.Errorf("email: %w", apperrors.ErrNotImplemented)
	}

	return nil
}

type fakeDispatchLog struct {
	entries []db.DispatchLogEntry
}

func (f *fakeDispatchLog) InsertDispatchLog(_ context.Context, e db.DispatchLogEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

type fakeLock struct{ released bool }

func (l *fakeLock) Release(context.Context) error {
	l.released = true
	return nil
}

type fakeLocker struct {
	lock     *fakeLock
	acquired bool
}

func (f *fakeLocker) TryLock(context.Context) (RunLock, bool, error) {
	if !f.acquired {
		return nil, false, nil
	}

	return f.lock, true, nil
}

func newTestRunner(src *fakeSource, prefs *fakePrefs, d *fakeDispatcher, log DispatchLogger, locker Locker) *Runner {
	logger := zerolog.Nop()

	r := NewRunner(NewCollector(src, &logger), prefs, d, log, locker, RunnerConfig{
		Thresholds: domain.DefaultCategoryThresholds(),
	}, &logger)
	r.now = func() time.Time { return runDate }

	return r
}

func dailySource() *fakeSource {
	return &fakeSource{
		orders: []domain.OrderAnomaly{
			{CompanyID: "c1", CompanyName: "Uno", DeviationPct: -45},
			{CompanyID: "c2", CompanyName: "Dos", DeviationPct: -30},
			{CompanyID: "c9", CompanyName: "Nadie", DeviationPct: -60},
		},
		reviews: []domain.ReviewAnomaly{{CompanyID: "c2", CompanyName: "Dos", AvgRating: float64Ptr(3.0)}},
		profiles: []domain.ConsultantProfile{
			profile("p2", "c2"),
			profile("p1", "c1", "c2"),
		},
	}
}

func TestRunner_DispatchesPerConsultant(t *testing.T) {
	src := dailySource()
	d := &fakeDispatcher{}
	log := &fakeDispatchLog{}

	report, err := newTestRunner(src, &fakePrefs{}, d, log, nil).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Consultants)
	assert.Equal(t, 1, report.Unassigned)
	assert.Equal(t, 2, report.Dispatched)
	assert.Equal(t, 0, report.Failed)

	require.Len(t, d.sent, 2)
	assert.Contains(t, d.sent[0].Text, "Hola Consultor,")
	assert.NotContains(t, d.sent[0].Text, "Nadie", "unassigned companies are never dispatched")

	// p1: Dos scores 10 + 25 = 35, Uno scores 25.
	assert.Less(t, strings.Index(d.sent[0].Text, "*Dos*"), strings.Index(d.sent[0].Text, "*Uno*"))

	require.Len(t, report.Results, 2)
	assert.Equal(t, "p1", report.Results[0].ConsultantID)
	assert.Equal(t, 2, report.Results[0].Companies)
	assert.Equal(t, 35, report.Results[0].TopScore)
	assert.Equal(t, "p2", report.Results[1].ConsultantID)

	require.Len(t, log.entries, 2)
	assert.Equal(t, report.RunID, log.entries[0].RunID)
	assert.Equal(t, db.DispatchStatusSent, log.entries[0].Status)
}

func TestRunner_FailureForOneConsultantDoesNotStopOthers(t *testing.T) {
	src := dailySource()
	src.profiles = []domain.ConsultantProfile{
		{ID: "p1", FullName: "Ana", AssignedCompanyIDs: []string{"c1"}},
		{ID: "p2", FullName: "Bea", AssignedCompanyIDs: []string{"c2"}},
	}

	d := &fakeDispatcher{failOn: map[string]error{"Hola Ana": apperrors.ErrDispatchFailed}}

	report, err := newTestRunner(src, &fakePrefs{}, d, &fakeDispatchLog{}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, d.sent, 2)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Dispatched)
	assert.Equal(t, db.DispatchStatusFailed, report.Results[0].Status)
	assert.Equal(t, "dispatch failed", report.Results[0].Error)
	assert.Equal(t, db.DispatchStatusSent, report.Results[1].Status)
}

func TestRunner_PreferencesSelectChannelsAndCategories(t *testing.T) {
	src := dailySource()
	src.profiles = []domain.ConsultantProfile{
		{ID: "p1", FullName: "Ana", Email: "ana@thinkpaladar.com", AssignedCompanyIDs: []string{"c1", "c2"}},
	}

	emailOnly := domain.DefaultAlertPreference("p1", "c1")
	emailOnly.SlackEnabled = false
	emailOnly.EmailEnabled = true

	noOrders := domain.DefaultAlertPreference("p1", "c2")
	noOrders.OrdersEnabled = false
	noOrders.ReviewsEnabled = false

	prefs := &fakePrefs{prefs: map[string]map[string]domain.AlertPreference{
		"p1": {"c1": emailOnly, "c2": noOrders},
	}}

	d := &fakeDispatcher{}
	report, err := newTestRunner(src, prefs, d, &fakeDispatchLog{}, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, d.sent, 1)
	assert.Equal(t, domain.ChannelEmail, d.sent[0].Channel)
	assert.Equal(t, "ana@thinkpaladar.com", d.sent[0].To)
	assert.NotEmpty(t, d.sent[0].HTML)

	require.Len(t, report.Results, 1)
	assert.Equal(t, db.DispatchStatusNotImplemented, report.Results[0].Status)
	assert.Equal(t, 1, report.Skipped)
}

func TestRunner_ConsultantWithoutScoredCompaniesIsSkipped(t *testing.T) {
	src := &fakeSource{
		orders:   []domain.OrderAnomaly{{CompanyID: "c1", DeviationPct: -20.2}},
		profiles: []domain.ConsultantProfile{profile("p1", "c1")},
	}

	d := &fakeDispatcher{}
	log := &fakeDispatchLog{}
	report, err := newTestRunner(src, &fakePrefs{}, d, log, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, d.sent)
	assert.Empty(t, log.entries)
	require.Len(t, report.Results, 1)
	assert.Equal(t, db.DispatchStatusSkipped, report.Results[0].Status)
}

func TestRunner_PreferenceErrorFallsBackToDefaults(t *testing.T) {
	d := &fakeDispatcher{}

	report, err := newTestRunner(dailySource(), &fakePrefs{err: errRPCFailed}, d, nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Dispatched)
}

func TestRunner_LockHeld(t *testing.T) {
	src := dailySource()
	d := &fakeDispatcher{}

	_, err := newTestRunner(src, &fakePrefs{}, d, nil, &fakeLocker{}).Run(context.Background())

	require.ErrorIs(t, err, apperrors.ErrLockHeld)
	assert.Equal(t, int32(0), src.calls.Load())
	assert.Empty(t, d.sent)
}

func TestRunner_ReleasesLock(t *testing.T) {
	locker := &fakeLocker{lock: &fakeLock{}, acquired: true}

	_, err := newTestRunner(dailySource(), &fakePrefs{}, &fakeDispatcher{}, nil, locker).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, locker.lock.released)
}

func TestRunner_CanceledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &fakeDispatcher{}
	report, err := newTestRunner(dailySource(), &fakePrefs{}, d, nil, nil).Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, d.sent)
}
