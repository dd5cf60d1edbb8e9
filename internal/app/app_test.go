package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/platform/config"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/platform/worker"
)

const testCronSecret = "cron-secret"

var errConnRefused = errors.New("connection refused")

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()

	logger := zerolog.Nop()

	return New(cfg, nil, &logger)
}

func TestNewLoadsAlertTimezone(t *testing.T) {
	a := newTestApp(t, &config.Config{Alerts: config.AlertConfig{Timezone: "Madrid"}})
	assert.Equal(t, "Europe/Madrid", a.location.String())

	a = newTestApp(t, &config.Config{Alerts: config.AlertConfig{Timezone: "Not/AZone"}})
	assert.Equal(t, time.UTC, a.location)
}

func TestRunModesRequireDatabase(t *testing.T) {
	a := newTestApp(t, &config.Config{})

	require.ErrorIs(t, a.RunDaily(context.Background()), errDatabaseMissing)
	require.ErrorIs(t, a.RunScheduler(context.Background()), errDatabaseMissing)
	assert.Nil(t, a.newRunner())
}

func TestServerWithoutBackends(t *testing.T) {
	a := newTestApp(t, &config.Config{Alerts: config.AlertConfig{CronSecret: testCronSecret}})
	h := a.newServer(nil).Handler()

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
		body   string
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK, "OK"},
		{"debug without data source", http.MethodGet, "/api/alerts/test", "Bearer " + testCronSecret, http.StatusInternalServerError, "Server configuration missing"},
		{"debug wrong secret", http.MethodGet, "/api/alerts/test", "Bearer nope", http.StatusUnauthorized, "Unauthorized"},
		{"run without runner", http.MethodPost, "/api/alerts/run", "Bearer " + testCronSecret, http.StatusInternalServerError, "Server configuration missing"},
		{"send-test without identity", http.MethodPost, "/api/alerts/send-test", "Bearer user-token", http.StatusInternalServerError, "Server configuration missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestAPIHandlerWiresIdentityOnlyWhenConfigured(t *testing.T) {
	a := newTestApp(t, &config.Config{
		Identity: config.IdentityConfig{URL: "http://127.0.0.1:1", AnonKey: "anon", Timeout: time.Second},
	})
	h := a.newServer(nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/send-test", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing authorization")
}

type fakeLastRunStore struct {
	last time.Time
	ok   bool
	err  error
}

func (f fakeLastRunStore) LastDispatchAt(context.Context) (time.Time, bool, error) {
	return f.last, f.ok, f.err
}

func TestSeedLastRunFromDispatchLog(t *testing.T) {
	a := newTestApp(t, &config.Config{Alerts: config.AlertConfig{DailyHour: 8, Timezone: "UTC"}})
	dispatchedAt := time.Date(2026, 1, 15, 8, 5, 0, 0, time.UTC)

	tests := []struct {
		name     string
		store    fakeLastRunStore
		wantLast time.Time
	}{
		{"seeded", fakeLastRunStore{last: dispatchedAt, ok: true}, dispatchedAt},
		{"empty log", fakeLastRunStore{}, time.Time{}},
		{"query error", fakeLastRunStore{err: errConnRefused}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := a.newDailyScheduler(nil)
			a.seedLastRun(context.Background(), scheduler, tt.store)

			last, ok := scheduler.GetLastRun(dailyTaskName)
			require.True(t, ok)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestSeededSchedulerSkipsRestartSameDay(t *testing.T) {
	a := newTestApp(t, &config.Config{Alerts: config.AlertConfig{DailyHour: 8, Timezone: "UTC"}})
	dispatchedAt := time.Date(2026, 1, 15, 8, 5, 0, 0, time.UTC)

	scheduler := a.newDailyScheduler(nil)
	a.seedLastRun(context.Background(), scheduler, fakeLastRunStore{last: dispatchedAt, ok: true})

	last, _ := scheduler.GetLastRun(dailyTaskName)

	assert.False(t, worker.ShouldRunDaily(dispatchedAt.Add(25*time.Minute), 8, last, 0))
	assert.True(t, worker.ShouldRunDaily(dispatchedAt.Add(24*time.Hour-5*time.Minute), 8, last, 0))
}
