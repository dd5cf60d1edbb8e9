// Package alertsapi serves the HTTP entry points of the alert pipeline.
package alertsapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/alerts"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/dispatch"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/identity"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/platform/config"
)

const (
	// PathPrefix is where the handler is mounted.
	PathPrefix = "/api/alerts/"

	maxBodyBytes = 1 << 16

	// Route path constants.
	routeTest     = "test"
	routeSendTest = "send-test"
	routeRun      = "run"

	// Error message constants.
	errMsgUnauthorized     = "Unauthorized"
	errMsgForbidden        = "Forbidden"
	errMsgMethodNotAllowed = "Method not allowed"
	errMsgNotFound         = "Not found"
	errMsgConfigMissing    = "Server configuration missing"
	errMsgMissingAuth      = "Missing authorization"
	errMsgInvalidSession   = "Invalid session"
	errMsgAuthFailed       = "Auth verification failed"
	errMsgSlackMissing     = "Slack webhook not configured"
	errMsgSlackRequest     = "Slack webhook request failed"
	errMsgSlackFailed      = "Slack webhook failed"
	errMsgRunInProgress    = "Daily run already in progress"
	errMsgRunFailed        = "Daily run failed"

	msgEmailNotImplemented = "Email test not implemented yet"

	// Header constants.
	headerAuthorization = "Authorization"
	headerAllow         = "Allow"
	contentTypeHeader   = "Content-Type"
	contentTypeJSON     = "application/json; charset=utf-8"
	bearerPrefix        = "Bearer "

	// Log field names.
	logFieldRoute   = "route"
	logFieldChannel = "channel"
	logFieldStatus  = "status"
)

// UserVerifier resolves a session token to a user.
type UserVerifier interface {
	GetUser(ctx context.Context, token string) (*identity.User, error)
}

// SlackSender posts one message to the alerts webhook.
type SlackSender interface {
	Send(ctx context.Context, text string) (*dispatch.SlackResult, error)
}

// DailyRunner executes the production daily run.
type DailyRunner interface {
	Run(ctx context.Context) (*alerts.DailyReport, error)
}

// Deps are the collaborators of the handler. A nil field means the matching
// configuration is missing and the endpoints that need it answer 500.
type Deps struct {
	Source   alerts.DataSource
	Identity UserVerifier
	Slack    SlackSender
	Runner   DailyRunner
	Location *time.Location
}

// Handler serves /api/alerts/*.
type Handler struct {
	cfg       *config.Config
	deps      Deps
	collector *alerts.Collector
	logger    *zerolog.Logger
	now       func() time.Time
}

// NewHandler creates the alerts API handler.
func NewHandler(cfg *config.Config, deps Deps, logger *zerolog.Logger) *Handler {
	if deps.Location == nil {
		deps.Location = time.UTC
	}

	h := &Handler{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}

	if deps.Source != nil {
		h.collector = alerts.NewCollector(deps.Source, logger)
	}

	return h
}

// ServeHTTP routes requests to alert endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	route, status := h.dispatch(w, r)

	h.recordMetrics(route, status, start)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) (route string, status int) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, PathPrefix), "/")

	switch path {
	case routeTest:
		return routeTest, h.handleTest(w, r)
	case routeSendTest:
		return routeSendTest, h.handleSendTest(w, r)
	case routeRun:
		return routeRun, h.handleRun(w, r)
	default:
		return "not_found", h.writeError(w, http.StatusNotFound, errMsgNotFound)
	}
}

func (h *Handler) recordMetrics(route string, status int, start time.Time) {
	latencyHistogram.WithLabelValues(route).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()

	h.logger.Debug().Str(logFieldRoute, route).Int(logFieldStatus, status).Dur("duration", time.Since(start)).Msg("alerts api request")
}

// methodAllowed writes 405 and returns false when r.Method is not listed.
func (h *Handler) methodAllowed(w http.ResponseWriter, r *http.Request, methods ...string) (int, bool) {
	for _, m := range methods {
		if r.Method == m {
			return 0, true
		}
	}

	w.Header().Set(headerAllow, strings.Join(methods, ", "))

	return h.writeError(w, http.StatusMethodNotAllowed, errMsgMethodNotAllowed), false
}

// cronAuthorized checks the shared cron secret. An empty secret rejects everything.
func (h *Handler) cronAuthorized(r *http.Request) bool {
	secret := h.cfg.Alerts.CronSecret
	if secret == "" {
		return false
	}

	token, ok := bearerToken(r)
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get(headerAuthorization)
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))

	return token, token != ""
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) int {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("write json failed")
	}

	return status
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) int {
	return h.writeJSON(w, status, map[string]string{"error": message})
}
