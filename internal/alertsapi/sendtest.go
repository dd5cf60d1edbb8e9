package alertsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/alerts"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
	apperrors "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/errors"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/identity"
)

// Static errors for err113 compliance.
var (
	errTrailingData   = errors.New("request body must contain a single JSON object")
	errInvalidChannel = errors.New("channel must be slack or email")
	errMissingName    = errors.New("consultantName is required")
)

type sendTestRequest struct {
	Channel        domain.Channel `json:"channel"`
	ConsultantName string         `json:"consultantName"`
}

type sendTestResponse struct {
	OK      bool           `json:"ok"`
	Channel domain.Channel `json:"channel"`
	Message string         `json:"message,omitempty"`
}

// handleSendTest sends one simulated alert message for the signed-in staff user.
func (h *Handler) handleSendTest(w http.ResponseWriter, r *http.Request) int {
	if status, ok := h.methodAllowed(w, r, http.MethodPost); !ok {
		return status
	}

	if h.deps.Identity == nil {
		return h.writeError(w, http.StatusInternalServerError, errMsgConfigMissing)
	}

	if status, ok := h.authorizeStaff(w, r); !ok {
		return status
	}

	req, err := decodeSendTestRequest(r.Body)
	if err != nil {
		return h.writeError(w, http.StatusBadRequest, err.Error())
	}

	if req.Channel == domain.ChannelEmail {
		return h.writeJSON(w, http.StatusOK, sendTestResponse{OK: true, Channel: domain.ChannelEmail, Message: msgEmailNotImplemented})
	}

	if h.deps.Slack == nil {
		return h.writeError(w, http.StatusInternalServerError, errMsgSlackMissing)
	}

	text := alerts.FormatSlackMessage(alerts.MessageOptions{
		RecipientName: req.ConsultantName,
		Now:           h.now().In(h.deps.Location),
		DashboardURL:  h.cfg.Alerts.DashboardURL,
		Test:          true,
	}, alerts.PreviewAlerts(h.cfg.CategoryThresholds()))

	res, err := h.deps.Slack.Send(r.Context(), text)
	if err != nil {
		h.logger.Error().Err(err).Str(logFieldChannel, string(req.Channel)).Msg("slack test send failed")
		return h.writeError(w, http.StatusInternalServerError, errMsgSlackRequest)
	}

	if !res.OK {
		h.logger.Warn().Int(logFieldStatus, res.Status).Str("body", res.Body).Msg("slack webhook rejected test message")
		return h.writeError(w, http.StatusBadGateway, errMsgSlackFailed)
	}

	return h.writeJSON(w, http.StatusOK, sendTestResponse{OK: true, Channel: domain.ChannelSlack})
}

// authorizeStaff resolves the session token and checks the organization domain.
func (h *Handler) authorizeStaff(w http.ResponseWriter, r *http.Request) (int, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return h.writeError(w, http.StatusUnauthorized, errMsgMissingAuth), false
	}

	user, err := h.deps.Identity.GetUser(r.Context(), token)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			return h.writeError(w, http.StatusUnauthorized, errMsgInvalidSession), false
		}

		h.logger.Error().Err(err).Msg("identity provider request failed")

		return h.writeError(w, http.StatusInternalServerError, errMsgAuthFailed), false
	}

	if !identity.HasEmailDomain(user.Email, h.cfg.Alerts.AllowedEmailDomain) {
		return h.writeError(w, http.StatusForbidden, errMsgForbidden), false
	}

	return 0, true
}

func decodeSendTestRequest(body io.Reader) (sendTestRequest, error) {
	var req sendTestRequest

	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, errTrailingData
	}

	switch req.Channel {
	case domain.ChannelSlack, domain.ChannelEmail:
	default:
		return req, errInvalidChannel
	}

	req.ConsultantName = strings.TrimSpace(req.ConsultantName)
	if req.ConsultantName == "" {
		return req, errMissingName
	}

	return req, nil
}
