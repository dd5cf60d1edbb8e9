package alertsapi

import (
	"net/http"

	apperrors "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/errors"
)

// handleRun triggers the daily run from an external cron.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) int {
	if status, ok := h.methodAllowed(w, r, http.MethodGet, http.MethodPost); !ok {
		return status
	}

	if !h.cronAuthorized(r) {
		return h.writeError(w, http.StatusUnauthorized, errMsgUnauthorized)
	}

	if h.deps.Runner == nil {
		return h.writeError(w, http.StatusInternalServerError, errMsgConfigMissing)
	}

	report, err := h.deps.Runner.Run(r.Context())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrLockHeld) {
			return h.writeError(w, http.StatusConflict, errMsgRunInProgress)
		}

		h.logger.Error().Err(err).Msg("daily run failed")

		return h.writeError(w, http.StatusInternalServerError, errMsgRunFailed)
	}

	return h.writeJSON(w, http.StatusOK, report)
}
