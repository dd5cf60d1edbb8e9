package alertsapi

import (
	"net/http"
	"time"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/alerts"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

type debugSummary struct {
	OrderAnomalies  int `json:"order_anomalies"`
	ReviewAnomalies int `json:"review_anomalies"`
	AdsAnomalies    int `json:"ads_anomalies"`
	Total           int `json:"total"`
	Consultants     int `json:"consultants"`
}

type rawAnomalies struct {
	Orders  []domain.OrderAnomaly  `json:"orders"`
	Reviews []domain.ReviewAnomaly `json:"reviews"`
	Ads     []domain.AdsAnomaly    `json:"ads"`
}

type debugResponse struct {
	Timestamp     time.Time            `json:"timestamp"`
	Threshold     float64              `json:"threshold"`
	Errors        []alerts.SourceError `json:"errors,omitempty"`
	ProfilesError string               `json:"profiles_error,omitempty"`
	Summary       debugSummary         `json:"summary"`
	Raw           rawAnomalies         `json:"raw"`
	Grouped       alerts.Grouped       `json:"grouped"`
}

// handleTest runs the fetch and grouping without dispatching anything.
func (h *Handler) handleTest(w http.ResponseWriter, r *http.Request) int {
	if status, ok := h.methodAllowed(w, r, http.MethodGet, http.MethodPost); !ok {
		return status
	}

	if !h.cronAuthorized(r) {
		return h.writeError(w, http.StatusUnauthorized, errMsgUnauthorized)
	}

	if h.collector == nil {
		return h.writeError(w, http.StatusInternalServerError, errMsgConfigMissing)
	}

	thresholds := h.cfg.QueryThresholds()
	c := h.collector.Collect(r.Context(), thresholds)
	grouped := c.Group()

	resp := debugResponse{
		Timestamp:     h.now().UTC(),
		Threshold:     thresholds.OrderDeviationPct,
		Errors:        c.Errors,
		ProfilesError: c.ProfilesErr,
		Summary: debugSummary{
			OrderAnomalies:  len(c.Orders),
			ReviewAnomalies: len(c.Reviews),
			AdsAnomalies:    len(c.Ads),
			Total:           len(c.Orders) + len(c.Reviews) + len(c.Ads),
			Consultants:     grouped.ConsultantCount(),
		},
		Raw: rawAnomalies{
			Orders:  c.Orders,
			Reviews: c.Reviews,
			Ads:     c.Ads,
		},
		Grouped: grouped,
	}

	return h.writeJSON(w, http.StatusOK, resp)
}
