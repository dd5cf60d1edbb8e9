package alerts

import (
	"fmt"
	"math"
	"strconv"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

// Per-category score caps. No single category can exceed its cap.
const (
	ordersScoreCap  = 30.0
	reviewsScoreCap = 25.0
	adsScoreCap     = 25.0
	promosScoreCap  = 20.0
)

// Contribution weights per unit of adverse gap.
const (
	ordersPointsPerPct    = 1.0
	reviewsPointsPerStar  = 25.0
	adsPointsPerShortfall = 50.0
	promosPointsPerPct    = 2.0
)

// Display labels, Spanish without accents to stay safe in Slack mrkdwn.
var categoryLabels = map[domain.Category]string{
	domain.CategoryOrders:  "Pedidos",
	domain.CategoryReviews: "Resenas",
	domain.CategoryAds:     "ROAS Ads",
	domain.CategoryPromos:  "Promociones",
}

// Deviation is one breached category of a company.
type Deviation struct {
	Category  domain.Category `json:"category"`
	Label     string          `json:"label"`
	Value     string          `json:"value"`
	Threshold string          `json:"threshold"`
	Deviation string          `json:"deviation"`
}

// UrgencyResult is the derived, never persisted score of one company.
type UrgencyResult struct {
	Score      int         `json:"score"`
	Deviations []Deviation `json:"deviations"`
}

// CompanyAlert is a scored company ready to render.
type CompanyAlert struct {
	CompanyID  string      `json:"company_id"`
	Name       string      `json:"name"`
	Score      int         `json:"score"`
	Deviations []Deviation `json:"deviations"`
}

// Observer supplies the observed value of a category. ok is false when the
// category was not observed, in which case it is never breached.
type Observer interface {
	Observe(c domain.Category) (value float64, ok bool)
}

// ScoreCompany scores every enabled category the observer reports.
// Real and simulated data share this function and differ only in the Observer.
func ScoreCompany(thresholds domain.CategoryThresholds, pref domain.AlertPreference, obs Observer) UrgencyResult {
	var total float64

	deviations := make([]Deviation, 0, len(domain.ScoredCategories))

	for _, c := range domain.ScoredCategories {
		if !pref.CategoryEnabled(c) {
			continue
		}

		observed, ok := obs.Observe(c)
		if !ok {
			continue
		}

		threshold := pref.EffectiveThreshold(thresholds, c)

		contribution, breached := categoryContribution(c, observed, threshold)
		if !breached {
			continue
		}

		total += contribution

		deviations = append(deviations, formatDeviation(c, observed, threshold))
	}

	return UrgencyResult{
		Score:      int(math.Round(total)),
		Deviations: deviations,
	}
}

// categoryContribution returns the capped score contribution when observed is
// on the adverse side of threshold.
func categoryContribution(c domain.Category, observed, threshold float64) (float64, bool) {
	switch c {
	case domain.CategoryOrders:
		gap := threshold - observed
		if gap <= 0 {
			return 0, false
		}

		return math.Min(ordersScoreCap, gap*ordersPointsPerPct), true
	case domain.CategoryReviews:
		gap := threshold - observed
		if gap <= 0 {
			return 0, false
		}

		return math.Min(reviewsScoreCap, gap*reviewsPointsPerStar), true
	case domain.CategoryAds:
		gap := threshold - observed
		if gap <= 0 {
			return 0, false
		}

		if threshold <= 0 {
			return adsScoreCap, true
		}

		return math.Min(adsScoreCap, gap/threshold*adsPointsPerShortfall), true
	case domain.CategoryPromos:
		gap := observed - threshold
		if gap <= 0 {
			return 0, false
		}

		return math.Min(promosScoreCap, gap*promosPointsPerPct), true
	default:
		return 0, false
	}
}

func formatDeviation(c domain.Category, observed, threshold float64) Deviation {
	d := Deviation{Category: c, Label: categoryLabels[c]}

	switch c {
	case domain.CategoryOrders, domain.CategoryPromos:
		d.Value = fmt.Sprintf("%.1f%%", observed)
		d.Threshold = trimFloat(threshold) + "%"
		d.Deviation = fmt.Sprintf("%+.1f pts", observed-threshold)
	case domain.CategoryReviews:
		d.Value = fmt.Sprintf("%.1f", observed)
		d.Threshold = fmt.Sprintf("%.1f", threshold)
		d.Deviation = fmt.Sprintf("%+.1f", observed-threshold)
	case domain.CategoryAds:
		d.Value = fmt.Sprintf("%.1fx", observed)
		d.Threshold = fmt.Sprintf("%.1fx", threshold)

		if threshold != 0 {
			d.Deviation = fmt.Sprintf("%+.0f%%", (observed-threshold)/threshold*100)
		} else {
			d.Deviation = fmt.Sprintf("%+.1f", observed)
		}
	}

	return d
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
