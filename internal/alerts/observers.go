package alerts

import (
	"math"
	"sort"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

// Simulated value ranges, as [min, min+span).
const (
	simOrdersMin  = -50.0
	simOrdersSpan = 60.0
	simReviewsMin = 3.0
	simReviewSpan = 2.0
	simAdsMin     = 1.0
	simAdsSpan    = 5.0
	simPromosMin  = 0.0
	simPromosSpan = 30.0

	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31
)

// SimulationObserver derives a deterministic pseudo-observed value per category
// from a hash of the company identifier. It is used only by the preview and
// test-send paths where real magnitudes are not available.
type SimulationObserver struct {
	CompanyIdentifier string
}

// Observe implements Observer. Every category is observed.
func (s SimulationObserver) Observe(c domain.Category) (float64, bool) {
	r := seededUnit(hashString(s.CompanyIdentifier + ":" + string(c)))

	var v float64

	switch c {
	case domain.CategoryOrders:
		v = simOrdersMin + r*simOrdersSpan
	case domain.CategoryReviews:
		v = simReviewsMin + r*simReviewSpan
	case domain.CategoryAds:
		v = simAdsMin + r*simAdsSpan
	case domain.CategoryPromos:
		v = simPromosMin + r*simPromosSpan
	default:
		return 0, false
	}

	return roundTenth(v), true
}

// ComputeUrgencyScore scores a company in simulation mode.
func ComputeUrgencyScore(thresholds domain.CategoryThresholds, pref domain.AlertPreference, companyIdentifier string) UrgencyResult {
	return ScoreCompany(thresholds, pref, SimulationObserver{CompanyIdentifier: companyIdentifier})
}

// hashString is a 31-multiplier string hash over the UTF-8 bytes.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}

	return h
}

// seededUnit maps a seed to [0, 1) with one linear congruential step.
func seededUnit(seed uint32) float64 {
	next := (uint64(seed)*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(next) / lcgModulus
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// CompanyObservation holds the worst real anomaly magnitudes of one company.
// Promos has no anomaly source and is never observed.
type CompanyObservation struct {
	CompanyID string
	Name      string
	orders    *float64
	reviews   *float64
	ads       *float64
}

// Observe implements Observer.
func (o *CompanyObservation) Observe(c domain.Category) (float64, bool) {
	var v *float64

	switch c {
	case domain.CategoryOrders:
		v = o.orders
	case domain.CategoryReviews:
		v = o.reviews
	case domain.CategoryAds:
		v = o.ads
	}

	if v == nil {
		return 0, false
	}

	return *v, true
}

// ObserveBundle collects per-company observations from a bundle, keeping the
// worst value when a company has several rows in a category (one per delivery channel).
// The result is ordered by first appearance in the bundle.
func ObserveBundle(b *Bundle) []*CompanyObservation {
	byID := make(map[string]*CompanyObservation)
	order := make([]string, 0)

	get := func(rec domain.AnomalyRecord) *CompanyObservation {
		if o, ok := byID[rec.Company()]; ok {
			return o
		}

		o := &CompanyObservation{CompanyID: rec.Company(), Name: rec.CompanyLabel()}
		byID[rec.Company()] = o
		order = append(order, rec.Company())

		return o
	}

	for _, a := range b.Orders {
		o := get(a)
		o.orders = minPtr(o.orders, a.DeviationPct)
	}

	for _, a := range b.Reviews {
		o := get(a)
		if a.AvgRating != nil {
			o.reviews = minPtr(o.reviews, *a.AvgRating)
		}
	}

	for _, a := range b.Ads {
		o := get(a)
		if a.ROAS != nil {
			o.ads = minPtr(o.ads, *a.ROAS)
		}
	}

	out := make([]*CompanyObservation, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}

	return out
}

func minPtr(cur *float64, v float64) *float64 {
	if cur == nil || v < *cur {
		return &v
	}

	return cur
}

// SortAlerts orders alerts by score descending, then by name.
func SortAlerts(alerts []CompanyAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Score != alerts[j].Score {
			return alerts[i].Score > alerts[j].Score
		}

		return alerts[i].Name < alerts[j].Name
	})
}
