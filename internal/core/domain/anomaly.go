package domain

// Category identifies an alert category.
type Category string

// Alert categories. Promos is scored but has no anomaly source.
const (
	CategoryOrders  Category = "orders"
	CategoryReviews Category = "reviews"
	CategoryAds     Category = "ads"
	CategoryPromos  Category = "promos"
)

// ScoredCategories lists every category that contributes to an urgency score,
// in the order deviations are reported.
var ScoredCategories = []Category{CategoryOrders, CategoryReviews, CategoryAds, CategoryPromos}

// AnomalyRecord is implemented by every anomaly row variant.
type AnomalyRecord interface {
	Company() string
	CompanyLabel() string
}

// OrderAnomaly is a company whose daily order volume deviates from its average.
type OrderAnomaly struct {
	CompanyID    string  `db:"company_id" json:"company_id"`
	CompanyName  string  `db:"company_name" json:"company_name"`
	Channel      string  `db:"channel" json:"channel"`
	OrdersToday  int64   `db:"orders_today" json:"orders_today"`
	AvgOrders    float64 `db:"avg_orders" json:"avg_orders"`
	DeviationPct float64 `db:"deviation_pct" json:"deviation_pct"`
}

// ReviewAnomaly is a company whose rating dropped or whose negative reviews spiked.
// AvgRating is nil when the company had no rated reviews.
type ReviewAnomaly struct {
	CompanyID        string  `db:"company_id" json:"company_id"`
	CompanyName      string  `db:"company_name" json:"company_name"`
	Channel          string  `db:"channel" json:"channel"`
	AvgRating        *float64 `db:"avg_rating" json:"avg_rating"`
	BaselineRating   float64 `db:"baseline_rating" json:"baseline_rating"`
	NegativeReviews  int64   `db:"negative_reviews" json:"negative_reviews"`
	NegativeSpikePct float64 `db:"negative_spike_pct" json:"negative_spike_pct"`
}

// AdsAnomaly is a company whose ads return fell below threshold or whose spend deviates.
// ROAS is nil when there was no attributed revenue data.
type AdsAnomaly struct {
	CompanyID         string  `db:"company_id" json:"company_id"`
	CompanyName       string  `db:"company_name" json:"company_name"`
	Channel           string  `db:"channel" json:"channel"`
	ROAS              *float64 `db:"roas" json:"roas"`
	AdSpend           float64 `db:"ad_spend" json:"ad_spend"`
	AvgSpend          float64 `db:"avg_spend" json:"avg_spend"`
	SpendDeviationPct float64 `db:"spend_deviation_pct" json:"spend_deviation_pct"`
}

func (a OrderAnomaly) Company() string  { return a.CompanyID }
func (a ReviewAnomaly) Company() string { return a.CompanyID }
func (a AdsAnomaly) Company() string    { return a.CompanyID }

func (a OrderAnomaly) CompanyLabel() string  { return labelOrID(a.CompanyName, a.CompanyID) }
func (a ReviewAnomaly) CompanyLabel() string { return labelOrID(a.CompanyName, a.CompanyID) }
func (a AdsAnomaly) CompanyLabel() string    { return labelOrID(a.CompanyName, a.CompanyID) }

func labelOrID(name, id string) string {
	if name != "" {
		return name
	}

	return id
}

// Thresholds holds the query thresholds passed to the anomaly data source.
type Thresholds struct {
	OrderDeviationPct float64 `json:"orders"`
	ReviewRating      float64 `json:"reviews"`
	AdsROAS           float64 `json:"ads"`
}
