package domain

// Channel is a notification delivery channel.
type Channel string

// Delivery channels.
const (
	ChannelSlack Channel = "slack"
	ChannelEmail Channel = "email"
)

// Default category thresholds used when neither config nor a preference overrides them.
const (
	DefaultOrdersThreshold  = -20.0
	DefaultReviewsThreshold = 4.0
	DefaultAdsThreshold     = 3.0
	DefaultPromosThreshold  = 15.0
)

// CategoryThresholds holds one scoring threshold per category.
type CategoryThresholds struct {
	Orders  float64 `json:"orders"`
	Reviews float64 `json:"reviews"`
	Ads     float64 `json:"ads"`
	Promos  float64 `json:"promos"`
}

// DefaultCategoryThresholds returns the built-in thresholds.
func DefaultCategoryThresholds() CategoryThresholds {
	return CategoryThresholds{
		Orders:  DefaultOrdersThreshold,
		Reviews: DefaultReviewsThreshold,
		Ads:     DefaultAdsThreshold,
		Promos:  DefaultPromosThreshold,
	}
}

// For returns the threshold for a category.
func (t CategoryThresholds) For(c Category) float64 {
	switch c {
	case CategoryOrders:
		return t.Orders
	case CategoryReviews:
		return t.Reviews
	case CategoryAds:
		return t.Ads
	case CategoryPromos:
		return t.Promos
	default:
		return 0
	}
}

// AlertPreference is the per consultant and company alert configuration.
// Threshold fields are optional overrides of CategoryThresholds.
type AlertPreference struct {
	ConsultantID     string   `db:"consultant_id" json:"consultant_id"`
	CompanyID        string   `db:"company_id" json:"company_id"`
	OrdersEnabled    bool     `db:"orders_enabled" json:"orders_enabled"`
	ReviewsEnabled   bool     `db:"reviews_enabled" json:"reviews_enabled"`
	AdsEnabled       bool     `db:"ads_enabled" json:"ads_enabled"`
	PromosEnabled    bool     `db:"promos_enabled" json:"promos_enabled"`
	SlackEnabled     bool     `db:"slack_enabled" json:"slack_enabled"`
	EmailEnabled     bool     `db:"email_enabled" json:"email_enabled"`
	OrdersThreshold  *float64 `db:"orders_threshold" json:"orders_threshold,omitempty"`
	ReviewsThreshold *float64 `db:"reviews_threshold" json:"reviews_threshold,omitempty"`
	AdsThreshold     *float64 `db:"ads_threshold" json:"ads_threshold,omitempty"`
	PromosThreshold  *float64 `db:"promos_threshold" json:"promos_threshold,omitempty"`
}

// DefaultAlertPreference is applied to pairs with no stored row.
func DefaultAlertPreference(consultantID, companyID string) AlertPreference {
	return AlertPreference{
		ConsultantID:   consultantID,
		CompanyID:      companyID,
		OrdersEnabled:  true,
		ReviewsEnabled: true,
		AdsEnabled:     true,
		PromosEnabled:  true,
		SlackEnabled:   true,
		EmailEnabled:   false,
	}
}

// CategoryEnabled reports whether a category is enabled.
func (p AlertPreference) CategoryEnabled(c Category) bool {
	switch c {
	case CategoryOrders:
		return p.OrdersEnabled
	case CategoryReviews:
		return p.ReviewsEnabled
	case CategoryAds:
		return p.AdsEnabled
	case CategoryPromos:
		return p.PromosEnabled
	default:
		return false
	}
}

// CategoryOverride returns the optional threshold override for a category.
func (p AlertPreference) CategoryOverride(c Category) *float64 {
	switch c {
	case CategoryOrders:
		return p.OrdersThreshold
	case CategoryReviews:
		return p.ReviewsThreshold
	case CategoryAds:
		return p.AdsThreshold
	case CategoryPromos:
		return p.PromosThreshold
	default:
		return nil
	}
}

// EffectiveThreshold resolves the override first, then the base threshold.
func (p AlertPreference) EffectiveThreshold(base CategoryThresholds, c Category) float64 {
	if override := p.CategoryOverride(c); override != nil {
		return *override
	}

	return base.For(c)
}

// ChannelEnabled reports whether delivery through ch is enabled.
func (p AlertPreference) ChannelEnabled(ch Channel) bool {
	switch ch {
	case ChannelSlack:
		return p.SlackEnabled
	case ChannelEmail:
		return p.EmailEnabled
	default:
		return false
	}
}

// Query returns the subset passed to the anomaly queries. Promos has no query.
func (t CategoryThresholds) Query() Thresholds {
	return Thresholds{
		OrderDeviationPct: t.Orders,
		ReviewRating:      t.Reviews,
		AdsROAS:           t.Ads,
	}
}
