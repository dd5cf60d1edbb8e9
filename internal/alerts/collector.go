package alerts

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

// Source names used in SourceError.
const (
	SourceOrders   = "orders"
	SourceReviews  = "reviews"
	SourceAds      = "ads"
	SourceProfiles = "profiles"
)

const (
	logFieldSource = "source"
	logFieldRunID  = "run_id"
)

// AnomalySource runs the three daily anomaly queries.
type AnomalySource interface {
	GetOrderAnomalies(ctx context.Context, thresholdPct float64) ([]domain.OrderAnomaly, error)
	GetReviewAnomalies(ctx context.Context, ratingThreshold float64) ([]domain.ReviewAnomaly, error)
	GetAdsAnomalies(ctx context.Context, roasThreshold float64) ([]domain.AdsAnomaly, error)
}

// ProfileSource loads staff profiles.
type ProfileSource interface {
	GetStaffProfiles(ctx context.Context, roles []domain.Role) ([]domain.ConsultantProfile, error)
}

// DataSource is everything the collector reads.
type DataSource interface {
	AnomalySource
	ProfileSource
}

// SourceError records a failed fetch. The failed source is treated as empty.
type SourceError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Collection is the settled result of one fetch round.
type Collection struct {
	Thresholds  domain.Thresholds
	Orders      []domain.OrderAnomaly
	Reviews     []domain.ReviewAnomaly
	Ads         []domain.AdsAnomaly
	Profiles    []domain.ConsultantProfile
	Errors      []SourceError
	ProfilesErr string
}

// Group builds the company index from the collected profiles and groups the anomalies.
func (c *Collection) Group() Grouped {
	return Group(BuildCompanyIndex(c.Profiles), c.Orders, c.Reviews, c.Ads)
}

// Collector issues the anomaly queries and the profile fetch concurrently.
type Collector struct {
	source DataSource
	logger *zerolog.Logger
}

// NewCollector creates a collector over source.
func NewCollector(source DataSource, logger *zerolog.Logger) *Collector {
	return &Collector{source: source, logger: logger}
}

// Collect runs all four fetches and waits for every one to settle.
// A failing fetch never cancels the others and never fails the collection.
func (c *Collector) Collect(ctx context.Context, thresholds domain.Thresholds) *Collection {
	var (
		g errgroup.Group

		orders   []domain.OrderAnomaly
		reviews  []domain.ReviewAnomaly
		ads      []domain.AdsAnomaly
		profiles []domain.ConsultantProfile

		errs [4]error
	)

	g.Go(func() error {
		orders, errs[0] = c.source.GetOrderAnomalies(ctx, thresholds.OrderDeviationPct)
		return nil
	})

	g.Go(func() error {
		reviews, errs[1] = c.source.GetReviewAnomalies(ctx, thresholds.ReviewRating)
		return nil
	})

	g.Go(func() error {
		ads, errs[2] = c.source.GetAdsAnomalies(ctx, thresholds.AdsROAS)
		return nil
	})

	g.Go(func() error {
		profiles, errs[3] = c.source.GetStaffProfiles(ctx, domain.StaffRoles)
		return nil
	})

	_ = g.Wait() //nolint:errcheck // goroutines record their errors instead of returning them

	out := &Collection{
		Thresholds: thresholds,
		Orders:     emptyOnError(orders, errs[0]),
		Reviews:    emptyOnError(reviews, errs[1]),
		Ads:        emptyOnError(ads, errs[2]),
		Profiles:   emptyOnError(profiles, errs[3]),
	}

	sources := [4]string{SourceOrders, SourceReviews, SourceAds, SourceProfiles}
	for i, err := range errs {
		if err == nil {
			continue
		}

		out.Errors = append(out.Errors, SourceError{Source: sources[i], Message: err.Error()})
		sourceErrorsTotal.WithLabelValues(sources[i]).Inc()

		c.logger.Warn().Err(err).Str(logFieldSource, sources[i]).Msg("alert data source failed, continuing with empty result")
	}

	if errs[3] != nil {
		out.ProfilesErr = errs[3].Error()
	}

	anomaliesFetched.WithLabelValues(SourceOrders).Set(float64(len(out.Orders)))
	anomaliesFetched.WithLabelValues(SourceReviews).Set(float64(len(out.Reviews)))
	anomaliesFetched.WithLabelValues(SourceAds).Set(float64(len(out.Ads)))

	c.logger.Debug().
		Int(SourceOrders, len(out.Orders)).
		Int(SourceReviews, len(out.Reviews)).
		Int(SourceAds, len(out.Ads)).
		Int(SourceProfiles, len(out.Profiles)).
		Msg("alert data collected")

	return out
}

func emptyOnError[T any](rows []T, err error) []T {
	if err != nil || rows == nil {
		return []T{}
	}

	return rows
}
