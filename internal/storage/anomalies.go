package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

// The RPC functions may return more columns than listed; only the contract columns are read.
// avg_rating and roas stay nullable: a missing value is not observed, never a zero.
const (
	sqlOrderAnomalies = `
SELECT company_id::text               AS company_id,
       COALESCE(company_name, '')     AS company_name,
       COALESCE(channel, '')          AS channel,
       COALESCE(orders_today, 0)::int8   AS orders_today,
       COALESCE(avg_orders, 0)::float8   AS avg_orders,
       COALESCE(deviation_pct, 0)::float8 AS deviation_pct
FROM get_daily_order_anomalies(p_threshold => $1)`

	sqlReviewAnomalies = `
SELECT company_id::text                       AS company_id,
       COALESCE(company_name, '')             AS company_name,
       COALESCE(channel, '')                  AS channel,
       avg_rating::float8                     AS avg_rating,
       COALESCE(baseline_rating, 0)::float8   AS baseline_rating,
       COALESCE(negative_reviews, 0)::int8    AS negative_reviews,
       COALESCE(negative_spike_pct, 0)::float8 AS negative_spike_pct
FROM get_daily_review_anomalies(p_rating_threshold => $1)`

	sqlAdsAnomalies = `
SELECT company_id::text                        AS company_id,
       COALESCE(company_name, '')              AS company_name,
       COALESCE(channel, '')                   AS channel,
       roas::float8                            AS roas,
       COALESCE(ad_spend, 0)::float8           AS ad_spend,
       COALESCE(avg_spend, 0)::float8          AS avg_spend,
       COALESCE(spend_deviation_pct, 0)::float8 AS spend_deviation_pct
FROM get_daily_ads_anomalies(p_roas_threshold => $1)`
)

// GetOrderAnomalies returns companies whose daily orders deviate beyond thresholdPct.
func (db *DB) GetOrderAnomalies(ctx context.Context, thresholdPct float64) ([]domain.OrderAnomaly, error) {
	return queryAnomalies[domain.OrderAnomaly](ctx, db, sqlOrderAnomalies, thresholdPct, "order")
}

// GetReviewAnomalies returns companies whose rating fell below ratingThreshold.
func (db *DB) GetReviewAnomalies(ctx context.Context, ratingThreshold float64) ([]domain.ReviewAnomaly, error) {
	return queryAnomalies[domain.ReviewAnomaly](ctx, db, sqlReviewAnomalies, ratingThreshold, "review")
}

// GetAdsAnomalies returns companies whose ads ROAS fell below roasThreshold.
func (db *DB) GetAdsAnomalies(ctx context.Context, roasThreshold float64) ([]domain.AdsAnomaly, error) {
	return queryAnomalies[domain.AdsAnomaly](ctx, db, sqlAdsAnomalies, roasThreshold, "ads")
}

func queryAnomalies[T any](ctx context.Context, db *DB, query string, threshold float64, kind string) ([]T, error) {
	rows, err := db.Pool.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("query %s anomalies: %w", kind, err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("scan %s anomalies: %w", kind, err)
	}

	if out == nil {
		out = []T{}
	}

	return out, nil
}
