package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

const sqlAlertPreferences = `
SELECT consultant_id::text          AS consultant_id,
       company_id::text             AS company_id,
       orders_enabled,
       reviews_enabled,
       ads_enabled,
       promos_enabled,
       slack_enabled,
       email_enabled,
       orders_threshold::float8     AS orders_threshold,
       reviews_threshold::float8    AS reviews_threshold,
       ads_threshold::float8        AS ads_threshold,
       promos_threshold::float8     AS promos_threshold
FROM alert_preferences
WHERE consultant_id::text = $1
  AND company_id::text = ANY($2)`

// GetAlertPreferences returns the stored preferences of one consultant for the
// given companies, keyed by company id. Companies without a row are absent.
func (db *DB) GetAlertPreferences(ctx context.Context, consultantID string, companyIDs []string) (map[string]domain.AlertPreference, error) {
	out := make(map[string]domain.AlertPreference, len(companyIDs))
	if len(companyIDs) == 0 {
		return out, nil
	}

	rows, err := db.Pool.Query(ctx, sqlAlertPreferences, consultantID, companyIDs)
	if err != nil {
		return nil, fmt.Errorf("query alert preferences: %w", err)
	}

	prefs, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.AlertPreference])
	if err != nil {
		return nil, fmt.Errorf("scan alert preferences: %w", err)
	}

	for _, p := range prefs {
		out[p.CompanyID] = p
	}

	return out, nil
}
