package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

// Profiles are read in a stable order so the company index keeps scan order across runs.
const sqlStaffProfiles = `
SELECT id::text                   AS id,
       COALESCE(email, '')        AS email,
       COALESCE(full_name, '')    AS full_name,
       role::text                 AS role,
       assigned_company_ids::text[] AS assigned_company_ids,
       slack_user_id              AS slack_user_id
FROM profiles
WHERE role::text = ANY($1)
ORDER BY created_at, id`

// GetStaffProfiles loads every profile whose role is in roles.
func (db *DB) GetStaffProfiles(ctx context.Context, roles []domain.Role) ([]domain.ConsultantProfile, error) {
	roleNames := make([]string, 0, len(roles))
	for _, r := range roles {
		roleNames = append(roleNames, string(r))
	}

	rows, err := db.Pool.Query(ctx, sqlStaffProfiles, roleNames)
	if err != nil {
		return nil, fmt.Errorf("query staff profiles: %w", err)
	}

	profiles, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.ConsultantProfile])
	if err != nil {
		return nil, fmt.Errorf("scan staff profiles: %w", err)
	}

	return profiles, nil
}
