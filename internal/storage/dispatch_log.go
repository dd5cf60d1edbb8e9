package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// DispatchLogEntry records one delivery attempt of the daily run.
type DispatchLogEntry struct {
	RunID        string
	ConsultantID string
	Channel      string
	Status       string
	Companies    int
	TopScore     int
	Error        string
}

// InsertDispatchLog appends a dispatch outcome.
func (db *DB) InsertDispatchLog(ctx context.Context, e DispatchLogEntry) error {
	runID, err := uuid.Parse(e.RunID)
	if err != nil {
		return fmt.Errorf("parse run id: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
INSERT INTO alert_dispatch_log (run_id, consultant_id, channel, status, companies, top_score, error)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		runID, e.ConsultantID, e.Channel, e.Status, e.Companies, e.TopScore, toText(e.Error))
	if err != nil {
		return fmt.Errorf("insert dispatch log: %w", err)
	}

	return nil
}

// LastDispatchAt returns when the newest dispatch log row was written.
// ok is false when the log is empty.
func (db *DB) LastDispatchAt(ctx context.Context) (time.Time, bool, error) {
	var last pgtype.Timestamptz
	if err := db.Pool.QueryRow(ctx, `SELECT max(created_at) FROM alert_dispatch_log`).Scan(&last); err != nil {
		return time.Time{}, false, fmt.Errorf("query last dispatch: %w", err)
	}

	if !last.Valid {
		return time.Time{}, false, nil
	}

	return last.Time, true, nil
}

func toText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
