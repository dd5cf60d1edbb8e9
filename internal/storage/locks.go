package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryLock is a session-level advisory lock pinned to one pooled connection.
type AdvisoryLock struct {
	conn   *pgxpool.Conn
	lockID int64
}

// TryAcquireAdvisoryLock tries to take lockID without blocking.
// When acquired is false the returned lock is nil.
func (db *DB) TryAcquireAdvisoryLock(ctx context.Context, lockID int64) (*AdvisoryLock, bool, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	return &AdvisoryLock{conn: conn, lockID: lockID}, true, nil
}

// Release unlocks and returns the connection to the pool.
func (l *AdvisoryLock) Release(ctx context.Context) error {
	defer l.conn.Release()

	if _, err := l.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", l.lockID); err != nil {
		return fmt.Errorf("release advisory lock: %w", err)
	}

	return nil
}
