// Package storage keeps a local SQLite snapshot of the remote user list so
// an operator can diff what changed between syncs. Only remote-sourced rows
// live here; session state (selection, audit trail) is memory-only.
package storage

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/talkincode/qsadmin/pkg/qsapi"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS user_snapshots (
  id            INTEGER PRIMARY KEY,
  user_id       INTEGER NOT NULL UNIQUE,
  email         TEXT NOT NULL,
  username      TEXT,
  api_key       TEXT NOT NULL,
  status        TEXT NOT NULL,
  run_id        INTEGER NOT NULL DEFAULT 0,
  first_seen_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_snapshots_status ON user_snapshots(status);
CREATE TABLE IF NOT EXISTS user_changes (
  id          INTEGER PRIMARY KEY,
  occurred_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  user_id     INTEGER NOT NULL,
  email       TEXT NOT NULL,
  status      TEXT NOT NULL,
  change_type TEXT NOT NULL CHECK (change_type IN ('added','updated','removed'))
);
CREATE INDEX IF NOT EXISTS idx_changes_time ON user_changes(occurred_at);
CREATE INDEX IF NOT EXISTS idx_changes_user ON user_changes(user_id, occurred_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// SyncUsers upserts one full fetch of the remote user list and returns what
// changed. Rows not seen in this run are swept as removed: the remote list is
// the source of truth, the snapshot only mirrors it.
func (d *DB) SyncUsers(ctx context.Context, users []qsapi.User) ([]Change, error) {
	now := time.Now().UTC()
	runID := time.Now().UnixNano()

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, "SELECT user_id, email, status FROM user_snapshots")
	if err != nil {
		return nil, err
	}

	type existing struct{ Email, Status string }
	existingMap := make(map[uint64]existing)
	for rows.Next() {
		var (
			id            uint64
			email, status string
		)
		if err = rows.Scan(&id, &email, &status); err != nil {
			rows.Close()
			return nil, err
		}
		existingMap[id] = existing{Email: email, Status: status}
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	var changes []Change
	for _, u := range users {
		ex, existed := existingMap[u.ID]

		if !existed {
			_, err = tx.ExecContext(ctx, `INSERT INTO user_snapshots(user_id, email, username, api_key, status, run_id, first_seen_at, last_seen_at) VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)`, u.ID, u.Email, nullIfEmpty(u.Username), u.APIKey, u.Status, runID)
			if err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, UserID: u.ID, Email: u.Email, Status: u.Status, ChangeType: "added"})
			_, err = tx.ExecContext(ctx, `INSERT INTO user_changes(occurred_at, user_id, email, status, change_type) VALUES(CURRENT_TIMESTAMP,?,?,?,'added')`, u.ID, u.Email, u.Status)
			if err != nil {
				return nil, err
			}
		} else if ex.Email != u.Email || ex.Status != u.Status {
			_, err = tx.ExecContext(ctx, `UPDATE user_snapshots SET email = ?, username = ?, api_key = ?, status = ?, run_id = ?, last_seen_at = CURRENT_TIMESTAMP WHERE user_id = ?`, u.Email, nullIfEmpty(u.Username), u.APIKey, u.Status, runID, u.ID)
			if err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, UserID: u.ID, Email: u.Email, Status: u.Status, ChangeType: "updated"})
			_, err = tx.ExecContext(ctx, `INSERT INTO user_changes(occurred_at, user_id, email, status, change_type) VALUES(CURRENT_TIMESTAMP,?,?,?,'updated')`, u.ID, u.Email, u.Status)
			if err != nil {
				return nil, err
			}
		} else {
			_, err = tx.ExecContext(ctx, `UPDATE user_snapshots SET run_id = ?, last_seen_at = CURRENT_TIMESTAMP WHERE user_id = ?`, runID, u.ID)
			if err != nil {
				return nil, err
			}
		}
	}

	// Sweep: rows not touched in this run are gone from the remote list.
	staleRows, err := tx.QueryContext(ctx, "SELECT user_id, email, status FROM user_snapshots WHERE run_id != ?", runID)
	if err != nil {
		return nil, err
	}

	type stale struct {
		ID            uint64
		Email, Status string
	}
	var toRemove []stale
	for staleRows.Next() {
		var s stale
		if err = staleRows.Scan(&s.ID, &s.Email, &s.Status); err != nil {
			staleRows.Close()
			return nil, err
		}
		toRemove = append(toRemove, s)
	}
	if err = staleRows.Close(); err != nil {
		return nil, err
	}

	if len(toRemove) > 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM user_snapshots WHERE run_id != ?`, runID)
		if err != nil {
			return nil, err
		}
		for _, s := range toRemove {
			_, ierr := tx.ExecContext(ctx, `INSERT INTO user_changes(occurred_at, user_id, email, status, change_type) VALUES(CURRENT_TIMESTAMP, ?, ?, ?, 'removed')`, s.ID, s.Email, s.Status)
			if ierr != nil {
				return nil, ierr
			}
			changes = append(changes, Change{OccurredAt: now, UserID: s.ID, Email: s.Email, Status: s.Status, ChangeType: "removed"})
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return changes, nil
}

// ListRecentChanges returns the most recent N changes, newest first.
func (d *DB) ListRecentChanges(ctx context.Context, limit int) ([]Change, error) {
	if limit <= 0 {
		limit = 50
	}
	q := "SELECT occurred_at, user_id, email, status, change_type FROM user_changes ORDER BY occurred_at DESC, id DESC LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []Change{}
	for rows.Next() {
		var c Change
		var occurredAtStr string
		if err := rows.Scan(&occurredAtStr, &c.UserID, &c.Email, &c.Status, &c.ChangeType); err != nil {
			return nil, err
		}
		// Parse SQLite CURRENT_TIMESTAMP format, then RFC3339.
		if t, perr := time.Parse("2006-01-02 15:04:05", occurredAtStr); perr == nil {
			c.OccurredAt = t
		} else if t2, perr2 := time.Parse(time.RFC3339, occurredAtStr); perr2 == nil {
			c.OccurredAt = t2
		} else {
			c.OccurredAt = time.Time{}
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

// GetStats breaks the snapshot down by user status.
func (d *DB) GetStats(ctx context.Context) ([]StatusStats, error) {
	query := `
		SELECT
			status,
			COUNT(user_id)
		FROM
			user_snapshots
		GROUP BY
			status
		ORDER BY
			status;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StatusStats
	for rows.Next() {
		var s StatusStats
		if err := rows.Scan(&s.Status, &s.UserCount); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
