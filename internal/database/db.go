// Package database persists probe results in sqlite.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	pwerrors "pingwatch/internal/errors"
)

// timeLayout sorts lexically and compares correctly with sqlite's
// datetime('now', ...), which is also UTC.
const timeLayout = "2006-01-02 15:04:05.000"

// DB wraps sql.DB with additional methods
type DB struct {
	*sql.DB
}

// New opens the database at path and creates the schema.
func New(path string) (*DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, pwerrors.WrapWithCode(err, pwerrors.ErrStore, "database open failed", "check the database path")
	}

	db := &DB{sqlDB}
	if err := db.InitSchema(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS probe_results (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp TEXT NOT NULL,
        target TEXT NOT NULL,
        status TEXT NOT NULL,
        reason TEXT,
        rtt_ms REAL,
        ttl INTEGER,
        payload_bytes INTEGER,
        raw_output TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_probe_timestamp ON probe_results(timestamp);
    CREATE INDEX IF NOT EXISTS idx_probe_target_timestamp ON probe_results(target, timestamp);

    CREATE TABLE IF NOT EXISTS hourly_stats (
        hour TEXT NOT NULL,
        target TEXT NOT NULL,
        total_probes INTEGER,
        successful_probes INTEGER,
        avg_rtt_ms REAL,
        max_rtt_ms REAL,
        min_rtt_ms REAL,
        packet_loss_percent REAL,
        PRIMARY KEY (hour, target)
    );

    -- failures and latency by hour of day
    CREATE TABLE IF NOT EXISTS hourly_patterns (
        date TEXT NOT NULL,
        hour INTEGER NOT NULL, -- 0-23
        target TEXT NOT NULL,
        total_probes INTEGER,
        failed_probes INTEGER,
        avg_rtt_ms REAL,
        max_rtt_ms REAL,
        failure_rate REAL,
        PRIMARY KEY (date, hour, target)
    );

    CREATE INDEX IF NOT EXISTS idx_hourly_patterns ON hourly_patterns(hour, target);
    `

	if _, err := db.Exec(schema); err != nil {
		return pwerrors.WrapWithCode(err, pwerrors.ErrStore, "schema creation failed", "")
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}
