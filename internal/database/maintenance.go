package database

import (
	"time"
)

// AggregateHourlyPatterns folds the last two days of results into
// hourly_patterns.
func (db *DB) AggregateHourlyPatterns() error {
	query := `
        INSERT OR REPLACE INTO hourly_patterns (date, hour, target, total_probes, failed_probes, avg_rtt_ms, max_rtt_ms, failure_rate)
        SELECT
            strftime('%Y-%m-%d', timestamp) as date,
            CAST(strftime('%H', timestamp) AS INTEGER) as hour,
            target,
            COUNT(*) as total_probes,
            SUM(CASE WHEN status != 'OK' THEN 1 ELSE 0 END) as failed_probes,
            AVG(CASE WHEN status = 'OK' THEN rtt_ms ELSE NULL END) as avg_rtt_ms,
            MAX(CASE WHEN status = 'OK' THEN rtt_ms ELSE NULL END) as max_rtt_ms,
            ROUND((SUM(CASE WHEN status != 'OK' THEN 1 ELSE 0 END) * 100.0 / COUNT(*)), 2) as failure_rate
        FROM probe_results
        WHERE timestamp > datetime('now', '-2 days')
        AND strftime('%Y-%m-%d', timestamp) IS NOT NULL
        GROUP BY date, hour, target
    `
	_, err := db.Exec(query)
	return err
}

// ArchiveOldData rolls raw results older than 7 days into hourly_stats and
// deletes them.
func (db *DB) ArchiveOldData() error {
	archiveQuery := `
        INSERT OR IGNORE INTO hourly_stats (hour, target, total_probes, successful_probes, avg_rtt_ms, max_rtt_ms, min_rtt_ms, packet_loss_percent)
        SELECT
            strftime('%Y-%m-%d %H:00:00', timestamp) as hour,
            target,
            COUNT(*) as total_probes,
            SUM(CASE WHEN status = 'OK' THEN 1 ELSE 0 END) as successful_probes,
            AVG(CASE WHEN status = 'OK' THEN rtt_ms ELSE NULL END) as avg_rtt_ms,
            MAX(CASE WHEN status = 'OK' THEN rtt_ms ELSE NULL END) as max_rtt_ms,
            MIN(CASE WHEN status = 'OK' THEN rtt_ms ELSE NULL END) as min_rtt_ms,
            ROUND((1.0 - (CAST(SUM(CASE WHEN status = 'OK' THEN 1 ELSE 0 END) AS REAL) / COUNT(*))) * 100, 2) as packet_loss_percent
        FROM probe_results
        WHERE timestamp < datetime('now', '-7 days')
        AND timestamp > datetime('now', '-90 days')
        GROUP BY hour, target
    `

	if _, err := db.Exec(archiveQuery); err != nil {
		return err
	}

	if _, err := db.Exec(`DELETE FROM probe_results WHERE timestamp < datetime('now', '-7 days')`); err != nil {
		return err
	}

	if _, err := db.Exec(`DELETE FROM hourly_patterns WHERE date < date('now', '-90 days')`); err != nil {
		return err
	}

	if time.Now().Day() == 1 {
		_, err := db.Exec("VACUUM")
		return err
	}

	return nil
}
