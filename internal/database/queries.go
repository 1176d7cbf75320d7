package database

import (
	"database/sql"
	"fmt"

	"pingwatch/internal/models"
)

// OutageThreshold is the number of consecutive failed probes that counts as
// an outage.
const OutageThreshold = 3

// SaveResult saves a probe result to the database
func (db *DB) SaveResult(result models.ProbeResult) error {
	query := `
        INSERT INTO probe_results (timestamp, target, status, reason, rtt_ms, ttl, payload_bytes, raw_output)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := db.Exec(query,
		formatTime(result.Timestamp),
		result.Target,
		string(result.Status),
		nullString(string(result.Reason)),
		nullFloat(result.RTT),
		nullInt(result.TTL),
		nullInt(result.PayloadBytes),
		result.RawOutput,
	)
	if err != nil {
		return fmt.Errorf("save result for %s: %w", result.Target, err)
	}
	return nil
}

const resultColumns = `timestamp, target, status, reason, rtt_ms, ttl, payload_bytes, raw_output`

// GetRecent retrieves probe results from the last hours, newest first.
func (db *DB) GetRecent(hours int) ([]models.ProbeResult, error) {
	query := `
        SELECT ` + resultColumns + `
        FROM probe_results
        WHERE timestamp > datetime('now', '-' || ? || ' hours')
        ORDER BY timestamp DESC
        LIMIT 10000
    `

	rows, err := db.Query(query, hours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResults(rows)
}

// GetTargetRecent retrieves the last limit results of target, newest first.
func (db *DB) GetTargetRecent(target string, limit int) ([]models.ProbeResult, error) {
	query := `
        SELECT ` + resultColumns + `
        FROM probe_results
        WHERE target = ?
        ORDER BY timestamp DESC
        LIMIT ?
    `

	rows, err := db.Query(query, target, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]models.ProbeResult, error) {
	var results []models.ProbeResult
	for rows.Next() {
		var (
			r       models.ProbeResult
			ts      string
			status  string
			reason  sql.NullString
			rtt     sql.NullFloat64
			ttl     sql.NullInt64
			payload sql.NullInt64
			raw     sql.NullString
		)
		if err := rows.Scan(&ts, &r.Target, &status, &reason, &rtt, &ttl, &payload, &raw); err != nil {
			continue
		}
		parsed, err := parseTime(ts)
		if err != nil {
			continue
		}

		r.Timestamp = parsed
		r.Status = models.Status(status)
		r.Reason = models.Reason(reason.String)
		r.RawOutput = raw.String
		if rtt.Valid {
			r.RTT = models.Float(rtt.Float64)
		}
		if ttl.Valid {
			r.TTL = models.Int(int(ttl.Int64))
		}
		if payload.Valid {
			r.PayloadBytes = models.Int(int(payload.Int64))
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// GetStats retrieves aggregated statistics per target
func (db *DB) GetStats(hours int) ([]models.Stats, error) {
	query := `
        SELECT
            target,
            COUNT(*) as total_probes,
            SUM(CASE WHEN status = 'OK' THEN 1 ELSE 0 END) as successful,
            SUM(CASE WHEN status = 'TIMEOUT' THEN 1 ELSE 0 END) as timeouts,
            SUM(CASE WHEN status = 'ERROR' THEN 1 ELSE 0 END) as errors,
            AVG(CASE WHEN status = 'OK' THEN rtt_ms ELSE NULL END) as avg_rtt,
            MAX(CASE WHEN status = 'OK' THEN rtt_ms ELSE NULL END) as max_rtt,
            MIN(CASE WHEN status = 'OK' THEN rtt_ms ELSE NULL END) as min_rtt,
            ROUND((1.0 - (CAST(SUM(CASE WHEN status = 'OK' THEN 1 ELSE 0 END) AS REAL) / COUNT(*))) * 100, 2) as packet_loss
        FROM probe_results
        WHERE timestamp > datetime('now', '-' || ? || ' hours')
        GROUP BY target
        ORDER BY target
    `

	rows, err := db.Query(query, hours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.Stats
	for rows.Next() {
		var s models.Stats
		var avgRTT, maxRTT, minRTT sql.NullFloat64
		err := rows.Scan(&s.Target, &s.TotalProbes, &s.Successful, &s.Timeouts, &s.Errors,
			&avgRTT, &maxRTT, &minRTT, &s.PacketLoss)
		if err != nil {
			continue
		}
		s.AvgRTT = avgRTT.Float64
		s.MaxRTT = maxRTT.Float64
		s.MinRTT = minRTT.Float64
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOutages finds runs of at least OutageThreshold consecutive failed
// probes per target in the last days.
func (db *DB) GetOutages(days int) ([]models.Outage, error) {
	query := `
        WITH ordered AS (
            SELECT
                target,
                timestamp,
                status,
                ROW_NUMBER() OVER (PARTITION BY target ORDER BY timestamp, id) -
                ROW_NUMBER() OVER (PARTITION BY target, status = 'OK' ORDER BY timestamp, id) as grp
            FROM probe_results
            WHERE timestamp > datetime('now', '-' || ? || ' days')
        )
        SELECT
            target,
            MIN(timestamp) as start_time,
            MAX(timestamp) as end_time,
            COUNT(*) as failed_checks
        FROM ordered
        WHERE status != 'OK'
        GROUP BY target, grp
        HAVING COUNT(*) >= ?
        ORDER BY start_time DESC
        LIMIT 100
    `

	rows, err := db.Query(query, days, OutageThreshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outages []models.Outage
	for rows.Next() {
		var o models.Outage
		var start, end string
		if err := rows.Scan(&o.Target, &start, &end, &o.FailedChecks); err != nil {
			continue
		}
		var perr error
		if o.StartTime, perr = parseTime(start); perr != nil {
			continue
		}
		if o.EndTime, perr = parseTime(end); perr != nil {
			continue
		}
		o.Duration = o.EndTime.Sub(o.StartTime).String()
		outages = append(outages, o)
	}

	return outages, rows.Err()
}

// GetHourOfDay aggregates failures and latency by hour of day over the last
// days.
func (db *DB) GetHourOfDay(days int) ([]models.HourOfDay, error) {
	query := `
        SELECT
            hour,
            target,
            AVG(failure_rate) as avg_failure_rate,
            AVG(avg_rtt_ms) as avg_latency,
            MAX(max_rtt_ms) as max_latency,
            SUM(failed_probes) as total_failures,
            SUM(total_probes) as total_probes,
            COUNT(DISTINCT date) as days_with_data
        FROM hourly_patterns
        WHERE date > date('now', '-' || ? || ' days')
        GROUP BY hour, target
        ORDER BY hour, target
    `

	rows, err := db.Query(query, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.HourOfDay
	for rows.Next() {
		var h models.HourOfDay
		var avgRTT, maxRTT sql.NullFloat64
		err := rows.Scan(&h.Hour, &h.Target, &h.FailureRate, &avgRTT,
			&maxRTT, &h.TotalFailures, &h.TotalProbes, &h.DaysWithData)
		if err != nil {
			continue
		}
		h.AvgRTT = avgRTT.Float64
		h.MaxRTT = maxRTT.Float64
		points = append(points, h)
	}

	return points, rows.Err()
}

// GetDaysAtHour returns the last 30 days of numbers for one hour of day.
func (db *DB) GetDaysAtHour(hour int) ([]models.DayAtHour, error) {
	query := `
        SELECT
            date,
            target,
            total_probes,
            failed_probes,
            avg_rtt_ms,
            max_rtt_ms,
            failure_rate
        FROM hourly_patterns
        WHERE hour = ?
        AND date > date('now', '-30 days')
        ORDER BY date DESC, target
    `

	rows, err := db.Query(query, hour)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.DayAtHour
	for rows.Next() {
		var d models.DayAtHour
		var avgRTT, maxRTT sql.NullFloat64
		err := rows.Scan(&d.Date, &d.Target, &d.TotalProbes, &d.FailedProbes,
			&avgRTT, &maxRTT, &d.FailureRate)
		if err != nil {
			continue
		}
		d.AvgRTT = avgRTT.Float64
		d.MaxRTT = maxRTT.Float64
		days = append(days, d)
	}

	return days, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
