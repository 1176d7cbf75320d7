package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"pingwatch/internal/models"
)

// ErrNoHistory is returned when there is nothing to export.
var ErrNoHistory = errors.New("no history to save")

const maxErrorText = 60

// FormatTimestamp renders ts as "2024-01-15 | 14:30:45" in local time.
func FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "N/A"
	}
	return ts.Local().Format("2006-01-02 | 15:04:05")
}

// FormatLine renders a result the way a terminal ping would print it, e.g.
//
//	[2024-01-15 | 14:30:45] >> Reply from 8.8.8.8: bytes=32 time=23ms TTL=111
func FormatLine(r models.ProbeResult) string {
	prefix := fmt.Sprintf("[%s] >> ", FormatTimestamp(r.Timestamp))

	switch r.Status {
	case models.StatusOK:
		var parts []string
		if n, ok := r.PayloadValue(); ok {
			parts = append(parts, fmt.Sprintf("bytes=%d", n))
		}
		parts = append(parts, formatRTT(r))
		if ttl, ok := r.TTLValue(); ok {
			parts = append(parts, fmt.Sprintf("TTL=%d", ttl))
		}
		return prefix + fmt.Sprintf("Reply from %s: %s", r.Target, strings.Join(parts, " "))
	case models.StatusTimeout:
		return prefix + "!!! Request timed out."
	}

	switch r.Reason {
	case models.ReasonHostNotFound:
		return prefix + fmt.Sprintf("!!! Could not find host %s. Please check the name and try again.", r.Target)
	case models.ReasonUnreachable:
		return prefix + "!!! Destination host unreachable."
	}

	msg := strings.Join(strings.Fields(r.RawOutput), " ")
	if msg == "" {
		msg = "unknown error"
	}
	if len(msg) > maxErrorText {
		msg = strings.TrimSpace(strings.ToValidUTF8(msg[:maxErrorText], ""))
	}
	return prefix + fmt.Sprintf("!!! ERROR for %s: %s", r.Target, msg)
}

func formatRTT(r models.ProbeResult) string {
	rtt, ok := r.RTTValue()
	switch {
	case !ok:
		return "time=?"
	case rtt < 1:
		return "time<1ms"
	default:
		return fmt.Sprintf("time=%dms", int(math.Round(rtt)))
	}
}

// DetailsFilename suggests a file name for a details export.
func DetailsFilename(target string, now time.Time) string {
	if target == "" {
		target = "unknown"
	}
	return fmt.Sprintf("ping_details_%s_%s.txt", sanitizeFilename(target), now.Format("20060102_150405"))
}

// WriteDetails exports one target's recent history: a header, the current
// status, optional stats and one formatted line per result, oldest first.
func WriteDetails(w io.Writer, target string, entries []models.ProbeResult, stats *models.Metrics, now time.Time) error {
	if len(entries) == 0 {
		return ErrNoHistory
	}

	rule := strings.Repeat("=", 70)
	last := entries[len(entries)-1]

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Ping details - %s\n", target)
	fmt.Fprintf(&b, "Date/Time: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%s\n\n", rule)

	fmt.Fprintln(&b, "Current status:")
	fmt.Fprintf(&b, "  Status: %s\n", last.Status)
	if rtt, ok := last.RTTValue(); ok {
		fmt.Fprintf(&b, "  RTT: %.1f ms\n", rtt)
	} else {
		fmt.Fprintln(&b, "  RTT: --")
	}
	fmt.Fprintf(&b, "  Last probe: %s\n", FormatTimestamp(last.Timestamp))

	if stats != nil {
		fmt.Fprintf(&b, "  Sent: %d  Lost: %d (%.1f%%)\n", stats.Sent, stats.Lost, stats.LossPct)
		fmt.Fprintf(&b, "  Best: %v  Mean: %v  Worst: %v  StdDev: %v\n",
			stats.Best.Round(time.Microsecond), stats.Mean.Round(time.Microsecond),
			stats.Worst.Round(time.Microsecond), stats.StdDev.Round(time.Microsecond))
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintln(&b, "History:")
	fmt.Fprintf(&b, "%s\n\n", rule)

	for _, r := range entries {
		fmt.Fprintln(&b, FormatLine(r))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
