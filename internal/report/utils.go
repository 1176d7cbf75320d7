package report

import (
	"sort"
	"strings"

	"pingwatch/internal/models"
)

// sanitizeFilename replaces dots and special characters for safe filenames
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		".", "_",
		":", "_",
		"/", "_",
		"\\", "_",
		" ", "_",
		"%", "_",
	)
	return replacer.Replace(s)
}

// targetSeries holds one target's results in chronological order.
type targetSeries struct {
	target  string
	results []models.ProbeResult
}

// groupByTarget splits results per target, sorts each by time and the
// targets by name so output is stable.
func groupByTarget(results []models.ProbeResult) []targetSeries {
	byTarget := make(map[string][]models.ProbeResult)
	for _, r := range results {
		byTarget[r.Target] = append(byTarget[r.Target], r)
	}

	out := make([]targetSeries, 0, len(byTarget))
	for target, rs := range byTarget {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Timestamp.Before(rs[j].Timestamp) })
		out = append(out, targetSeries{target: target, results: rs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].target < out[j].target })
	return out
}
