package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func (g *Generator) generateTextReport(outputDir string, hours int) error {
	file, err := os.Create(filepath.Join(outputDir, "summary.txt"))
	if err != nil {
		return err
	}

	if err := g.writeSummary(file, hours); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (g *Generator) writeSummary(w io.Writer, hours int) error {
	stats, err := g.src.GetStats(hours)
	if err != nil {
		return err
	}

	days := (hours + 23) / 24
	outages, err := g.src.GetOutages(days)
	if err != nil {
		return err
	}

	rule := strings.Repeat("=", 60)

	fmt.Fprintf(w, "Connectivity Report\n")
	fmt.Fprintf(w, "Generated: %s\n", g.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Period: Last %d hours\n\n", hours)
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nOVERALL STATISTICS")

	if len(stats) == 0 {
		fmt.Fprintln(w, "No probe results in this period.")
	}
	for _, s := range stats {
		uptime := 0.0
		if s.TotalProbes > 0 {
			uptime = float64(s.Successful) / float64(s.TotalProbes) * 100
		}

		fmt.Fprintf(w, "Target: %s\n", s.Target)
		fmt.Fprintf(w, "  Total Probes: %d\n", s.TotalProbes)
		fmt.Fprintf(w, "  Successful: %d (%.2f%%)\n", s.Successful, uptime)
		fmt.Fprintf(w, "  Timeouts: %d\n", s.Timeouts)
		fmt.Fprintf(w, "  Errors: %d\n", s.Errors)
		fmt.Fprintf(w, "  Packet Loss: %.2f%%\n", s.PacketLoss)

		if s.Successful > 0 {
			fmt.Fprintf(w, "  Average RTT: %.2f ms\n", s.AvgRTT)
			fmt.Fprintf(w, "  Min RTT: %.2f ms\n", s.MinRTT)
			fmt.Fprintf(w, "  Max RTT: %.2f ms\n", s.MaxRTT)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nOUTAGE PERIODS (3+ consecutive failures)")

	cutoff := g.now().Add(-time.Duration(hours) * time.Hour)
	outageCount := 0
	for _, o := range outages {
		if o.EndTime.Before(cutoff) {
			continue
		}

		outageCount++
		fmt.Fprintf(w, "Outage #%d\n", outageCount)
		fmt.Fprintf(w, "  Target: %s\n", o.Target)
		fmt.Fprintf(w, "  Start: %s\n", o.StartTime.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  End: %s\n", o.EndTime.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  Duration: %s\n", o.Duration)
		fmt.Fprintf(w, "  Failed Checks: %d\n", o.FailedChecks)
		fmt.Fprintln(w)
	}

	if outageCount == 0 {
		fmt.Fprintln(w, "No significant outages detected.")
	} else {
		fmt.Fprintf(w, "\nTotal Outages: %d\n", outageCount)
	}

	_, err = fmt.Fprintln(w, rule)
	return err
}
