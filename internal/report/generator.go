// Package report renders stored probe results as PNG charts and text.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pingwatch/internal/models"
)

// Source is the part of the result store reports read from.
type Source interface {
	GetRecent(hours int) ([]models.ProbeResult, error)
	GetStats(hours int) ([]models.Stats, error)
	GetOutages(days int) ([]models.Outage, error)
}

// Generator creates static images and a text summary
type Generator struct {
	src Source
	log *slog.Logger
	now func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator(src Source, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{src: src, log: logger, now: time.Now}
}

// GenerateReport writes charts and summary.txt for the last hours into a
// new timestamped directory under outputDir and returns that directory.
// A chart that cannot be drawn is logged and skipped.
func (g *Generator) GenerateReport(outputDir string, hours int) (string, error) {
	if hours <= 0 {
		return "", fmt.Errorf("report period must be positive, got %d hours", hours)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := g.now().Format("2006-01-02_15-04-05")
	reportDir := filepath.Join(outputDir, fmt.Sprintf("pingwatch_report_%s", timestamp))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	results, err := g.src.GetRecent(hours)
	if err != nil {
		return "", fmt.Errorf("failed to load results: %w", err)
	}
	series := groupByTarget(results)

	if err := g.generateLatencyCharts(reportDir, series); err != nil {
		g.log.Error("failed to generate latency chart", "error", err)
	}

	if err := g.generateAvailabilityChart(reportDir, series); err != nil {
		g.log.Error("failed to generate availability chart", "error", err)
	}

	if err := g.generateFailureChart(reportDir, results); err != nil {
		g.log.Error("failed to generate failure chart", "error", err)
	}

	if err := g.generateTextReport(reportDir, hours); err != nil {
		return reportDir, fmt.Errorf("failed to write summary: %w", err)
	}

	g.log.Info("report generated", "dir", reportDir, "results", len(results))
	return reportDir, nil
}
