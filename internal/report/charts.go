package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"pingwatch/internal/models"
)

// smaPeriod is the window of the moving average drawn over latency.
const smaPeriod = 10

var (
	chartPadding = chart.Style{
		Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
	}
	axisStyle = chart.Style{
		StrokeColor: drawing.ColorBlack,
		FontSize:    10,
	}
	gridStyle = chart.Style{
		StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
		StrokeWidth: 1.0,
	}
)

// latencyChart draws the RTT of every successful probe of one target. It
// returns false when there are fewer than two points to draw.
func latencyChart(s targetSeries) (chart.Chart, bool) {
	var timestamps []time.Time
	var values []float64
	for _, r := range s.results {
		if rtt, ok := r.RTTValue(); ok && r.Succeeded() {
			timestamps = append(timestamps, r.Timestamp)
			values = append(values, rtt)
		}
	}
	if len(values) < 2 {
		return chart.Chart{}, false
	}

	ts := chart.TimeSeries{
		Name: s.target,
		Style: chart.Style{
			StrokeColor: chart.GetDefaultColor(0),
			StrokeWidth: 2,
		},
		XValues: timestamps,
		YValues: values,
	}

	graph := chart.Chart{
		Title:      fmt.Sprintf("Round-trip time - %s", s.target),
		TitleStyle: chart.Style{FontSize: 16},
		Background: chartPadding,
		Width:      1200,
		Height:     400,
		XAxis: chart.XAxis{
			Name:           "Time",
			NameStyle:      chart.Style{FontSize: 12},
			Style:          axisStyle,
			ValueFormatter: chart.TimeMinuteValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "RTT (ms)",
			NameStyle:      chart.Style{FontSize: 12},
			Style:          axisStyle,
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{ts},
	}

	if len(values) > smaPeriod {
		graph.Series = append(graph.Series, chart.SMASeries{
			Name: "Moving Avg",
			Style: chart.Style{
				StrokeColor:     chart.GetDefaultColor(1),
				StrokeWidth:     2,
				StrokeDashArray: []float64{5, 5},
			},
			InnerSeries: ts,
			Period:      smaPeriod,
		})
	}

	return graph, true
}

func (g *Generator) generateLatencyCharts(outputDir string, series []targetSeries) error {
	for _, s := range series {
		graph, ok := latencyChart(s)
		if !ok {
			g.log.Debug("not enough samples for latency chart", "target", s.target)
			continue
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("latency_%s.png", sanitizeFilename(s.target)))
		if err := renderPNG(filename, graph); err != nil {
			return err
		}
	}
	return nil
}

// hourlyAvailability returns, per hour bucket, the share of successful
// probes in percent.
func hourlyAvailability(results []models.ProbeResult) ([]time.Time, []float64) {
	type bucket struct{ total, ok int }
	buckets := make(map[time.Time]*bucket)
	for _, r := range results {
		hour := r.Timestamp.Truncate(time.Hour)
		b := buckets[hour]
		if b == nil {
			b = &bucket{}
			buckets[hour] = b
		}
		b.total++
		if r.Succeeded() {
			b.ok++
		}
	}

	hours := make([]time.Time, 0, len(buckets))
	for h := range buckets {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	values := make([]float64, len(hours))
	for i, h := range hours {
		b := buckets[h]
		values[i] = float64(b.ok) / float64(b.total) * 100
	}
	return hours, values
}

func (g *Generator) generateAvailabilityChart(outputDir string, series []targetSeries) error {
	var allSeries []chart.Series
	for i, s := range series {
		hours, values := hourlyAvailability(s.results)
		if len(hours) < 2 {
			continue
		}
		allSeries = append(allSeries, chart.TimeSeries{
			Name: s.target,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
			XValues: hours,
			YValues: values,
		})
	}
	if len(allSeries) == 0 {
		return nil
	}

	graph := chart.Chart{
		Title:      "Availability (hourly)",
		TitleStyle: chart.Style{FontSize: 16},
		Background: chartPadding,
		Width:      1200,
		Height:     400,
		XAxis: chart.XAxis{
			Name:           "Time",
			Style:          axisStyle,
			ValueFormatter: chart.TimeHourValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Uptime %",
			Style:          axisStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: 100},
			GridMajorStyle: gridStyle,
		},
		Series: allSeries,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(filepath.Join(outputDir, "availability.png"), graph)
}

// failuresByHour counts TIMEOUT and ERROR results per hour, oldest first.
func failuresByHour(results []models.ProbeResult) []chart.Value {
	counts := make(map[time.Time]int)
	for _, r := range results {
		if !r.Succeeded() {
			counts[r.Timestamp.Truncate(time.Hour)]++
		}
	}

	hours := make([]time.Time, 0, len(counts))
	for h := range counts {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	values := make([]chart.Value, 0, len(hours))
	for _, h := range hours {
		values = append(values, chart.Value{
			Label: h.Local().Format("01-02 15:00"),
			Value: float64(counts[h]),
		})
	}
	return values
}

func (g *Generator) generateFailureChart(outputDir string, results []models.ProbeResult) error {
	values := failuresByHour(results)
	if len(values) == 0 {
		return nil
	}
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v.Value)
	}

	graph := chart.BarChart{
		Title:      "Failed probes by hour",
		TitleStyle: chart.Style{FontSize: 16},
		Background: chartPadding,
		Width:      1200,
		Height:     400,
		Bars:       values,
		BarWidth:   40,
		// an explicit range keeps equal-height bars drawable
		YAxis: chart.YAxis{
			Style: axisStyle,
			Range: &chart.ContinuousRange{Min: 0, Max: peak},
		},
	}

	return renderPNG(filepath.Join(outputDir, "failures.png"), graph)
}

type pngRenderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderPNG(filename string, graph pngRenderer) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := graph.Render(chart.PNG, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
