package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"pingwatch/internal/models"
	"pingwatch/internal/report"
)

// PanelData is everything a monitor panel shows.
type PanelData struct {
	Label   string
	Target  string
	State   models.State
	Entries []models.ProbeResult // oldest first
	Stats   *models.Metrics
}

// Title renders the panel border title.
func (d PanelData) Title(slot int) string {
	name := d.Target
	if d.Label != "" && d.Label != d.Target {
		name = fmt.Sprintf("%s (%s)", d.Label, d.Target)
	}
	return fmt.Sprintf(" %d: %s ", slot+1, name)
}

// RenderPanel builds the colour-tagged body of a monitor panel.
func RenderPanel(theme Theme, d PanelData) string {
	var b strings.Builder

	b.WriteString(statusLine(theme, d))
	b.WriteByte('\n')
	b.WriteString(statsLine(theme, d.Stats))
	b.WriteString("\n\n")

	if len(d.Entries) == 0 {
		b.WriteString(tag(theme.Muted) + "waiting for the first reply...[-]")
		return b.String()
	}
	for _, r := range d.Entries {
		b.WriteString(tag(theme.StatusColor(r.Status)))
		b.WriteString(tview.Escape(report.FormatLine(r)))
		b.WriteString("[-]\n")
	}
	return b.String()
}

func statusLine(theme Theme, d PanelData) string {
	if d.State == models.StatePaused {
		return tag(theme.Paused) + "PAUSED[-]"
	}
	if len(d.Entries) == 0 {
		return tag(theme.Muted) + "Status: --[-]"
	}

	last := d.Entries[len(d.Entries)-1]
	parts := []string{tag(theme.StatusColor(last.Status)) + "Status: " + string(last.Status) + "[-]"}
	if rtt, ok := last.RTTValue(); ok {
		parts = append(parts, fmt.Sprintf("RTT: %.1f ms", rtt))
	} else {
		parts = append(parts, "RTT: --")
	}
	if ttl, ok := last.TTLValue(); ok {
		parts = append(parts, fmt.Sprintf("TTL: %d", ttl))
	}
	if n, ok := last.PayloadValue(); ok {
		parts = append(parts, fmt.Sprintf("Bytes: %d", n))
	}
	return strings.Join(parts, "  ")
}

func statsLine(theme Theme, m *models.Metrics) string {
	if m == nil || m.Sent == 0 {
		return tag(theme.Muted) + "no statistics yet[-]"
	}
	return fmt.Sprintf("Sent: %d  Lost: %d (%.1f%%)  Best: %s  Mean: %s  Worst: %s",
		m.Sent, m.Lost, m.LossPct, ms(m.Best), ms(m.Mean), ms(m.Worst))
}

const tsDividend = float64(time.Millisecond) / float64(time.Nanosecond)

func ms(d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	if 10*time.Microsecond < d && d < time.Second {
		return fmt.Sprintf("%0.2fms", float64(d.Nanoseconds())/tsDividend)
	}
	return d.Round(time.Millisecond).String()
}

// gridShape lays out capacity panels in two columns.
func gridShape(capacity int) (rows, cols int) {
	if capacity <= 1 {
		return 1, 1
	}
	return (capacity + 1) / 2, 2
}
