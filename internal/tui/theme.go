package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"pingwatch/internal/models"
)

// Theme holds the colours used by the dashboard.
type Theme struct {
	Background tcell.Color
	Text       tcell.Color
	Border     tcell.Color
	Selected   tcell.Color
	Muted      tcell.Color
	OK         tcell.Color
	Timeout    tcell.Color
	Error      tcell.Color
	Paused     tcell.Color
}

// DefaultTheme is a dark theme with green replies and red failures.
func DefaultTheme() Theme {
	return Theme{
		Background: tcell.ColorBlack,
		Text:       tcell.ColorWhite,
		Border:     tcell.ColorGray,
		Selected:   tcell.ColorDodgerBlue,
		Muted:      tcell.ColorDarkGray,
		OK:         tcell.ColorLimeGreen,
		Timeout:    tcell.ColorOrange,
		Error:      tcell.ColorRed,
		Paused:     tcell.ColorYellow,
	}
}

// StatusColor picks the colour for a result status.
func (t Theme) StatusColor(s models.Status) tcell.Color {
	switch s {
	case models.StatusOK:
		return t.OK
	case models.StatusTimeout:
		return t.Timeout
	default:
		return t.Error
	}
}

// tag returns a tview colour tag for c.
func tag(c tcell.Color) string {
	if h := c.Hex(); h >= 0 {
		return fmt.Sprintf("[#%06x]", h)
	}
	return "[-]"
}
