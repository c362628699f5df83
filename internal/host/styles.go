package host

import "charm.land/lipgloss/v2"

// Tokyo Night-inspired palette for the status bar.
var (
	colorBar     = lipgloss.Color("#1f2335")
	colorText    = lipgloss.Color("#a9b1d6")
	colorMuted   = lipgloss.Color("#565f89")
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
)

var (
	barStyle    = lipgloss.NewStyle().Background(colorBar).Foreground(colorText)
	titleStyle  = lipgloss.NewStyle().Background(colorBar).Foreground(colorPrimary).Bold(true).Padding(0, 1)
	hintStyle   = lipgloss.NewStyle().Background(colorBar).Foreground(colorMuted).Padding(0, 1)
	noticeStyle = lipgloss.NewStyle().Background(colorBar).Foreground(colorWarning).Padding(0, 1)
)

func stateStyle(running bool, code int) lipgloss.Style {
	fg := colorSuccess
	switch {
	case !running && code != 0:
		fg = colorError
	case !running:
		fg = colorMuted
	}
	return lipgloss.NewStyle().Background(colorBar).Foreground(fg).Padding(0, 1)
}
