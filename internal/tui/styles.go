package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	StyleHelp    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	StyleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	StyleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StyleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	StyleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	StyleSpinner = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// headerLine 左侧标题，右侧刷新时间
func headerLine(left string, width int, t time.Time) string {
	right := "Refreshed: " + formatRefreshTime(t)
	gap := width - 4 - lipgloss.Width(left) - len(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + StyleDim.Render(right)
}

func formatRefreshTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}

var brailleSpinner = spinner.Spinner{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    time.Second / 10,
}
