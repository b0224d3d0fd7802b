package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/queue"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6C757D")).
			Padding(0, 1)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFE66D")).
			Padding(1, 2)

	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Padding(1, 2)

	cursorStyle = lipgloss.NewStyle().
			Reverse(true)

	thumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#6C757D")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#1B1B1B")).
		Background(lipgloss.Color("#4ECDC4")).
		Bold(false)
	return s
}

func stateStyle(s model.State) lipgloss.Style {
	switch s {
	case model.StateCompleted:
		return successStyle
	case model.StateFailed:
		return errorStyle
	case model.StateDownloading:
		return warningStyle
	case model.StateFetchingFormats, model.StateAwaitingFormatChoice:
		return infoStyle
	default:
		return lipgloss.NewStyle()
	}
}

func levelStyle(level queue.ProgressLevel) (lipgloss.Style, string) {
	switch level {
	case queue.LevelError:
		return errorStyle, "✗"
	case queue.LevelWarning:
		return warningStyle, "!"
	case queue.LevelSuccess:
		return successStyle, "✓"
	case queue.LevelInfo:
		return infoStyle, "›"
	default:
		return dimStyle, "•"
	}
}
