package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Felt colours
const (
	feltGreen = lipgloss.Color("#1E6B3A")
	chalk     = lipgloss.Color("#F2F2F2")
	gold      = lipgloss.Color("#E8C547")
	cardRed   = lipgloss.Color("#E05252")
	muted     = lipgloss.Color("#6C6C6C")
	mint      = lipgloss.Color("#7FD1A8")
)

var (
	HeaderStyle     = lipgloss.NewStyle().Foreground(chalk).Background(feltGreen).Bold(true)
	HandInfoStyle   = lipgloss.NewStyle().Foreground(mint)
	ActiveHandStyle = lipgloss.NewStyle().Foreground(gold).Bold(true)
	ActionsStyle    = lipgloss.NewStyle().Foreground(gold)

	RedCardStyle    = lipgloss.NewStyle().Foreground(cardRed).Bold(true)
	BlackCardStyle  = lipgloss.NewStyle().Foreground(chalk).Bold(true)
	HiddenCardStyle = lipgloss.NewStyle().Foreground(muted)

	SuccessStyle = lipgloss.NewStyle().Foreground(mint).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(cardRed).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(gold).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(muted)
)

// cardStyle picks the style for a card label such as "10♥" or "??"
func cardStyle(label string, hidden bool) lipgloss.Style {
	switch {
	case hidden:
		return HiddenCardStyle
	case strings.HasSuffix(label, "♥"), strings.HasSuffix(label, "♦"):
		return RedCardStyle
	}
	return BlackCardStyle
}
