package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/soyeahso/agentdeck/internal/console"
)

var (
	colorTitle  = lipgloss.Color("#7aa2f7")
	colorOK     = lipgloss.Color("#9ece6a")
	colorWarn   = lipgloss.Color("#e0af68")
	colorError  = lipgloss.Color("#f7768e")
	colorInfo   = lipgloss.Color("#7dcfff")
	colorBorder = lipgloss.Color("#3b4261")
	colorFg     = lipgloss.Color("#c0caf5")
	colorDim    = lipgloss.Color("#565f89")
	colorAccent = lipgloss.Color("#bb9af7")
	colorSelBg  = lipgloss.Color("#283457")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)

	statBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
	statLabelStyle = lipgloss.NewStyle().Foreground(colorDim)
	statValueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFg)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
	selectedCardStyle = cardStyle.
				BorderForeground(colorAccent).
				Background(colorSelBg)

	coreBadgeStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	nameStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	dimStyle       = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	okStyle        = lipgloss.NewStyle().Foreground(colorOK)
	warnStyle      = lipgloss.NewStyle().Foreground(colorWarn)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorTitle).MarginTop(1)

	modalStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorDim)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorFg).Background(colorSelBg)

	toastStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

func toastColor(kind console.ToastKind) lipgloss.Color {
	switch kind {
	case console.ToastSuccess:
		return colorOK
	case console.ToastError:
		return colorError
	default:
		return colorInfo
	}
}
