package render

import "github.com/charmbracelet/lipgloss"

// Adaptive colors that work on both light and dark terminal backgrounds.
// lipgloss drops the colors when stdout is not a terminal.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "57", Dark: "99"})
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "247", Dark: "241"})
	KindStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "63"})
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"})
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "136", Dark: "214"})
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"})
	Check        = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "128", Dark: "170"}).SetString("[x]")
	Uncheck      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "247", Dark: "241"}).SetString("[ ]")
)

// Marker returns the checkbox for a selection flag.
func Marker(selected bool) string {
	if selected {
		return Check.String()
	}
	return Uncheck.String()
}
