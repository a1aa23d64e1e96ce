package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriKB/internal/models"
)

func InputStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Width(max(width-4, 0))
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(width)
}

func BannerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true).
		Padding(0, 2)
}

func UserStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("39")).
		Padding(0, 1).
		MarginLeft(2)
}

// AssistantStyle frames bot messages. The body is already styled by the
// Markdown renderer, so only the border is coloured.
func AssistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("214")).
		Padding(0, 1).
		MarginLeft(2)
}

func AssistantLabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true).
		MarginLeft(2)
}

func SpinnerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
}

var severityColors = map[models.Severity]lipgloss.Color{
	models.Info:    lipgloss.Color("39"),
	models.Success: lipgloss.Color("42"),
	models.Error:   lipgloss.Color("196"),
}

func NotificationStyle(severity models.Severity, width int) lipgloss.Style {
	color, ok := severityColors[severity]
	if !ok {
		color = severityColors[models.Info]
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(color).
		Bold(true).
		Padding(0, 1).
		Width(width)
}

func ConfirmStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1).
		Width(max(width-4, 0))
}

func HintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
}
