package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"rental-inspector/internal/domain/entity"
	"rental-inspector/internal/infrastructure/vision"
)

var (
	// PrimaryColor основной цвет темы.
	PrimaryColor = lipgloss.Color("#4A90D9")
	// SuccessColor для прежних повреждений и чистого результата.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// ErrorColor для повреждений к оплате.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor для второстепенных элементов.
	SubtleColor = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	HeadingStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle рамка блока итогов.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1).
			MarginTop(1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				PaddingRight(2)

	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// severityStyle берёт ту же палитру, что и рамки на снимках.
func severityStyle(s entity.Severity) lipgloss.Style {
	c := vision.SeverityColor(s)
	return lipgloss.NewStyle().
		Bold(s == entity.SeveritySevere).
		Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)))
}

func statusStyle(s entity.Status) lipgloss.Style {
	switch s {
	case entity.StatusChargeable:
		return ErrorStyle
	case entity.StatusPreExisting:
		return SuccessStyle
	}
	return SubtleStyle
}
