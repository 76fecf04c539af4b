package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rental-inspector/internal/domain/entity"
)

// RenderReport выводит отчёт в терминал. Читает тот же экземпляр отчёта,
// что получает PDF-экспорт.
func RenderReport(r *entity.Report) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(entity.ReportTitle))
	b.WriteString("\n")
	meta := []string{"Generated: " + r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")}
	if r.InspectionID != "" {
		meta = append(meta, "Inspection: "+r.InspectionID)
	}
	b.WriteString(SubtitleStyle.Render(strings.Join(meta, "  ")))
	b.WriteString("\n")

	b.WriteString(HeadingStyle.Render(fmt.Sprintf("BEFORE (%d)", len(r.Before))))
	b.WriteString("\n")
	if len(r.Before) == 0 {
		b.WriteString(SubtleStyle.Render("  no damage"))
		b.WriteString("\n")
	}
	for _, d := range r.Before {
		b.WriteString(damageRow(d, r.Currency, ""))
		b.WriteString("\n")
	}

	b.WriteString(HeadingStyle.Render(fmt.Sprintf("AFTER (%d)", len(r.After))))
	b.WriteString("\n")
	if len(r.After) == 0 {
		b.WriteString(SubtleStyle.Render("  no damage"))
		b.WriteString("\n")
	}
	for _, l := range r.After {
		b.WriteString(damageRow(l.PricedDamage, r.Currency, statusStyle(l.Status).Render(strings.ToUpper(l.Status.String()))))
		b.WriteString("\n")
	}

	totals := []string{
		BoldStyle.Render(fmt.Sprintf("Total chargeable to renter: %d %s", r.PayableTotal, r.Currency)),
		fmt.Sprintf("Pre-existing damage value: %d %s (before image total: %d %s)",
			r.PreExistingTotal, r.Currency, r.BeforeTotal, r.Currency),
		fmt.Sprintf("Damages after rental: %d pre-existing, %d chargeable", r.PreExistingCount, r.ChargeableCount),
		fmt.Sprintf("Scenario: %s. %s", r.Scenario, r.Message),
	}
	b.WriteString(BoxStyle.Render(strings.Join(totals, "\n")))
	b.WriteString("\n")

	return b.String()
}

func damageRow(d entity.PricedDamage, currency, status string) string {
	label := d.Category
	if d.Area != "" {
		label += " @ " + d.Area
	}
	cells := []string{
		"  " + TableCellStyle.Render(label),
		TableCellStyle.Inherit(severityStyle(d.Severity)).Render(d.SeverityText()),
		TableCellStyle.Render(fmt.Sprintf("%d %s", d.Price, currency)),
	}
	if status != "" {
		cells = append(cells, status)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// RenderPricing выводит таблицу стоимости ремонта.
func RenderPricing(t *entity.PricingTable) string {
	rows := [][]string{{"Damage type", "Minor", "Moderate", "Severe"}}
	for _, c := range t.Categories() {
		rows = append(rows, tierRow(c.Name, c.Prices))
	}
	rows = append(rows, tierRow("Other (by severity)", t.Fallback()))

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Repair Cost Table (%s)", t.Currency())))
	b.WriteString("\n")
	for i, row := range rows {
		style := TableCellStyle
		if i == 0 {
			style = TableHeaderStyle
		}
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = style.Width(widths[j] + 2).Render(cell)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

func tierRow(name string, p entity.TierPrices) []string {
	return []string{
		name,
		fmt.Sprint(p.For(entity.SeverityMinor)),
		fmt.Sprint(p.For(entity.SeverityModerate)),
		fmt.Sprint(p.For(entity.SeveritySevere)),
	}
}
