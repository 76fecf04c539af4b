package telegram

import (
	"fmt"
	"strings"

	"rental-inspector/internal/domain/entity"
)

const maxMessageLength = 4096

var severityMarks = [...]string{
	entity.SeverityUnknown:  "⚪",
	entity.SeverityMinor:    "🟡",
	entity.SeverityModerate: "🟠",
	entity.SeveritySevere:   "🔴",
}

var statusMarks = [...]string{
	entity.StatusUnknown:     "",
	entity.StatusPreExisting: "♻️",
	entity.StatusChargeable:  "💰",
}

func severityMark(s entity.Severity) string {
	if s < 0 || int(s) >= len(severityMarks) {
		return severityMarks[entity.SeverityUnknown]
	}
	return severityMarks[s]
}

func statusMark(s entity.Status) string {
	if s < 0 || int(s) >= len(statusMarks) {
		return ""
	}
	return statusMarks[s]
}

// FormatReport рендерит отчёт для чата. Цифры и статусы берутся из той же
// модели, что и PDF.
func FormatReport(r *entity.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📋 %s\n", entity.ReportTitle)
	if r.InspectionID != "" {
		fmt.Fprintf(&b, "Inspection: %s\n", r.InspectionID)
	}
	fmt.Fprintf(&b, "\n%s\n", r.Message)

	fmt.Fprintf(&b, "\nBEFORE: %d damage(s), %d %s\n", len(r.Before), r.BeforeTotal, r.Currency)
	for _, d := range r.Before {
		b.WriteString(damageLine(d, r.Currency))
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nAFTER: %d damage(s)\n", len(r.After))
	for _, l := range r.After {
		line := damageLine(l.PricedDamage, r.Currency)
		if mark := statusMark(l.Status); mark != "" {
			line += fmt.Sprintf(" %s %s", mark, l.Status)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nPre-existing: %d (%d %s)\n", r.PreExistingCount, r.PreExistingTotal, r.Currency)
	fmt.Fprintf(&b, "Chargeable: %d (%d %s)\n", r.ChargeableCount, r.ChargeableTotal, r.Currency)
	fmt.Fprintf(&b, "\n💵 Total chargeable to renter: %d %s", r.PayableTotal, r.Currency)
	if r.PayableTotal != r.ChargeableTotal {
		fmt.Fprintf(&b, "\nScenario %s: the renter is not charged.", r.Scenario)
	}

	return b.String()
}

func damageLine(d entity.PricedDamage, currency string) string {
	parts := []string{d.Category, d.SeverityText()}
	if d.Area != "" {
		parts = append(parts, d.Area)
	}
	return fmt.Sprintf("%s %s: %d %s", severityMark(d.Severity), strings.Join(parts, ", "), d.Price, currency)
}

// splitMessage режет длинный текст на части по строкам, чтобы уложиться
// в лимит Telegram.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var (
		parts []string
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8RuneStart(line[cut]) {
				cut--
			}
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > limit {
			flush()
		}
		cur.WriteString(line)
	}
	flush()
	return parts
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
