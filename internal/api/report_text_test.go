package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-inspector/internal/domain/entity"
)

func annotation(id string, src entity.SourceImage, category, severity, area string) entity.DamageAnnotation {
	return entity.DamageAnnotation{
		ID:            id,
		Source:        src,
		Category:      category,
		SeverityLabel: severity,
		Severity:      entity.ParseSeverity(severity),
		Area:          area,
	}
}

func TestFormatReport_Both(t *testing.T) {
	r := entity.Synthesize(entity.ReportInput{
		InspectionID: "insp-7",
		Annotations: []entity.DamageAnnotation{
			annotation("b1", entity.SourceBefore, "Scratch", "minor", "Front bumper"),
			annotation("a1", entity.SourceAfter, "scratch", "Minor", "Front bumper"),
			annotation("a2", entity.SourceAfter, "Dent", "severe", "Door"),
		},
	})

	text := FormatReport(r)

	assert.Contains(t, text, entity.ReportTitle)
	assert.Contains(t, text, "Inspection: insp-7")
	assert.Contains(t, text, "BEFORE: 1 damage(s), 80 USD")
	assert.Contains(t, text, "🟡 Scratch, minor, Front bumper: 80 USD")
	assert.Contains(t, text, "♻️ pre-existing")
	assert.Contains(t, text, "🔴 Dent, severe, Door: 600 USD 💰 chargeable")
	assert.Contains(t, text, "Total chargeable to renter: 600 USD")
	assert.NotContains(t, text, "not charged")
}

func TestFormatReport_BeforeOnlyForcesZero(t *testing.T) {
	r := entity.Synthesize(entity.ReportInput{
		Annotations: []entity.DamageAnnotation{
			annotation("b1", entity.SourceBefore, "Dent", "moderate", ""),
		},
	})

	text := FormatReport(r)

	assert.Contains(t, text, entity.ScenarioBeforeOnly.Message())
	assert.Contains(t, text, "Total chargeable to renter: 0 USD")
	assert.Contains(t, text, "BEFORE: 1 damage(s), 350 USD")
}

func TestFormatReport_UnknownSeverity(t *testing.T) {
	r := entity.Synthesize(entity.ReportInput{
		Annotations: []entity.DamageAnnotation{
			annotation("a1", entity.SourceAfter, "Dent", "catastrophic", ""),
		},
	})

	text := FormatReport(r)
	assert.Contains(t, text, "⚪ Dent")
	assert.Contains(t, text, ": 0 USD")
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	text := strings.Repeat("line\n", 10)
	parts := splitMessage(text, 12)
	require.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 12)
	}
	assert.Equal(t, strings.Count(text, "line"), strings.Count(strings.Join(parts, "\n"), "line"))

	long := strings.Repeat("я", 10)
	parts = splitMessage(long, 5)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 5)
	}
	assert.Equal(t, long, strings.Join(parts, ""))
}

func TestFormatReplyText(t *testing.T) {
	text := formatReplyText(`
		first
		second %d`, 2)
	assert.Equal(t, "first\nsecond 2", text)
}

func TestReportFileName(t *testing.T) {
	assert.Equal(t, "inspection-insp-1.pdf", reportFileName(&entity.Report{InspectionID: "insp-1", ID: "r"}))
	assert.Equal(t, "inspection-r.pdf", reportFileName(&entity.Report{ID: "r"}))
	assert.Equal(t, "inspection-report.pdf", reportFileName(&entity.Report{}))
}
