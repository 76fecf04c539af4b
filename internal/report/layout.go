// Package report раскладывает модель отчёта по страницам документа.
//
// Раскладка детерминирована: разделы идут в фиксированном порядке, а новая
// страница начинается только тогда, когда очередной блок не помещается
// над нижним полем.
package report

import (
	"fmt"
	"strings"

	"rental-inspector/internal/domain/entity"
)

// Canvas примитивы рисования документа. Координаты в миллиметрах,
// y отсчитывается от верхнего края страницы.
type Canvas interface {
	AddPage()
	SetFont(size float64, bold bool)
	TextWidth(s string) float64
	Text(x, y float64, s string)
	Line(x1, y1, x2, y2 float64)
	Rect(x, y, w, h float64)
	Image(name string, data []byte, x, y, w, h float64) error
}

// Page размеры страницы и поле.
type Page struct {
	Width  float64
	Height float64
	Margin float64
}

// A4 страница формата A4 в миллиметрах.
var A4 = Page{Width: 210, Height: 297, Margin: 15}

// Thumbnails фрагменты снимков по ID повреждения.
type Thumbnails map[string][]byte

// Section раздел отчёта.
type Section string

const (
	SectionTitle       Section = "title"
	SectionTimestamp   Section = "timestamp"
	SectionDisclaimer  Section = "disclaimer"
	SectionAssumptions Section = "assumptions"
	SectionPricing     Section = "pricing"
	SectionComparison  Section = "comparison"
	SectionMatching    Section = "matching"
	SectionTotals      Section = "totals"
)

// Result описывает итог раскладки.
type Result struct {
	Pages    int
	Sections []Section
}

const (
	titleSize   = 16
	headingSize = 12
	bodySize    = 10
	smallSize   = 9

	titleHeight   = 10
	headingHeight = 8
	lineHeight    = 5
	rowHeight     = 6

	thumbSize      = 22
	comparisonRowH = 28
)

const placeholderText = "No preview"

// Render рисует отчёт на canvas и возвращает число страниц и порядок разделов.
// Сравнительная таблица выводится только при наличии повреждений хотя бы на одном снимке.
func Render(c Canvas, page Page, r *entity.Report, thumbs Thumbnails) Result {
	l := &layout{c: c, page: page}
	l.newPage()

	l.title(r)
	l.timestamp(r)
	l.disclaimer(r)
	l.assumptions(r)
	l.pricing(r)
	if r.HasComparison() {
		l.comparison(r, thumbs)
	}
	l.matching(r)
	l.totals(r)

	return Result{Pages: l.pages, Sections: l.sections}
}

type layout struct {
	c        Canvas
	page     Page
	y        float64
	pages    int
	sections []Section
}

func (l *layout) newPage() {
	l.c.AddPage()
	l.pages++
	l.y = l.page.Margin
}

// ensure начинает новую страницу, если блок высотой h не помещается.
func (l *layout) ensure(h float64) {
	if l.y+h > l.page.Height-l.page.Margin {
		l.newPage()
	}
}

func (l *layout) contentWidth() float64 {
	return l.page.Width - 2*l.page.Margin
}

func (l *layout) text(x, h, size float64, bold bool, s string) {
	l.ensure(h)
	l.c.SetFont(size, bold)
	l.c.Text(x, l.y+h*0.75, s)
	l.y += h
}

// paragraph переносит текст по словам в ширину width.
func (l *layout) paragraph(x, width, size float64, prefix, s string) {
	l.c.SetFont(size, false)
	for i, line := range wrap(l.c, prefix+s, width) {
		if i > 0 {
			line = strings.Repeat(" ", len(prefix)) + line
		}
		l.text(x, lineHeight, size, false, line)
	}
}

func (l *layout) title(r *entity.Report) {
	l.sections = append(l.sections, SectionTitle)
	l.text(l.page.Margin, titleHeight, titleSize, true, entity.ReportTitle)
}

func (l *layout) timestamp(r *entity.Report) {
	l.sections = append(l.sections, SectionTimestamp)
	l.text(l.page.Margin, lineHeight, bodySize, false,
		"Generated: "+r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	if r.InspectionID != "" {
		l.text(l.page.Margin, lineHeight, bodySize, false, "Inspection: "+r.InspectionID)
	}
	if r.ID != "" {
		l.text(l.page.Margin, lineHeight, bodySize, false, "Report: "+r.ID)
	}
	l.y += 2
}

func (l *layout) disclaimer(r *entity.Report) {
	l.sections = append(l.sections, SectionDisclaimer)
	for _, s := range r.Disclaimer {
		l.paragraph(l.page.Margin, l.contentWidth(), smallSize, "", s)
	}
	l.y += 2
}

func (l *layout) assumptions(r *entity.Report) {
	l.sections = append(l.sections, SectionAssumptions)
	l.text(l.page.Margin, headingHeight, headingSize, true, "Assumptions")
	for _, s := range r.Assumptions {
		l.paragraph(l.page.Margin, l.contentWidth(), smallSize, "- ", s)
	}
	l.y += 2
}

func (l *layout) pricing(r *entity.Report) {
	l.sections = append(l.sections, SectionPricing)
	l.text(l.page.Margin, headingHeight, headingSize, true,
		fmt.Sprintf("Repair Cost Table (%s)", r.Currency))

	cols := l.pricingColumns()
	l.pricingRow(cols, true, "Damage type", "Minor", "Moderate", "Severe")
	for _, c := range r.Pricing {
		l.pricingRow(cols, false, tierCells(c.Name, c.Prices)...)
	}
	l.pricingRow(cols, false, tierCells("Other (by severity)", r.Fallback)...)
	l.y += 2
}

// tierCells печатает цены так же, как они применяются к повреждениям.
func tierCells(name string, p entity.TierPrices) []string {
	return []string{
		name,
		fmt.Sprint(p.For(entity.SeverityMinor)),
		fmt.Sprint(p.For(entity.SeverityModerate)),
		fmt.Sprint(p.For(entity.SeveritySevere)),
	}
}

func (l *layout) pricingColumns() [4]float64 {
	m := l.page.Margin
	return [4]float64{m, m + 70, m + 105, m + 140}
}

func (l *layout) pricingRow(cols [4]float64, header bool, cells ...string) {
	l.ensure(rowHeight)
	l.c.SetFont(bodySize, header)
	for i, s := range cells {
		l.c.Text(cols[i]+1, l.y+rowHeight*0.75, s)
	}
	l.y += rowHeight
	l.c.Line(l.page.Margin, l.y, l.page.Width-l.page.Margin, l.y)
}

func (l *layout) comparison(r *entity.Report, thumbs Thumbnails) {
	l.sections = append(l.sections, SectionComparison)
	// Заголовок и шапка таблицы переносятся вместе с первой строкой.
	l.ensure(headingHeight + rowHeight + comparisonRowH)
	l.text(l.page.Margin, headingHeight, headingSize, true, "Before / After Comparison")

	half := l.contentWidth() / 2
	beforeX, afterX := l.page.Margin, l.page.Margin+half

	l.ensure(rowHeight)
	l.c.SetFont(bodySize, true)
	l.c.Text(beforeX, l.y+rowHeight*0.75, "BEFORE")
	l.c.Text(afterX, l.y+rowHeight*0.75, "AFTER")
	l.y += rowHeight

	// Строки выровнены по позиции, а не по результату сверки.
	for i := 0; i < r.ComparisonRows(); i++ {
		l.ensure(comparisonRowH)
		before, after := r.ComparisonRow(i)
		if before != nil {
			l.damageCell(beforeX, half, before, thumbs, r.Currency, "")
		}
		if after != nil {
			status := r.StatusOf(after.ID)
			l.damageCell(afterX, half, &after.PricedDamage, thumbs, r.Currency, "Status: "+strings.ToUpper(status.String()))
		}
		l.y += comparisonRowH
		l.c.Line(l.page.Margin, l.y-1, l.page.Width-l.page.Margin, l.y-1)
	}
	l.y += 2
}

func (l *layout) damageCell(x, width float64, d *entity.PricedDamage, thumbs Thumbnails, currency, statusLine string) {
	top := l.y + 1
	l.thumbnail(d.ID, thumbs[d.ID], x, top)

	tx := x + thumbSize + 3
	lines := []string{
		fmt.Sprintf("%s (%s)", d.Category, d.SeverityText()),
	}
	if d.Area != "" {
		lines = append(lines, d.Area)
	}
	lines = append(lines, fmt.Sprintf("Price: %d %s", d.Price, currency))
	if statusLine != "" {
		lines = append(lines, statusLine)
	}

	l.c.SetFont(smallSize, false)
	for i, s := range lines {
		l.c.Text(tx, top+float64(i+1)*lineHeight, truncate(l.c, s, width-thumbSize-5))
	}
}

// thumbnail рисует фрагмент снимка; при ошибке остаётся заглушка.
func (l *layout) thumbnail(id string, data []byte, x, y float64) {
	if len(data) > 0 {
		if err := l.c.Image("thumb-"+id, data, x, y, thumbSize, thumbSize); err == nil {
			return
		}
	}
	l.c.Rect(x, y, thumbSize, thumbSize)
	l.c.SetFont(smallSize-2, false)
	l.c.Text(x+2, y+thumbSize/2+1, placeholderText)
}

func (l *layout) matching(r *entity.Report) {
	l.sections = append(l.sections, SectionMatching)
	l.text(l.page.Margin, headingHeight, headingSize, true, "Matching Logic")
	for _, s := range r.MatchingNote {
		l.paragraph(l.page.Margin, l.contentWidth(), smallSize, "- ", s)
	}
	l.y += 2
}

func (l *layout) totals(r *entity.Report) {
	l.sections = append(l.sections, SectionTotals)
	// Итоги не разрываются между страницами.
	l.ensure(headingHeight + 3*lineHeight)
	l.text(l.page.Margin, headingHeight, headingSize, true,
		fmt.Sprintf("Total chargeable to renter: %d %s", r.PayableTotal, r.Currency))
	l.text(l.page.Margin, lineHeight, bodySize, false,
		fmt.Sprintf("Pre-existing damage value: %d %s (before image total: %d %s)",
			r.PreExistingTotal, r.Currency, r.BeforeTotal, r.Currency))
	l.text(l.page.Margin, lineHeight, bodySize, false,
		fmt.Sprintf("Damages after rental: %d pre-existing, %d chargeable", r.PreExistingCount, r.ChargeableCount))
	l.text(l.page.Margin, lineHeight, bodySize, false,
		fmt.Sprintf("Scenario: %s. %s", r.Scenario, r.Message))
}

// wrap разбивает текст на строки не шире width при текущем шрифте canvas.
func wrap(c Canvas, s string, width float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		next := cur + " " + w
		if c.TextWidth(next) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur = next
	}
	return append(lines, cur)
}

func truncate(c Canvas, s string, width float64) string {
	if c.TextWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && c.TextWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
