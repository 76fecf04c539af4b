package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"rental-inspector/internal/domain/entity"
	"rental-inspector/internal/domain/port"
	"rental-inspector/internal/report"
)

// Exporter выгружает отчёт в PDF.
type Exporter struct {
	page report.Page
}

// NewExporter создаёт экспортёр для страниц A4.
func NewExporter() *Exporter {
	return &Exporter{page: report.A4}
}

// Export раскладывает отчёт по страницам и возвращает байты PDF.
func (e *Exporter) Export(ctx context.Context, r *entity.Report, thumbnails map[string][]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := NewCanvas()
	c.pdf.SetTitle(entity.ReportTitle, true)
	if !r.GeneratedAt.IsZero() {
		c.pdf.SetCreationDate(r.GeneratedAt)
	}

	res := report.Render(c, e.page, r, thumbnails)

	var buf bytes.Buffer
	if err := c.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	log.Debug().
		Str("reportID", r.ID).
		Int("pages", res.Pages).
		Int("thumbnails", len(thumbnails)).
		Int("bytes", buf.Len()).
		Msg("report exported")

	return buf.Bytes(), nil
}

var _ port.ReportExporter = (*Exporter)(nil)
