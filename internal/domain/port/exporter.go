package port

import (
	"context"

	"rental-inspector/internal/domain/entity"
)

// ReportExporter выгружает отчёт в документ
type ReportExporter interface {
	// Export рисует отчёт и возвращает готовый документ
	Export(ctx context.Context, report *entity.Report, thumbnails map[string][]byte) ([]byte, error)
}
