package port

import (
	"context"

	"rental-inspector/internal/domain/entity"
)

// DamageDetector интерфейс внешнего детектора повреждений
type DamageDetector interface {
	// Detect отправляет снимки «до» и «после» и возвращает найденные повреждения
	Detect(ctx context.Context, before, after []byte) (*entity.DetectionResult, error)
}
