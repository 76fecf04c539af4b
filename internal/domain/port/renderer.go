package port

import (
	"context"

	"rental-inspector/internal/domain/entity"
)

// ImageRenderer готовит визуальные доказательства для отчёта
type ImageRenderer interface {
	// Highlight рисует рамки повреждений поверх снимка, цвет зависит от тяжести
	Highlight(ctx context.Context, imageData []byte, damages []entity.DamageAnnotation) ([]byte, error)

	// Thumbnails вырезает фрагменты повреждений. Ключом служит ID повреждения;
	// фрагменты, которые не удалось построить, отсутствуют в результате
	Thumbnails(ctx context.Context, before, after []byte, damages []entity.DamageAnnotation) map[string][]byte
	// Release забывает декодированные снимки, которые больше не понадобятся
	Release(images ...[]byte)
}
