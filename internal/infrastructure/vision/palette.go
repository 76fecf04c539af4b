package vision

import (
	"image/color"

	"rental-inspector/internal/domain/entity"
)

// Цвета рамок по тяжести. Неизвестная метка рисуется нейтральным серым.
var severityColors = [...]color.RGBA{
	entity.SeverityUnknown:  {R: 158, G: 158, B: 158, A: 255},
	entity.SeverityMinor:    {R: 255, G: 214, B: 0, A: 255},
	entity.SeverityModerate: {R: 255, G: 145, B: 0, A: 255},
	entity.SeveritySevere:   {R: 229, G: 57, B: 53, A: 255},
}

// SeverityColor возвращает цвет рамки для уровня тяжести.
func SeverityColor(s entity.Severity) color.RGBA {
	if s < 0 || int(s) >= len(severityColors) {
		return severityColors[entity.SeverityUnknown]
	}
	return severityColors[s]
}
