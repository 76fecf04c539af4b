package detector

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"rental-inspector/internal/domain/entity"
)

// MissingDamagesMessage показывается, если детектор не прислал список повреждений.
const MissingDamagesMessage = "The detector returned no damage list; the report is empty."

type bboxDTO struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type damageDTO struct {
	ID        string  `json:"id"`
	ImageType string  `json:"imageType"`
	Area      string  `json:"area"`
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	BBox      bboxDTO `json:"bbox"`
}

type analyzeResponse struct {
	InspectionID string       `json:"inspectionId"`
	Damages      *[]damageDTO `json:"damages"`
	Message      string       `json:"message"`
}

// Parse разбирает ответ детектора. Отсутствие списка повреждений не ошибка:
// результат пустой и помечен как Degraded. Нарушение контракта (неизвестный
// снимок, повтор ID, а в строгом режиме и неизвестная тяжесть) отклоняет
// ответ целиком.
func Parse(body []byte, strictSeverity bool) (*entity.DetectionResult, error) {
	var resp analyzeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrAnalysisFailed, err)
	}

	if resp.Damages == nil {
		log.Warn().Str("inspectionID", resp.InspectionID).Msg("detector response has no damage list")
		return &entity.DetectionResult{
			InspectionID: resp.InspectionID,
			Annotations:  []entity.DamageAnnotation{},
			Message:      MissingDamagesMessage,
			Degraded:     true,
		}, nil
	}

	annotations := make([]entity.DamageAnnotation, 0, len(*resp.Damages))
	for _, d := range *resp.Damages {
		source, ok := entity.ParseSourceImage(d.ImageType)
		if !ok {
			return nil, fmt.Errorf("%w: %w: damage %q has unknown image type %q",
				ErrAnalysisFailed, entity.ErrInvalidAnnotations, d.ID, d.ImageType)
		}

		severity := entity.ParseSeverity(d.Severity)
		if !severity.Known() {
			if strictSeverity {
				return nil, fmt.Errorf("%w: %w: damage %q has unknown severity %q",
					ErrAnalysisFailed, entity.ErrInvalidAnnotations, d.ID, d.Severity)
			}
			log.Warn().Str("damageID", d.ID).Str("severity", d.Severity).Msg("unknown severity, using fallback")
		}

		annotations = append(annotations, entity.DamageAnnotation{
			ID:            d.ID,
			Source:        source,
			Category:      d.Type,
			SeverityLabel: d.Severity,
			Severity:      severity,
			Area:          d.Area,
			Box: entity.BoundingBox{
				X:      d.BBox.X,
				Y:      d.BBox.Y,
				Width:  d.BBox.Width,
				Height: d.BBox.Height,
			},
		})
	}

	if err := entity.ValidateAnnotations(annotations); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	return &entity.DetectionResult{
		InspectionID: resp.InspectionID,
		Annotations:  annotations,
		Message:      resp.Message,
	}, nil
}
