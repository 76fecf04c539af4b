package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidAnnotations набор повреждений нарушает контракт детектора.
var ErrInvalidAnnotations = errors.New("invalid annotation set")

// DetectionResult нормализованный ответ детектора повреждений.
type DetectionResult struct {
	InspectionID string             // идентификатор проверки от детектора
	Annotations  []DamageAnnotation // повреждения обоих снимков
	Message      string             // статус от детектора
	Degraded     bool               // детектор не прислал список повреждений
}

// Partition делит повреждения по снимкам, сохраняя исходный порядок внутри каждой группы.
func Partition(annotations []DamageAnnotation) (before, after []DamageAnnotation) {
	before = make([]DamageAnnotation, 0, len(annotations))
	after = make([]DamageAnnotation, 0, len(annotations))
	for _, a := range annotations {
		switch a.Source {
		case SourceBefore:
			before = append(before, a)
		case SourceAfter:
			after = append(after, a)
		}
	}
	return before, after
}

// ValidateAnnotations проверяет уникальность ID и метки снимков.
func ValidateAnnotations(annotations []DamageAnnotation) error {
	seen := make(map[string]struct{}, len(annotations))
	for _, a := range annotations {
		if a.Source != SourceBefore && a.Source != SourceAfter {
			return fmt.Errorf("%w: damage %q has unknown source image %q", ErrInvalidAnnotations, a.ID, a.Source)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: duplicate damage id %q", ErrInvalidAnnotations, a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}
