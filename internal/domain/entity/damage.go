package entity

import (
	"image"
	"math"
	"strings"
)

// SourceImage указывает, на каком из двух снимков найдено повреждение.
type SourceImage string

const (
	SourceBefore SourceImage = "before" // снимок до аренды
	SourceAfter  SourceImage = "after"  // снимок после аренды
)

// ParseSourceImage разбирает метку снимка без учёта регистра.
func ParseSourceImage(label string) (SourceImage, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case string(SourceBefore):
		return SourceBefore, true
	case string(SourceAfter):
		return SourceAfter, true
	}
	return "", false
}

// Severity уровень тяжести повреждения.
type Severity int

const (
	SeverityUnknown Severity = iota // нераспознанная метка
	SeverityMinor
	SeverityModerate
	SeveritySevere
)

var severityNames = [...]string{
	SeverityUnknown:  "unknown",
	SeverityMinor:    "minor",
	SeverityModerate: "moderate",
	SeveritySevere:   "severe",
}

// ParseSeverity разбирает метку тяжести без учёта регистра.
// Неизвестные значения дают SeverityUnknown, а не ошибку.
func ParseSeverity(label string) Severity {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "minor":
		return SeverityMinor
	case "moderate":
		return SeverityModerate
	case "severe":
		return SeveritySevere
	}
	return SeverityUnknown
}

// Known сообщает, относится ли уровень к одному из трёх тарифных.
func (s Severity) Known() bool {
	return s >= SeverityMinor && s <= SeveritySevere
}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return severityNames[SeverityUnknown]
	}
	return severityNames[s]
}

// BoundingBox прямоугольник в долях от размеров исходного снимка.
type BoundingBox struct {
	X      float64 // левый край, 0..1
	Y      float64 // верхний край, 0..1
	Width  float64 // ширина, 0..1
	Height float64 // высота, 0..1
}

// Center возвращает координаты центра прямоугольника в долях снимка.
func (b BoundingBox) Center() (x, y float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Pixels переводит прямоугольник в пиксели снимка width×height.
// Выход за границы снимка обрезается.
func (b BoundingBox) Pixels(width, height int) image.Rectangle {
	x0 := clampInt(int(math.Round(b.X*float64(width))), 0, width)
	y0 := clampInt(int(math.Round(b.Y*float64(height))), 0, height)
	x1 := clampInt(int(math.Round((b.X+b.Width)*float64(width))), 0, width)
	y1 := clampInt(int(math.Round((b.Y+b.Height)*float64(height))), 0, height)
	return image.Rect(x0, y0, x1, y1)
}

// DamageAnnotation одно повреждение, найденное детектором. Не изменяется после создания.
type DamageAnnotation struct {
	ID            string      // уникален в пределах одного анализа
	Source        SourceImage // снимок, на котором найдено повреждение
	Category      string      // тип повреждения, например "Scratch"
	SeverityLabel string      // метка тяжести в том виде, как её прислал детектор
	Severity      Severity
	Area          string // часть кузова, если детектор её указал
	Box           BoundingBox
}

// MatchKey ключ сопоставления повреждений: категория и тяжесть в нижнем регистре.
type MatchKey struct {
	Category string
	Severity string
}

// Key строит ключ сопоставления для повреждения.
func (d DamageAnnotation) Key() MatchKey {
	return MatchKey{
		Category: normalizeLabel(d.Category),
		Severity: normalizeLabel(d.SeverityLabel),
	}
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SeverityText метка тяжести для показа: известный уровень или метка детектора как есть.
func (d DamageAnnotation) SeverityText() string {
	if d.Severity.Known() {
		return d.Severity.String()
	}
	if label := strings.TrimSpace(d.SeverityLabel); label != "" {
		return label
	}
	return SeverityUnknown.String()
}
