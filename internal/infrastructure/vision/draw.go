//go:build !gocv
// +build !gocv

package vision

import (
	"image"

	"golang.org/x/image/draw"

	"rental-inspector/internal/domain/entity"
)

// drawBoxes рисует рамки повреждений на копии снимка.
func drawBoxes(img image.Image, damages []entity.DamageAnnotation, width int) (image.Image, error) {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)

	for _, d := range damages {
		rect := d.Box.Pixels(b.Dx(), b.Dy()).Add(b.Min)
		if rect.Empty() {
			continue
		}
		strokeRect(out, rect, image.NewUniform(SeverityColor(d.Severity)), width)
	}
	return out, nil
}

func strokeRect(dst draw.Image, r image.Rectangle, c image.Image, width int) {
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(r), c, image.Point{}, draw.Src)
	}
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// cropImage вырезает прямоугольник r из снимка.
func cropImage(img image.Image, r image.Rectangle) (image.Image, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, errEmptyCrop
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(r), nil
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out, nil
}

// shrink уменьшает фрагмент билинейной интерполяцией, чтобы большая сторона
// не превышала side.
func shrink(img image.Image, side int) (image.Image, error) {
	b := img.Bounds()
	nw, nh, ok := fitSide(b.Dx(), b.Dy(), side)
	if !ok {
		return img, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out, nil
}
