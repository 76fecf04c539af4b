//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"image"

	"gocv.io/x/gocv"

	"rental-inspector/internal/domain/entity"
)

// drawBoxes рисует рамки повреждений средствами OpenCV.
func drawBoxes(img image.Image, damages []entity.DamageAnnotation, width int) (image.Image, error) {
	mat, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	for _, d := range damages {
		rect := d.Box.Pixels(mat.Cols(), mat.Rows())
		if rect.Empty() {
			continue
		}
		gocv.Rectangle(&mat, rect, SeverityColor(d.Severity), width)
	}

	return mat.ToImage()
}

// cropImage вырезает прямоугольник r из снимка.
func cropImage(img image.Image, r image.Rectangle) (image.Image, error) {
	mat, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// Mat индексируется от нуля, а у image.Image начало может быть смещено.
	r = r.Sub(img.Bounds().Min).Intersect(image.Rect(0, 0, mat.Cols(), mat.Rows()))
	if r.Empty() {
		return nil, errEmptyCrop
	}

	region := mat.Region(r)
	defer region.Close()

	// Region окно в исходной матрице, для ToImage нужна непрерывная копия.
	part := region.Clone()
	defer part.Close()

	return part.ToImage()
}

// shrink уменьшает фрагмент так же, как снимки перед анализом: InterpolationArea.
func shrink(img image.Image, side int) (image.Image, error) {
	b := img.Bounds()
	nw, nh, ok := fitSide(b.Dx(), b.Dy(), side)
	if !ok {
		return img, nil
	}

	mat, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(nw, nh), 0, 0, gocv.InterpolationArea)

	return resized.ToImage()
}

// toMat превращает image.Image в gocv.Mat.
func toMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to convert image")
}
