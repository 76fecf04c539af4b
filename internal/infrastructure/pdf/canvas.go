package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-pdf/fpdf"

	"rental-inspector/internal/report"
)

const fontFamily = "Helvetica"

// Canvas рисует отчёт в PDF через fpdf. Весь текст и линии одного нейтрального
// цвета: тяжесть в документе цветом не передаётся.
type Canvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// NewCanvas создаёт пустой документ A4 в миллиметрах.
func NewCanvas() *Canvas {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("rental-inspector", true)
	doc.SetFont(fontFamily, "", 10)
	doc.SetTextColor(0, 0, 0)
	doc.SetDrawColor(0, 0, 0)
	doc.SetLineWidth(0.2)

	return &Canvas{
		pdf: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *Canvas) AddPage() {
	c.pdf.AddPage()
}

func (c *Canvas) SetFont(size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	c.pdf.SetFont(fontFamily, style, size)
}

func (c *Canvas) TextWidth(s string) float64 {
	return c.pdf.GetStringWidth(c.tr(s))
}

func (c *Canvas) Text(x, y float64, s string) {
	c.pdf.Text(x, y, c.tr(s))
}

func (c *Canvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *Canvas) Rect(x, y, w, h float64) {
	c.pdf.Rect(x, y, w, h, "D")
}

// Image вставляет JPEG или PNG. Ошибка разбора не портит документ:
// состояние ошибки fpdf сбрасывается, а вызывающий рисует заглушку.
func (c *Canvas) Image(name string, data []byte, x, y, w, h float64) error {
	imageType, err := imageTypeOf(data)
	if err != nil {
		return err
	}

	opts := fpdf.ImageOptions{ImageType: imageType}
	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if err := c.pdf.Error(); err != nil {
		c.pdf.ClearError()
		return fmt.Errorf("register image %s: %w", name, err)
	}

	c.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

// Output записывает готовый документ.
func (c *Canvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}

func imageTypeOf(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "JPG", nil
	case "image/png":
		return "PNG", nil
	}
	return "", errors.New("unsupported image data")
}

var _ report.Canvas = (*Canvas)(nil)
