package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"rental-inspector/internal/domain/entity"
	"rental-inspector/internal/domain/port"
)

const (
	defaultThumbSide = 320
	jpegQuality      = 90
)

var errEmptyCrop = errors.New("empty crop area")

// Renderer рисует рамки повреждений и вырезает их фрагменты.
type Renderer struct {
	decoder   *Decoder
	thumbSide int
}

// NewRenderer создаёт рендерер поверх общего декодера.
func NewRenderer(decoder *Decoder) *Renderer {
	return &Renderer{
		decoder:   decoder,
		thumbSide: defaultThumbSide,
	}
}

// Highlight рисует рамки повреждений и возвращает новую картинку в JPEG.
func (r *Renderer) Highlight(ctx context.Context, imageData []byte, damages []entity.DamageAnnotation) ([]byte, error) {
	img, err := r.decoder.Decode(ctx, imageData)
	if err != nil {
		return nil, err
	}

	out, err := drawBoxes(img, damages, strokeWidth(img.Bounds()))
	if err != nil {
		return nil, err
	}
	return encodeJPEG(out)
}

// Thumbnails вырезает фрагменты всех повреждений. Снимки «до» и «после»
// декодируются параллельно, каждый один раз; ошибка одного фрагмента не
// мешает остальным.
func (r *Renderer) Thumbnails(ctx context.Context, before, after []byte, damages []entity.DamageAnnotation) map[string][]byte {
	var beforeImg, afterImg image.Image

	var g errgroup.Group
	g.Go(func() error {
		beforeImg = r.decodeOrWarn(ctx, before, entity.SourceBefore)
		return nil
	})
	g.Go(func() error {
		afterImg = r.decodeOrWarn(ctx, after, entity.SourceAfter)
		return nil
	})
	_ = g.Wait()

	thumbs := make(map[string][]byte, len(damages))
	for _, d := range damages {
		src := beforeImg
		if d.Source == entity.SourceAfter {
			src = afterImg
		}
		if src == nil {
			continue
		}

		data, err := r.crop(src, d.Box)
		if err != nil {
			log.Warn().Err(err).Str("damageID", d.ID).Msg("failed to crop damage")
			continue
		}
		thumbs[d.ID] = data
	}
	return thumbs
}

// Release убирает снимки из кэша декодера.
func (r *Renderer) Release(images ...[]byte) {
	for _, data := range images {
		if len(data) > 0 {
			r.decoder.Forget(data)
		}
	}
}

func (r *Renderer) decodeOrWarn(ctx context.Context, data []byte, source entity.SourceImage) image.Image {
	img, err := r.decoder.Decode(ctx, data)
	if err != nil {
		log.Warn().Err(err).Str("source", string(source)).Msg("failed to decode image for thumbnails")
		return nil
	}
	return img
}

func (r *Renderer) crop(img image.Image, box entity.BoundingBox) ([]byte, error) {
	b := img.Bounds()
	rect := box.Pixels(b.Dx(), b.Dy()).Add(b.Min)
	if rect.Empty() {
		return nil, errEmptyCrop
	}

	part, err := cropImage(img, rect)
	if err != nil {
		return nil, err
	}
	small, err := shrink(part, r.thumbSide)
	if err != nil {
		return nil, err
	}
	return encodeJPEG(small)
}

// fitSide вписывает размеры w×h в квадрат side с сохранением пропорций.
// ok=false, если уменьшать не нужно.
func fitSide(w, h, side int) (nw, nh int, ok bool) {
	if w <= side && h <= side {
		return w, h, false
	}
	scale := float64(side) / float64(max(w, h))
	return max(int(float64(w)*scale), 1), max(int(float64(h)*scale), 1), true
}

func strokeWidth(b image.Rectangle) int {
	return max(2, min(b.Dx(), b.Dy())/200)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

var _ port.ImageRenderer = (*Renderer)(nil)
