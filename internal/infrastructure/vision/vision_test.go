package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rental-inspector/internal/domain/entity"
)

func testPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecoder_DecodesOnce(t *testing.T) {
	dec := NewDecoder(time.Minute)
	var calls atomic.Int32
	orig := dec.decode
	dec.decode = func(data []byte) (image.Image, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return orig(data)
	}

	data := testPNG(t, 8, 8, color.White)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := dec.Decode(context.Background(), data)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	a, err := dec.Decode(context.Background(), data)
	require.NoError(t, err)
	b, err := dec.Decode(context.Background(), data)
	require.NoError(t, err)

	require.Equal(t, int32(1), calls.Load())
	require.Same(t, a, b)

	dec.Forget(data)
	_, err = dec.Decode(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestDecoder_Errors(t *testing.T) {
	dec := NewDecoder(time.Minute)

	_, err := dec.Decode(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyImage)

	_, err = dec.Decode(context.Background(), []byte("not an image"))
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dec.Decode(ctx, testPNG(t, 2, 2, color.Black))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSeverityColor_Fallback(t *testing.T) {
	require.Equal(t, severityColors[entity.SeverityUnknown], SeverityColor(entity.Severity(17)))
	require.Equal(t, severityColors[entity.SeverityUnknown], SeverityColor(entity.Severity(-1)))
	require.NotEqual(t, SeverityColor(entity.SeverityMinor), SeverityColor(entity.SeveritySevere))
}

func TestRenderer_Highlight(t *testing.T) {
	r := NewRenderer(NewDecoder(time.Minute))
	data := testPNG(t, 1000, 1000, color.White)

	out, err := r.Highlight(context.Background(), data, []entity.DamageAnnotation{
		{ID: "after-0", Severity: entity.SeveritySevere, Box: entity.BoundingBox{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5}},
		{ID: "after-1", Severity: entity.SeverityUnknown, Box: entity.BoundingBox{X: 2, Y: 2, Width: 0.1, Height: 0.1}},
	})
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 1000, img.Bounds().Dx())

	// Верхняя сторона рамки красная, угол снимка вне рамок остался белым.
	cr, cg, _, _ := img.At(300, 102).RGBA()
	require.Greater(t, cr>>8, uint32(150))
	require.Less(t, cg>>8, uint32(120))
	wr, wg, wb, _ := img.At(900, 900).RGBA()
	require.Greater(t, wr>>8, uint32(230))
	require.Greater(t, wg>>8, uint32(230))
	require.Greater(t, wb>>8, uint32(230))
}

func TestRenderer_HighlightBadImage(t *testing.T) {
	r := NewRenderer(NewDecoder(time.Minute))
	_, err := r.Highlight(context.Background(), []byte("garbage"), nil)
	require.Error(t, err)
}

func TestRenderer_Thumbnails(t *testing.T) {
	r := NewRenderer(NewDecoder(time.Minute))
	before := testPNG(t, 100, 100, color.White)
	after := testPNG(t, 1000, 500, color.Black)

	thumbs := r.Thumbnails(context.Background(), before, after, []entity.DamageAnnotation{
		{ID: "before-0", Source: entity.SourceBefore, Box: entity.BoundingBox{X: 0, Y: 0, Width: 0.5, Height: 0.2}},
		{ID: "after-0", Source: entity.SourceAfter, Box: entity.BoundingBox{X: 0, Y: 0, Width: 1, Height: 1}},
		{ID: "after-empty", Source: entity.SourceAfter, Box: entity.BoundingBox{X: 0.5, Y: 0.5}},
	})

	require.Len(t, thumbs, 2)
	require.NotContains(t, thumbs, "after-empty")

	img, err := jpeg.Decode(bytes.NewReader(thumbs["before-0"]))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 50, 20), img.Bounds())

	// Большой фрагмент уменьшается до defaultThumbSide по большей стороне.
	img, err = jpeg.Decode(bytes.NewReader(thumbs["after-0"]))
	require.NoError(t, err)
	require.Equal(t, defaultThumbSide, img.Bounds().Dx())
	require.Equal(t, defaultThumbSide/2, img.Bounds().Dy())
}

func TestRenderer_ThumbnailsDecodeFailureIsolated(t *testing.T) {
	r := NewRenderer(NewDecoder(time.Minute))
	after := testPNG(t, 50, 50, color.White)

	thumbs := r.Thumbnails(context.Background(), []byte("broken"), after, []entity.DamageAnnotation{
		{ID: "before-0", Source: entity.SourceBefore, Box: entity.BoundingBox{Width: 1, Height: 1}},
		{ID: "after-0", Source: entity.SourceAfter, Box: entity.BoundingBox{Width: 1, Height: 1}},
	})

	require.Len(t, thumbs, 1)
	require.Contains(t, thumbs, "after-0")
}

func TestRenderer_ReleaseForgetsDecodedImages(t *testing.T) {
	dec := NewDecoder(time.Minute)
	var calls atomic.Int32
	orig := dec.decode
	dec.decode = func(data []byte) (image.Image, error) {
		calls.Add(1)
		return orig(data)
	}
	r := NewRenderer(dec)
	data := testPNG(t, 16, 16, color.White)

	_, err := r.Highlight(context.Background(), data, nil)
	require.NoError(t, err)
	_, err = r.Highlight(context.Background(), data, nil)
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	r.Release(data, nil)
	_, err = r.Highlight(context.Background(), data, nil)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestFitSide(t *testing.T) {
	w, h, ok := fitSide(100, 50, 320)
	require.False(t, ok)
	require.Equal(t, [2]int{100, 50}, [2]int{w, h})

	w, h, ok = fitSide(1000, 500, 320)
	require.True(t, ok)
	require.Equal(t, [2]int{320, 160}, [2]int{w, h})

	w, h, ok = fitSide(2000, 1, 320)
	require.True(t, ok)
	require.Equal(t, [2]int{320, 1}, [2]int{w, h})
}

func TestShrink_KeepsColourAndBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 810, 410))
	for y := 10; y < 410; y++ {
		for x := 10; x < 810; x++ {
			src.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	out, err := shrink(src, 200)
	require.NoError(t, err)
	require.Equal(t, 200, out.Bounds().Dx())
	require.Equal(t, 100, out.Bounds().Dy())

	b := out.Bounds()
	r, g, _, _ := out.At(b.Min.X+100, b.Min.Y+50).RGBA()
	require.InDelta(t, 200, int(r>>8), 2)
	require.InDelta(t, 40, int(g>>8), 2)

	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	same, err := shrink(small, 200)
	require.NoError(t, err)
	require.Same(t, small, same)
}
