package vision

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// ErrEmptyImage пустые данные снимка.
var ErrEmptyImage = errors.New("empty image")

// Decoder декодирует снимки не более одного раза на каждое уникальное
// содержимое: одновременные запросы ждут общий результат, готовые снимки
// хранятся в кэше до истечения ttl.
type Decoder struct {
	cache  *gocache.Cache
	group  singleflight.Group
	decode func([]byte) (image.Image, error)
}

// NewDecoder создаёт декодер с временем жизни кэша ttl.
func NewDecoder(ttl time.Duration) *Decoder {
	return &Decoder{
		cache:  gocache.New(ttl, 2*ttl),
		decode: decodeImage,
	}
}

// Decode возвращает декодированный снимок.
func (d *Decoder) Decode(ctx context.Context, data []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	key := imageKey(data)
	if v, ok := d.cache.Get(key); ok {
		return v.(image.Image), nil
	}

	v, err, _ := d.group.Do(key, func() (interface{}, error) {
		if v, ok := d.cache.Get(key); ok {
			return v, nil
		}
		img, err := d.decode(data)
		if err != nil {
			return nil, err
		}
		d.cache.Set(key, img, gocache.DefaultExpiration)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Forget убирает снимок из кэша.
func (d *Decoder) Forget(data []byte) {
	d.cache.Delete(imageKey(data))
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func imageKey(data []byte) string {
	sum := sha256.Sum256(data)
	return "image:" + hex.EncodeToString(sum[:])
}
