package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxTextureSize bounds the longest edge of a decoded texture.
const DefaultMaxTextureSize = 2048

// MaxSourcePixels bounds the pixel count of an encoded image. Larger images are rejected from their header so
// the full decode never allocates them.
const MaxSourcePixels = 64 << 20

// DecodeTexture turns an image payload into GPU-ready RGBA8 pixels. Non-image payloads are rejected before
// decoding, images larger than maxSize are scaled down with Catmull-Rom, and rows are flipped so row 0 is the
// bottom of the image.
//
// Parameters:
//   - path: the asset path, used as the texture name and for errors
//   - data: the file contents
//   - maxSize: the longest allowed edge, unbounded when <= 0
//
// Returns:
//   - *common.TextureStagingData: the pixels
//   - error: *ParseError when the payload is not a decodable image
func DecodeTexture(path string, data []byte, maxSize int) (*common.TextureStagingData, error) {
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, &ParseError{Path: path, Err: fmt.Errorf("not an image (detected %q)", kind.MIME.Value)}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("empty %s image", format)}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%s image is %dx%d, over the %d pixel limit",
			format, cfg.Width, cfg.Height, MaxSourcePixels)}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	b := img.Bounds()

	if maxSize > 0 && (b.Dx() > maxSize || b.Dy() > maxSize) {
		w, h := fitWithin(b.Dx(), b.Dy(), maxSize)
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		img = scaled
	}

	rgba := transform.FlipV(clone.AsRGBA(img))
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	pixels := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		off := y * rgba.Stride
		pixels = append(pixels, rgba.Pix[off:off+w*4]...)
	}
	return &common.TextureStagingData{
		Name:   path,
		Pixels: pixels,
		Width:  uint32(w),
		Height: uint32(h),
	}, nil
}

// fitWithin scales w x h down so the longest edge equals limit, keeping the aspect ratio.
func fitWithin(w, h, limit int) (int, int) {
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// textureCache decodes each texture path once. Concurrent requests for the same path share one fetch.
type textureCache struct {
	mu      *sync.RWMutex
	entries map[string]*common.TextureStagingData
	flight  singleflight.Group
	maxSize int
}

func newTextureCache(maxSize int) *textureCache {
	return &textureCache{
		mu:      &sync.RWMutex{},
		entries: make(map[string]*common.TextureStagingData),
		maxSize: maxSize,
	}
}

// get returns the cached texture for path, fetching and decoding it on a miss. The shared fetch runs under base
// so one caller giving up does not fail the others; ctx only bounds this caller's wait.
func (c *textureCache) get(ctx, base context.Context, fetcher Fetcher, path string, progress ProgressFunc) (*common.TextureStagingData, error) {
	c.mu.RLock()
	tex, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return tex, nil
	}

	ch := c.flight.DoChan(path, func() (any, error) {
		data, err := fetcher.Fetch(base, path, progress)
		if err != nil {
			return nil, err
		}
		tex, err := DecodeTexture(path, data, c.maxSize)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[path] = tex
		c.mu.Unlock()
		return tex, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		tex, ok := res.Val.(*common.TextureStagingData)
		if !ok {
			return nil, errors.New("texture cache: unexpected value")
		}
		return tex, nil
	}
}

// len returns the number of decoded textures.
func (c *textureCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
