// Package imaging resizes listing photos for the image proxy.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	"image/jpeg"
	_ "image/png"
	"log"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultWidth   = 800
	MinWidth       = 64
	MaxWidth       = 4096
	DefaultQuality = 82
)

// ErrUnsupportedImage is returned for data none of the registered decoders accept.
var ErrUnsupportedImage = errors.New("unsupported image format or corrupt image")

// Resizer scales an encoded image to a target width, keeping the aspect ratio.
// Implementations never enlarge.
type Resizer interface {
	Resize(ctx context.Context, src []byte, width int) (data []byte, contentType string, err error)
}

// ClampWidth parses the requested width. Empty, non-numeric and non-positive
// values give DefaultWidth; everything else is clamped to [MinWidth, MaxWidth].
func ClampWidth(raw string) int {
	w, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	if w < MinWidth {
		return MinWidth
	}
	if w > MaxWidth {
		return MaxWidth
	}
	return w
}

// New selects a strategy by name. "none" returns nil (serve originals);
// "cwebp" falls back to lanczos when the binary is not installed.
func New(name string, quality int) (Resizer, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lanczos":
		return &LanczosResizer{Quality: quality}, nil
	case "catmullrom":
		return &CatmullRomResizer{Quality: quality}, nil
	case "cwebp":
		if !CWebPAvailable() {
			log.Println("cwebp not found on PATH, falling back to lanczos resizer")
			return &LanczosResizer{Quality: quality}, nil
		}
		return &CWebPResizer{Quality: quality}, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown image resizer %q", name)
	}
}

func decode(src []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

// targetSize returns the output dimensions; the source size when it is already narrow enough.
func targetSize(b image.Rectangle, width int) (int, int) {
	w, h := b.Dx(), b.Dy()
	if w <= width || w == 0 {
		return w, h
	}
	nh := int(float64(h) * float64(width) / float64(w))
	if nh < 1 {
		nh = 1
	}
	return width, nh
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// LanczosResizer scales with nfnt/resize Lanczos3 and encodes JPEG.
type LanczosResizer struct {
	Quality int
}

func (r *LanczosResizer) Resize(ctx context.Context, src []byte, width int) ([]byte, string, error) {
	img, err := decode(src)
	if err != nil {
		return nil, "", err
	}
	w, _ := targetSize(img.Bounds(), width)
	if w < img.Bounds().Dx() {
		img = resize.Resize(uint(w), 0, img, resize.Lanczos3)
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	data, err := encodeJPEG(img, r.Quality)
	if err != nil {
		return nil, "", err
	}
	return data, "image/jpeg", nil
}

// CatmullRomResizer scales with x/image/draw and encodes JPEG.
type CatmullRomResizer struct {
	Quality int
}

func scaleCatmullRom(img image.Image, width int) image.Image {
	b := img.Bounds()
	w, h := targetSize(b, width)
	if w == b.Dx() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func (r *CatmullRomResizer) Resize(ctx context.Context, src []byte, width int) ([]byte, string, error) {
	img, err := decode(src)
	if err != nil {
		return nil, "", err
	}
	img = scaleCatmullRom(img, width)
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	data, err := encodeJPEG(img, r.Quality)
	if err != nil {
		return nil, "", err
	}
	return data, "image/jpeg", nil
}
