// Package imaging normalizes uploaded book cover images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/erazemk/evidenca/internal/model"
)

// Stored covers fit inside a portrait box of this size.
const (
	MaxCoverWidth  = 600
	MaxCoverHeight = 900
)

// MaxUploadBytes caps how much of an upload is read.
const MaxUploadBytes = 10 << 20

// JPEGQuality is the compression quality of stored covers.
const JPEGQuality = 85

// CoverMIME is the type of every stored cover.
const CoverMIME = "image/jpeg"

// decoders maps sniffed content types to the decoder for them.
var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/jpeg": jpeg.Decode,
	"image/png":  png.Decode,
	"image/webp": webp.Decode,
	"image/bmp":  bmp.Decode,
}

// Cover is a processed cover image ready to be stored with a book.
type Cover struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// ProcessCover reads an uploaded image, checks its real format, shrinks it
// to fit the cover box and re-encodes it as JPEG. Unsupported or corrupt
// uploads fail with ErrInvalidState.
func ProcessCover(r io.Reader) (*Cover, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading cover: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: cover larger than %d bytes", model.ErrInvalidState, MaxUploadBytes)
	}

	// Clients lie about content types, so trust only the bytes.
	detected := http.DetectContentType(data)
	decode, ok := decoders[detected]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported cover format %s", model.ErrInvalidState, detected)
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding cover: %v", model.ErrInvalidState, err)
	}

	img = fit(img, MaxCoverWidth, MaxCoverHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding cover: %w", err)
	}

	b := img.Bounds()
	return &Cover{
		Data:   buf.Bytes(),
		MIME:   CoverMIME,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// fit scales img down, keeping its aspect ratio, until it fits inside
// maxW x maxH. Images already inside the box are returned unchanged.
func fit(img image.Image, maxW, maxH int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w <= maxW && h <= maxH {
		return img
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
