package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"
)

// ErrDecode is returned when the raw capture cannot be decoded as an
// image. Captures that fail to decode must not be queued.
var ErrDecode = errors.New("image decode failed")

// jpegQuality matches the client's 0.7 lossy re-encode.
const jpegQuality = 70

// Normalize applies the fixed capture transform pipeline to a raw
// still and returns the re-encoded result. The order is load-bearing:
//  1. rotate 90 degrees clockwise
//  2. crop to a centered square, side = min(width, height) post-rotation
//  3. brighten by blending white at 10% opacity
//  4. encode as JPEG at quality 70
//
// The pipeline is deterministic: identical input bytes produce
// identical output bytes.
func Normalize(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	rotated := rotate90(src)
	cropped := cropSquare(rotated)
	brighten(cropped)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// rotate90 returns a copy of src rotated 90 degrees clockwise.
func rotate90(src image.Image) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(h-1-y, x, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// cropSquare returns the centered square of side min(w, h).
func cropSquare(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < side {
		side = h
	}

	x0 := (w - side) / 2
	y0 := (h - side) / 2

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			dst.SetRGBA(x, y, src.RGBAAt(x0+x, y0+y))
		}
	}
	return dst
}

// brighten blends white over img at 10% opacity in place:
// out = p + 0.1*(255-p) per channel. Alpha is untouched.
func brighten(img *image.RGBA) {
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = lighten(pix[i+0])
		pix[i+1] = lighten(pix[i+1])
		pix[i+2] = lighten(pix[i+2])
	}
}

func lighten(p uint8) uint8 {
	v := float64(p) + 0.1*(255-float64(p))
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
