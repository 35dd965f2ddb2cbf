package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ErrUnreadableImage is returned when the upload is not a decodable image
var ErrUnreadableImage = errors.New("unreadable image")

const jpegQuality = 90

// toJPEG decodes a PNG, JPEG, GIF or WebP image and re-encodes it as an
// opaque RGB JPEG, the only format sent to the OCR model
func toJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	// Flatten transparency onto white so screenshots with alpha stay legible
	bounds := img.Bounds()
	rgb := image.NewRGBA(bounds)
	draw.Draw(rgb, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(rgb, bounds, img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
