// Package stego recovers text hidden in the pixel layout of an image.
//
// The hiding scheme marks characters with pixels of value 1: scanning the image column by column,
// left to right, and each column top to bottom, every marked pixel contributes the character
// whose code point equals the pixel's row.
package stego

import (
	"fmt"
	"image"
	"os"
	"strings"

	// Supported image formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog/log"
)

// marker is the pixel value flagging a hidden character.
const marker = 1

// Decode returns the text hidden in img.
func Decode(img image.Image) string {
	b := img.Bounds()
	sb := &strings.Builder{}
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if pixelValue(img, x, y) == marker {
				sb.WriteRune(rune(y - b.Min.Y))
			}
		}
	}
	return sb.String()
}

// DecodeFile opens and decodes the image at path, then returns its hidden text.
func DecodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode %v: %w", path, err)
	}
	log.Debug().Str("module", "stego").Str("path", path).Str("format", format).
		Stringer("bounds", img.Bounds()).Msg("Decoding image")

	return Decode(img), nil
}

// pixelValue returns the raw single channel value of a pixel: the palette index for paletted
// images, otherwise the stored gray level.  Multi-channel images carry no markers, so -1 is
// returned for them.
func pixelValue(img image.Image, x, y int) int {
	switch p := img.(type) {
	case *image.Paletted:
		return int(p.ColorIndexAt(x, y))
	case *image.Gray:
		return int(p.GrayAt(x, y).Y)
	case *image.Gray16:
		return int(p.Gray16At(x, y).Y)
	}
	return -1
}
