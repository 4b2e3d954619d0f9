// Package mask renders the single-channel removal mask consumed by the
// inpaint service: 0 marks pixels to keep, 255 marks padded text regions
// to erase.
package mask

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"go-slide-cleaner/internal/geometry"
)

const (
	keep  = 0
	erase = 255
)

// Render produces a mask with exactly the source image dimensions. Every
// pixel starts at 0; each box paints its padded rectangle with 255.
// Overlapping rectangles simply OR together, so painting a region twice
// has no additional effect. One shared raster is used for all boxes.
func Render(width, height int, boxes []geometry.TextBox, padding int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))

	for _, box := range boxes {
		x1 := clampInt(int(math.Round(box.X))-padding, 0, width)
		y1 := clampInt(int(math.Round(box.Y))-padding, 0, height)
		x2 := clampInt(int(math.Round(box.X+box.Width))+padding, 0, width)
		y2 := clampInt(int(math.Round(box.Y+box.Height))+padding, 0, height)

		for y := y1; y < y2; y++ {
			row := m.Pix[y*m.Stride+x1 : y*m.Stride+x2]
			for x := range row {
				row[x] = erase
			}
		}
	}

	return m
}

// EncodePNG serializes a mask for the wire. Encoding is a boundary
// concern; Render itself never touches an exchange format.
func EncodePNG(m *image.Gray) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return nil, fmt.Errorf("failed to encode mask: %w", err)
	}
	return buf.Bytes(), nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
