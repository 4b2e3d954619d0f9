// Package ocr provides text-detection adapters. Detectors return raw
// polygon regions with index-aligned recognized strings; all geometry
// filtering happens downstream.
package ocr

import (
	"context"

	"go-slide-cleaner/internal/geometry"
)

// Region is one detected text area before any filtering.
type Region struct {
	Polygon geometry.Polygon
	Text    string
	Score   float64
}

// Detector locates and recognizes text in an encoded image.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Region, error)
}
