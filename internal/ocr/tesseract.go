package ocr

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"

	apperrors "go-slide-cleaner/internal/errors"
	"go-slide-cleaner/internal/geometry"
)

// TesseractDetector runs Tesseract in-process as an alternative to the
// remote service. Line-level bounding boxes become 4-vertex polygons so
// the rest of the pipeline is indifferent to the engine.
type TesseractDetector struct {
	languages []string
}

// NewTesseractDetector creates a local detector. langs follows Tesseract's
// language codes ("eng", "eng+deu", ...).
func NewTesseractDetector(langs string) *TesseractDetector {
	languages := strings.Split(langs, "+")
	if len(languages) == 0 || langs == "" {
		languages = []string{"eng"}
	}
	return &TesseractDetector{languages: languages}
}

// Detect recognizes text line by line. A fresh client per call keeps
// concurrent invocations isolated; gosseract clients are not safe for
// shared use.
func (d *TesseractDetector) Detect(ctx context.Context, image []byte) ([]Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("detection cancelled", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(d.languages...); err != nil {
		return nil, apperrors.NewInternalError("failed to configure tesseract languages", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, apperrors.NewValidationError("tesseract rejected the image payload", err)
	}

	lines, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, apperrors.NewInternalError("tesseract detection failed", err)
	}

	regions := make([]Region, 0, len(lines))
	for _, line := range lines {
		text := strings.TrimSpace(line.Word)
		if text == "" {
			continue
		}
		r := line.Box
		regions = append(regions, Region{
			Polygon: geometry.Polygon{
				{X: float64(r.Min.X), Y: float64(r.Min.Y)},
				{X: float64(r.Max.X), Y: float64(r.Min.Y)},
				{X: float64(r.Max.X), Y: float64(r.Max.Y)},
				{X: float64(r.Min.X), Y: float64(r.Max.Y)},
			},
			Text:  text,
			Score: line.Confidence / 100,
		})
	}

	return regions, nil
}
