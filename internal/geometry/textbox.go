package geometry

import "math"

const (
	// minBoxDimension drops detector noise: regions narrower or shorter
	// than this are not text worth re-typesetting.
	minBoxDimension = 10.0

	// Font size estimate: cap height is roughly 70% of the detected box
	// height, converted from pixels to points at 96 DPI. Heuristic
	// constants, kept as-is.
	fontHeightRatio = 0.7
	pixelsPerPoint  = 72.0 / 96.0

	minFontSize = 8.0
	maxFontSize = 72.0
)

// Point is a vertex in source-image pixel space.
type Point struct {
	X float64
	Y float64
}

// Polygon is an ordered vertex sequence emitted by a text detector.
type Polygon []Point

// TextBox is an axis-aligned text region with its recognized string and an
// estimated display font size. Immutable once created.
type TextBox struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
}

// BoxFromPolygon converts one detected polygon and its aligned recognized
// text into a TextBox. Returns false for polygons with fewer than 4
// vertices and for regions below the minimum dimensions; both are skipped
// silently, never reported as errors.
func BoxFromPolygon(poly Polygon, text string) (TextBox, bool) {
	if len(poly) < 4 {
		return TextBox{}, false
	}

	xMin, xMax := poly[0].X, poly[0].X
	yMin, yMax := poly[0].Y, poly[0].Y
	for _, p := range poly[1:] {
		xMin = math.Min(xMin, p.X)
		xMax = math.Max(xMax, p.X)
		yMin = math.Min(yMin, p.Y)
		yMax = math.Max(yMax, p.Y)
	}

	width := xMax - xMin
	height := yMax - yMin
	if width < minBoxDimension || height < minBoxDimension {
		return TextBox{}, false
	}

	return TextBox{
		X:        math.Max(xMin, 0),
		Y:        math.Max(yMin, 0),
		Width:    width,
		Height:   height,
		Text:     text,
		FontSize: estimateFontSize(height),
	}, true
}

func estimateFontSize(height float64) float64 {
	size := height * fontHeightRatio * pixelsPerPoint
	return math.Min(math.Max(size, minFontSize), maxFontSize)
}
