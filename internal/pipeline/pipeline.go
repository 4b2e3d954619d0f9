// Package pipeline orchestrates one slide-cleaning invocation: decode the
// source image, detect text, derive boxes, rasterize a removal mask, and
// inpaint the background. Each invocation is self-contained sequential
// work; concurrent invocations share no mutable state.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	apperrors "go-slide-cleaner/internal/errors"
	"go-slide-cleaner/internal/geometry"
	"go-slide-cleaner/internal/inpaint"
	"go-slide-cleaner/internal/mask"
	"go-slide-cleaner/internal/observer"
	"go-slide-cleaner/internal/ocr"
)

// Request carries one encoded slide image and the mask padding in pixels.
type Request struct {
	Image       []byte
	MaskPadding int
}

// Result is the terminal state of one invocation. Boxes may be populated
// even when Success is false: an inpaint-stage failure still surfaces the
// detected text.
type Result struct {
	Success    bool
	Background []byte
	Boxes      []geometry.TextBox
	Err        error
}

// Pipeline sequences the two external services around the geometry and
// raster core. It performs no internal retries; retry policy belongs to
// the caller.
type Pipeline struct {
	detector  ocr.Detector
	inpainter inpaint.Inpainter
	events    observer.Subject
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEvents attaches a stage event publisher.
func WithEvents(events observer.Subject) Option {
	return func(p *Pipeline) {
		p.events = events
	}
}

// New creates a pipeline over the given service adapters.
func New(detector ocr.Detector, inpainter inpaint.Inpainter, opts ...Option) *Pipeline {
	p := &Pipeline{
		detector:  detector,
		inpainter: inpainter,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessPage runs the full state machine for one slide. Failures are
// captured in the result, never raised; the only panics left are
// programming invariant violations.
func (p *Pipeline) ProcessPage(ctx context.Context, req Request) Result {
	start := time.Now()
	emit := func(stage observer.Stage, errMsg string, meta map[string]interface{}) {
		if p.events == nil {
			return
		}
		p.events.NotifyObservers(ctx, observer.PipelineEvent{
			Stage:        stage,
			Timestamp:    time.Now(),
			Elapsed:      time.Since(start),
			ErrorMessage: errMsg,
			Metadata:     meta,
		})
	}

	// Start -> Decoded. Dimensions are authoritative for all downstream
	// clamping; a malformed image is fatal.
	img, _, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		failure := apperrors.NewDecodeError("failed to decode source image", err)
		emit(observer.OutcomeFailure, failure.Error(), nil)
		return Result{Boxes: []geometry.TextBox{}, Err: failure}
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	emit(observer.StageDecoded, "", map[string]interface{}{"width": width, "height": height})

	// Decoded -> OcrDone. Any detection failure is fatal: nothing
	// downstream can run without regions.
	regions, err := p.detector.Detect(ctx, req.Image)
	if err != nil {
		failure := apperrors.NewDetectionError(describeStageError("text detection failed", err), err)
		emit(observer.OutcomeFailure, failure.Error(), nil)
		return Result{Boxes: []geometry.TextBox{}, Err: failure}
	}

	boxes := make([]geometry.TextBox, 0, len(regions))
	for _, region := range regions {
		if box, ok := geometry.BoxFromPolygon(region.Polygon, region.Text); ok {
			boxes = append(boxes, box)
		}
	}
	geometry.SortReadingOrder(boxes)
	emit(observer.StageOcrDone, "", map[string]interface{}{
		"regions": len(regions),
		"boxes":   len(boxes),
	})

	// OcrDone -> NoText: nothing to erase, so skip the inpaint call and
	// hand back the original bytes untouched.
	if len(boxes) == 0 {
		emit(observer.OutcomeSuccess, "", map[string]interface{}{"no_text": true})
		return Result{Success: true, Background: req.Image, Boxes: boxes}
	}

	// HasText -> MaskBuilt.
	removal := mask.Render(width, height, boxes, req.MaskPadding)
	maskPNG, err := mask.EncodePNG(removal)
	if err != nil {
		partial := apperrors.NewInpaintingError("failed to encode removal mask", err)
		emit(observer.OutcomePartialFailure, partial.Error(), nil)
		return Result{Boxes: boxes, Err: partial}
	}
	emit(observer.StageMaskBuilt, "", map[string]interface{}{
		"boxes":   len(boxes),
		"padding": req.MaskPadding,
	})

	// MaskBuilt -> InpaintDone. A failure here is partial: the caller can
	// still recover the detected text.
	cleaned, err := p.inpainter.Inpaint(ctx, req.Image, maskPNG)
	if err != nil {
		partial := apperrors.NewInpaintingError(describeStageError("background inpainting failed", err), err)
		emit(observer.OutcomePartialFailure, partial.Error(), nil)
		return Result{Boxes: boxes, Err: partial}
	}
	emit(observer.StageInpaintDone, "", map[string]interface{}{"background_bytes": len(cleaned)})

	emit(observer.OutcomeSuccess, "", nil)
	return Result{Success: true, Background: cleaned, Boxes: boxes}
}

// describeStageError folds the adapter's message into the stage message so
// the caller sees one human-readable line.
func describeStageError(prefix string, err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return fmt.Sprintf("%s: %s", prefix, appErr.Message)
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}
