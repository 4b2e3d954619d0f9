package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"strings"
	"testing"

	apperrors "go-slide-cleaner/internal/errors"
	"go-slide-cleaner/internal/geometry"
	"go-slide-cleaner/internal/ocr"
)

type stubDetector struct {
	regions []ocr.Region
	err     error
	calls   int
}

func (d *stubDetector) Detect(ctx context.Context, img []byte) ([]ocr.Region, error) {
	d.calls++
	return d.regions, d.err
}

type stubInpainter struct {
	output    []byte
	err       error
	calls     int
	lastImage []byte
	lastMask  []byte
}

func (i *stubInpainter) Inpaint(ctx context.Context, img, mask []byte) ([]byte, error) {
	i.calls++
	i.lastImage = img
	i.lastMask = mask
	if i.err != nil {
		return nil, i.err
	}
	return i.output, nil
}

func encodeTestImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func polyRect(x1, y1, x2, y2 float64) geometry.Polygon {
	return geometry.Polygon{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}}
}

func TestProcessPageNoTextShortCircuit(t *testing.T) {
	source := encodeTestImage(t, 100, 60)
	detector := &stubDetector{}
	inpainter := &stubInpainter{output: []byte("should not be used")}

	result := New(detector, inpainter).ProcessPage(context.Background(), Request{Image: source, MaskPadding: 5})

	if !result.Success {
		t.Fatalf("expected success, got error: %v", result.Err)
	}
	if !bytes.Equal(result.Background, source) {
		t.Error("background must be the original, unmodified bytes")
	}
	if result.Boxes == nil || len(result.Boxes) != 0 {
		t.Errorf("boxes = %v, want empty non-nil list", result.Boxes)
	}
	if inpainter.calls != 0 {
		t.Error("inpaint must not be called when there is nothing to erase")
	}
}

func TestProcessPageSingleBox(t *testing.T) {
	source := encodeTestImage(t, 100, 60)
	cleaned := []byte("cleaned-image-bytes")
	detector := &stubDetector{regions: []ocr.Region{
		{Polygon: polyRect(10, 10, 50, 30), Text: "Hi"},
	}}
	inpainter := &stubInpainter{output: cleaned}

	result := New(detector, inpainter).ProcessPage(context.Background(), Request{Image: source, MaskPadding: 5})

	if !result.Success {
		t.Fatalf("expected success, got error: %v", result.Err)
	}
	if !bytes.Equal(result.Background, cleaned) {
		t.Error("background must be the inpaint service output")
	}
	if len(result.Boxes) != 1 {
		t.Fatalf("boxes = %d, want 1", len(result.Boxes))
	}

	box := result.Boxes[0]
	if box.X != 10 || box.Y != 10 || box.Width != 40 || box.Height != 20 {
		t.Errorf("box geometry = %+v, want {10 10 40 20}", box)
	}
	if box.Text != "Hi" {
		t.Errorf("box text = %q, want Hi", box.Text)
	}
	if box.FontSize != 10.5 {
		t.Errorf("fontSize = %v, want 10.5", box.FontSize)
	}

	// The mask sent to the inpainter covers [5,45) x [5,35) and nothing else
	mask, err := png.Decode(bytes.NewReader(inpainter.lastMask))
	if err != nil {
		t.Fatalf("mask is not valid PNG: %v", err)
	}
	if mask.Bounds() != image.Rect(0, 0, 100, 60) {
		t.Fatalf("mask bounds = %v, want source dimensions", mask.Bounds())
	}
	for y := 0; y < 60; y++ {
		for x := 0; x < 100; x++ {
			gray := color.GrayModel.Convert(mask.At(x, y)).(color.Gray).Y
			inside := x >= 5 && x < 45 && y >= 5 && y < 35
			if inside && gray != 255 {
				t.Fatalf("mask pixel (%d,%d) = %d, want 255", x, y, gray)
			}
			if !inside && gray != 0 {
				t.Fatalf("mask pixel (%d,%d) = %d, want 0", x, y, gray)
			}
		}
	}
	if !bytes.Equal(inpainter.lastImage, source) {
		t.Error("inpainter must receive the original image bytes")
	}
}

func TestProcessPageDecodeFailure(t *testing.T) {
	detector := &stubDetector{}
	inpainter := &stubInpainter{}

	result := New(detector, inpainter).ProcessPage(context.Background(), Request{Image: []byte("not an image")})

	if result.Success {
		t.Fatal("expected failure")
	}
	if !apperrors.IsType(result.Err, apperrors.ErrorTypeDecode) {
		t.Errorf("error type = %v, want decode", result.Err)
	}
	if result.Boxes == nil || len(result.Boxes) != 0 {
		t.Errorf("boxes = %v, want empty non-nil list", result.Boxes)
	}
	if result.Background != nil {
		t.Error("no background on decode failure")
	}
	if detector.calls != 0 {
		t.Error("detector must not run on decode failure")
	}
}

func TestProcessPageDetectionFailure(t *testing.T) {
	source := encodeTestImage(t, 100, 60)
	detector := &stubDetector{err: apperrors.NewTimeoutError("ocr request timed out", nil)}
	inpainter := &stubInpainter{}

	result := New(detector, inpainter).ProcessPage(context.Background(), Request{Image: source})

	if result.Success {
		t.Fatal("expected failure")
	}
	if !apperrors.IsType(result.Err, apperrors.ErrorTypeDetection) {
		t.Errorf("error type = %v, want detection", result.Err)
	}
	if !strings.Contains(result.Err.Error(), "timed out") {
		t.Errorf("error %q must surface the timeout message", result.Err.Error())
	}
	if result.Boxes == nil || len(result.Boxes) != 0 {
		t.Errorf("boxes = %v, want empty non-nil list", result.Boxes)
	}
	if inpainter.calls != 0 {
		t.Error("inpaint must not run after detection failure")
	}
}

func TestProcessPageInpaintFailureIsPartial(t *testing.T) {
	source := encodeTestImage(t, 100, 60)
	detector := &stubDetector{regions: []ocr.Region{
		{Polygon: polyRect(10, 10, 50, 30), Text: "survives"},
	}}
	inpainter := &stubInpainter{err: apperrors.NewNetworkError("inpaint service returned status 500: boom", nil)}

	result := New(detector, inpainter).ProcessPage(context.Background(), Request{Image: source, MaskPadding: 5})

	if result.Success {
		t.Fatal("expected partial failure")
	}
	if !apperrors.IsType(result.Err, apperrors.ErrorTypeInpainting) {
		t.Errorf("error type = %v, want inpainting", result.Err)
	}
	// Detections survive a cleanup failure
	if len(result.Boxes) != 1 || result.Boxes[0].Text != "survives" {
		t.Errorf("boxes = %+v, want the detected box preserved", result.Boxes)
	}
	if result.Background != nil {
		t.Error("no background on inpaint failure")
	}
}

func TestProcessPageUndersizedRegionBehavesLikeNoText(t *testing.T) {
	source := encodeTestImage(t, 100, 60)
	// Width 8 is below the minimum box dimension
	detector := &stubDetector{regions: []ocr.Region{
		{Polygon: polyRect(10, 10, 18, 30), Text: "tiny"},
	}}
	inpainter := &stubInpainter{}

	result := New(detector, inpainter).ProcessPage(context.Background(), Request{Image: source, MaskPadding: 5})

	if !result.Success {
		t.Fatalf("expected success, got error: %v", result.Err)
	}
	if !bytes.Equal(result.Background, source) {
		t.Error("background must be the original bytes when every region is filtered")
	}
	if len(result.Boxes) != 0 {
		t.Errorf("boxes = %d, want 0", len(result.Boxes))
	}
	if inpainter.calls != 0 {
		t.Error("inpaint must not run when every region is filtered")
	}
}

func TestProcessPageReadingOrder(t *testing.T) {
	source := encodeTestImage(t, 400, 300)
	detector := &stubDetector{regions: []ocr.Region{
		{Polygon: polyRect(200, 100, 300, 120), Text: "third"},
		{Polygon: polyRect(10, 105, 100, 125), Text: "second"},
		{Polygon: polyRect(10, 10, 100, 30), Text: "first"},
	}}
	inpainter := &stubInpainter{output: []byte("bg")}

	result := New(detector, inpainter).ProcessPage(context.Background(), Request{Image: source, MaskPadding: 2})

	if !result.Success {
		t.Fatalf("expected success, got error: %v", result.Err)
	}
	got := []string{result.Boxes[0].Text, result.Boxes[1].Text, result.Boxes[2].Text}
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reading order = %v, want %v", got, want)
	}
}

func TestProcessPageDeterministic(t *testing.T) {
	source := encodeTestImage(t, 100, 60)
	regions := []ocr.Region{
		{Polygon: polyRect(10, 10, 50, 30), Text: "Hi"},
		{Polygon: polyRect(55, 12, 95, 32), Text: "there"},
	}

	run := func() ([]geometry.TextBox, []byte) {
		detector := &stubDetector{regions: regions}
		inpainter := &stubInpainter{output: []byte("bg")}
		result := New(detector, inpainter).ProcessPage(context.Background(), Request{Image: source, MaskPadding: 5})
		if !result.Success {
			t.Fatalf("expected success, got error: %v", result.Err)
		}
		return result.Boxes, inpainter.lastMask
	}

	boxes1, mask1 := run()
	boxes2, mask2 := run()

	if !reflect.DeepEqual(boxes1, boxes2) {
		t.Error("two runs over the same input must produce identical boxes")
	}
	if !bytes.Equal(mask1, mask2) {
		t.Error("two runs over the same input must produce identical mask bytes")
	}
}
