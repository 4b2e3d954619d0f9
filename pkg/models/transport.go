package models

import "go-slide-cleaner/internal/geometry"

// ProcessPageRequest asks for one slide to be cleaned. Exactly one of
// ImageData (base64) or ImageURL must be set. Field names follow the wire
// contract consumed by the re-typesetting frontend.
type ProcessPageRequest struct {
	ImageData     string `json:"imageData,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
	OcrAPIURL     string `json:"ocrApiUrl,omitempty"`
	InpaintAPIURL string `json:"inpaintApiUrl,omitempty"`
	MaskPadding   *int   `json:"maskPadding,omitempty"`
	ExpectedText  string `json:"expectedText,omitempty"`
}

// ProcessPageResponse mirrors the pipeline's terminal state. TextBoxes may
// be populated even when Success is false.
type ProcessPageResponse struct {
	Success         bool               `json:"success"`
	BackgroundImage *string            `json:"backgroundImage,omitempty"`
	TextBoxes       []geometry.TextBox `json:"textBoxes"`
	MatchScore      *float64           `json:"matchScore,omitempty"`
	Error           *string            `json:"error,omitempty"`
}

// ProcessBatchRequest cleans a deck of slides with shared options. Pages
// are processed independently and results keep input order.
type ProcessBatchRequest struct {
	Pages         []ProcessPageRequest `json:"pages"`
	OcrAPIURL     string               `json:"ocrApiUrl,omitempty"`
	InpaintAPIURL string               `json:"inpaintApiUrl,omitempty"`
	MaskPadding   *int                 `json:"maskPadding,omitempty"`
}

// ProcessBatchResponse carries one response per input page, in order.
type ProcessBatchResponse struct {
	Results []ProcessPageResponse `json:"results"`
}

// ProbeRequest names the service endpoint to check.
type ProbeRequest struct {
	URL string `json:"url" binding:"required"`
}

// ErrorResponse represents a request-level error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
