package factory

import (
	"net/http"

	"go-slide-cleaner/internal/config"
	"go-slide-cleaner/internal/inpaint"
	"go-slide-cleaner/internal/ocr"
)

// ClientFactory builds the per-request service adapters. One shared
// http.Client carries the generous pipeline timeout for both services;
// endpoints vary per request.
type ClientFactory struct {
	cfg    *config.Config
	client *http.Client
}

// NewClientFactory creates the adapter factory.
func NewClientFactory(cfg *config.Config) *ClientFactory {
	return &ClientFactory{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.PipelineTimeout,
		},
	}
}

// Detector returns the configured detection engine. The remote engine is
// bound to the given endpoint; the local engine ignores it.
func (f *ClientFactory) Detector(endpoint string) ocr.Detector {
	switch f.cfg.DetectorEngine {
	case config.EngineTesseract:
		return ocr.NewTesseractDetector(f.cfg.TesseractLangs)
	default:
		return ocr.NewPaddleClient(f.client, endpoint)
	}
}

// Inpainter returns an inpaint adapter bound to the given endpoint.
func (f *ClientFactory) Inpainter(endpoint string) inpaint.Inpainter {
	return inpaint.NewClient(f.client, endpoint)
}
