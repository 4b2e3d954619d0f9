package repository

import "context"

// SlideRepository resolves slide image bytes from a caller-supplied URL,
// picking a storage backend per URL.
type SlideRepository interface {
	// FetchSlide retrieves the still-encoded slide image
	FetchSlide(ctx context.Context, slideURL string) ([]byte, error)

	// ValidateSlideURL validates if the provided URL is acceptable
	ValidateSlideURL(slideURL string) error
}
