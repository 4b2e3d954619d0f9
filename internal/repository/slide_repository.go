package repository

import (
	"context"
	"net/url"
	"strings"

	"go-slide-cleaner/internal/storage"
	"go-slide-cleaner/pkg/validation"
)

// slideRepository routes slide URLs to the HTTP fetcher or, for Azure blob
// hosts, to the blob fetcher when one is configured.
type slideRepository struct {
	httpFetcher storage.SlideFetcher
	blobFetcher storage.SlideFetcher // nil when blob storage is not configured
	validator   *validation.URLValidator
}

// NewSlideRepository creates a repository over the given fetchers.
// blobFetcher may be nil.
func NewSlideRepository(httpFetcher, blobFetcher storage.SlideFetcher) SlideRepository {
	return &slideRepository{
		httpFetcher: httpFetcher,
		blobFetcher: blobFetcher,
		validator:   validation.NewURLValidator(),
	}
}

// FetchSlide retrieves slide bytes from the backend matching the URL.
func (r *slideRepository) FetchSlide(ctx context.Context, slideURL string) ([]byte, error) {
	if err := r.ValidateSlideURL(slideURL); err != nil {
		return nil, err
	}

	if isBlobHost(slideURL) {
		if r.blobFetcher == nil {
			return nil, ErrNoBlobStorage
		}
		return r.blobFetcher.FetchSlide(ctx, slideURL)
	}
	return r.httpFetcher.FetchSlide(ctx, slideURL)
}

// ValidateSlideURL validates if the provided URL is acceptable.
func (r *slideRepository) ValidateSlideURL(slideURL string) error {
	if slideURL == "" {
		return ErrInvalidSlideURL
	}
	return r.validator.ValidateURL(slideURL)
}

func isBlobHost(slideURL string) bool {
	parsed, err := url.Parse(slideURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(parsed.Hostname(), ".blob.core.windows.net")
}
