package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SlideFetcher retrieves a still-encoded slide image. The pipeline decodes
// the bytes itself; fetchers never decode.
type SlideFetcher interface {
	FetchSlide(ctx context.Context, slideURL string) ([]byte, error)
}

// HTTPSlideFetcher fetches slides over HTTP with bounded retries.
type HTTPSlideFetcher struct {
	client *http.Client
}

// NewHTTPSlideFetcher creates an HTTP slide fetcher with a transport tuned
// for occasional single-image downloads.
func NewHTTPSlideFetcher() SlideFetcher {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPSlideFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

const fetchAttempts = 3

// FetchSlide downloads the image payload. Network errors and 5xx replies
// are retried with linear backoff; 4xx replies are not.
func (h *HTTPSlideFetcher) FetchSlide(ctx context.Context, slideURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, slideURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/jpeg, */*")
	req.Header.Set("User-Agent", "Go-Slide-Cleaner/1.0")

	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = err
				continue
			}
			return data, nil
		}

		resp.Body.Close()
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Client errors will not heal on retry
			return nil, fmt.Errorf("client error: status code %d", resp.StatusCode)
		}
		lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("failed to fetch slide after %d attempts: %w", fetchAttempts, lastErr)
}
