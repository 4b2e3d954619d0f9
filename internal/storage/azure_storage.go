package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobSlideFetcher retrieves slides stored in Azure Blob storage.
type BlobSlideFetcher struct {
	client *azblob.Client
}

// NewBlobSlideFetcher creates a blob-backed slide fetcher using shared key
// credentials.
func NewBlobSlideFetcher(accountName, accountKey string) (*BlobSlideFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &BlobSlideFetcher{client: client}, nil
}

// FetchSlide downloads raw blob bytes. The URL path names the container;
// the blob query parameter names the blob.
func (s *BlobSlideFetcher) FetchSlide(ctx context.Context, slideURL string) ([]byte, error) {
	parsedURL, err := url.Parse(slideURL)
	if err != nil {
		return nil, fmt.Errorf("invalid blob URL: %w", err)
	}
	if len(parsedURL.Path) < 2 {
		return nil, fmt.Errorf("blob URL missing container: %s", slideURL)
	}

	containerName := parsedURL.Path[1:]
	blobName := parsedURL.Query().Get("blob")
	if blobName == "" {
		return nil, fmt.Errorf("blob URL missing blob parameter: %s", slideURL)
	}

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	body := downloadResponse.Body
	defer body.Close()

	return io.ReadAll(body)
}
