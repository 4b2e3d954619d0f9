// Package inpaint adapts the IOPaint wire contract: a JSON request with
// base64 image and mask, and a raw binary image reply with no envelope.
package inpaint

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "go-slide-cleaner/internal/errors"
)

const inpaintPath = "/api/v1/inpaint"

// Inpainting strength parameters are fixed by this service, not
// caller-tunable.
const (
	ldmSteps   = 30
	hdStrategy = "Original"
)

// maxErrorBody bounds how much of a failure reply ends up in the error
// message.
const maxErrorBody = 200

type inpaintRequest struct {
	Image      string `json:"image"`
	Mask       string `json:"mask"`
	LdmSteps   int    `json:"ldm_steps"`
	HdStrategy string `json:"hd_strategy"`
}

// Inpainter fills masked regions of an image with plausible background.
type Inpainter interface {
	Inpaint(ctx context.Context, image, mask []byte) ([]byte, error)
}

// Client talks to an IOPaint-compatible HTTP service.
type Client struct {
	client   *http.Client
	endpoint string
}

// NewClient creates an inpainter for the given service endpoint.
func NewClient(client *http.Client, endpoint string) *Client {
	return &Client{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

// Inpaint sends the original image with its removal mask and returns the
// cleaned image bytes exactly as the service produced them.
func (c *Client) Inpaint(ctx context.Context, image, mask []byte) ([]byte, error) {
	payload, err := json.Marshal(inpaintRequest{
		Image:      base64.StdEncoding.EncodeToString(image),
		Mask:       base64.StdEncoding.EncodeToString(mask),
		LdmSteps:   ldmSteps,
		HdStrategy: hdStrategy,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode inpaint request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+inpaintPath, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewValidationError("invalid inpaint endpoint", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apperrors.NewTimeoutError("inpaint request timed out (model inference may need more time)", err)
		}
		return nil, apperrors.NewNetworkError("failed to reach inpaint service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("inpaint service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	cleaned, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read inpainted image", err)
	}

	return cleaned, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
