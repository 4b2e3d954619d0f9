package ocr

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
	"go-slide-cleaner/internal/geometry"
)

const predictPath = "/predict/ocr"

// statusOK are the service's success sentinels; anything else on the
// status channel is treated as an error.
func statusOK(status string) bool {
	return status == "000" || strings.EqualFold(status, "success")
}

type paddleRequest struct {
	Images []string `json:"images"`
}

type paddleResponse struct {
	Results []paddlePageResult `json:"results"`
	Msg     string             `json:"msg"`
	Status  string             `json:"status"`
}

type paddlePageResult struct {
	DtPolys   [][][]float64 `json:"dt_polys"`
	RecTexts  []string      `json:"rec_texts"`
	RecScores []float64     `json:"rec_scores"`
}

// PaddleClient talks to a PaddleOCR HTTP service.
type PaddleClient struct {
	client   *http.Client
	endpoint string
}

// NewPaddleClient creates a detector for the given service endpoint. The
// http.Client owns the timeout budget; detection is model inference and
// can take minutes.
func NewPaddleClient(client *http.Client, endpoint string) *PaddleClient {
	return &PaddleClient{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

// Detect sends the still-encoded image payload and maps the first page
// result into regions. Recognized strings align with polygons by index;
// a missing index yields an empty string, never an error.
func (c *PaddleClient) Detect(ctx context.Context, image []byte) ([]Region, error) {
	payload, err := json.Marshal(paddleRequest{
		Images: []string{base64.StdEncoding.EncodeToString(image)},
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode ocr request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+predictPath, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewValidationError("invalid ocr endpoint", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apperrors.NewTimeoutError("ocr request timed out", err)
		}
		return nil, apperrors.NewNetworkError("failed to reach ocr service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("ocr service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var parsed paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewNetworkError("failed to parse ocr response", err)
	}

	if parsed.Status != "" && !statusOK(parsed.Status) {
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("ocr service error: %s", parsed.Msg), nil)
	}

	if len(parsed.Results) == 0 {
		return nil, nil
	}

	page := parsed.Results[0]
	regions := make([]Region, 0, len(page.DtPolys))
	for i, rawPoly := range page.DtPolys {
		poly := make(geometry.Polygon, 0, len(rawPoly))
		for _, vertex := range rawPoly {
			var p geometry.Point
			if len(vertex) > 0 {
				p.X = vertex[0]
			}
			if len(vertex) > 1 {
				p.Y = vertex[1]
			}
			poly = append(poly, p)
		}

		var text string
		if i < len(page.RecTexts) {
			text = page.RecTexts[i]
		}
		var score float64
		if i < len(page.RecScores) {
			score = page.RecScores[i]
		}

		regions = append(regions, Region{Polygon: poly, Text: text, Score: score})
	}

	return regions, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
