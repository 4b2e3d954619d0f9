package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"go-slide-cleaner/internal/config"
	apperrors "go-slide-cleaner/internal/errors"
	"go-slide-cleaner/internal/factory"
	"go-slide-cleaner/internal/geometry"
	"go-slide-cleaner/internal/observer"
	"go-slide-cleaner/internal/pipeline"
	"go-slide-cleaner/internal/repository"
	"go-slide-cleaner/internal/textmetrics"
	"go-slide-cleaner/pkg/models"
	"go-slide-cleaner/pkg/validation"
)

// SlideService exposes the cleaning pipeline to the transport layer.
type SlideService interface {
	// ProcessSlide cleans one slide. The returned error covers
	// request-level problems only; pipeline failures land inside the
	// response.
	ProcessSlide(ctx context.Context, req models.ProcessPageRequest) (*models.ProcessPageResponse, error)

	// ProcessDeck cleans a deck of slides concurrently, preserving page
	// order in the results.
	ProcessDeck(ctx context.Context, req models.ProcessBatchRequest) (*models.ProcessBatchResponse, error)
}

type slideService struct {
	cfg       *config.Config
	repo      repository.SlideRepository
	clients   *factory.ClientFactory
	events    observer.Subject
	pool      *WorkerPool
	validator *validation.URLValidator
}

// NewSlideService creates the service over its collaborators. events may
// be nil.
func NewSlideService(
	cfg *config.Config,
	repo repository.SlideRepository,
	clients *factory.ClientFactory,
	events observer.Subject,
	pool *WorkerPool,
) SlideService {
	return &slideService{
		cfg:       cfg,
		repo:      repo,
		clients:   clients,
		events:    events,
		pool:      pool,
		validator: validation.NewURLValidator(),
	}
}

func (s *slideService) ProcessSlide(ctx context.Context, req models.ProcessPageRequest) (*models.ProcessPageResponse, error) {
	imageBytes, err := s.resolveImage(ctx, req)
	if err != nil {
		return nil, err
	}

	padding := s.cfg.MaskPadding
	if req.MaskPadding != nil {
		if *req.MaskPadding < 0 {
			return nil, apperrors.NewValidationError("maskPadding must be >= 0", nil)
		}
		padding = *req.MaskPadding
	}

	ocrURL, inpaintURL, err := s.resolveEndpoints(req.OcrAPIURL, req.InpaintAPIURL)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.PipelineTimeout)
	defer cancel()

	p := pipeline.New(
		s.clients.Detector(ocrURL),
		s.clients.Inpainter(inpaintURL),
		pipeline.WithEvents(s.events),
	)
	result := p.ProcessPage(runCtx, pipeline.Request{
		Image:       imageBytes,
		MaskPadding: padding,
	})

	return s.buildResponse(req, result), nil
}

func (s *slideService) ProcessDeck(ctx context.Context, req models.ProcessBatchRequest) (*models.ProcessBatchResponse, error) {
	if len(req.Pages) == 0 {
		return nil, apperrors.NewValidationError("pages must not be empty", nil)
	}

	responses := make([]models.ProcessPageResponse, len(req.Pages))
	for i := range req.Pages {
		i := i
		page := mergePageRequest(req, req.Pages[i])
		s.pool.Submit(func() {
			resp, err := s.ProcessSlide(ctx, page)
			if err != nil {
				msg := err.Error()
				responses[i] = models.ProcessPageResponse{
					TextBoxes: []geometry.TextBox{},
					Error:     &msg,
				}
				return
			}
			responses[i] = *resp
		})
	}
	s.pool.Wait()

	return &models.ProcessBatchResponse{Results: responses}, nil
}

// mergePageRequest applies deck-level defaults to one page; page-level
// values win.
func mergePageRequest(deck models.ProcessBatchRequest, page models.ProcessPageRequest) models.ProcessPageRequest {
	if page.OcrAPIURL == "" {
		page.OcrAPIURL = deck.OcrAPIURL
	}
	if page.InpaintAPIURL == "" {
		page.InpaintAPIURL = deck.InpaintAPIURL
	}
	if page.MaskPadding == nil {
		page.MaskPadding = deck.MaskPadding
	}
	return page
}

func (s *slideService) resolveImage(ctx context.Context, req models.ProcessPageRequest) ([]byte, error) {
	switch {
	case req.ImageData != "" && req.ImageURL != "":
		return nil, apperrors.NewValidationError("imageData and imageUrl are mutually exclusive", nil)
	case req.ImageData != "":
		data, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			return nil, apperrors.NewValidationError("imageData is not valid base64", err)
		}
		return data, nil
	case req.ImageURL != "":
		data, err := s.repo.FetchSlide(ctx, req.ImageURL)
		if err != nil {
			return nil, apperrors.NewNetworkError("failed to fetch slide image", err)
		}
		return data, nil
	default:
		return nil, apperrors.NewValidationError("either imageData or imageUrl is required", nil)
	}
}

func (s *slideService) resolveEndpoints(ocrURL, inpaintURL string) (string, string, error) {
	if ocrURL == "" {
		ocrURL = s.cfg.OCRAPIURL
	}
	if inpaintURL == "" {
		inpaintURL = s.cfg.InpaintAPIURL
	}
	if err := s.validator.ValidateURL(ocrURL); err != nil {
		return "", "", apperrors.NewValidationError("invalid ocr endpoint URL", err)
	}
	if err := s.validator.ValidateURL(inpaintURL); err != nil {
		return "", "", apperrors.NewValidationError("invalid inpaint endpoint URL", err)
	}
	return ocrURL, inpaintURL, nil
}

func (s *slideService) buildResponse(req models.ProcessPageRequest, result pipeline.Result) *models.ProcessPageResponse {
	resp := &models.ProcessPageResponse{
		Success:   result.Success,
		TextBoxes: result.Boxes,
	}
	if resp.TextBoxes == nil {
		resp.TextBoxes = []geometry.TextBox{}
	}

	if result.Background != nil {
		encoded := base64.StdEncoding.EncodeToString(result.Background)
		resp.BackgroundImage = &encoded
	}

	if result.Err != nil {
		msg := errorMessage(result.Err)
		resp.Error = &msg
	}

	// A match score makes sense only once detection produced text, which
	// includes the partial-failure case.
	if req.ExpectedText != "" && (result.Success || apperrors.IsType(result.Err, apperrors.ErrorTypeInpainting)) {
		score := textmetrics.MatchScore(req.ExpectedText, joinBoxText(result.Boxes))
		resp.MatchScore = &score
	}

	return resp
}

func joinBoxText(boxes []geometry.TextBox) string {
	parts := make([]string, 0, len(boxes))
	for _, box := range boxes {
		if box.Text != "" {
			parts = append(parts, box.Text)
		}
	}
	return strings.Join(parts, " ")
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
