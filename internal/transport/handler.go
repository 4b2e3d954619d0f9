package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-slide-cleaner/internal/config"
	apperrors "go-slide-cleaner/internal/errors"
	"go-slide-cleaner/internal/logger"
	"go-slide-cleaner/internal/observer"
	"go-slide-cleaner/internal/probe"
	"go-slide-cleaner/internal/service"
	"go-slide-cleaner/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewHandler wires the HTTP surface: slide processing, probes, health and
// metrics.
func NewHandler(svc service.SlideService, prober *probe.Prober, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)

	v1 := r.Group("/v1")
	v1.POST("/slides/process", processSlide(svc))
	v1.POST("/slides/process-batch", processDeck(svc))
	v1.POST("/probe/ocr", probeService(cfg, prober.CheckOCR))
	v1.POST("/probe/inpaint", probeService(cfg, prober.CheckInpaint))
	v1.GET("/metrics", metricsSnapshot(metrics))

	return r
}

func processSlide(svc service.SlideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Processing slide request")

		var req models.ProcessPageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.ProcessSlide(c.Request.Context(), req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to process slide", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"success":            resp.Success,
			"text_boxes":         len(resp.TextBoxes),
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Slide request completed")

		// Pipeline-stage failures travel inside the result; HTTP 200 means
		// the request itself was handled.
		c.JSON(http.StatusOK, resp)
	}
}

func processDeck(svc service.SlideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		var req models.ProcessBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Error("Invalid batch request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.ProcessDeck(c.Request.Context(), req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to process deck", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"pages":              len(resp.Results),
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Deck request completed")

		c.JSON(http.StatusOK, resp)
	}
}

func probeService(cfg *config.Config, check func(context.Context, string) probe.Result) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ProbeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.ProbeTimeout)
		defer cancel()

		c.JSON(http.StatusOK, check(ctx, req.URL))
	}
}

func metricsSnapshot(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Snapshot())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
