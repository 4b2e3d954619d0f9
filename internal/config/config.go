package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// DetectorEngine selects the text-detection backend.
type DetectorEngine string

const (
	// EnginePaddle talks to a remote PaddleOCR HTTP service.
	EnginePaddle DetectorEngine = "paddle"
	// EngineTesseract runs Tesseract in-process via gosseract.
	EngineTesseract DetectorEngine = "tesseract"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// Detection and inpainting calls run model inference and can take
	// minutes; this budget is deliberately generous. Probes are liveness
	// checks and stay on a seconds-scale budget.
	PipelineTimeout time.Duration
	ProbeTimeout    time.Duration

	OCRAPIURL     string
	InpaintAPIURL string
	MaskPadding   int

	DetectorEngine DetectorEngine
	TesseractLangs string

	BatchWorkers int

	AzureStorageAccount string
	AzureStorageKey     string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureConfigured reports whether blob storage credentials are present.
func (c *Config) AzureConfigured() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8090"),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", 6*time.Minute),
		MaxRequestBodySize:  parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 32*1024*1024), // 32MB, base64 slides are large
		PipelineTimeout:     parseDurationOrDefault("PIPELINE_TIMEOUT", 5*time.Minute),
		ProbeTimeout:        parseDurationOrDefault("PROBE_TIMEOUT", 10*time.Second),
		OCRAPIURL:           getEnvOrDefault("OCR_API_URL", "http://127.0.0.1:8866"),
		InpaintAPIURL:       getEnvOrDefault("INPAINT_API_URL", "http://127.0.0.1:8080"),
		MaskPadding:         int(parseIntOrDefault("MASK_PADDING", 5)),
		DetectorEngine:      DetectorEngine(getEnvOrDefault("DETECTOR_ENGINE", string(EnginePaddle))),
		TesseractLangs:      getEnvOrDefault("TESSERACT_LANGS", "eng"),
		BatchWorkers:        int(parseIntOrDefault("BATCH_WORKERS", 4)),
		AzureStorageAccount: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:     os.Getenv("AZURE_STORAGE_KEY"),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.PipelineTimeout <= 0 || cfg.ProbeTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, pipeline=%s, probe=%s)",
			cfg.RequestTimeout, cfg.PipelineTimeout, cfg.ProbeTimeout)
	}
	if cfg.MaskPadding < 0 {
		return nil, fmt.Errorf("MASK_PADDING must be >= 0 (got %d)", cfg.MaskPadding)
	}
	if cfg.BatchWorkers < 1 {
		return nil, fmt.Errorf("BATCH_WORKERS must be >= 1 (got %d)", cfg.BatchWorkers)
	}
	switch cfg.DetectorEngine {
	case EnginePaddle, EngineTesseract:
	default:
		return nil, fmt.Errorf("invalid DETECTOR_ENGINE: %q", cfg.DetectorEngine)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
