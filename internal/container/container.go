package container

import (
	"fmt"
	"net/http"

	"go-slide-cleaner/internal/config"
	"go-slide-cleaner/internal/factory"
	"go-slide-cleaner/internal/logger"
	"go-slide-cleaner/internal/observer"
	"go-slide-cleaner/internal/probe"
	"go-slide-cleaner/internal/repository"
	"go-slide-cleaner/internal/service"
	"go-slide-cleaner/internal/storage"
	"go-slide-cleaner/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config  *config.Config
	repo    repository.SlideRepository
	service service.SlideService
	metrics *observer.MetricsObserver
	pool    *service.WorkerPool
	handler http.Handler
}

// NewContainer builds the dependency graph.
func NewContainer(cfg *config.Config) (*Container, error) {
	httpFetcher := storage.NewHTTPSlideFetcher()

	var blobFetcher storage.SlideFetcher
	if cfg.AzureConfigured() {
		fetcher, err := storage.NewBlobSlideFetcher(cfg.AzureStorageAccount, cfg.AzureStorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
		}
		blobFetcher = fetcher
	}

	repo := repository.NewSlideRepository(httpFetcher, blobFetcher)
	clients := factory.NewClientFactory(cfg)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	pool := service.NewWorkerPool(cfg.BatchWorkers)
	pool.Start()

	svc := service.NewSlideService(cfg, repo, clients, events, pool)

	prober := probe.NewProber(&http.Client{Timeout: cfg.ProbeTimeout})
	handler := transport.NewHandler(svc, prober, metrics, cfg)

	return &Container{
		config:  cfg,
		repo:    repo,
		service: svc,
		metrics: metrics,
		pool:    pool,
		handler: handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases long-lived resources.
func (c *Container) Close() {
	c.pool.Close()
}
