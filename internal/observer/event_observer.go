package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Stage identifies a pipeline state transition or terminal outcome.
type Stage string

const (
	// StageDecoded after the source image dimensions are known
	StageDecoded Stage = "decoded"
	// StageOcrDone after the detection call returned
	StageOcrDone Stage = "ocr_done"
	// StageMaskBuilt after the removal mask is rendered
	StageMaskBuilt Stage = "mask_built"
	// StageInpaintDone after the inpaint call returned
	StageInpaintDone Stage = "inpaint_done"

	// OutcomeSuccess terminal state, background cleaned
	OutcomeSuccess Stage = "success"
	// OutcomePartialFailure terminal state, detections preserved but cleanup failed
	OutcomePartialFailure Stage = "partial_failure"
	// OutcomeFailure terminal state, nothing usable produced
	OutcomeFailure Stage = "failure"
)

// PipelineEvent describes one stage transition of one pipeline invocation.
type PipelineEvent struct {
	Stage        Stage                  `json:"stage"`
	Timestamp    time.Time              `json:"timestamp"`
	Elapsed      time.Duration          `json:"elapsed"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Terminal reports whether the event ends an invocation.
func (e PipelineEvent) Terminal() bool {
	switch e.Stage {
	case OutcomeSuccess, OutcomePartialFailure, OutcomeFailure:
		return true
	}
	return false
}

// Observer receives pipeline events.
type Observer interface {
	OnEvent(ctx context.Context, event PipelineEvent)
	GetObserverName() string
}

// Subject publishes pipeline events to subscribed observers.
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event PipelineEvent)
}

// LoggingObserver emits one structured log line per stage transition.
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent logs the event at a level matching its outcome.
func (o *LoggingObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	fields := logrus.Fields{
		"stage":      event.Stage,
		"elapsed_ms": event.Elapsed.Milliseconds(),
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.Stage {
	case OutcomeSuccess:
		o.logger.WithFields(fields).Info("Page processing completed")
	case OutcomePartialFailure:
		o.logger.WithFields(fields).Warn("Page processed with partial failure")
	case OutcomeFailure:
		o.logger.WithFields(fields).Error("Page processing failed")
	default:
		o.logger.WithFields(fields).Debug("Pipeline stage completed")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver aggregates invocation counts and durations.
type MetricsObserver struct {
	mu              sync.RWMutex
	totalPages      int64
	successes       int64
	partialFailures int64
	failures        int64
	totalElapsed    time.Duration
}

// NewMetricsObserver creates a metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent counts terminal events; intermediate stages carry no totals.
func (o *MetricsObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	if !event.Terminal() {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.totalPages++
	o.totalElapsed += event.Elapsed
	switch event.Stage {
	case OutcomeSuccess:
		o.successes++
	case OutcomePartialFailure:
		o.partialFailures++
	case OutcomeFailure:
		o.failures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot returns current aggregates.
func (o *MetricsObserver) Snapshot() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgElapsed := time.Duration(0)
	if o.totalPages > 0 {
		avgElapsed = o.totalElapsed / time.Duration(o.totalPages)
	}

	return map[string]interface{}{
		"total_pages":      o.totalPages,
		"successes":        o.successes,
		"partial_failures": o.partialFailures,
		"failures":         o.failures,
		"total_elapsed_ms": o.totalElapsed.Milliseconds(),
		"avg_elapsed_ms":   avgElapsed.Milliseconds(),
	}
}

// EventPublisher implements Subject.
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates an event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to every observer. Delivery is
// synchronous: stage events are cheap to handle and ordering matters for
// the metrics totals.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event PipelineEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, obs := range observers {
		func(o Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", o.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			o.OnEvent(ctx, event)
		}(obs)
	}
}
