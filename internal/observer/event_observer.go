package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ClassificationEvent describes one step of a classification call.
type ClassificationEvent struct {
	EventType EventType     `json:"event_type"`
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation"`
	Image     string        `json:"image"`
	Duration  time.Duration `json:"duration"`
	// Result is the verdict; only meaningful for completed events.
	Result       bool           `json:"result"`
	ErrorType    string         `json:"error_type,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// EventType represents the type of classification event
type EventType string

const (
	// ClassificationStarted when a check begins
	ClassificationStarted EventType = "classification_started"
	// ClassificationCompleted when a check produced a verdict
	ClassificationCompleted EventType = "classification_completed"
	// ClassificationFaulted when a check fell back to the safe default
	ClassificationFaulted EventType = "classification_faulted"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ClassificationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ClassificationEvent)
}

// LoggingObserver logs classification events
type LoggingObserver struct {
	logger logrus.FieldLogger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger logrus.FieldLogger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles classification events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ClassificationEvent) {
	fields := logrus.Fields{
		"event_type":  event.EventType,
		"operation":   event.Operation,
		"image":       event.Image,
		"duration_ms": event.Duration.Milliseconds(),
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
		fields["error_type"] = event.ErrorType
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case ClassificationStarted:
		o.logger.WithFields(fields).Debug("Classification started")
	case ClassificationCompleted:
		fields["result"] = event.Result
		o.logger.WithFields(fields).Info("Classification completed")
	case ClassificationFaulted:
		o.logger.WithFields(fields).Warn("Classification could not be evaluated")
	default:
		o.logger.WithFields(fields).Info("Classification event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// OperationStats aggregates events for one operation.
type OperationStats struct {
	Started       int64            `json:"started"`
	Completed     int64            `json:"completed"`
	Positive      int64            `json:"positive"`
	Faulted       int64            `json:"faulted"`
	FaultsByType  map[string]int64 `json:"faults_by_type,omitempty"`
	TotalDuration time.Duration    `json:"total_duration"`
	AvgDuration   time.Duration    `json:"avg_duration"`
}

// MetricsObserver collects per-operation counters
type MetricsObserver struct {
	mu         sync.RWMutex
	operations map[string]*OperationStats
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{operations: make(map[string]*OperationStats)}
}

// OnEvent handles classification events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ClassificationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	stats, ok := o.operations[event.Operation]
	if !ok {
		stats = &OperationStats{FaultsByType: make(map[string]int64)}
		o.operations[event.Operation] = stats
	}

	switch event.EventType {
	case ClassificationStarted:
		stats.Started++
	case ClassificationCompleted:
		stats.Completed++
		stats.TotalDuration += event.Duration
		if event.Result {
			stats.Positive++
		}
	case ClassificationFaulted:
		stats.Faulted++
		stats.FaultsByType[event.ErrorType]++
		stats.TotalDuration += event.Duration
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns a copy of the current per-operation counters
func (o *MetricsObserver) GetMetrics() map[string]OperationStats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[string]OperationStats, len(o.operations))
	for op, stats := range o.operations {
		snapshot := *stats
		snapshot.FaultsByType = make(map[string]int64, len(stats.FaultsByType))
		for k, v := range stats.FaultsByType {
			snapshot.FaultsByType[k] = v
		}
		if finished := stats.Completed + stats.Faulted; finished > 0 {
			snapshot.AvgDuration = stats.TotalDuration / time.Duration(finished)
		}
		out[op] = snapshot
	}
	return out
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
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

// NotifyObservers delivers event to every observer on the caller's
// goroutine. A panicking observer is logged and skipped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ClassificationEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		notify(ctx, observer, event)
	}
}

func notify(ctx context.Context, obs Observer, event ClassificationEvent) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
