package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
}

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

type Handler func(ctx context.Context, event Event) error

// EventBus fans auth events out to in-process subscribers. Publish runs each
// handler on its own goroutine with a context detached from the caller;
// PublishSync runs them inline. Drain waits for outstanding Publish work.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	inflight sync.WaitGroup
	logger   *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe attaches handler to the named event types, or to every auth
// event type when none are named.
func (eb *EventBus) Subscribe(handler Handler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = AuthEventTypes
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()
	for _, eventType := range eventTypes {
		eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	}
	eb.logger.Debug("event handler subscribed", "event_types", eventTypes)
}

func (eb *EventBus) subscribers(eventType string) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return append([]Handler(nil), eb.handlers[eventType]...)
}

// Publish never blocks on handlers and never fails; handler errors are
// logged.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	detached := context.WithoutCancel(ctx)
	for _, handler := range eb.subscribers(event.EventType()) {
		handler := handler
		eb.inflight.Add(1)
		go func() {
			defer eb.inflight.Done()
			_ = eb.deliver(detached, handler, event)
		}()
	}
	return nil
}

// PublishSync runs every handler, even after one fails, and returns all
// failures joined.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	var errs []error
	for _, handler := range eb.subscribers(event.EventType()) {
		if err := eb.deliver(ctx, handler, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (eb *EventBus) deliver(ctx context.Context, handler Handler, event Event) error {
	if err := handler(ctx, event); err != nil {
		eb.logger.ErrorContext(ctx, "event handler failed",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err)
		return fmt.Errorf("%s handler: %w", event.EventType(), err)
	}
	return nil
}

// Drain blocks until handlers started by Publish have returned or ctx ends.
func (eb *EventBus) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		eb.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain events: %w", ctx.Err())
	}
}
