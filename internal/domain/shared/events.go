// Package shared holds the event plumbing the domain aggregates build on
package shared

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventHandler handles domain events
type EventHandler func(event DomainEvent) error

// AggregateRoot collects domain events until they are drained. The zero
// value is ready to use.
type AggregateRoot struct {
	events []DomainEvent
}

// AddEvent records an event for the next drain
func (a *AggregateRoot) AddEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// Events returns and clears pending domain events
func (a *AggregateRoot) Events() []DomainEvent {
	events := a.events
	a.events = nil
	return events
}

// Dispatcher routes events to the handlers registered for their name.
// Handlers run synchronously in registration order.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]EventHandler)}
}

// Register adds handler for every event named in names
func (d *Dispatcher) Register(handler EventHandler, names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, name := range names {
		d.handlers[name] = append(d.handlers[name], handler)
	}
}

// Dispatch hands event to its handlers. Events nobody listens for are
// dropped. Every handler runs even if an earlier one fails.
func (d *Dispatcher) Dispatch(event DomainEvent) error {
	d.mu.RLock()
	handlers := d.handlers[event.EventName()]
	d.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", event.EventName(), err))
		}
	}
	return errors.Join(errs...)
}

// DispatchAll dispatches events in order
func (d *Dispatcher) DispatchAll(events []DomainEvent) error {
	var errs []error
	for _, e := range events {
		if err := d.Dispatch(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
