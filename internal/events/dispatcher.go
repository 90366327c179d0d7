package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownEventType is returned when publishing or subscribing to a type
// outside UserEventTypes.
var ErrUnknownEventType = errors.New("unknown event type")

// EventHandler reacts to a published change.
type EventHandler func(context.Context, Event) error

// Dispatcher fans directory changes out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// syncDispatcher runs subscribers inline, in subscription order, on the
// publishing goroutine.
type syncDispatcher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &syncDispatcher{subscribers: make(map[EventType][]EventHandler, len(UserEventTypes))}
}

// Publish delivers event to every subscriber of its type. A failing subscriber
// does not stop the rest; all failures come back joined.
func (d *syncDispatcher) Publish(ctx context.Context, event Event) error {
	if !event.Type.Known() {
		return fmt.Errorf("publish %q: %w", event.Type, ErrUnknownEventType)
	}

	d.mu.RLock()
	subs := append([]EventHandler(nil), d.subscribers[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handle := range subs {
		if err := handle(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s subscriber: %w", event.Type, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers handler for one event type. Unknown types are ignored.
func (d *syncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	if !eventType.Known() || handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[eventType] = append(d.subscribers[eventType], handler)
}

// SubscribeUserChanges registers handler for every user change type.
func SubscribeUserChanges(d Dispatcher, handler EventHandler) {
	for _, t := range UserEventTypes {
		d.Subscribe(t, handler)
	}
}
