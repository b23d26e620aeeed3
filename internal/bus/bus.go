// Package bus is an in-process publish/subscribe channel. Each Bus owns a
// single dispatcher goroutine so handlers never run concurrently with each
// other, the way callbacks behave on a browser event loop.
package bus

import (
	"sync"
)

type Event struct {
	Topic *Name
	Data  any
}

type Handler func(event *Event)

type Subscription struct {
	id      uint64
	filter  *Filter
	handler Handler
}

type Bus struct {
	mux           sync.RWMutex
	subscriptions []*Subscription
	nextID        uint64

	queueMux sync.Mutex
	queue    []*Event
	closed   bool
	wake     chan struct{}
	done     chan struct{}
}

func New() *Bus {
	bus := &Bus{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	go bus.dispatch()

	return bus
}

// Subscribe registers handler for every event whose topic matches filter.
// Handlers are called in subscription order.
func (bus *Bus) Subscribe(filter string, handler Handler) (*Subscription, error) {
	f, err := NewFilter(filter)
	if err != nil {
		return nil, err
	}

	bus.mux.Lock()
	defer bus.mux.Unlock()

	bus.nextID++
	sub := &Subscription{id: bus.nextID, filter: f, handler: handler}
	bus.subscriptions = append(bus.subscriptions, sub)

	return sub, nil
}

func (bus *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	bus.mux.Lock()
	defer bus.mux.Unlock()

	for i, s := range bus.subscriptions {
		if s.id == sub.id {
			bus.subscriptions = append(bus.subscriptions[:i:i], bus.subscriptions[i+1:]...)
			return
		}
	}
}

// Publish queues the event and returns without waiting for handlers.
// Events are delivered in the order they were published.
func (bus *Bus) Publish(event *Event) {
	bus.queueMux.Lock()
	if bus.closed {
		bus.queueMux.Unlock()
		return
	}
	bus.queue = append(bus.queue, event)
	bus.queueMux.Unlock()

	select {
	case bus.wake <- struct{}{}:
	default:
	}
}

// Close stops the dispatcher. Queued events that were not delivered yet are
// dropped and later publishes are ignored.
func (bus *Bus) Close() {
	bus.queueMux.Lock()
	defer bus.queueMux.Unlock()

	if bus.closed {
		return
	}

	bus.closed = true
	bus.queue = nil
	close(bus.done)
}

func (bus *Bus) dispatch() {
	for {
		select {
		case <-bus.done:
			return
		case <-bus.wake:
		}

		for {
			event, ok := bus.pop()
			if !ok {
				break
			}

			bus.deliver(event)
		}
	}
}

func (bus *Bus) pop() (*Event, bool) {
	bus.queueMux.Lock()
	defer bus.queueMux.Unlock()

	if bus.closed || len(bus.queue) == 0 {
		return nil, false
	}

	event := bus.queue[0]
	bus.queue[0] = nil
	bus.queue = bus.queue[1:]

	return event, true
}

func (bus *Bus) deliver(event *Event) {
	bus.mux.RLock()
	handlers := make([]Handler, 0, len(bus.subscriptions))
	for _, sub := range bus.subscriptions {
		if sub.filter.Match(event.Topic) {
			handlers = append(handlers, sub.handler)
		}
	}
	bus.mux.RUnlock()

	// handlers may subscribe or unsubscribe, so the lock is not held here
	for _, handler := range handlers {
		handler(event)
	}
}
