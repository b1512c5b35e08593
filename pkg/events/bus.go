package events

import (
	"sync"

	"go.uber.org/zap"
)

// Event carries a topic and an arbitrary payload.
type Event struct {
	Topic   string
	Payload interface{}
}

// Well-known topics published by the domain services.
const (
	TopicFormSaved       = "form.saved"
	TopicFormDeleted     = "form.deleted"
	TopicResponseCreated = "response.created"
	TopicResponseEdited  = "response.edited"
)

// Subscription is an explicit handle for a registered consumer. Consumers must
// call Close when their owning component shuts down.
type Subscription struct {
	id     int
	topics map[string]struct{}
	ch     chan Event
	bus    *Bus
	once   sync.Once
}

// C exposes the event channel for the subscriber.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close detaches the subscription from the bus and releases its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.remove(s.id)
	})
}

// Bus is an in-process publish/subscribe dispatcher. Publishing never blocks:
// subscribers that fall behind drop events and a warning is logged, so a slow
// consumer cannot stall a write path.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
	logger *zap.Logger
}

// NewBus constructs an event bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{subs: make(map[int]*Subscription), logger: logger}
}

// Subscribe registers a consumer for the given topics. An empty topic list
// subscribes to every event.
func (b *Bus) Subscribe(topics ...string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:  b.nextID,
		ch:  make(chan Event, 64),
		bus: b,
	}
	if len(topics) > 0 {
		sub.topics = make(map[string]struct{}, len(topics))
		for _, topic := range topics {
			sub.topics[topic] = struct{}{}
		}
	}
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers the event to all matching subscriptions.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.topics != nil {
			if _, ok := sub.topics[event.Topic]; !ok {
				continue
			}
		}
		select {
		case sub.ch <- event:
		default:
			b.logger.Warn("event dropped for slow subscriber", zap.String("topic", event.Topic))
		}
	}
}

// Close detaches every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}
