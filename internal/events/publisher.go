package events

import (
	"context"
	"sync"

	"github.com/fieldworks/service-scheduling/internal/logx"
)

// Publisher delivers domain events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Subscriber handles one event. Subscribers must not block.
type Subscriber func(ctx context.Context, ev Event)

// Bus is a synchronous in-process fan-out publisher.
type Bus struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// NewBus creates an empty Bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers a subscriber for all subsequent events.
func (b *Bus) Subscribe(s Subscriber) {
	if s == nil {
		return
	}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
}

// Publish fans the event out to every subscriber in registration order.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, s := range subs {
		s(ctx, ev)
	}
}

// LogSubscriber returns a subscriber that records every event through logx.
func LogSubscriber(logger logx.Logger) Subscriber {
	return func(_ context.Context, ev Event) {
		logger.Info("domain event",
			logx.String("event", string(ev.Kind)),
			logx.String("event_id", ev.ID),
			logx.Int64("job_id", ev.JobID),
			logx.Int64("engineer_id", ev.EngineerID),
			logx.Int64("offer_id", ev.OfferID),
			logx.Date("date", ev.Date),
		)
	}
}

type nopPublisher struct{}

// Nop returns a Publisher that drops every event.
func Nop() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Event) {}

var _ Publisher = (*Bus)(nil)
