// Package events provides the outbound domain event interface of the
// finance core. Consumers like the audit trail writer and the
// notification system subscribe to these events; delivery is
// at-least-once and events are only published after the state change
// they describe has been persisted.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is a domain event with its post-mutation payload.
type Event struct {
	Name    string    `json:"name" example:"payment.executed"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload"`
}

// New returns an event stamped with the current UTC time.
func New(name string, payload any) Event {
	return Event{
		Name:    name,
		Time:    time.Now().In(time.UTC),
		Payload: payload,
	}
}

// Publisher is the sink for domain events.
type Publisher interface {
	Publish(event Event)
}

// Log publishes events to a zerolog logger.
type Log struct {
	Logger zerolog.Logger
}

func (l Log) Publish(event Event) {
	l.Logger.Info().
		Str("event", event.Name).
		Time("time", event.Time).
		Interface("payload", event.Payload).
		Msg("domain event")
}

// Channel publishes events to a buffered channel so that an in-process
// consumer can drain them. When the buffer is full the oldest event is
// dropped; consumers have to treat delivery as at-least-once over the
// lifetime of the process, not as a durable log.
type Channel struct {
	mu sync.Mutex
	c  chan Event
}

// NewChannel returns a channel publisher with the given buffer size.
func NewChannel(size int) *Channel {
	return &Channel{
		c: make(chan Event, size),
	}
}

func (p *Channel) Publish(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		select {
		case p.c <- event:
			return
		default:
			// Buffer full, drop the oldest event
			<-p.c
		}
	}
}

// C returns the channel events are delivered on.
func (p *Channel) C() <-chan Event {
	return p.c
}

// Buffer collects events without delivering them. Services use it to
// hold back events raised inside a database transaction until the
// transaction has committed.
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

func (b *Buffer) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)
}

// Flush publishes all buffered events to the target and clears the buffer.
func (b *Buffer) Flush(target Publisher) {
	b.mu.Lock()
	events := b.events
	b.events = nil
	b.mu.Unlock()

	for _, event := range events {
		target.Publish(event)
	}
}

// Events returns a copy of the buffered events.
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := make([]Event, len(b.events))
	copy(events, b.events)
	return events
}

// Multi fans a single event out to multiple publishers.
type Multi []Publisher

func (m Multi) Publish(event Event) {
	for _, p := range m {
		p.Publish(event)
	}
}
