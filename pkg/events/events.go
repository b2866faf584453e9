package events

import (
	"sync"
	"time"

	"github.com/cuemby/cybershield/pkg/metrics"
)

// Channel is a broad notification category subscribers can filter on
type Channel string

const (
	// ChannelGeneral covers tickets, block list, questions, visitors,
	// global message and lockdown
	ChannelGeneral Channel = "general"
	// ChannelLedger covers detox profiles and screen-time logs
	ChannelLedger Channel = "ledger"
)

// EventType names the mutation that was committed
type EventType string

const (
	EventTicketCreated    EventType = "ticket.created"
	EventTicketResolved   EventType = "ticket.resolved"
	EventTicketDeleted    EventType = "ticket.deleted"
	EventBlockListChanged EventType = "blocklist.changed"
	EventQuestionCreated  EventType = "question.created"
	EventQuestionDeleted  EventType = "question.deleted"
	EventVisitorSeen      EventType = "visitor.seen"
	EventMessageChanged   EventType = "message.changed"
	EventLockdownChanged  EventType = "lockdown.changed"
	EventDetoxProfile     EventType = "detox.profile"
	EventDetoxSubmitted   EventType = "detox.submitted"
	EventDetoxCorrected   EventType = "detox.corrected"
	EventDetoxRetracted   EventType = "detox.retracted"
	EventDetoxPointsSet   EventType = "detox.points_set"
	EventStoreReset       EventType = "store.reset"
)

// Event is a payload-free notification; subscribers re-read the store
type Event struct {
	Type      EventType
	Channel   Channel
	Timestamp time.Time
}

// Subscriber is a channel that receives events
type Subscriber <-chan *Event

// SubscriberBuffer is the number of undelivered events a subscriber may hold
// before further events to it are dropped
const SubscriberBuffer = 16

type subscription struct {
	ch       chan *Event
	channels map[Channel]bool // empty means all channels
}

func (s *subscription) wants(c Channel) bool {
	return len(s.channels) == 0 || s.channels[c]
}

// Broker fans events out to subscribers. Delivery happens on the publishing
// goroutine, never blocks, and is lossy: a subscriber whose buffer is full
// misses the event.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[*subscription]struct{}
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[*subscription]struct{}),
	}
}

// Subscribe registers interest in the given channels (all channels when none
// are given). The returned cancel func unsubscribes and closes the channel;
// calling it more than once is safe.
func (b *Broker) Subscribe(channels ...Channel) (Subscriber, func()) {
	sub := &subscription{
		ch:       make(chan *Event, SubscriberBuffer),
		channels: make(map[Channel]bool, len(channels)),
	}
	for _, c := range channels {
		sub.channels[c] = true
	}

	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, sub)
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers event to every interested subscriber. A nil broker
// silently drops the event.
func (b *Broker) Publish(event *Event) {
	if b == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		if !sub.wants(event.Channel) {
			continue
		}
		select {
		case sub.ch <- event:
			metrics.EventsPublished.WithLabelValues(string(event.Channel)).Inc()
		default:
			// Subscriber buffer full, skip
			metrics.EventsDropped.WithLabelValues(string(event.Channel)).Inc()
		}
	}
}

// Notify publishes an event of the given type on channel
func (b *Broker) Notify(channel Channel, eventType EventType) {
	b.Publish(&Event{Type: eventType, Channel: channel})
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
