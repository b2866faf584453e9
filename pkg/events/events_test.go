package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeFiltersChannels(t *testing.T) {
	broker := NewBroker()

	general, cancelGeneral := broker.Subscribe(ChannelGeneral)
	defer cancelGeneral()
	ledger, cancelLedger := broker.Subscribe(ChannelLedger)
	defer cancelLedger()
	all, cancelAll := broker.Subscribe()
	defer cancelAll()

	broker.Notify(ChannelGeneral, EventTicketCreated)
	broker.Notify(ChannelLedger, EventDetoxSubmitted)

	require.Len(t, general, 1)
	evt := <-general
	assert.Equal(t, EventTicketCreated, evt.Type)
	assert.Equal(t, ChannelGeneral, evt.Channel)
	assert.False(t, evt.Timestamp.IsZero())

	require.Len(t, ledger, 1)
	assert.Equal(t, EventDetoxSubmitted, (<-ledger).Type)

	assert.Len(t, all, 2)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	broker := NewBroker()
	sub, cancel := broker.Subscribe(ChannelGeneral)
	defer cancel()

	for i := 0; i < SubscriberBuffer+5; i++ {
		broker.Notify(ChannelGeneral, EventVisitorSeen)
	}

	assert.Len(t, sub, SubscriberBuffer)
}

func TestCancelIsIdempotent(t *testing.T) {
	broker := NewBroker()
	sub, cancel := broker.Subscribe()
	assert.Equal(t, 1, broker.SubscriberCount())

	cancel()
	cancel()
	assert.Equal(t, 0, broker.SubscriberCount())

	_, open := <-sub
	assert.False(t, open, "channel should be closed after cancel")

	// Publishing after cancel must not panic on the closed channel
	assert.NotPanics(t, func() {
		broker.Notify(ChannelGeneral, EventLockdownChanged)
	})
}

func TestNilBroker(t *testing.T) {
	var broker *Broker
	assert.NotPanics(t, func() {
		broker.Notify(ChannelLedger, EventStoreReset)
	})
	assert.Equal(t, 0, broker.SubscriberCount())
}

func TestPublishWithoutSubscribers(t *testing.T) {
	broker := NewBroker()
	assert.NotPanics(t, func() {
		broker.Publish(&Event{Type: EventMessageChanged, Channel: ChannelGeneral})
	})
}
