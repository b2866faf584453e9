/*
Package events is the change notification bus of the cybershield store.

The store publishes a payload-free Event after each committed mutation.
Subscribers are expected to re-read whatever they display; an event only
says that something on its channel changed.

# Channels

	general   tickets, block list, questions, visitors, message, lockdown
	ledger    detox profiles and screen-time logs

A reset publishes store.reset on both channels.

# Delivery

Publish runs on the caller's goroutine and never blocks. Each subscriber has
a buffer of SubscriberBuffer events; when it is full the event is dropped for
that subscriber and counted in cybershield_events_dropped_total. Nothing is
queued for subscribers that register later. Consumers that must not miss a
change should also poll.

# Usage

	broker := events.NewBroker()
	sub, cancel := broker.Subscribe(events.ChannelGeneral)
	defer cancel()

	for evt := range sub {
		refresh(evt.Type)
	}

The cancel func closes the subscriber channel and may be called more than
once.
*/
package events
