/*
Package storage is cybershield's local state layer.

A Store keeps every collection of the quiz app in a single key-value backend
(see package kv): support tickets, the block list, custom questions, visitor
activity, the digital detox ledger, the global broadcast message and the
lockdown flag. Each collection lives under one key and is rewritten whole on
every change.

# Architecture

	┌──────────────────────── STORE ─────────────────────────┐
	│                                                          │
	│   Collection stores        Ledger coordinator            │
	│   tickets, blocklist,      Submit, Correct, Retract,     │
	│   questions, visitors,     SetAbsolute, Rank             │
	│   message, lockdown              │                       │
	│          │                       │ logs first,           │
	│          │                       │ then profiles         │
	│          ▼                       ▼                       │
	│   ┌──────────────────────────────────────────┐          │
	│   │ codec (JSON) + quota degradation          │          │
	│   └─────────────────────┬────────────────────┘          │
	│                         ▼                                │
	│                   kv.Backend                             │
	│        memory │ bolt │ redis │ sqlite                    │
	└─────────────────────────┬──────────────────────────────┘
	                          │ after each committed change
	                          ▼
	              events.Broker (general │ ledger)

# Key Layout

	cybershield_tickets            []types.SupportTicket
	cybershield_blocked_users      []string (lower-case, trimmed)
	cybershield_custom_questions   []types.CustomQuestion
	cybershield_visitors           []types.Visitor
	cybershield_detox_users        []types.UserProfile
	cybershield_detox_logs         []types.ScreenTimeLog
	cybershield_global_message     raw string, absent when cleared
	cybershield_lockdown_mode      "true", absent when off

# Detox Ledger

A profile's TotalPoints is the sum of the Points of its logs. Submit,
Correct and Retract keep that true with incremental updates: the log key is
written first, then the profile key is adjusted by the difference. There is
no transaction across the two keys. When the profile write fails, the
previous logs are written back and the operation fails as a whole. Only if
that write-back fails too are the keys left out of step; the error is then
ErrPartialWrite, the change is still published, and LedgerDrift reports the
gap. SetAbsolute overrides a total on purpose and is never reconciled
automatically.

Only one log per email and calendar day is accepted. The day is taken from
the store clock in its own location, so a client in UTC-5 and one in UTC+9
can disagree about "today".

# Storage Full

When a write of the log collection does not fit, the evidence screenshot is
dropped from the entry being written and the write retried. If that is still
too large, evidence is dropped from every log and the write retried once
more. Points are never dropped. Any other collection fails straight away
with ErrStorageFull.

# Errors

Unknown ids make updates and deletes silent no-ops. A malformed stored value
reads as an empty collection and is counted in metrics. ErrDuplicateSubmission
and ErrStorageFull are the errors end users act on; UserMessage gives each
its own text.

# Concurrency

Every operation holds the store mutex for its whole read-modify-write cycle.
Notifications are published after the mutex is released, so a subscriber may
call back into the store. Two processes writing the same backend still race.

# Usage

	backend, err := kv.Open(kv.Options{Kind: kv.KindBolt, DataDir: "/var/lib/cybershield"})
	if err != nil {
		return err
	}
	defer backend.Close()

	broker := events.NewBroker()
	store := storage.New(backend, broker)

	sub, cancel := broker.Subscribe(events.ChannelLedger)
	defer cancel()

	if _, err := store.DetoxLogin("kid@example.com", "Kid"); err != nil {
		return err
	}
	res, err := store.Submit("kid@example.com", 2.5, screenshot)
	if errors.Is(err, storage.ErrDuplicateSubmission) {
		fmt.Println(storage.UserMessage(err))
	}
*/
package storage
