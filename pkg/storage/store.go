package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/cybershield/pkg/codec"
	"github.com/cuemby/cybershield/pkg/events"
	"github.com/cuemby/cybershield/pkg/kv"
	"github.com/cuemby/cybershield/pkg/log"
	"github.com/cuemby/cybershield/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Backend keys, one per collection or flag
const (
	KeyTickets         = "cybershield_tickets"
	KeyGlobalMessage   = "cybershield_global_message"
	KeyBlockedUsers    = "cybershield_blocked_users"
	KeyCustomQuestions = "cybershield_custom_questions"
	KeyVisitors        = "cybershield_visitors"
	KeyDetoxUsers      = "cybershield_detox_users"
	KeyDetoxLogs       = "cybershield_detox_logs"
	KeyLockdown        = "cybershield_lockdown_mode"
)

// collectionKeys lists every key the store owns, in a fixed order
var collectionKeys = []string{
	KeyTickets,
	KeyGlobalMessage,
	KeyBlockedUsers,
	KeyCustomQuestions,
	KeyVisitors,
	KeyDetoxUsers,
	KeyDetoxLogs,
	KeyLockdown,
}

// Store is the state layer: typed collection accessors, the detox ledger and
// bulk resets over a single key-value backend.
//
// Every operation runs to completion under one mutex, so read-modify-write
// cycles issued through the same Store never interleave. Two Store values
// sharing one backend still race; keep a single Store per backend.
type Store struct {
	mu      sync.Mutex
	backend kv.Backend
	broker  *events.Broker
	now     func() time.Time
	newID   func() string
	logger  zerolog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the time source. The calendar day of a submission is taken
// from the location of the returned time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets the function that assigns record ids
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// New creates a store over backend. broker may be nil, in which case change
// notifications are dropped.
func New(backend kv.Backend, broker *events.Broker, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		broker:  broker,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  log.WithComponent("storage"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Broker returns the notification bus the store publishes to
func (s *Store) Broker() *events.Broker {
	return s.broker
}

// mutate runs fn under the store lock and, if fn reports a committed change,
// publishes evt once the lock is released so subscribers can re-read. A
// partly saved change is still published.
func (s *Store) mutate(op string, channel events.Channel, evt events.EventType, fn func() (bool, error)) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StoreOpDuration, op)

	s.mu.Lock()
	changed, err := fn()
	s.mu.Unlock()

	if changed && (err == nil || errors.Is(err, ErrPartialWrite)) {
		s.broker.Notify(channel, evt)
	}
	return err
}

// view runs fn under the store lock
func (s *Store) view(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// readSlice loads a collection for display. Backend and decode failures both
// read as an empty collection.
func readSlice[T any](s *Store, key string) []T {
	items, err := loadSlice[T](s, key)
	if err != nil {
		l := log.WithCollection(key)
		l.Warn().Err(err).Msg("Read failed, returning empty collection")
		return []T{}
	}
	return items
}

// loadSlice loads a collection that is about to be rewritten. A malformed
// value still reads as empty, but a backend failure is returned so the write
// cannot clobber data that merely failed to load.
func loadSlice[T any](s *Store, key string) ([]T, error) {
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		metrics.UpdateComponent(metrics.ComponentBackend, false, err.Error())
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	items, valid := codec.DecodeSlice[T](raw, ok)
	if !valid {
		metrics.StoreDecodeFailures.WithLabelValues(key).Inc()
		l := log.WithCollection(key)
		l.Warn().Int("bytes", len(raw)).Msg("Stored value is malformed, treating collection as empty")
	}
	return items, nil
}

// save encodes v and writes it under key
func (s *Store) save(key string, v any) error {
	value, err := codec.Encode(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return s.put(key, value)
}

// put writes a raw value. A quota failure is reported as ErrStorageFull and
// still matches kv.ErrQuotaExceeded.
func (s *Store) put(key, value string) error {
	err := s.backend.Set(key, value)
	switch {
	case err == nil:
		metrics.StoreWrites.WithLabelValues(key, "ok").Inc()
		metrics.UpdateComponent(metrics.ComponentBackend, true, "")
		return nil
	case errors.Is(err, kv.ErrQuotaExceeded):
		metrics.StoreWrites.WithLabelValues(key, "quota").Inc()
		return fmt.Errorf("%w: %w", ErrStorageFull, err)
	default:
		metrics.StoreWrites.WithLabelValues(key, "error").Inc()
		metrics.UpdateComponent(metrics.ComponentBackend, false, err.Error())
		return fmt.Errorf("write %s: %w", key, err)
	}
}

// remove deletes key from the backend
func (s *Store) remove(key string) error {
	if err := s.backend.Remove(key); err != nil {
		metrics.UpdateComponent(metrics.ComponentBackend, false, err.Error())
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// CollectionStats reports the record count and encoded size of each key
func (s *Store) CollectionStats() map[string]metrics.CollectionStat {
	stats := make(map[string]metrics.CollectionStat, len(collectionKeys))
	s.view(func() {
		for _, key := range collectionKeys {
			raw, ok, err := s.backend.Get(key)
			if err != nil || !ok {
				stats[key] = metrics.CollectionStat{}
				continue
			}
			stat := metrics.CollectionStat{Items: 1, Bytes: len(raw)}
			if key != KeyGlobalMessage && key != KeyLockdown {
				items, _ := codec.DecodeSlice[json.RawMessage](raw, ok)
				stat.Items = len(items)
			}
			stats[key] = stat
		}
	})
	return stats
}
