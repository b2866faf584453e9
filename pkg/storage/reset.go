package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cuemby/cybershield/pkg/events"
	"github.com/cuemby/cybershield/pkg/metrics"
)

// Scope names a fixed set of keys removed together by Reset
type Scope string

const (
	ScopeTickets    Scope = "tickets"
	ScopeUsers      Scope = "users"
	ScopeDetox      Scope = "detox"
	ScopeEverything Scope = "everything"
)

// scopeKeys is maintained by hand. A new collection key must be added to
// every scope that should clear it, and always to ScopeEverything.
var scopeKeys = map[Scope][]string{
	ScopeTickets: {KeyTickets},
	ScopeUsers:   {KeyVisitors, KeyBlockedUsers, KeyDetoxUsers, KeyDetoxLogs},
	ScopeDetox:   {KeyDetoxUsers, KeyDetoxLogs},
	ScopeEverything: {
		KeyTickets,
		KeyGlobalMessage,
		KeyBlockedUsers,
		KeyCustomQuestions,
		KeyVisitors,
		KeyDetoxUsers,
		KeyDetoxLogs,
		KeyLockdown,
	},
}

// ParseScope reads a scope name as typed by an operator
func ParseScope(name string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tickets":
		return ScopeTickets, nil
	case "users":
		return ScopeUsers, nil
	case "detox":
		return ScopeDetox, nil
	case "all", "everything":
		return ScopeEverything, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, name)
}

// Keys returns the backend keys the scope removes
func (sc Scope) Keys() []string {
	return append([]string(nil), scopeKeys[sc]...)
}

// Reset removes every key in scope. A failed removal does not stop the
// others; all failures are returned together. Both notification channels
// fire afterwards so every observer refreshes.
func (s *Store) Reset(scope Scope) error {
	keys, ok := scopeKeys[scope]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StoreOpDuration, "reset")

	var errs []error
	s.view(func() {
		for _, key := range keys {
			if err := s.remove(key); err != nil {
				errs = append(errs, err)
			}
		}
	})

	metrics.Resets.WithLabelValues(string(scope)).Inc()
	s.broker.Notify(events.ChannelGeneral, events.EventStoreReset)
	s.broker.Notify(events.ChannelLedger, events.EventStoreReset)

	err := errors.Join(errs...)
	if err != nil {
		s.logger.Error().Err(err).Str("scope", string(scope)).Msg("Reset incomplete")
		return err
	}
	s.logger.Info().Str("scope", string(scope)).Int("keys", len(keys)).Msg("Store reset")
	return nil
}
