package storage

import (
	"strings"

	"github.com/cuemby/cybershield/pkg/events"
)

const lockdownOn = "true"

// GlobalMessage returns the broadcast message. ok is false when none is set.
func (s *Store) GlobalMessage() (msg string, ok bool) {
	s.view(func() {
		var err error
		msg, ok, err = s.backend.Get(KeyGlobalMessage)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to read global message")
			msg, ok = "", false
		}
	})
	return msg, ok
}

// SetGlobalMessage broadcasts text. Blank text clears the message instead of
// storing an empty one.
func (s *Store) SetGlobalMessage(text string) error {
	return s.mutate("message.set", events.ChannelGeneral, events.EventMessageChanged, func() (bool, error) {
		if strings.TrimSpace(text) == "" {
			return true, s.remove(KeyGlobalMessage)
		}
		return true, s.put(KeyGlobalMessage, text)
	})
}

// Lockdown reports whether the quiz is disabled for everyone
func (s *Store) Lockdown() bool {
	var on bool
	s.view(func() {
		v, ok, err := s.backend.Get(KeyLockdown)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to read lockdown flag")
			return
		}
		on = ok && v == lockdownOn
	})
	return on
}

// SetLockdown switches lockdown. Turning it off removes the key, so an absent
// flag and a false flag read the same.
func (s *Store) SetLockdown(on bool) error {
	return s.mutate("lockdown.set", events.ChannelGeneral, events.EventLockdownChanged, func() (bool, error) {
		if !on {
			return true, s.remove(KeyLockdown)
		}
		return true, s.put(KeyLockdown, lockdownOn)
	})
}
