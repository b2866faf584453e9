package storage

import (
	"slices"
	"strings"

	"github.com/cuemby/cybershield/pkg/events"
)

// normalizeName is the block-list form of a username
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BlockedUsers returns the normalized block list
func (s *Store) BlockedUsers() []string {
	var users []string
	s.view(func() {
		users = readSlice[string](s, KeyBlockedUsers)
	})
	return users
}

// IsBlocked reports whether name is on the block list, ignoring case and
// surrounding whitespace
func (s *Store) IsBlocked(name string) bool {
	return slices.Contains(s.BlockedUsers(), normalizeName(name))
}

// Block adds name to the block list. Blocking twice, or blocking a blank
// name, changes nothing.
func (s *Store) Block(name string) error {
	normalized := normalizeName(name)
	return s.mutate("blocklist.block", events.ChannelGeneral, events.EventBlockListChanged, func() (bool, error) {
		if normalized == "" {
			return false, nil
		}
		users, err := loadSlice[string](s, KeyBlockedUsers)
		if err != nil {
			return false, err
		}
		if slices.Contains(users, normalized) {
			return false, nil
		}
		return true, s.save(KeyBlockedUsers, append(users, normalized))
	})
}

// Unblock removes every entry matching name
func (s *Store) Unblock(name string) error {
	normalized := normalizeName(name)
	return s.mutate("blocklist.unblock", events.ChannelGeneral, events.EventBlockListChanged, func() (bool, error) {
		users, err := loadSlice[string](s, KeyBlockedUsers)
		if err != nil {
			return false, err
		}
		kept := slices.DeleteFunc(slices.Clone(users), func(u string) bool {
			return u == normalized
		})
		if len(kept) == len(users) {
			return false, nil
		}
		return true, s.save(KeyBlockedUsers, kept)
	})
}
