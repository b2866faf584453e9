package storage

import (
	"sort"
	"strings"
	"time"

	"github.com/cuemby/cybershield/pkg/events"
	"github.com/cuemby/cybershield/pkg/types"
)

// ReservedIdentity is the operator login name, never tracked as a visitor
const ReservedIdentity = "admin"

// DefaultActiveWindow is how recently a visitor must have been seen to count
// as online
const DefaultActiveWindow = 5 * time.Minute

// ListVisitors returns visitors in first-seen order
func (s *Store) ListVisitors() []types.Visitor {
	var visitors []types.Visitor
	s.view(func() {
		visitors = readSlice[types.Visitor](s, KeyVisitors)
	})
	return visitors
}

// RecentVisitors returns visitors, most recently seen first
func (s *Store) RecentVisitors() []types.Visitor {
	visitors := s.ListVisitors()
	sort.SliceStable(visitors, func(i, j int) bool {
		return visitors[i].LastSeen.After(visitors[j].LastSeen)
	})
	return visitors
}

// ActiveVisitorCount counts visitors seen within window of now
func (s *Store) ActiveVisitorCount(window time.Duration) int {
	cutoff := s.now().Add(-window)
	count := 0
	for _, v := range s.ListVisitors() {
		if v.LastSeen.After(cutoff) {
			count++
		}
	}
	return count
}

// TouchVisitor records activity for name, matching existing visitors
// case-insensitively. The first spelling seen is kept for display.
func (s *Store) TouchVisitor(name string) error {
	display := strings.TrimSpace(name)
	if display == "" {
		return ErrInvalidName
	}
	if strings.EqualFold(display, ReservedIdentity) {
		return ErrReservedIdentity
	}

	return s.mutate("visitor.touch", events.ChannelGeneral, events.EventVisitorSeen, func() (bool, error) {
		visitors, err := loadSlice[types.Visitor](s, KeyVisitors)
		if err != nil {
			return false, err
		}
		now := s.now()

		found := false
		for i := range visitors {
			if visitors[i].Matches(display) {
				visitors[i].LastSeen = now
				found = true
				break
			}
		}
		if !found {
			visitors = append(visitors, types.Visitor{Username: display, LastSeen: now})
		}
		return true, s.save(KeyVisitors, visitors)
	})
}
