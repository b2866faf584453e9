package storage

import (
	"sort"
	"strings"

	"github.com/cuemby/cybershield/pkg/events"
	"github.com/cuemby/cybershield/pkg/types"
)

// dateLayout is the calendar-day key of a screen-time log
const dateLayout = "2006-01-02"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// today returns the calendar-day key for the current time, in the location
// of the store clock
func (s *Store) today() string {
	return s.now().Format(dateLayout)
}

// DetoxLogin returns the profile for email, creating it with zero points on
// first login. A changed display name is saved; the email never duplicates.
func (s *Store) DetoxLogin(email, name string) (types.UserProfile, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" {
		return types.UserProfile{}, ErrInvalidEmail
	}
	if name == "" {
		return types.UserProfile{}, ErrInvalidName
	}

	var profile types.UserProfile
	err := s.mutate("detox.login", events.ChannelLedger, events.EventDetoxProfile, func() (bool, error) {
		users, err := loadSlice[types.UserProfile](s, KeyDetoxUsers)
		if err != nil {
			return false, err
		}

		idx := findProfile(users, email)
		if idx >= 0 {
			if users[idx].Name == name {
				profile = users[idx]
				return false, nil
			}
			users[idx].Name = name
			profile = users[idx]
			return true, s.save(KeyDetoxUsers, users)
		}

		profile = types.UserProfile{Email: email, Name: name, JoinedAt: s.now()}
		return true, s.save(KeyDetoxUsers, append(users, profile))
	})
	if err != nil {
		return types.UserProfile{}, err
	}
	return profile, nil
}

// DetoxUsers returns every detox profile in join order
func (s *Store) DetoxUsers() []types.UserProfile {
	var users []types.UserProfile
	s.view(func() {
		users = readSlice[types.UserProfile](s, KeyDetoxUsers)
	})
	return users
}

// DetoxProfile looks up a single profile
func (s *Store) DetoxProfile(email string) (types.UserProfile, bool) {
	email = normalizeEmail(email)
	users := s.DetoxUsers()
	if idx := findProfile(users, email); idx >= 0 {
		return users[idx], true
	}
	return types.UserProfile{}, false
}

// DetoxLogs returns every screen-time log in submission order
func (s *Store) DetoxLogs() []types.ScreenTimeLog {
	var logs []types.ScreenTimeLog
	s.view(func() {
		logs = readSlice[types.ScreenTimeLog](s, KeyDetoxLogs)
	})
	return logs
}

// LogsForReview returns logs newest first, the order operators audit them in
func (s *Store) LogsForReview() []types.ScreenTimeLog {
	logs := s.DetoxLogs()
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	return logs
}

// LogsByEmail returns the logs submitted by one user
func (s *Store) LogsByEmail(email string) []types.ScreenTimeLog {
	email = normalizeEmail(email)
	var mine []types.ScreenTimeLog
	for _, l := range s.DetoxLogs() {
		if l.Email == email {
			mine = append(mine, l)
		}
	}
	return mine
}

// HasSubmittedToday reports whether email already has a log for the current
// calendar day
func (s *Store) HasSubmittedToday(email string) bool {
	var found bool
	s.view(func() {
		logs := readSlice[types.ScreenTimeLog](s, KeyDetoxLogs)
		found = hasLogOn(logs, normalizeEmail(email), s.today())
	})
	return found
}

func hasLogOn(logs []types.ScreenTimeLog, email, day string) bool {
	for _, l := range logs {
		if l.Email == email && l.DateStr == day {
			return true
		}
	}
	return false
}

func findProfile(users []types.UserProfile, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}

func findLog(logs []types.ScreenTimeLog, id string) int {
	for i := range logs {
		if logs[i].ID == id {
			return i
		}
	}
	return -1
}
