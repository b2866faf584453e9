package storage

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/cuemby/cybershield/pkg/events"
	"github.com/cuemby/cybershield/pkg/metrics"
	"github.com/cuemby/cybershield/pkg/types"
)

// Point schedule for one day of measured screen time
const (
	PointsLowUsage    = 100 // under 3 hours
	PointsMediumUsage = 50  // 3 hours to under 6 hours
	PointsHighUsage   = 0   // 6 hours or more
)

// PointsForHours maps measured screen time to points
func PointsForHours(hours float64) int {
	switch {
	case hours < 3:
		return PointsLowUsage
	case hours < 6:
		return PointsMediumUsage
	default:
		return PointsHighUsage
	}
}

// Submit records today's screen time for email and credits the points to
// the profile. The log is written before the profile. If the profile write
// fails the previous logs are written back, so a failed Submit leaves no
// log behind and may be retried.
//
// If no profile exists for email the log is still stored and NewTotal is 0.
func (s *Store) Submit(email string, hours float64, evidence string) (types.LedgerResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return types.LedgerResult{}, s.countLedger("submit", ErrInvalidEmail)
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return types.LedgerResult{}, s.countLedger("submit", ErrInvalidHours)
	}

	var result types.LedgerResult
	err := s.mutate("ledger.submit", events.ChannelLedger, events.EventDetoxSubmitted, func() (bool, error) {
		logs, err := loadSlice[types.ScreenTimeLog](s, KeyDetoxLogs)
		if err != nil {
			return false, err
		}
		now := s.now()
		day := now.Format(dateLayout)
		if hasLogOn(logs, email, day) {
			return false, ErrDuplicateSubmission
		}

		prev := slices.Clone(logs)
		entry := types.ScreenTimeLog{
			ID:          s.newID(),
			Email:       email,
			DateStr:     day,
			Hours:       hours,
			Points:      PointsForHours(hours),
			Timestamp:   now,
			ImageBase64: evidence,
		}
		if err := s.saveLogs(append(logs, entry), entry.ID); err != nil {
			return false, err
		}

		result.Points = entry.Points
		total, err := s.adjustTotal(email, entry.Points)
		if err != nil {
			return s.undoLogs(prev, err)
		}
		result.NewTotal = total
		return true, nil
	})
	if err != nil {
		return types.LedgerResult{}, s.countLedger("submit", err)
	}

	metrics.PointsAwarded.Add(float64(result.Points))
	s.logger.Debug().
		Str("email", email).
		Float64("hours", hours).
		Int("points", result.Points).
		Int("total", result.NewTotal).
		Msg("Screen time submitted")
	return result, s.countLedger("submit", nil)
}

// Correct replaces the points of a log and moves the owner's total by the
// difference. Negative points are stored as 0. An unknown id is a no-op.
func (s *Store) Correct(logID string, points int) error {
	points = max(points, 0)
	err := s.mutate("ledger.correct", events.ChannelLedger, events.EventDetoxCorrected, func() (bool, error) {
		logs, err := loadSlice[types.ScreenTimeLog](s, KeyDetoxLogs)
		if err != nil {
			return false, err
		}
		idx := findLog(logs, logID)
		if idx < 0 {
			return false, nil
		}
		delta := points - logs[idx].Points
		if delta == 0 {
			return false, nil
		}
		prev := slices.Clone(logs)
		email := logs[idx].Email
		logs[idx].Points = points
		if err := s.saveLogs(logs, logID); err != nil {
			return false, err
		}
		if _, err := s.adjustTotal(email, delta); err != nil {
			return s.undoLogs(prev, err)
		}
		return true, nil
	})
	return s.countLedger("correct", err)
}

// Retract removes a log and takes its points back from the owner's total,
// never below 0. An unknown id is a no-op.
func (s *Store) Retract(logID string) error {
	err := s.mutate("ledger.retract", events.ChannelLedger, events.EventDetoxRetracted, func() (bool, error) {
		logs, err := loadSlice[types.ScreenTimeLog](s, KeyDetoxLogs)
		if err != nil {
			return false, err
		}
		idx := findLog(logs, logID)
		if idx < 0 {
			return false, nil
		}
		prev := slices.Clone(logs)
		removed := logs[idx]
		logs = append(logs[:idx], logs[idx+1:]...)
		if err := s.saveLogs(logs, ""); err != nil {
			return false, err
		}
		if _, err := s.adjustTotal(removed.Email, -removed.Points); err != nil {
			return s.undoLogs(prev, err)
		}
		return true, nil
	})
	return s.countLedger("retract", err)
}

// SetAbsolute overrides a profile total. Logs are left alone, so the total
// no longer has to match them until an operator fixes the logs too. A
// missing profile is a no-op; negative totals are stored as 0.
func (s *Store) SetAbsolute(email string, total int) error {
	email = normalizeEmail(email)
	total = max(total, 0)
	err := s.mutate("ledger.set_points", events.ChannelLedger, events.EventDetoxPointsSet, func() (bool, error) {
		users, err := loadSlice[types.UserProfile](s, KeyDetoxUsers)
		if err != nil {
			return false, err
		}
		idx := findProfile(users, email)
		if idx < 0 {
			return false, nil
		}
		users[idx].TotalPoints = total
		return true, s.save(KeyDetoxUsers, users)
	})
	if err == nil {
		s.logger.Info().Str("email", email).Int("total", total).Msg("Detox total overridden")
	}
	return s.countLedger("set_points", err)
}

// adjustTotal adds delta to the profile of email, flooring at 0, and returns
// the new total. A missing profile is left missing and reports 0.
func (s *Store) adjustTotal(email string, delta int) (int, error) {
	users, err := loadSlice[types.UserProfile](s, KeyDetoxUsers)
	if err != nil {
		return 0, err
	}
	idx := findProfile(users, email)
	if idx < 0 {
		s.logger.Warn().Str("email", email).Int("delta", delta).Msg("No detox profile for log owner, total not adjusted")
		return 0, nil
	}
	users[idx].TotalPoints = max(users[idx].TotalPoints+delta, 0)
	if err := s.save(KeyDetoxUsers, users); err != nil {
		return 0, err
	}
	return users[idx].TotalPoints, nil
}

// undoLogs writes back the log collection after the profile half of a
// ledger update failed. It reports a change only when the write-back also
// failed and the logs are left ahead of the profile.
func (s *Store) undoLogs(prev []types.ScreenTimeLog, cause error) (bool, error) {
	if err := s.save(KeyDetoxLogs, prev); err != nil {
		s.logger.Error().
			Err(err).
			AnErr("cause", cause).
			Msg("Failed to restore screen-time logs, ledger totals are out of step")
		return true, fmt.Errorf("%w: %w", ErrPartialWrite, errors.Join(cause, err))
	}
	s.logger.Warn().Err(cause).Msg("Profile update failed, screen-time logs restored")
	return false, cause
}

// Rank returns profiles by total points, highest first. Ties keep join
// order.
func (s *Store) Rank() []types.UserProfile {
	users := s.DetoxUsers()
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].TotalPoints > users[j].TotalPoints
	})
	return users
}

// Champion returns the top of the leaderboard
func (s *Store) Champion() (types.UserProfile, bool) {
	ranked := s.Rank()
	if len(ranked) == 0 {
		return types.UserProfile{}, false
	}
	return ranked[0], true
}

// LedgerDrift compares the stored total of email with the sum of its log
// points. The two differ after SetAbsolute or an interrupted two-key write.
func (s *Store) LedgerDrift(email string) (stored, derived int) {
	email = normalizeEmail(email)
	s.view(func() {
		users := readSlice[types.UserProfile](s, KeyDetoxUsers)
		if idx := findProfile(users, email); idx >= 0 {
			stored = users[idx].TotalPoints
		}
		for _, l := range readSlice[types.ScreenTimeLog](s, KeyDetoxLogs) {
			if l.Email == email {
				derived += l.Points
			}
		}
	})
	return stored, derived
}

// countLedger records the outcome of a ledger operation and returns err
func (s *Store) countLedger(op string, err error) error {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrPartialWrite):
		result = "partial"
	case errors.Is(err, ErrDuplicateSubmission):
		result = "duplicate"
	case errors.Is(err, ErrStorageFull):
		result = "storage_full"
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidHours):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.LedgerOps.WithLabelValues(op, result).Inc()
	return err
}
