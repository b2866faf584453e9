package storage

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/cuemby/cybershield/pkg/codec"
	"github.com/cuemby/cybershield/pkg/events"
	"github.com/cuemby/cybershield/pkg/kv"
	"github.com/cuemby/cybershield/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kidEmail = "kid@example.com"

func TestPointsForHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  int
	}{
		{0, 100},
		{2.99, 100},
		{3, 50},
		{5.5, 50},
		{6, 0},
		{14, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PointsForHours(tt.hours), "hours=%v", tt.hours)
	}
}

func TestSubmitCorrectRetractScenario(t *testing.T) {
	s, _ := newTestStore(t, nil)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)

	res, err := s.Submit(kidEmail, 2.0, "")
	require.NoError(t, err)
	assert.Equal(t, 100, res.Points)
	assert.Equal(t, 100, res.NewTotal)

	logs := s.DetoxLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "2025-03-14", logs[0].DateStr)

	require.NoError(t, s.Correct(logs[0].ID, 30))
	profile, ok := s.DetoxProfile(kidEmail)
	require.True(t, ok)
	assert.Equal(t, 30, profile.TotalPoints)
	assert.Equal(t, 30, s.DetoxLogs()[0].Points)

	require.NoError(t, s.Retract(logs[0].ID))
	profile, _ = s.DetoxProfile(kidEmail)
	assert.Equal(t, 0, profile.TotalPoints)
	assert.Empty(t, s.DetoxLogs())
}

func TestDuplicateSubmission(t *testing.T) {
	s, clock := newTestStore(t, nil)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)

	_, err = s.Submit(kidEmail, 4, "")
	require.NoError(t, err)
	assert.True(t, s.HasSubmittedToday(kidEmail))

	clock.Advance(2 * time.Hour)
	_, err = s.Submit(" KID@example.com ", 1, "")
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	profile, _ := s.DetoxProfile(kidEmail)
	assert.Equal(t, 50, profile.TotalPoints)
	assert.Len(t, s.DetoxLogs(), 1)

	clock.Advance(24 * time.Hour)
	assert.False(t, s.HasSubmittedToday(kidEmail))
	_, err = s.Submit(kidEmail, 1, "")
	assert.NoError(t, err)
}

func TestSubmitValidation(t *testing.T) {
	s, _ := newTestStore(t, nil)

	for _, hours := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := s.Submit(kidEmail, hours, "")
		assert.ErrorIs(t, err, ErrInvalidHours)
	}
	_, err := s.Submit("  ", 1, "")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Empty(t, s.DetoxLogs())
}

func TestSubmitWithoutProfile(t *testing.T) {
	s, _ := newTestStore(t, nil)

	res, err := s.Submit(kidEmail, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 100, res.Points)
	assert.Equal(t, 0, res.NewTotal)
	assert.Len(t, s.DetoxLogs(), 1)
	assert.Empty(t, s.DetoxUsers())
}

func TestLedgerInvariantRandomSequence(t *testing.T) {
	s, clock := newTestStore(t, nil)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	hours := []float64{0.5, 2, 3, 4.5, 6, 9}

	for i := 0; i < 300; i++ {
		logs := s.LogsByEmail(kidEmail)
		switch op := rng.Intn(3); {
		case op == 0 || len(logs) == 0:
			clock.Advance(24 * time.Hour)
			_, err := s.Submit(kidEmail, hours[rng.Intn(len(hours))], "")
			require.NoError(t, err)
		case op == 1:
			target := logs[rng.Intn(len(logs))]
			require.NoError(t, s.Correct(target.ID, rng.Intn(200)-20))
		default:
			target := logs[rng.Intn(len(logs))]
			require.NoError(t, s.Retract(target.ID))
		}

		stored, derived := s.LedgerDrift(kidEmail)
		require.Equal(t, max(derived, 0), stored, "step %d", i)
	}
}

func TestCorrectClampsAndIgnoresUnknown(t *testing.T) {
	s, _ := newTestStore(t, nil)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)
	_, err = s.Submit(kidEmail, 1, "")
	require.NoError(t, err)
	id := s.DetoxLogs()[0].ID

	require.NoError(t, s.Correct(id, -40))
	assert.Equal(t, 0, s.DetoxLogs()[0].Points)
	profile, _ := s.DetoxProfile(kidEmail)
	assert.Equal(t, 0, profile.TotalPoints)

	assert.NoError(t, s.Correct("missing", 10))
	assert.NoError(t, s.Retract("missing"))
}

func TestSetAbsoluteDoesNotReconcile(t *testing.T) {
	s, _ := newTestStore(t, nil)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)
	_, err = s.Submit(kidEmail, 1, "")
	require.NoError(t, err)

	require.NoError(t, s.SetAbsolute(kidEmail, 500))
	stored, derived := s.LedgerDrift(kidEmail)
	assert.Equal(t, 500, stored)
	assert.Equal(t, 100, derived)

	require.NoError(t, s.SetAbsolute(kidEmail, -5))
	stored, _ = s.LedgerDrift(kidEmail)
	assert.Equal(t, 0, stored)

	require.NoError(t, s.SetAbsolute("nobody@example.com", 10))
	assert.Len(t, s.DetoxUsers(), 1)
}

func TestDetoxLogin(t *testing.T) {
	s, _ := newTestStore(t, nil)

	first, err := s.DetoxLogin(" Kid@Example.com ", "Kid")
	require.NoError(t, err)
	assert.Equal(t, kidEmail, first.Email)
	assert.Equal(t, 0, first.TotalPoints)

	again, err := s.DetoxLogin(kidEmail, "Kiddo")
	require.NoError(t, err)
	assert.Equal(t, "Kiddo", again.Name)
	assert.True(t, first.JoinedAt.Equal(again.JoinedAt))
	assert.Len(t, s.DetoxUsers(), 1)

	_, err = s.DetoxLogin("", "x")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = s.DetoxLogin(kidEmail, " ")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestRankAndChampion(t *testing.T) {
	s, _ := newTestStore(t, nil)

	_, ok := s.Champion()
	assert.False(t, ok)

	for _, u := range []struct {
		email string
		total int
	}{
		{"a@example.com", 50},
		{"b@example.com", 150},
		{"c@example.com", 50},
	} {
		_, err := s.DetoxLogin(u.email, strings.Split(u.email, "@")[0])
		require.NoError(t, err)
		require.NoError(t, s.SetAbsolute(u.email, u.total))
	}

	ranked := s.Rank()
	require.Len(t, ranked, 3)
	assert.Equal(t, "b@example.com", ranked[0].Email)
	assert.Equal(t, "a@example.com", ranked[1].Email, "ties keep join order")
	assert.Equal(t, "c@example.com", ranked[2].Email)

	champ, ok := s.Champion()
	assert.True(t, ok)
	assert.Equal(t, "b@example.com", champ.Email)
}

func TestLogsForReview(t *testing.T) {
	s, clock := newTestStore(t, nil)
	_, err := s.Submit("a@example.com", 1, "")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = s.Submit("b@example.com", 1, "")
	require.NoError(t, err)

	review := s.LogsForReview()
	require.Len(t, review, 2)
	assert.Equal(t, "b@example.com", review[0].Email)
	assert.Len(t, s.LogsByEmail("A@example.com"), 1)
}

func TestLedgerNotifiesLedgerChannel(t *testing.T) {
	s, _ := newTestStore(t, nil)
	sub, cancel := s.Broker().Subscribe(events.ChannelLedger)
	defer cancel()

	_, err := s.Submit(kidEmail, 1, "")
	require.NoError(t, err)

	require.Len(t, sub, 1)
	assert.Equal(t, events.EventDetoxSubmitted, (<-sub).Type)
}

func TestQuotaDropsEvidenceOfNewEntry(t *testing.T) {
	backend := kv.NewMemory(4096)
	s, _ := newTestStore(t, backend)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)

	screenshot := strings.Repeat("A", 8192)
	res, err := s.Submit(kidEmail, 2, screenshot)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Points)
	assert.Equal(t, 100, res.NewTotal)

	logs := s.DetoxLogs()
	require.Len(t, logs, 1)
	assert.False(t, logs[0].HasEvidence())
	assert.Equal(t, 100, logs[0].Points)

	profile, _ := s.DetoxProfile(kidEmail)
	assert.Equal(t, 100, profile.TotalPoints)
}

func TestQuotaDropsAllEvidence(t *testing.T) {
	backend := kv.NewMemory(0)
	s, clock := newTestStore(t, backend)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)

	_, err = s.Submit(kidEmail, 2, strings.Repeat("A", 2048))
	require.NoError(t, err)
	require.True(t, s.DetoxLogs()[0].HasEvidence())

	// No headroom: even an evidence-free log only fits once the old
	// screenshot is gone.
	backend.SetQuota(backend.Used())

	clock.Advance(24 * time.Hour)
	res, err := s.Submit(kidEmail, 4, strings.Repeat("B", 2048))
	require.NoError(t, err)
	assert.Equal(t, 150, res.NewTotal)

	logs := s.DetoxLogs()
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.False(t, l.HasEvidence())
	}
	stored, derived := s.LedgerDrift(kidEmail)
	assert.Equal(t, derived, stored)
}

func TestQuotaStillFullAfterDegradation(t *testing.T) {
	backend := kv.NewMemory(0)
	s, _ := newTestStore(t, backend)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)
	backend.SetQuota(backend.Used() + 10)

	_, err = s.Submit(kidEmail, 2, strings.Repeat("A", 512))
	assert.ErrorIs(t, err, ErrStorageFull)
	assert.Equal(t, "Storage is full on this device. Your data was not saved.", UserMessage(err))

	assert.Empty(t, s.DetoxLogs())
	profile, _ := s.DetoxProfile(kidEmail)
	assert.Equal(t, 0, profile.TotalPoints)
}

// stubAnalyzer returns a fixed verdict and counts calls
type stubAnalyzer struct {
	verdict EvidenceVerdict
	err     error
	calls   int
}

func (a *stubAnalyzer) AnalyzeEvidenceImage(_ context.Context, _ string) (EvidenceVerdict, error) {
	a.calls++
	return a.verdict, a.err
}

func TestSubmitEvidence(t *testing.T) {
	s, _ := newTestStore(t, nil)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)
	ctx := context.Background()

	analyzer := &stubAnalyzer{verdict: EvidenceVerdict{Valid: true, Hours: 3.5}}
	res, err := s.SubmitEvidence(ctx, analyzer, kidEmail, "aW1hZ2U=")
	require.NoError(t, err)
	assert.Equal(t, 50, res.Points)
	assert.Equal(t, "aW1hZ2U=", s.DetoxLogs()[0].ImageBase64)

	_, err = s.SubmitEvidence(ctx, analyzer, kidEmail, "aW1hZ2U=")
	assert.ErrorIs(t, err, ErrDuplicateSubmission)
	assert.Equal(t, 1, analyzer.calls, "duplicate is rejected before analysis")
}

func TestSubmitEvidenceRejected(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid screenshot", func(t *testing.T) {
		s, _ := newTestStore(t, nil)
		_, err := s.SubmitEvidence(ctx, &stubAnalyzer{}, kidEmail, "x")
		assert.ErrorIs(t, err, ErrInvalidEvidence)
		assert.Empty(t, s.DetoxLogs())
	})

	t.Run("analyzer failure", func(t *testing.T) {
		s, _ := newTestStore(t, nil)
		boom := errors.New("model unavailable")
		_, err := s.SubmitEvidence(ctx, &stubAnalyzer{err: boom}, kidEmail, "x")
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, s.DetoxLogs())
	})
}

func TestSubmitUndoneWhenProfileDoesNotFit(t *testing.T) {
	backend := kv.NewMemory(0)
	s, clock := newTestStore(t, backend)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)
	sub, cancel := s.Broker().Subscribe(events.ChannelLedger)
	defer cancel()

	// Room for the new log, but not for the total growing from 0 to 100
	entry, err := codec.Encode([]types.ScreenTimeLog{{
		ID:        "id-1",
		Email:     kidEmail,
		DateStr:   "2025-03-14",
		Hours:     2,
		Points:    100,
		Timestamp: clock.Now(),
	}})
	require.NoError(t, err)
	backend.SetQuota(backend.Used() + int64(len(KeyDetoxLogs)+len(entry)))

	_, err = s.Submit(kidEmail, 2, "")
	require.ErrorIs(t, err, ErrStorageFull)
	assert.NotErrorIs(t, err, ErrPartialWrite)
	assert.Equal(t, "Storage is full on this device. Your data was not saved.", UserMessage(err))

	assert.Empty(t, s.DetoxLogs())
	assert.False(t, s.HasSubmittedToday(kidEmail))
	stored, derived := s.LedgerDrift(kidEmail)
	assert.Equal(t, 0, stored)
	assert.Equal(t, 0, derived)
	assert.Len(t, sub, 0, "nothing was committed")

	backend.SetQuota(0)
	res, err := s.Submit(kidEmail, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 100, res.NewTotal)
}

func TestCorrectUndoneWhenProfileDoesNotFit(t *testing.T) {
	backend := kv.NewMemory(0)
	s, _ := newTestStore(t, backend)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)
	_, err = s.Submit(kidEmail, 1, "")
	require.NoError(t, err)
	id := s.DetoxLogs()[0].ID

	// One spare byte: the log's 100 -> 1000 fits, the total's does not
	backend.SetQuota(backend.Used() + 1)

	err = s.Correct(id, 1000)
	require.ErrorIs(t, err, ErrStorageFull)

	assert.Equal(t, 100, s.DetoxLogs()[0].Points)
	stored, derived := s.LedgerDrift(kidEmail)
	assert.Equal(t, 100, stored)
	assert.Equal(t, 100, derived)
}

func TestRetractUndoneWhenProfileWriteFails(t *testing.T) {
	backend := &flakyBackend{Memory: kv.NewMemory(0)}
	s, _ := newTestStore(t, backend)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)
	_, err = s.Submit(kidEmail, 1, "")
	require.NoError(t, err)
	id := s.DetoxLogs()[0].ID

	backend.failSet = func(key string) error {
		if key == KeyDetoxUsers {
			return errBackendDown
		}
		return nil
	}

	err = s.Retract(id)
	require.ErrorIs(t, err, errBackendDown)
	assert.NotErrorIs(t, err, ErrPartialWrite)

	require.Len(t, s.DetoxLogs(), 1)
	stored, derived := s.LedgerDrift(kidEmail)
	assert.Equal(t, stored, derived)
}

func TestSubmitPartialWriteWhenRestoreFails(t *testing.T) {
	backend := &flakyBackend{Memory: kv.NewMemory(0)}
	s, _ := newTestStore(t, backend)
	_, err := s.DetoxLogin(kidEmail, "Kid")
	require.NoError(t, err)
	sub, cancel := s.Broker().Subscribe(events.ChannelLedger)
	defer cancel()

	logWrites := 0
	backend.failSet = func(key string) error {
		switch key {
		case KeyDetoxUsers:
			return kv.ErrQuotaExceeded
		case KeyDetoxLogs:
			logWrites++
			if logWrites > 1 {
				return errBackendDown
			}
		}
		return nil
	}

	_, err = s.Submit(kidEmail, 2, "")
	require.ErrorIs(t, err, ErrPartialWrite)
	assert.ErrorIs(t, err, errBackendDown)
	assert.Equal(t, "Your screen time was recorded but your points could not be updated. Please contact an administrator.",
		UserMessage(err))

	require.Len(t, sub, 1, "the stored log is still announced")
	assert.Equal(t, events.EventDetoxSubmitted, (<-sub).Type)

	stored, derived := s.LedgerDrift(kidEmail)
	assert.Equal(t, 0, stored)
	assert.Equal(t, 100, derived)
}
