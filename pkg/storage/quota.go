package storage

import (
	"errors"

	"github.com/cuemby/cybershield/pkg/kv"
	"github.com/cuemby/cybershield/pkg/metrics"
	"github.com/cuemby/cybershield/pkg/types"
)

// Degradation stages, in the order they are tried
const (
	stageEntry = "entry"
	stageAll   = "all"
)

// saveLogs writes the log collection. When the backend is full, evidence is
// dropped from the entry named by changedID and the write retried; if that
// still does not fit, evidence is dropped from every entry and the write is
// retried one last time. Points are never dropped.
//
// logs is modified in place so the caller sees what was persisted.
func (s *Store) saveLogs(logs []types.ScreenTimeLog, changedID string) error {
	err := s.save(KeyDetoxLogs, logs)
	if !errors.Is(err, kv.ErrQuotaExceeded) {
		return err
	}

	if idx := findLog(logs, changedID); idx >= 0 && logs[idx].HasEvidence() {
		logs[idx].ImageBase64 = ""
		err = s.save(KeyDetoxLogs, logs)
		s.recordDegradation(stageEntry, changedID, err)
		if !errors.Is(err, kv.ErrQuotaExceeded) {
			return err
		}
	}

	stripped := 0
	for i := range logs {
		if logs[i].HasEvidence() {
			logs[i].ImageBase64 = ""
			stripped++
		}
	}
	if stripped == 0 {
		return err
	}
	err = s.save(KeyDetoxLogs, logs)
	s.recordDegradation(stageAll, changedID, err)
	return err
}

func (s *Store) recordDegradation(stage, logID string, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	metrics.QuotaDegradations.WithLabelValues(stage, result).Inc()
	s.logger.Warn().
		Str("stage", stage).
		Str("log_id", logID).
		Str("result", result).
		Err(err).
		Msg("Storage full, dropped screen-time evidence")
}
