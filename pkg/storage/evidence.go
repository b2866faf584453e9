package storage

import (
	"context"
	"fmt"

	"github.com/cuemby/cybershield/pkg/types"
)

// EvidenceVerdict is the analyzer's reading of a screenshot
type EvidenceVerdict struct {
	Valid bool
	Hours float64
}

// EvidenceAnalyzer reads screen time from a base64 screenshot
type EvidenceAnalyzer interface {
	AnalyzeEvidenceImage(ctx context.Context, imageBase64 string) (EvidenceVerdict, error)
}

// SubmitEvidence has analyzer read the screenshot and submits the measured
// hours with the image attached. A same-day duplicate is rejected before the
// analyzer is called.
func (s *Store) SubmitEvidence(ctx context.Context, analyzer EvidenceAnalyzer, email, imageBase64 string) (types.LedgerResult, error) {
	if s.HasSubmittedToday(email) {
		return types.LedgerResult{}, s.countLedger("submit", ErrDuplicateSubmission)
	}

	verdict, err := analyzer.AnalyzeEvidenceImage(ctx, imageBase64)
	if err != nil {
		return types.LedgerResult{}, fmt.Errorf("analyze evidence: %w", err)
	}
	if !verdict.Valid {
		return types.LedgerResult{}, ErrInvalidEvidence
	}
	return s.Submit(email, verdict.Hours, imageBase64)
}
