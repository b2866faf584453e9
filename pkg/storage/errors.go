package storage

import (
	"errors"
)

var (
	// ErrDuplicateSubmission is returned when a screen-time log already
	// exists for the email on the current calendar day
	ErrDuplicateSubmission = errors.New("screen time already submitted today")

	// ErrStorageFull is returned when a write did not fit in the backend,
	// even after dropping evidence where that is allowed
	ErrStorageFull = errors.New("storage full")

	// ErrPartialWrite is returned when a ledger update stored its logs but
	// neither the profile total nor the logs' previous state could be
	// written. Totals and logs disagree until an operator corrects them.
	ErrPartialWrite = errors.New("ledger update only partly saved")

	// ErrReservedIdentity is returned when activity is recorded for the
	// operator identity
	ErrReservedIdentity = errors.New("reserved identity")

	ErrInvalidName     = errors.New("name must not be blank")
	ErrInvalidEmail    = errors.New("email must not be blank")
	ErrInvalidQuestion = errors.New("question needs text and at least two non-blank options")
	ErrInvalidHours    = errors.New("hours must be a finite, non-negative number")
	ErrInvalidEvidence = errors.New("evidence could not be verified")
	ErrUnknownScope    = errors.New("unknown reset scope")
)

// userMessages are the end-user texts for actionable failures. Each error
// has its own message so support can tell them apart.
var userMessages = []struct {
	err error
	msg string
}{
	{ErrPartialWrite, "Your screen time was recorded but your points could not be updated. Please contact an administrator."},
	{ErrDuplicateSubmission, "You have already uploaded a screenshot today. Come back tomorrow!"},
	{ErrStorageFull, "Storage is full on this device. Your data was not saved."},
	{ErrReservedIdentity, "That name is reserved. Please pick another one."},
	{ErrInvalidName, "Please enter a name."},
	{ErrInvalidEmail, "Please enter an email address."},
	{ErrInvalidQuestion, "A question needs text and at least two answer options."},
	{ErrInvalidHours, "Screen time must be a positive number of hours."},
	{ErrInvalidEvidence, "We could not read your screen time from that screenshot. Please upload a clear one."},
	{ErrUnknownScope, "Unknown reset target."},
}

// UserMessage returns the message shown to the end user for err, or a
// generic message for errors without one.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Something went wrong. Please try again."
}
