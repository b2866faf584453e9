package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "You have already uploaded a screenshot today. Come back tomorrow!",
		UserMessage(fmt.Errorf("submit: %w", ErrDuplicateSubmission)))
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(errors.New("boom")))

	seen := make(map[string]error)
	for _, m := range userMessages {
		msg := UserMessage(m.err)
		if prev, dup := seen[msg]; dup {
			t.Errorf("%v and %v share the message %q", prev, m.err, msg)
		}
		seen[msg] = m.err
	}
	assert.NotEqual(t, UserMessage(ErrDuplicateSubmission), UserMessage(ErrStorageFull))
}
