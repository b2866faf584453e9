package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	ID   string `json:"id"`
	Note string `json:"note,omitempty"`
}

func TestDecodeSlice(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		present   bool
		wantLen   int
		wantValid bool
	}{
		{name: "absent", raw: "", present: false, wantLen: 0, wantValid: true},
		{name: "empty string", raw: "", present: true, wantLen: 0, wantValid: true},
		{name: "null", raw: "null", present: true, wantLen: 0, wantValid: true},
		{name: "empty array", raw: "[]", present: true, wantLen: 0, wantValid: true},
		{name: "two records", raw: `[{"id":"a"},{"id":"b"}]`, present: true, wantLen: 2, wantValid: true},
		{name: "truncated", raw: `[{"id":"a"`, present: true, wantLen: 0, wantValid: false},
		{name: "wrong shape", raw: `{"id":"a"}`, present: true, wantLen: 0, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, valid := DecodeSlice[record](tt.raw, tt.present)
			assert.NotNil(t, items, "decode must never return a nil slice")
			assert.Len(t, items, tt.wantLen)
			assert.Equal(t, tt.wantValid, valid)
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	in := []record{{ID: "a", Note: "x"}, {ID: "b"}}

	first, err := Encode(in)
	assert.NoError(t, err)
	second, err := Encode(in)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, `[{"id":"a","note":"x"},{"id":"b"}]`, first)
}

func TestEncodeDecodeStrings(t *testing.T) {
	raw, err := Encode([]string{"alice", "bob"})
	assert.NoError(t, err)

	names, valid := DecodeSlice[string](raw, true)
	assert.True(t, valid)
	assert.Equal(t, []string{"alice", "bob"}, names)
}
