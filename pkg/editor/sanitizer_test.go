package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldLimit(t *testing.T) {
	assert.Equal(t, MaxAnswerChars, FieldLimit("conflictDescription"))
	assert.Equal(t, MaxShortAnswerChars, FieldLimit("idealResolutionTimeframe"))
	assert.Equal(t, MaxAnswerChars, FieldLimit("nope"))

	t.Setenv(EnvMaxInputChars, "100")
	assert.Equal(t, 100, FieldLimit("conflictDescription"))
	assert.Equal(t, 100, FieldLimit("partiesInvolved"))

	t.Setenv(EnvMaxInputChars, "100000")
	assert.Equal(t, MaxShortAnswerChars, FieldLimit("partiesInvolved"), "override only lowers")

	t.Setenv(EnvMaxInputChars, "not-a-number")
	assert.Equal(t, MaxAnswerChars, FieldLimit("attemptsMade"))
}

func TestSanitizeField_SizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		answer  string
		wantErr bool
	}{
		{"free text at limit", "desiredOutcome", strings.Repeat("a", MaxAnswerChars), false},
		{"free text over limit", "desiredOutcome", strings.Repeat("a", MaxAnswerChars+1), true},
		{"multibyte counted as characters", "conflictDescription", strings.Repeat("é", 3000), false},
		{"short answer at limit", "partiesInvolved", strings.Repeat("ü", MaxShortAnswerChars), false},
		{"short answer over limit", "partiesInvolved", strings.Repeat("a", MaxShortAnswerChars+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeField(tt.field, tt.answer)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
				assert.Contains(t, err.Error(), tt.field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.answer, got)
		})
	}
}

func TestSanitizeField_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputChars, "10")
	_, err := SanitizeField("desiredOutcome", strings.Repeat("a", 11))
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = SanitizeField("desiredOutcome", strings.Repeat("ß", 10))
	assert.NoError(t, err)
}

func TestSanitizeField_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "We argue about chores", "We argue about chores"},
		{"Safe Controls", "Line1\nLine2\tTabbed\r\n", "Line1\nLine2\tTabbed\r\n"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeField("attemptsMade", tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeField_InvalidUTF8(t *testing.T) {
	_, err := SanitizeField("attemptsMade", "bad \xff byte")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
