package editor

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxAnswerChars bounds the free-text answers (conflict description, attempts, outcome, compromise).
	MaxAnswerChars = 4096
	// MaxShortAnswerChars bounds the one-line answers (parties, relationship, timeframe).
	MaxShortAnswerChars = 512
	// EnvMaxInputChars caps every field at a lower character count when set.
	EnvMaxInputChars = "CONCORD_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("answer is too long")
	ErrInvalidUTF8   = errors.New("answer contains invalid UTF-8 sequences")
)

// FieldLimit is the number of characters an answer to field may hold.
// Unknown names get the free-text budget; the editors reject them later.
func FieldLimit(field string) int {
	limit := MaxAnswerChars
	if s, ok := lookupField(field); ok {
		limit = s.limit()
	}
	if n := envLimit(); n > 0 && n < limit {
		limit = n
	}
	return limit
}

// SanitizeField cleans an answer for field. Answers are counted in characters,
// not bytes, and rejected rather than shortened when over the field's limit.
// Terminal control characters are stripped; newlines, tabs and carriage
// returns survive.
func SanitizeField(field, answer string) (string, error) {
	if !utf8.ValidString(answer) {
		return "", fmt.Errorf("%s: %w", field, ErrInvalidUTF8)
	}
	if n, limit := utf8.RuneCountInString(answer), FieldLimit(field); n > limit {
		return "", fmt.Errorf("%s: %w: %d characters, limit %d", field, ErrInputTooLarge, n, limit)
	}
	if strings.IndexFunc(answer, unsafeControl) < 0 {
		return answer, nil
	}
	return strings.Map(func(r rune) rune {
		if unsafeControl(r) {
			return -1
		}
		return r
	}, answer), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func envLimit() int {
	n, err := strconv.Atoi(os.Getenv(EnvMaxInputChars))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
