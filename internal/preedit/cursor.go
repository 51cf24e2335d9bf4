package preedit

import (
	"errors"
	"unicode/utf8"
)

// ErrMalformedText is returned when engine text is not valid UTF-8.
var ErrMalformedText = errors.New("preedit: malformed UTF-8 text")

// CodePointLength returns the number of code points in text.
func CodePointLength(text string) (int, error) {
	if !utf8.ValidString(text) {
		return 0, ErrMalformedText
	}
	return utf8.RuneCountInString(text), nil
}

// ByteOffsetForCharIndex returns the byte offset of the charIndex-th code
// point in text. An index past the end clamps to len(text); a negative
// index clamps to 0.
func ByteOffsetForCharIndex(text string, charIndex int) (int, error) {
	if !utf8.ValidString(text) {
		return 0, ErrMalformedText
	}
	if charIndex <= 0 {
		return 0, nil
	}

	n := 0
	for offset := range text {
		if n == charIndex {
			return offset, nil
		}
		n++
	}
	return len(text), nil
}
