// Package preedit builds the composition text shown at the insertion point.
//
// The composed text is the engine's converted buffer with the raw phonetic
// symbols spliced in at the buffer cursor. Offsets handed to hosts are byte
// offsets into the composed UTF-8 string.
package preedit

import "strings"

// Format is a set of display hints for one preedit segment.
type Format uint8

const (
	// Underline marks text that is still being composed.
	Underline Format = 1 << iota
	// HighLight marks the in-progress phonetic symbols.
	HighLight
)

// Segment is a run of preedit text sharing one format.
type Segment struct {
	Text   string
	Format Format
}

// Text is a formatted, cursor-positioned composition string.
type Text struct {
	Segments []Segment
	// Cursor is a byte offset into String().
	Cursor int
}

// String returns the concatenated segment text.
func (t Text) String() string {
	var b strings.Builder
	for _, s := range t.Segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Empty reports whether there is nothing to show.
func (t Text) Empty() bool {
	for _, s := range t.Segments {
		if s.Text != "" {
			return false
		}
	}
	return true
}

// Options controls segment formatting.
type Options struct {
	// HostUnderline leaves buffer segments unformatted because the host
	// draws its own underline under preedit text.
	HostUnderline bool
}

// Compose merges the converted buffer and the phonetic text at the buffer
// cursor, which is a code-point index into buffer. Invalid UTF-8 in buffer
// yields ErrMalformedText and no text.
func Compose(buffer, phonetic string, cursor int, opts Options) (Text, error) {
	if buffer == "" && phonetic == "" {
		return Text{}, nil
	}

	n, err := CodePointLength(buffer)
	if err != nil {
		return Text{}, err
	}
	offset, err := ByteOffsetForCharIndex(buffer, min(cursor, n))
	if err != nil {
		return Text{}, err
	}

	bufFormat := Underline
	if opts.HostUnderline {
		bufFormat = 0
	}

	before, after := buffer[:offset], buffer[offset:]
	var segs []Segment
	if before != "" {
		segs = append(segs, Segment{Text: before, Format: bufFormat})
	}
	if phonetic != "" {
		segs = append(segs, Segment{Text: phonetic, Format: HighLight | Underline})
	}
	if after != "" {
		segs = append(segs, Segment{Text: after, Format: bufFormat})
	}

	return Text{Segments: segs, Cursor: len(before)}, nil
}
