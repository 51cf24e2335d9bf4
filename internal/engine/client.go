// Package engine defines the contract between the input session controller
// and a phonetic composition engine.
//
// A Client wraps exactly one engine session. Every call mutates or reads that
// session synchronously; callers must not use one Client from more than one
// goroutine at a time. The package also holds the immutable lookup tables
// (selection keys, keyboard layouts) that configuration refers to, and the
// single outcome classification shared by every key path.
package engine

// Client drives one phonetic engine session.
type Client interface {
	// HandleDefault feeds a printable key code to the engine.
	HandleDefault(code rune)
	// HandleAction feeds a named, non-printable command.
	HandleAction(a Action)
	// HandleCtrlNum feeds Ctrl plus a digit ('0'..'9').
	HandleCtrlNum(digit rune)
	// Reset drops all composition state.
	Reset()
	// ApplySettings replaces every engine setting in one step.
	ApplySettings(s Settings)

	BufferText() string
	BufferLen() int
	PhoneticText() string
	PhoneticLen() int
	// CursorIndex is a code-point index into BufferText.
	CursorIndex() int

	// The three flags describe the result of the last handled key.
	IsAbsorbed() bool
	IsIgnored() bool
	IsCommitReady() bool
	CommitText() string

	CandidatesOpen() bool
	CandidateCount() int
	CurrentPage() int
	TotalPages() int
	PageSize() int
	// Candidates returns the texts on the current page.
	Candidates() []string

	// AuxText is an engine status message, empty when there is none.
	AuxText() string
}
