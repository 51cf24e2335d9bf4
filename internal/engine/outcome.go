package engine

// OutcomeKind is the disposition of one key event.
type OutcomeKind uint8

const (
	// PassThrough hands the key back to the host untouched.
	PassThrough OutcomeKind = iota
	// Consumed swallows the key.
	Consumed
	// Commit swallows the key and emits Outcome.Text.
	Commit
)

func (k OutcomeKind) String() string {
	switch k {
	case PassThrough:
		return "PassThrough"
	case Consumed:
		return "Consumed"
	case Commit:
		return "Commit"
	default:
		return "Unknown"
	}
}

// Outcome is the result of feeding one key to the engine.
type Outcome struct {
	Kind OutcomeKind
	Text string
	// Redraw asks the host to rebuild preedit and candidates.
	Redraw bool
	// Reset asks for a full reset because an edit emptied the composition.
	Reset bool
}

// Passed is the outcome for keys that never reached the engine.
var Passed = Outcome{Kind: PassThrough}

// Handled reports whether the key was swallowed.
func (o Outcome) Handled() bool {
	return o.Kind != PassThrough
}

// Classify reads the flags left by the last engine call. The order is
// fixed: ignored, absorbed, commit-ready, then plain consumed.
func Classify(c Client) Outcome {
	switch {
	case c.IsIgnored():
		return Passed
	case c.IsAbsorbed():
		return Outcome{Kind: Consumed, Redraw: true}
	case c.IsCommitReady():
		return Outcome{Kind: Commit, Text: c.CommitText(), Redraw: true}
	default:
		return Outcome{Kind: Consumed, Redraw: true}
	}
}
