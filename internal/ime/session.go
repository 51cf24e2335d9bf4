package ime

import (
	"fmt"
	"strings"

	"chewingd/internal/candidate"
	"chewingd/internal/engine"
)

// SwitchBehavior decides what happens to pending composition when the
// session loses focus or the user switches input method.
type SwitchBehavior uint8

const (
	// SwitchClear drops everything without emitting text.
	SwitchClear SwitchBehavior = iota
	// SwitchCommitPreedit emits exactly what the preedit shows.
	SwitchCommitPreedit
	// SwitchCommitDefault lets the engine pick its default candidates and
	// emits the result.
	SwitchCommitDefault
)

var switchNames = [...]string{
	SwitchClear:         "clear",
	SwitchCommitPreedit: "commit-preedit",
	SwitchCommitDefault: "commit-default",
}

func (b SwitchBehavior) String() string {
	if int(b) < len(switchNames) {
		return switchNames[b]
	}
	return fmt.Sprintf("SwitchBehavior(%d)", b)
}

func (b SwitchBehavior) MarshalText() ([]byte, error) {
	if int(b) >= len(switchNames) {
		return nil, fmt.Errorf("invalid switch behavior %d", b)
	}
	return []byte(switchNames[b]), nil
}

func (b *SwitchBehavior) UnmarshalText(text []byte) error {
	v, err := ParseSwitchBehavior(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ParseSwitchBehavior accepts a short name such as "commit-preedit".
func ParseSwitchBehavior(s string) (SwitchBehavior, error) {
	for i, name := range switchNames {
		if strings.EqualFold(s, name) {
			return SwitchBehavior(i), nil
		}
	}
	return SwitchClear, fmt.Errorf("unknown switch behavior %q", s)
}

// DeactivateReason tells Deactivate why the session is going away.
type DeactivateReason uint8

const (
	ReasonOther DeactivateReason = iota
	ReasonFocusOut
	ReasonSwitchInputMethod
)

func (r DeactivateReason) String() string {
	switch r {
	case ReasonFocusOut:
		return "focus-out"
	case ReasonSwitchInputMethod:
		return "switch-input-method"
	default:
		return "other"
	}
}

// SessionConfig is everything a Controller needs to know about user
// preferences. Engine settings and candidate options are both derived from
// it so they never disagree.
type SessionConfig struct {
	SelectionKeys   engine.SelectionKeySet
	PageSize        int
	CandidateLayout candidate.Layout
	Paging          candidate.PagingMode
	CursorPolicy    candidate.CursorPolicy

	UseKeypadAsSelectionKey bool
	ArrowKeySelection       bool
	SwitchBehavior          SwitchBehavior

	AddPhraseForward bool
	ChoiceBackward   bool
	AutoShiftCursor  bool
	EasySymbolInput  bool
	SpaceAsSelection bool
	EscClearsAll     bool
	Layout           engine.KeyboardLayout

	// HostUnderline is set when the host draws its own preedit underline.
	HostUnderline bool
}

// DefaultSessionConfig matches the engine defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		SelectionKeys:     engine.SelKeyDigits,
		PageSize:          10,
		CandidateLayout:   candidate.LayoutHorizontal,
		Paging:            candidate.PagingRotate,
		ArrowKeySelection: true,
		SwitchBehavior:    SwitchCommitDefault,
		AddPhraseForward:  true,
		ChoiceBackward:    true,
		SpaceAsSelection:  true,
		EscClearsAll:      true,
		Layout:            engine.LayoutDefault,
	}
}

// Settings derives the complete engine settings.
func (s SessionConfig) Settings() engine.Settings {
	return engine.Settings{
		SelectionKeys:    s.SelectionKeys.Keys(),
		PageSize:         candidate.ClampPageSize(s.PageSize),
		Layout:           s.Layout,
		AddPhraseForward: s.AddPhraseForward,
		ChoiceBackward:   s.ChoiceBackward,
		AutoShiftCursor:  s.AutoShiftCursor,
		SpaceAsSelection: s.SpaceAsSelection,
		EasySymbolInput:  s.EasySymbolInput,
		EscClearsAll:     s.EscClearsAll,
		MaxBufferLen:     engine.MaxBufferLen,
	}
}

// CandidateOptions derives how candidate pages are built and navigated.
func (s SessionConfig) CandidateOptions() candidate.Options {
	return candidate.Options{
		SelectionKeys: s.SelectionKeys.Keys(),
		PageSize:      candidate.ClampPageSize(s.PageSize),
		Layout:        s.CandidateLayout,
		Paging:        s.Paging.Policy(),
		CursorEnabled: s.ArrowKeySelection,
		Cursor:        s.CursorPolicy,
	}
}
