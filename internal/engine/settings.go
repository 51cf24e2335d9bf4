package engine

// MaxBufferLen is the default number of converted characters an engine
// holds before committing the oldest ones.
const MaxBufferLen = 18

// Settings is the complete set of engine options. It is always applied as a
// whole through Client.ApplySettings. Settings values are comparable.
type Settings struct {
	SelectionKeys [10]rune
	PageSize      int
	Layout        KeyboardLayout

	// AddPhraseForward makes Ctrl+digit learn the phrase before the cursor.
	AddPhraseForward bool
	// ChoiceBackward offers phrases ending at the cursor instead of starting.
	ChoiceBackward   bool
	AutoShiftCursor  bool
	SpaceAsSelection bool
	EasySymbolInput  bool
	EscClearsAll     bool
	MaxBufferLen     int
}

// DefaultSettings returns the engine options used when nothing is
// configured.
func DefaultSettings() Settings {
	return Settings{
		SelectionKeys:    SelKeyDigits.Keys(),
		PageSize:         10,
		Layout:           LayoutDefault,
		AddPhraseForward: true,
		ChoiceBackward:   true,
		SpaceAsSelection: true,
		EscClearsAll:     true,
		MaxBufferLen:     MaxBufferLen,
	}
}
