package enginetest

import (
	"slices"
	"unicode/utf8"

	"chewingd/internal/engine"
)

// Fake is a scriptable engine. Its state is set directly by tests; key
// handling is either built in (candidate paging and selection) or delegated
// to the On* hooks.
type Fake struct {
	Buffer   string
	Phonetic string
	Cursor   int
	Aux      string

	Absorbed    bool
	Ignored     bool
	CommitReady bool
	Commit      string

	// Pages holds the open candidate list; nil means no list is open.
	Pages [][]string
	Page  int
	// WrapPaging makes Left on the first page and Right on the last page
	// rotate instead of staying put.
	WrapPaging bool
	// StallPaging makes Left and Right leave the page unchanged.
	StallPaging bool

	Settings engine.Settings
	Selected []string
	Resets   int

	OnDefault func(f *Fake, code rune)
	OnAction  func(f *Fake, a engine.Action)
	OnCtrlNum func(f *Fake, digit rune)
}

// NewFake returns a Fake with default settings applied.
func NewFake() *Fake {
	return &Fake{Settings: engine.DefaultSettings()}
}

// OpenCandidates opens a list split into pages of the configured size.
func (f *Fake) OpenCandidates(items ...string) {
	size := f.PageSize()
	f.Pages = nil
	for chunk := range slices.Chunk(items, size) {
		f.Pages = append(f.Pages, chunk)
	}
	f.Page = 0
}

func (f *Fake) clearFlags() {
	f.Absorbed, f.Ignored, f.CommitReady, f.Commit = false, false, false, ""
}

func (f *Fake) HandleDefault(code rune) {
	f.clearFlags()
	if f.CandidatesOpen() {
		if i := slices.Index(f.Settings.SelectionKeys[:], code); i >= 0 && i < len(f.Pages[f.Page]) {
			text := f.Pages[f.Page][i]
			f.Selected = append(f.Selected, text)
			f.Buffer += text
			f.Cursor = utf8.RuneCountInString(f.Buffer)
			f.Phonetic = ""
			f.Pages = nil
			f.Absorbed = true
			return
		}
	}
	if f.OnDefault != nil {
		f.OnDefault(f, code)
		return
	}
	f.Phonetic += string(code)
	f.Absorbed = true
}

func (f *Fake) HandleAction(a engine.Action) {
	f.clearFlags()
	if f.CandidatesOpen() && (a == engine.ActionLeft || a == engine.ActionRight) {
		f.turnPage(a == engine.ActionRight)
		f.Absorbed = true
		return
	}
	if f.OnAction != nil {
		f.OnAction(f, a)
		return
	}
	f.Absorbed = true
}

func (f *Fake) turnPage(forward bool) {
	if f.StallPaging {
		return
	}
	last := len(f.Pages) - 1
	switch {
	case forward && f.Page < last:
		f.Page++
	case forward && f.WrapPaging:
		f.Page = 0
	case !forward && f.Page > 0:
		f.Page--
	case !forward && f.WrapPaging:
		f.Page = last
	}
}

func (f *Fake) HandleCtrlNum(digit rune) {
	f.clearFlags()
	if f.OnCtrlNum != nil {
		f.OnCtrlNum(f, digit)
		return
	}
	f.Absorbed = true
}

func (f *Fake) Reset() {
	f.Resets++
	f.Buffer, f.Phonetic, f.Cursor, f.Aux = "", "", 0, ""
	f.Pages, f.Page = nil, 0
	f.clearFlags()
}

func (f *Fake) ApplySettings(s engine.Settings) { f.Settings = s }

func (f *Fake) BufferText() string   { return f.Buffer }
func (f *Fake) BufferLen() int       { return utf8.RuneCountInString(f.Buffer) }
func (f *Fake) PhoneticText() string { return f.Phonetic }
func (f *Fake) PhoneticLen() int     { return utf8.RuneCountInString(f.Phonetic) }
func (f *Fake) CursorIndex() int     { return f.Cursor }
func (f *Fake) IsAbsorbed() bool     { return f.Absorbed }
func (f *Fake) IsIgnored() bool      { return f.Ignored }
func (f *Fake) IsCommitReady() bool  { return f.CommitReady }
func (f *Fake) CommitText() string   { return f.Commit }
func (f *Fake) CandidatesOpen() bool { return len(f.Pages) > 0 }
func (f *Fake) CurrentPage() int     { return f.Page }
func (f *Fake) TotalPages() int      { return len(f.Pages) }
func (f *Fake) AuxText() string      { return f.Aux }

func (f *Fake) CandidateCount() int {
	n := 0
	for _, p := range f.Pages {
		n += len(p)
	}
	return n
}

func (f *Fake) PageSize() int {
	if f.Settings.PageSize <= 0 {
		return 10
	}
	return f.Settings.PageSize
}

func (f *Fake) Candidates() []string {
	if !f.CandidatesOpen() {
		return nil
	}
	return slices.Clone(f.Pages[f.Page])
}
