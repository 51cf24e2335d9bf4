// Package zhuyin is a small phonetic engine for Traditional Chinese that
// converts bopomofo or Han-Yu Pinyin keystrokes into characters.
//
// The engine keeps a buffer of converted cells, one per syllable or symbol,
// plus the syllable being composed. Syllables are converted greedily into the
// longest known phrases. Choosing a candidate settles the text up to the end
// of the choice and teaches it to the user dictionary.
package zhuyin

import (
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"chewingd/internal/dict"
	"chewingd/internal/engine"
)

// maxPhraseLen bounds both conversion and Ctrl+digit phrase learning.
const maxPhraseLen = 9

// Aux messages.
const (
	auxAdded      = "加入："
	auxExists     = "已有："
	auxBadLength  = "無法加入此長度的詞"
	auxAddFailed  = "加詞失敗"
	auxBadReading = "無此讀音："
)

type cell struct {
	// phone is empty for symbols inserted verbatim.
	phone string
	text  string
	fixed bool
}

type group struct {
	start int
	texts []string
	// length is the number of cells every text in the group covers.
	length int
}

type choice struct {
	groups []group
	group  int
	page   int
}

// Engine is one composition session. It implements engine.Client and,
// like every Client, must not be used from more than one goroutine at a
// time.
type Engine struct {
	dict     *dict.Dictionary
	user     UserDict
	log      *slog.Logger
	settings engine.Settings

	comp   composer
	cells  []cell
	cursor int
	list   *choice

	absorbed    bool
	ignored     bool
	commitReady bool
	commit      string
	aux         string
}

// Option configures an Engine.
type Option func(*Engine)

// WithDictionary replaces the built-in dictionary.
func WithDictionary(d *dict.Dictionary) Option {
	return func(e *Engine) { e.dict = d }
}

// WithUserDict sets where learned phrases are kept. The default is an
// in-memory dictionary.
func WithUserDict(u UserDict) Option {
	return func(e *Engine) { e.user = u }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an engine with default settings.
func New(opts ...Option) *Engine {
	e := &Engine{
		dict:     dict.Default(),
		log:      slog.Default(),
		settings: engine.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.user == nil {
		e.user = NewMemoryDict()
	}
	e.comp = newComposer(e.settings.Layout)
	return e
}

var _ engine.Client = (*Engine)(nil)

func (e *Engine) begin() {
	e.absorbed, e.ignored, e.commitReady = false, false, false
	e.commit = ""
	e.aux = ""
}

func (e *Engine) ApplySettings(s engine.Settings) {
	if s.Layout != e.settings.Layout {
		if !Supported(s.Layout) {
			e.log.Debug("keyboard layout not implemented, using default keyboard",
				"layout", s.Layout.String())
		}
		e.comp = newComposer(s.Layout)
	}
	e.settings = s
	e.list = nil
}

func (e *Engine) Reset() {
	e.begin()
	e.comp.Clear()
	e.cells = nil
	e.cursor = 0
	e.list = nil
}

func (e *Engine) HandleDefault(code rune) {
	e.begin()
	if e.list != nil {
		e.selectKey(code)
		return
	}

	if sym, ok := fullWidth[code]; ok && e.comp.Len() == 0 {
		e.insert(cell{text: sym, fixed: true})
		return
	}

	syl, st := e.comp.Key(code)
	e.composed(syl, st)
}

func (e *Engine) composed(syl string, st keyState) {
	switch st {
	case keyIgnored:
		e.ignored = true
	case keyAbsorbed, keyInvalid:
		e.absorbed = true
	case keyComplete:
		if len(e.lookup([]string{syl})) == 0 {
			e.aux = auxBadReading + syl
			e.absorbed = true
			return
		}
		e.insert(cell{phone: syl})
	}
}

// insert adds c at the cursor and commits the oldest cells once the buffer
// outgrows its limit.
func (e *Engine) insert(c cell) {
	e.cells = slices.Insert(e.cells, e.cursor, c)
	e.cursor++
	e.convert()

	limit := e.settings.MaxBufferLen
	if limit <= 0 {
		limit = engine.MaxBufferLen
	}
	if over := len(e.cells) - limit; over > 0 {
		e.commit = joinCells(e.cells[:over])
		e.cells = append([]cell(nil), e.cells[over:]...)
		e.cursor = max(0, e.cursor-over)
		e.commitReady = true
		return
	}
	e.absorbed = true
}

func (e *Engine) HandleAction(a engine.Action) {
	e.begin()
	if e.list != nil {
		e.listAction(a)
		return
	}

	if a == engine.ActionSpace && e.comp.Len() > 0 {
		e.composed(e.comp.Tone1())
		return
	}
	if e.comp.Len() > 0 {
		e.phoneticAction(a)
		return
	}
	if len(e.cells) == 0 {
		e.ignored = true
		return
	}

	e.absorbed = true
	switch a {
	case engine.ActionSpace:
		if !e.settings.SpaceAsSelection {
			e.absorbed, e.ignored = false, true
			return
		}
		e.openList()
	case engine.ActionDown:
		e.openList()
	case engine.ActionLeft, engine.ActionShiftLeft:
		e.cursor = max(0, e.cursor-1)
	case engine.ActionRight, engine.ActionShiftRight:
		e.cursor = min(len(e.cells), e.cursor+1)
	case engine.ActionHome:
		e.cursor = 0
	case engine.ActionEnd:
		e.cursor = len(e.cells)
	case engine.ActionBackspace:
		if e.cursor > 0 {
			e.cells = slices.Delete(e.cells, e.cursor-1, e.cursor)
			e.cursor--
			e.convert()
		}
	case engine.ActionDelete:
		if e.cursor < len(e.cells) {
			e.cells = slices.Delete(e.cells, e.cursor, e.cursor+1)
			e.convert()
		}
	case engine.ActionEsc:
		if e.settings.EscClearsAll {
			e.cells = nil
			e.cursor = 0
		}
	case engine.ActionTab:
		for i := range e.cells {
			if e.cells[i].phone != "" {
				e.cells[i].fixed = false
			}
		}
		e.convert()
	case engine.ActionEnter:
		e.commit = e.BufferText()
		e.cells = nil
		e.cursor = 0
		e.absorbed, e.commitReady = false, true
	case engine.ActionShiftSpace:
		e.absorbed, e.ignored = false, true
	}
}

// phoneticAction handles commands while a syllable is being composed.
func (e *Engine) phoneticAction(a engine.Action) {
	e.absorbed = true
	switch a {
	case engine.ActionBackspace:
		e.comp.Backspace()
	case engine.ActionEsc:
		e.comp.Clear()
	case engine.ActionShiftSpace:
		e.absorbed, e.ignored = false, true
	}
}

func (e *Engine) listAction(a engine.Action) {
	e.absorbed = true
	l := e.list
	pages := e.TotalPages()
	switch a {
	case engine.ActionSpace:
		if l.page+1 < pages {
			l.page++
		} else {
			l.group = (l.group + 1) % len(l.groups)
			l.page = 0
		}
	case engine.ActionRight, engine.ActionPageDown:
		l.page = (l.page + 1) % pages
	case engine.ActionLeft, engine.ActionPageUp:
		l.page = (l.page + pages - 1) % pages
	case engine.ActionHome:
		l.page = 0
	case engine.ActionEnd:
		l.page = pages - 1
	case engine.ActionDown:
		l.group = (l.group + 1) % len(l.groups)
		l.page = 0
	case engine.ActionUp, engine.ActionEsc, engine.ActionBackspace, engine.ActionDelete:
		e.list = nil
	case engine.ActionEnter:
		e.choose(l.page * e.PageSize())
	}
}

func (e *Engine) selectKey(code rune) {
	e.absorbed = true
	for i, k := range e.settings.SelectionKeys {
		if k == code {
			if i < len(e.Candidates()) {
				e.choose(e.list.page*e.PageSize() + i)
			}
			return
		}
	}
}

// choose applies candidate i of the current group and closes the list.
func (e *Engine) choose(i int) {
	g := e.list.groups[e.list.group]
	if i < 0 || i >= len(g.texts) {
		return
	}
	text := g.texts[i]
	phones := make([]string, 0, g.length)
	k := g.start
	for _, r := range text {
		e.cells[k].text = string(r)
		phones = append(phones, e.cells[k].phone)
		k++
	}
	for j := range g.start + g.length {
		e.cells[j].fixed = true
	}
	e.list = nil
	if e.settings.AutoShiftCursor && !e.settings.ChoiceBackward {
		e.cursor = min(len(e.cells), g.start+g.length)
	}
	e.learn(phones, text)
}

func (e *Engine) HandleCtrlNum(digit rune) {
	e.begin()
	if len(e.cells) == 0 {
		e.ignored = true
		return
	}
	e.absorbed = true

	n := int(digit - '0')
	start := e.cursor
	if e.settings.AddPhraseForward {
		start = e.cursor - n
	}
	if n < 2 || n > maxPhraseLen || start < 0 || start+n > len(e.cells) {
		e.aux = auxBadLength
		return
	}

	span := e.cells[start : start+n]
	phones := make([]string, 0, n)
	for _, c := range span {
		if c.phone == "" {
			e.aux = auxBadLength
			return
		}
		phones = append(phones, c.phone)
	}
	text := joinCells(span)
	created, ok := e.learn(phones, text)
	switch {
	case !ok:
		e.aux = auxAddFailed
	case created:
		e.aux = auxAdded + text
	default:
		e.aux = auxExists + text
	}
}

func (e *Engine) learn(phones []string, text string) (created, ok bool) {
	created, err := e.user.Add(dict.Key(phones), text)
	if err != nil {
		e.log.Warn("learn phrase", "phrase", text, "error", err)
		return false, false
	}
	e.log.Debug("learned phrase", "phrase", text, "new", created)
	return created, true
}

// lookup returns user phrases followed by dictionary entries for phones.
// Input contexts share the user dictionary, so it is queried on every call.
func (e *Engine) lookup(phones []string) []string {
	key := dict.Key(phones)

	var texts []string
	seen := make(map[string]bool)
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			texts = append(texts, t)
		}
	}

	user, err := e.user.Lookup(key)
	if err != nil {
		e.log.Warn("user phrase lookup", "phones", key, "error", err)
	}
	for _, p := range user {
		add(p.Text)
	}
	if len(phones) == 1 {
		for _, c := range e.dict.Chars(phones[0]) {
			add(c)
		}
	} else {
		for _, p := range e.dict.Phrases(phones) {
			add(p)
		}
	}
	return texts
}

// convert assigns text to every unfixed cell, preferring the longest
// phrase starting at each position.
func (e *Engine) convert() {
	for i := 0; i < len(e.cells); {
		if e.cells[i].fixed || e.cells[i].phone == "" {
			i++
			continue
		}
		run := 0
		for j := i; j < len(e.cells) && run < maxPhraseLen; j++ {
			if e.cells[j].fixed || e.cells[j].phone == "" {
				break
			}
			run++
		}

		n := 1
		text := ""
		for l := run; l >= 1; l-- {
			if texts := e.lookup(e.phones(i, l)); len(texts) > 0 {
				n, text = l, texts[0]
				break
			}
		}
		k := i
		for _, r := range text {
			e.cells[k].text = string(r)
			k++
		}
		i += n
	}
}

func (e *Engine) phones(start, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = e.cells[start+i].phone
	}
	return out
}

// openList offers candidates for the phrases touching the cursor, longest
// first.
func (e *Engine) openList() {
	var groups []group
	add := func(start, n int) {
		for _, c := range e.cells[start : start+n] {
			if c.phone == "" {
				return
			}
		}
		if texts := e.lookup(e.phones(start, n)); len(texts) > 0 {
			groups = append(groups, group{start: start, length: n, texts: texts})
		}
	}

	if e.settings.ChoiceBackward {
		end := max(e.cursor, 1)
		for n := min(maxPhraseLen, end); n >= 1; n-- {
			add(end-n, n)
		}
	} else {
		start := min(e.cursor, len(e.cells)-1)
		for n := min(maxPhraseLen, len(e.cells)-start); n >= 1; n-- {
			add(start, n)
		}
	}
	if len(groups) > 0 {
		e.list = &choice{groups: groups}
	}
}

func joinCells(cells []cell) string {
	var sb strings.Builder
	for _, c := range cells {
		sb.WriteString(c.text)
	}
	return sb.String()
}

func (e *Engine) BufferText() string  { return joinCells(e.cells) }
func (e *Engine) BufferLen() int      { return len(e.cells) }
func (e *Engine) PhoneticText() string { return e.comp.Display() }

func (e *Engine) PhoneticLen() int {
	return utf8.RuneCountInString(e.comp.Display())
}

func (e *Engine) CursorIndex() int { return e.cursor }

func (e *Engine) IsAbsorbed() bool    { return e.absorbed }
func (e *Engine) IsIgnored() bool     { return e.ignored }
func (e *Engine) IsCommitReady() bool { return e.commitReady }
func (e *Engine) CommitText() string  { return e.commit }
func (e *Engine) AuxText() string     { return e.aux }

func (e *Engine) CandidatesOpen() bool { return e.list != nil }

func (e *Engine) CandidateCount() int {
	if e.list == nil {
		return 0
	}
	return len(e.list.groups[e.list.group].texts)
}

func (e *Engine) CurrentPage() int {
	if e.list == nil {
		return 0
	}
	return e.list.page
}

func (e *Engine) TotalPages() int {
	if e.list == nil {
		return 0
	}
	ps := e.PageSize()
	return (e.CandidateCount() + ps - 1) / ps
}

func (e *Engine) PageSize() int {
	if ps := e.settings.PageSize; ps > 0 {
		return min(ps, len(e.settings.SelectionKeys))
	}
	return len(e.settings.SelectionKeys)
}

func (e *Engine) Candidates() []string {
	if e.list == nil {
		return nil
	}
	texts := e.list.groups[e.list.group].texts
	ps := e.PageSize()
	start := e.list.page * ps
	return slices.Clone(texts[start:min(start+ps, len(texts))])
}
