package ime

import (
	"unicode/utf8"

	"chewingd/internal/candidate"
	"chewingd/internal/engine"
)

// pinyinPhoneticLimit is the longest pinyin spelling the engine accepts
// before it starts dropping letters.
const pinyinPhoneticLimit = 9

// DefaultKeyGuard decides whether a printable key is refused before it
// reaches the engine. A refused key is consumed without an engine call.
type DefaultKeyGuard func(c engine.Client, layout engine.KeyboardLayout) bool

// PinyinLengthGuard refuses keys on the Han-Yu Pinyin layout once the
// phonetic text holds limit characters.
func PinyinLengthGuard(limit int) DefaultKeyGuard {
	return func(c engine.Client, layout engine.KeyboardLayout) bool {
		return layout == engine.LayoutHanyuPinyin &&
			utf8.RuneCountInString(c.PhoneticText()) >= limit
	}
}

// NoKeyGuard lets every key through.
func NoKeyGuard(engine.Client, engine.KeyboardLayout) bool { return false }

// Router maps one key event to at most one engine call and classifies the
// result.
type Router struct {
	client engine.Client
	guard  DefaultKeyGuard
}

// NewRouter returns a router for c. A nil guard means PinyinLengthGuard(9).
func NewRouter(c engine.Client, guard DefaultKeyGuard) *Router {
	if guard == nil {
		guard = PinyinLengthGuard(pinyinPhoneticLimit)
	}
	return &Router{client: c, guard: guard}
}

// Route handles ev. cands is the open candidate page or nil.
func (r *Router) Route(ev KeyEvent, cfg *SessionConfig, cands *candidate.Model) engine.Outcome {
	if ev.Release {
		return engine.Passed
	}
	if cands != nil {
		if out, ok := r.intercept(ev, cfg, cands); ok {
			return out
		}
	}

	c := r.client
	switch {
	case ev.Is(KeySpace, 0):
		return r.action(engine.ActionSpace)
	case ev.Is(KeyTab, 0):
		return r.action(engine.ActionTab)
	case ev.IsSimple():
		if r.guard(c, cfg.Layout) {
			return engine.Outcome{Kind: engine.Consumed}
		}
		c.HandleDefault(ev.Rune())
		return engine.Classify(c)
	case ev.Is(KeyBackSpace, 0):
		return r.edit(engine.ActionBackspace)
	case ev.Is(KeyEscape, 0):
		return r.action(engine.ActionEsc)
	case ev.Is(KeyDelete, 0):
		return r.edit(engine.ActionDelete)
	case ev.Is(KeyUp, 0):
		return r.action(engine.ActionUp)
	case ev.Is(KeyDown, 0):
		return r.action(engine.ActionDown)
	case ev.Is(KeyPageDown, 0):
		return r.action(engine.ActionPageDown)
	case ev.Is(KeyPageUp, 0):
		return r.action(engine.ActionPageUp)
	case ev.Is(KeyRight, 0):
		return r.action(engine.ActionRight)
	case ev.Is(KeyLeft, 0):
		return r.action(engine.ActionLeft)
	case ev.Is(KeyHome, 0):
		return r.action(engine.ActionHome)
	case ev.Is(KeyEnd, 0):
		return r.action(engine.ActionEnd)
	case ev.Is(KeySpace, ModShift):
		return r.action(engine.ActionShiftSpace)
	case ev.Is(KeyLeft, ModShift):
		return r.action(engine.ActionShiftLeft)
	case ev.Is(KeyRight, ModShift):
		return r.action(engine.ActionShiftRight)
	case ev.Is(KeyReturn, 0), ev.Is(KeyKPEnter, 0):
		return r.action(engine.ActionEnter)
	}
	if d, ok := ev.CtrlDigit(); ok {
		c.HandleCtrlNum(d)
		return engine.Classify(c)
	}
	return engine.Passed
}

// intercept claims navigation keys while a candidate page is shown. Keys
// it claims are consumed even when the move itself did nothing.
func (r *Router) intercept(ev KeyEvent, cfg *SessionConfig, cands *candidate.Model) (engine.Outcome, bool) {
	if cfg.UseKeypadAsSelectionKey {
		if i, ok := ev.KeypadIndex(); ok && i < cands.Len() {
			out, _ := cands.Select(i)
			return consumed(out), true
		}
	}
	if !cfg.ArrowKeySelection || ev.Mods != 0 {
		return engine.Passed, false
	}

	prevItem, nextItem, prevPage, nextPage := KeyLeft, KeyRight, KeyUp, KeyDown
	if cands.Layout() == candidate.LayoutVertical {
		prevItem, nextItem, prevPage, nextPage = KeyUp, KeyDown, KeyLeft, KeyRight
	}

	var out engine.Outcome
	switch ev.Sym {
	case prevItem:
		out = cands.PrevCandidate()
	case nextItem:
		out = cands.NextCandidate()
	case prevPage:
		out = cands.PrevPage()
	case nextPage:
		out = cands.NextPage()
	case KeySpace:
		out = cands.Advance()
	case KeyReturn:
		out, _ = cands.SelectCursor()
	default:
		return engine.Passed, false
	}
	return consumed(out), true
}

func consumed(out engine.Outcome) engine.Outcome {
	if out.Kind == engine.PassThrough {
		out.Kind = engine.Consumed
	}
	return out
}

func (r *Router) action(a engine.Action) engine.Outcome {
	r.client.HandleAction(a)
	return engine.Classify(r.client)
}

// edit runs a deleting action only when there is something to delete, and
// asks for a reset when it leaves the composition empty.
func (r *Router) edit(a engine.Action) engine.Outcome {
	if r.empty() {
		return engine.Passed
	}
	r.client.HandleAction(a)
	if r.empty() {
		return engine.Outcome{Kind: engine.Consumed, Redraw: true, Reset: true}
	}
	return engine.Classify(r.client)
}

func (r *Router) empty() bool {
	return r.client.BufferLen() == 0 && r.client.PhoneticText() == ""
}
