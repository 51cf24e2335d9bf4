package ime

import (
	"fmt"
	"strings"
)

// KeySym is an X11 keysym as delivered by IBus.
type KeySym uint32

// Keysyms the router knows by name. Printable ASCII keysyms equal their
// character code.
const (
	KeySpace     KeySym = 0x0020
	KeyBackSpace KeySym = 0xff08
	KeyTab       KeySym = 0xff09
	KeyReturn    KeySym = 0xff0d
	KeyEscape    KeySym = 0xff1b
	KeyHome      KeySym = 0xff50
	KeyLeft      KeySym = 0xff51
	KeyUp        KeySym = 0xff52
	KeyRight     KeySym = 0xff53
	KeyDown      KeySym = 0xff54
	KeyPageUp    KeySym = 0xff55
	KeyPageDown  KeySym = 0xff56
	KeyEnd       KeySym = 0xff57
	KeyKPEnter   KeySym = 0xff8d
	KeyKP0       KeySym = 0xffb0
	KeyKP9       KeySym = 0xffb9
	KeyDelete    KeySym = 0xffff
)

var keyNames = map[string]KeySym{
	"space":     KeySpace,
	"BackSpace": KeyBackSpace,
	"Tab":       KeyTab,
	"Return":    KeyReturn,
	"Escape":    KeyEscape,
	"Home":      KeyHome,
	"Left":      KeyLeft,
	"Up":        KeyUp,
	"Right":     KeyRight,
	"Down":      KeyDown,
	"Page_Up":   KeyPageUp,
	"Page_Down": KeyPageDown,
	"End":       KeyEnd,
	"KP_Enter":  KeyKPEnter,
	"Delete":    KeyDelete,
}

// Modifiers represents modifier key state.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModMeta // Super or Meta
)

var modNames = []struct {
	name string
	mod  Modifiers
}{
	{"Control", ModControl},
	{"Alt", ModAlt},
	{"Super", ModMeta},
	{"Shift", ModShift},
}

// KeyEvent is one key press or release.
type KeyEvent struct {
	Sym     KeySym
	Mods    Modifiers
	Release bool
}

// Key returns a press event.
func Key(sym KeySym, mods Modifiers) KeyEvent {
	return KeyEvent{Sym: sym, Mods: mods}
}

// Rune returns the character the key produces, or 0 for function keys.
func (k KeyEvent) Rune() rune {
	return keyvalToRune(uint32(k.Sym))
}

// Is reports whether k is sym with exactly mods held.
func (k KeyEvent) Is(sym KeySym, mods Modifiers) bool {
	return k.Sym == sym && k.Mods == mods
}

// IsSimple reports whether k is a printable ASCII key other than space
// with at most Shift held.
func (k KeyEvent) IsSimple() bool {
	return k.Mods&^ModShift == 0 && k.Sym >= 0x21 && k.Sym <= 0x7e
}

// IsCursorMove reports whether k is an arrow, paging or Home/End key held
// with nothing beyond Shift and Control.
func (k KeyEvent) IsCursorMove() bool {
	if k.Mods&^(ModShift|ModControl) != 0 {
		return false
	}
	switch k.Sym {
	case KeyLeft, KeyRight, KeyUp, KeyDown, KeyPageUp, KeyPageDown, KeyHome, KeyEnd:
		return true
	}
	return false
}

// KeypadIndex maps KP_1..KP_9 to 0..8 and KP_0 to 9.
func (k KeyEvent) KeypadIndex() (int, bool) {
	if k.Mods != 0 || k.Sym < KeyKP0 || k.Sym > KeyKP9 {
		return 0, false
	}
	if k.Sym == KeyKP0 {
		return 9, true
	}
	return int(k.Sym-KeyKP0) - 1, true
}

// CtrlDigit returns the digit of a Control+digit chord.
func (k KeyEvent) CtrlDigit() (rune, bool) {
	if k.Mods != ModControl || k.Sym < '0' || k.Sym > '9' {
		return 0, false
	}
	return rune(k.Sym), true
}

func (k KeyEvent) String() string {
	var sb strings.Builder
	for _, m := range modNames {
		if k.Mods&m.mod != 0 {
			sb.WriteString(m.name)
			sb.WriteByte('+')
		}
	}
	name := ""
	for n, sym := range keyNames {
		if sym == k.Sym {
			name = n
			break
		}
	}
	switch {
	case name != "":
		sb.WriteString(name)
	case k.Sym >= KeyKP0 && k.Sym <= KeyKP9:
		fmt.Fprintf(&sb, "KP_%d", k.Sym-KeyKP0)
	case k.Rune() != 0:
		sb.WriteRune(k.Rune())
	default:
		fmt.Fprintf(&sb, "0x%x", uint32(k.Sym))
	}
	if k.Release {
		sb.WriteString(" (release)")
	}
	return sb.String()
}

// ParseKey parses a key in the form "Control+Shift+Left", "z" or "KP_3".
func ParseKey(s string) (KeyEvent, error) {
	var ev KeyEvent
	parts := strings.Split(s, "+")
	// A trailing "+" names the plus key itself.
	if strings.HasSuffix(s, "++") || s == "+" {
		parts = append(parts[:len(parts)-2], "+")
	}
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "shift":
			ev.Mods |= ModShift
		case "control", "ctrl":
			ev.Mods |= ModControl
		case "alt":
			ev.Mods |= ModAlt
		case "super", "meta":
			ev.Mods |= ModMeta
		default:
			return KeyEvent{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
	}

	name := parts[len(parts)-1]
	if sym, ok := keyNames[name]; ok {
		ev.Sym = sym
		return ev, nil
	}
	if len(name) == 4 && strings.HasPrefix(name, "KP_") && name[3] >= '0' && name[3] <= '9' {
		ev.Sym = KeyKP0 + KeySym(name[3]-'0')
		return ev, nil
	}
	if r := []rune(name); len(r) == 1 && r[0] >= 0x20 && r[0] <= 0x7e {
		ev.Sym = KeySym(r[0])
		return ev, nil
	}
	return KeyEvent{}, fmt.Errorf("unknown key %q", s)
}

// keyvalToRune converts X11 keysym to Unicode rune.
func keyvalToRune(keyval uint32) rune {
	// Direct Unicode mapping for Latin-1 range
	if keyval >= 0x20 && keyval <= 0x7e {
		return rune(keyval)
	}

	// Extended Latin (ISO 8859-1)
	if keyval >= 0xa0 && keyval <= 0xff {
		return rune(keyval)
	}

	// Keypad digits and operators
	if keyval >= uint32(KeyKP0) && keyval <= uint32(KeyKP9) {
		return rune('0' + keyval - uint32(KeyKP0))
	}

	// Unicode keysyms (0x01000000 + codepoint)
	if keyval >= 0x01000000 {
		return rune(keyval - 0x01000000)
	}

	return 0
}
