package engine

import (
	"fmt"
	"strings"
)

// SelectionKeySet names one of the built-in ten-key selection tables.
type SelectionKeySet uint8

const (
	SelKeyDigits SelectionKeySet = iota
	SelKeyHomeRow
	SelKeyAsdfZxcv
	SelKeyAsdfJkl
	SelKeyDvorakHome
	SelKeyQwerAs
	SelKeyColemak
)

var selectionKeyTables = [...]string{
	SelKeyDigits:     "1234567890",
	SelKeyHomeRow:    "asdfghjkl;",
	SelKeyAsdfZxcv:   "asdfzxcv89",
	SelKeyAsdfJkl:    "asdfjkl789",
	SelKeyDvorakHome: "aoeuhtn789",
	SelKeyQwerAs:     "1234qweras",
	SelKeyColemak:    "dstnaeo789",
}

// SelectionKeySets lists every built-in table in display order.
func SelectionKeySets() []SelectionKeySet {
	sets := make([]SelectionKeySet, len(selectionKeyTables))
	for i := range sets {
		sets[i] = SelectionKeySet(i)
	}
	return sets
}

// Keys returns the ten selection characters of s. Unknown values fall back
// to the digit row.
func (s SelectionKeySet) Keys() [10]rune {
	if int(s) >= len(selectionKeyTables) {
		s = SelKeyDigits
	}
	var keys [10]rune
	copy(keys[:], []rune(selectionKeyTables[s]))
	return keys
}

func (s SelectionKeySet) String() string {
	if int(s) >= len(selectionKeyTables) {
		return fmt.Sprintf("SelectionKeySet(%d)", s)
	}
	return selectionKeyTables[s]
}

// MarshalText encodes s as its key string.
func (s SelectionKeySet) MarshalText() ([]byte, error) {
	if int(s) >= len(selectionKeyTables) {
		return nil, fmt.Errorf("invalid selection key set %d", s)
	}
	return []byte(selectionKeyTables[s]), nil
}

// UnmarshalText accepts a key string such as "asdfghjkl;".
func (s *SelectionKeySet) UnmarshalText(text []byte) error {
	for i, keys := range selectionKeyTables {
		if keys == string(text) {
			*s = SelectionKeySet(i)
			return nil
		}
	}
	return fmt.Errorf("unknown selection keys %q", text)
}

// KeyboardLayout is a phonetic keyboard layout understood by the engine.
type KeyboardLayout uint8

const (
	LayoutDefault KeyboardLayout = iota
	LayoutHsu
	LayoutIBM
	LayoutGinYieh
	LayoutETen
	LayoutETen26
	LayoutDvorak
	LayoutDvorakHsu
	LayoutDachenCP26
	LayoutHanyuPinyin
	LayoutCarpalx
)

type layoutInfo struct {
	name     string
	display  string
	engineID string
}

var layoutTable = [...]layoutInfo{
	LayoutDefault:     {"default", "Default Keyboard", "KB_DEFAULT"},
	LayoutHsu:         {"hsu", "Hsu's Keyboard", "KB_HSU"},
	LayoutIBM:         {"ibm", "IBM Keyboard", "KB_IBM"},
	LayoutGinYieh:     {"gin-yieh", "Gin-Yieh Keyboard", "KB_GIN_YIEH"},
	LayoutETen:        {"eten", "ETen Keyboard", "KB_ET"},
	LayoutETen26:      {"eten26", "ETen26 Keyboard", "KB_ET26"},
	LayoutDvorak:      {"dvorak", "Dvorak Keyboard", "KB_DVORAK"},
	LayoutDvorakHsu:   {"dvorak-hsu", "Dvorak Keyboard with Hsu's support", "KB_DVORAK_HSU"},
	LayoutDachenCP26:  {"dachen-cp26", "DACHEN_CP26 Keyboard", "KB_DACHEN_CP26"},
	LayoutHanyuPinyin: {"hanyu-pinyin", "Han-Yu PinYin Keyboard", "KB_HANYU_PINYIN"},
	LayoutCarpalx:     {"carpalx", "Carpalx Keyboard", "KB_CARPALX"},
}

// KeyboardLayouts lists every layout in engine id order.
func KeyboardLayouts() []KeyboardLayout {
	layouts := make([]KeyboardLayout, len(layoutTable))
	for i := range layouts {
		layouts[i] = KeyboardLayout(i)
	}
	return layouts
}

func (l KeyboardLayout) info() layoutInfo {
	if int(l) >= len(layoutTable) {
		return layoutTable[LayoutDefault]
	}
	return layoutTable[l]
}

func (l KeyboardLayout) String() string { return l.info().name }

// DisplayName is the human readable layout name.
func (l KeyboardLayout) DisplayName() string { return l.info().display }

// EngineID is the engine's keyboard type identifier.
func (l KeyboardLayout) EngineID() string { return l.info().engineID }

// MarshalText encodes l by its short name.
func (l KeyboardLayout) MarshalText() ([]byte, error) {
	if int(l) >= len(layoutTable) {
		return nil, fmt.Errorf("invalid keyboard layout %d", l)
	}
	return []byte(layoutTable[l].name), nil
}

// UnmarshalText accepts a short name, a display name or an engine id.
func (l *KeyboardLayout) UnmarshalText(text []byte) error {
	v, err := ParseKeyboardLayout(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseKeyboardLayout resolves a layout by short name, display name or
// engine id. Short names and ids are case-insensitive.
func ParseKeyboardLayout(s string) (KeyboardLayout, error) {
	for i, info := range layoutTable {
		if strings.EqualFold(s, info.name) || s == info.display || strings.EqualFold(s, info.engineID) {
			return KeyboardLayout(i), nil
		}
	}
	return LayoutDefault, fmt.Errorf("unknown keyboard layout %q", s)
}
