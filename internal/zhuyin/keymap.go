package zhuyin

import "chewingd/internal/engine"

// Tone marks. The first tone has no mark.
const (
	tone2 = 'ˊ'
	tone3 = 'ˇ'
	tone4 = 'ˋ'
	tone5 = '˙'
)

type symbolClass uint8

const (
	classNone symbolClass = iota
	classInitial
	classMedial
	classFinal
	classTone
)

func classify(sym rune) symbolClass {
	switch {
	case sym >= 'ㄅ' && sym <= 'ㄙ':
		return classInitial
	case sym >= 'ㄧ' && sym <= 'ㄩ':
		return classMedial
	case sym >= 'ㄚ' && sym <= 'ㄦ':
		return classFinal
	case sym == tone2 || sym == tone3 || sym == tone4 || sym == tone5:
		return classTone
	}
	return classNone
}

// daiChien is the standard Taiwanese bopomofo keyboard.
var daiChien = map[rune]rune{
	'1': 'ㄅ', 'q': 'ㄆ', 'a': 'ㄇ', 'z': 'ㄈ',
	'2': 'ㄉ', 'w': 'ㄊ', 's': 'ㄋ', 'x': 'ㄌ',
	'e': 'ㄍ', 'd': 'ㄎ', 'c': 'ㄏ',
	'r': 'ㄐ', 'f': 'ㄑ', 'v': 'ㄒ',
	'5': 'ㄓ', 't': 'ㄔ', 'g': 'ㄕ', 'b': 'ㄖ',
	'y': 'ㄗ', 'h': 'ㄘ', 'n': 'ㄙ',
	'u': 'ㄧ', 'j': 'ㄨ', 'm': 'ㄩ',
	'8': 'ㄚ', 'i': 'ㄛ', 'k': 'ㄜ', ',': 'ㄝ',
	'9': 'ㄞ', 'o': 'ㄟ', 'l': 'ㄠ', '.': 'ㄡ',
	'0': 'ㄢ', 'p': 'ㄣ', ';': 'ㄤ', '/': 'ㄥ',
	'-': 'ㄦ',
	'6': tone2, '3': tone3, '4': tone4, '7': tone5,
}

// dvorakToQwerty maps a character typed on a Dvorak layout to the QWERTY
// character at the same physical key.
var dvorakToQwerty = map[rune]rune{
	'\'': 'q', ',': 'w', '.': 'e', 'p': 'r', 'y': 't', 'f': 'y', 'g': 'u',
	'c': 'i', 'r': 'o', 'l': 'p', '/': '[', '=': ']',
	'a': 'a', 'o': 's', 'e': 'd', 'u': 'f', 'i': 'g', 'd': 'h', 'h': 'j',
	't': 'k', 'n': 'l', 's': ';', '-': '\'',
	';': 'z', 'q': 'x', 'j': 'c', 'k': 'v', 'x': 'b', 'b': 'n', 'm': 'm',
	'w': ',', 'v': '.', 'z': '/',
	'[': '-', ']': '=',
}

var dvorakMap = func() map[rune]rune {
	m := make(map[rune]rune, len(daiChien))
	for dv, qw := range dvorakToQwerty {
		if sym, ok := daiChien[qw]; ok {
			m[dv] = sym
		}
	}
	for k, sym := range daiChien {
		if k >= '0' && k <= '9' {
			m[k] = sym
		}
	}
	return m
}()

// fullWidth maps shifted punctuation to the symbols inserted into the
// buffer.
var fullWidth = map[rune]string{
	'<': "，", '>': "。", '?': "？", ':': "：", '!': "！",
	'[': "「", ']': "」", '{': "『", '}': "』", '"': "；",
	'(': "（", ')': "）", '~': "～",
}

// Supported reports whether the engine implements layout natively. Other
// layouts fall back to the default keyboard.
func Supported(layout engine.KeyboardLayout) bool {
	switch layout {
	case engine.LayoutDefault, engine.LayoutDvorak, engine.LayoutHanyuPinyin:
		return true
	}
	return false
}

func newComposer(layout engine.KeyboardLayout) composer {
	switch layout {
	case engine.LayoutHanyuPinyin:
		return &pinyinComposer{}
	case engine.LayoutDvorak:
		return &bopomofoComposer{keys: dvorakMap}
	default:
		return &bopomofoComposer{keys: daiChien}
	}
}
