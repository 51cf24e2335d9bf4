package zhuyin

import "strings"

// keyState is what a composer did with one key.
type keyState uint8

const (
	// keyIgnored means the key is not part of the layout.
	keyIgnored keyState = iota
	// keyAbsorbed means the key changed the pending syllable.
	keyAbsorbed
	// keyComplete means the key finished a syllable.
	keyComplete
	// keyInvalid means the key finished a reading that is not a syllable.
	keyInvalid
)

// composer turns keys into one syllable at a time.
type composer interface {
	Key(r rune) (string, keyState)
	// Tone1 finishes the pending syllable with the first tone.
	Tone1() (string, keyState)
	Display() string
	Len() int
	Backspace() bool
	Clear()
}

// bopomofoComposer fills the four syllable slots from a key to symbol map.
type bopomofoComposer struct {
	keys map[rune]rune
	// initial, medial, final, tone
	slots [4]rune
}

func (b *bopomofoComposer) Key(r rune) (string, keyState) {
	sym, ok := b.keys[r]
	if !ok {
		return "", keyIgnored
	}
	switch c := classify(sym); c {
	case classTone:
		if b.Len() == 0 {
			return "", keyIgnored
		}
		b.slots[3] = sym
		return b.finish()
	default:
		b.slots[c-classInitial] = sym
		return "", keyAbsorbed
	}
}

func (b *bopomofoComposer) Tone1() (string, keyState) {
	if b.Len() == 0 {
		return "", keyIgnored
	}
	b.slots[3] = 0
	return b.finish()
}

func (b *bopomofoComposer) finish() (string, keyState) {
	syl := b.Display()
	b.Clear()
	return syl, keyComplete
}

func (b *bopomofoComposer) Display() string {
	var sb strings.Builder
	for _, r := range b.slots {
		if r != 0 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (b *bopomofoComposer) Len() int {
	n := 0
	for _, r := range b.slots {
		if r != 0 {
			n++
		}
	}
	return n
}

func (b *bopomofoComposer) Backspace() bool {
	for i := len(b.slots) - 1; i >= 0; i-- {
		if b.slots[i] != 0 {
			b.slots[i] = 0
			return true
		}
	}
	return false
}

func (b *bopomofoComposer) Clear() { b.slots = [4]rune{} }

// maxPinyinLetters bounds the letters a pinyin reading may hold.
const maxPinyinLetters = 10

// pinyinComposer collects Han-Yu Pinyin letters and converts them when a
// tone digit arrives.
type pinyinComposer struct {
	letters []byte
}

func (p *pinyinComposer) Key(r rune) (string, keyState) {
	switch {
	case r >= 'a' && r <= 'z':
		if len(p.letters) < maxPinyinLetters {
			p.letters = append(p.letters, byte(r))
		}
		return "", keyAbsorbed
	case r >= '1' && r <= '5':
		if len(p.letters) == 0 {
			return "", keyIgnored
		}
		return p.finish(int(r - '0'))
	}
	return "", keyIgnored
}

func (p *pinyinComposer) Tone1() (string, keyState) {
	if len(p.letters) == 0 {
		return "", keyIgnored
	}
	return p.finish(1)
}

func (p *pinyinComposer) finish(tone int) (string, keyState) {
	syl, ok := PinyinToZhuyin(string(p.letters), tone)
	if !ok {
		return "", keyInvalid
	}
	p.Clear()
	return syl, keyComplete
}

func (p *pinyinComposer) Display() string { return string(p.letters) }
func (p *pinyinComposer) Len() int        { return len(p.letters) }

func (p *pinyinComposer) Backspace() bool {
	if len(p.letters) == 0 {
		return false
	}
	p.letters = p.letters[:len(p.letters)-1]
	return true
}

func (p *pinyinComposer) Clear() { p.letters = p.letters[:0] }
