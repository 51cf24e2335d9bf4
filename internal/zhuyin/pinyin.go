package zhuyin

import "strings"

var pinyinInitials = map[string]string{
	"b": "ㄅ", "p": "ㄆ", "m": "ㄇ", "f": "ㄈ",
	"d": "ㄉ", "t": "ㄊ", "n": "ㄋ", "l": "ㄌ",
	"g": "ㄍ", "k": "ㄎ", "h": "ㄏ",
	"j": "ㄐ", "q": "ㄑ", "x": "ㄒ",
	"zh": "ㄓ", "ch": "ㄔ", "sh": "ㄕ", "r": "ㄖ",
	"z": "ㄗ", "c": "ㄘ", "s": "ㄙ",
}

var pinyinFinals = map[string]string{
	"a": "ㄚ", "o": "ㄛ", "e": "ㄜ", "ai": "ㄞ", "ei": "ㄟ", "ao": "ㄠ", "ou": "ㄡ",
	"an": "ㄢ", "en": "ㄣ", "ang": "ㄤ", "eng": "ㄥ", "er": "ㄦ", "ong": "ㄨㄥ",
	"i": "ㄧ", "ia": "ㄧㄚ", "ie": "ㄧㄝ", "iao": "ㄧㄠ", "iu": "ㄧㄡ", "ian": "ㄧㄢ",
	"in": "ㄧㄣ", "iang": "ㄧㄤ", "ing": "ㄧㄥ", "iong": "ㄩㄥ",
	"u": "ㄨ", "ua": "ㄨㄚ", "uo": "ㄨㄛ", "uai": "ㄨㄞ", "ui": "ㄨㄟ", "uan": "ㄨㄢ",
	"un": "ㄨㄣ", "uang": "ㄨㄤ", "ueng": "ㄨㄥ",
	"v": "ㄩ", "ve": "ㄩㄝ", "van": "ㄩㄢ", "vn": "ㄩㄣ",
}

// Syllables spelled with y or w and no other initial.
var pinyinSemivowels = map[string]string{
	"yi": "ㄧ", "ya": "ㄧㄚ", "yo": "ㄧㄛ", "ye": "ㄧㄝ", "yao": "ㄧㄠ", "you": "ㄧㄡ",
	"yan": "ㄧㄢ", "yin": "ㄧㄣ", "yang": "ㄧㄤ", "ying": "ㄧㄥ", "yong": "ㄩㄥ",
	"yu": "ㄩ", "yue": "ㄩㄝ", "yuan": "ㄩㄢ", "yun": "ㄩㄣ",
	"wu": "ㄨ", "wa": "ㄨㄚ", "wo": "ㄨㄛ", "wai": "ㄨㄞ", "wei": "ㄨㄟ",
	"wan": "ㄨㄢ", "wen": "ㄨㄣ", "wang": "ㄨㄤ", "weng": "ㄨㄥ",
}

var toneMarks = [...]string{1: "", 2: string(tone2), 3: string(tone3), 4: string(tone4), 5: string(tone5)}

// PinyinToZhuyin converts one toneless Han-Yu Pinyin syllable plus a tone
// number from 1 to 5 into its bopomofo reading. "v" and "ü" both spell ü.
func PinyinToZhuyin(py string, tone int) (string, bool) {
	if tone < 1 || tone > 5 {
		return "", false
	}
	py = strings.ReplaceAll(strings.ToLower(py), "ü", "v")
	if py == "" {
		return "", false
	}

	if s, ok := pinyinSemivowels[py]; ok {
		return s + toneMarks[tone], true
	}

	initial, rest := "", py
	for _, n := range []int{2, 1} {
		if len(py) >= n {
			if s, ok := pinyinInitials[py[:n]]; ok {
				initial, rest = s, py[n:]
				break
			}
		}
	}

	var final string
	switch {
	case rest == "":
		return "", false
	case rest == "i" && isRetroflexOrSibilant(initial):
		// zhi, chi, shi, ri, zi, ci, si carry no vowel in bopomofo.
		final = ""
	case strings.HasPrefix(rest, "u") && (initial == "ㄐ" || initial == "ㄑ" || initial == "ㄒ"):
		s, ok := pinyinFinals["v"+rest[1:]]
		if !ok {
			return "", false
		}
		final = s
	default:
		s, ok := pinyinFinals[rest]
		if !ok {
			return "", false
		}
		final = s
	}
	return initial + final + toneMarks[tone], true
}

func isRetroflexOrSibilant(initial string) bool {
	switch initial {
	case "ㄓ", "ㄔ", "ㄕ", "ㄖ", "ㄗ", "ㄘ", "ㄙ":
		return true
	}
	return false
}
