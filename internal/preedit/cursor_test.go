package preedit

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func TestByteOffsetForCharIndex(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		index int
		want  int
	}{
		{"empty", "", 0, 0},
		{"empty past end", "", 3, 0},
		{"ascii start", "hello", 0, 0},
		{"ascii middle", "hello", 2, 2},
		{"ascii end", "hello", 5, 5},
		{"ascii past end", "hello", 9, 5},
		{"cjk first", "狐假虎威", 1, 3},
		{"cjk middle", "狐假虎威", 2, 6},
		{"cjk end", "狐假虎威", 4, 12},
		{"cjk past end", "狐假虎威", 40, 12},
		{"four byte", "a😀b", 2, 5},
		{"mixed", "a中b文", 3, 5},
		{"bopomofo", "ㄈㄣ", 1, 3},
		{"negative", "中文", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ByteOffsetForCharIndex(tt.text, tt.index)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ByteOffsetForCharIndex(%q, %d) = %d, want %d", tt.text, tt.index, got, tt.want)
			}
		})
	}
}

func TestByteOffsetMalformed(t *testing.T) {
	for _, text := range []string{"\xff", "ab\xe4\xb8", "中\x80文"} {
		if _, err := ByteOffsetForCharIndex(text, 1); !errors.Is(err, ErrMalformedText) {
			t.Errorf("ByteOffsetForCharIndex(%q) error = %v, want ErrMalformedText", text, err)
		}
		if _, err := CodePointLength(text); !errors.Is(err, ErrMalformedText) {
			t.Errorf("CodePointLength(%q) error = %v, want ErrMalformedText", text, err)
		}
	}
}

// Every in-range index must land on a boundary with exactly index code
// points before it.
func TestByteOffsetBoundaryProperty(t *testing.T) {
	samples := []string{"", "abc", "中文輸入", "ㄓㄨˋㄧㄣ", "x😀y中z", "新酷音 chewing"}

	for _, s := range samples {
		n, err := CodePointLength(s)
		if err != nil {
			t.Fatalf("CodePointLength(%q): %v", s, err)
		}
		for i := 0; i <= n; i++ {
			off, err := ByteOffsetForCharIndex(s, i)
			if err != nil {
				t.Fatalf("ByteOffsetForCharIndex(%q, %d): %v", s, i, err)
			}
			if off < len(s) && !utf8.RuneStart(s[off]) {
				t.Errorf("%q index %d: offset %d is not a rune boundary", s, i, off)
			}
			if got := utf8.RuneCountInString(s[:off]); got != i {
				t.Errorf("%q index %d: prefix has %d code points", s, i, got)
			}
		}
	}
}
