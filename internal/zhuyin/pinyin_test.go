package zhuyin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPinyinToZhuyin(t *testing.T) {
	tests := []struct {
		py   string
		tone int
		want string
	}{
		{"hu", 2, "ㄏㄨˊ"},
		{"jia", 3, "ㄐㄧㄚˇ"},
		{"wei", 1, "ㄨㄟ"},
		{"fen", 1, "ㄈㄣ"},
		{"zhong", 1, "ㄓㄨㄥ"},
		{"shi", 4, "ㄕˋ"},
		{"zi", 5, "ㄗ˙"},
		{"xue", 2, "ㄒㄩㄝˊ"},
		{"qu", 4, "ㄑㄩˋ"},
		{"lv", 4, "ㄌㄩˋ"},
		{"nü", 3, "ㄋㄩˇ"},
		{"yuan", 2, "ㄩㄢˊ"},
		{"er", 2, "ㄦˊ"},
		{"an", 1, "ㄢ"},
	}
	for _, tt := range tests {
		got, ok := PinyinToZhuyin(tt.py, tt.tone)
		assert.True(t, ok, tt.py)
		assert.Equal(t, tt.want, got, tt.py)
	}

	for _, bad := range []string{"", "xq", "zhx", "h"} {
		_, ok := PinyinToZhuyin(bad, 1)
		assert.False(t, ok, bad)
	}
	_, ok := PinyinToZhuyin("fen", 6)
	assert.False(t, ok)
}
