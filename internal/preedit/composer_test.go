package preedit

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name     string
		buffer   string
		phonetic string
		cursor   int
		opts     Options
		want     Text
	}{
		{
			name: "empty",
			want: Text{},
		},
		{
			name:     "phonetic only",
			phonetic: "ㄈㄣ",
			want: Text{
				Segments: []Segment{{Text: "ㄈㄣ", Format: HighLight | Underline}},
			},
		},
		{
			name:   "buffer cursor at end",
			buffer: "狐假",
			cursor: 2,
			want: Text{
				Segments: []Segment{{Text: "狐假", Format: Underline}},
				Cursor:   6,
			},
		},
		{
			name:     "phonetic spliced in the middle",
			buffer:   "狐假威",
			phonetic: "ㄏㄨˇ",
			cursor:   2,
			want: Text{
				Segments: []Segment{
					{Text: "狐假", Format: Underline},
					{Text: "ㄏㄨˇ", Format: HighLight | Underline},
					{Text: "威", Format: Underline},
				},
				Cursor: 6,
			},
		},
		{
			name:     "cursor past end clamps",
			buffer:   "分",
			phonetic: "ㄈ",
			cursor:   7,
			want: Text{
				Segments: []Segment{
					{Text: "分", Format: Underline},
					{Text: "ㄈ", Format: HighLight | Underline},
				},
				Cursor: 3,
			},
		},
		{
			name:     "cursor at start",
			buffer:   "ab",
			phonetic: "ㄅ",
			cursor:   0,
			want: Text{
				Segments: []Segment{
					{Text: "ㄅ", Format: HighLight | Underline},
					{Text: "ab", Format: Underline},
				},
			},
		},
		{
			name:     "host draws underline",
			buffer:   "中文",
			phonetic: "ㄅ",
			cursor:   1,
			opts:     Options{HostUnderline: true},
			want: Text{
				Segments: []Segment{
					{Text: "中"},
					{Text: "ㄅ", Format: HighLight | Underline},
					{Text: "文"},
				},
				Cursor: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compose(tt.buffer, tt.phonetic, tt.cursor, tt.opts)
			if err != nil {
				t.Fatalf("Compose: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compose mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComposeConcatenation(t *testing.T) {
	got, err := Compose("狐假威", "ㄏㄨˇ", 2, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if s := got.String(); s != "狐假ㄏㄨˇ威" {
		t.Errorf("String() = %q", s)
	}
	if got.Empty() {
		t.Error("composed text reported empty")
	}
	if !(Text{}).Empty() {
		t.Error("zero Text should be empty")
	}
}

func TestComposeMalformed(t *testing.T) {
	got, err := Compose("a\xffb", "ㄅ", 1, Options{})
	if !errors.Is(err, ErrMalformedText) {
		t.Fatalf("err = %v, want ErrMalformedText", err)
	}
	if !got.Empty() {
		t.Errorf("malformed buffer produced text %q", got.String())
	}
}
