package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chewingd/internal/engine"
	"chewingd/internal/engine/enginetest"
)

func TestSelectionKeyTables(t *testing.T) {
	want := map[engine.SelectionKeySet]string{
		engine.SelKeyDigits:     "1234567890",
		engine.SelKeyHomeRow:    "asdfghjkl;",
		engine.SelKeyAsdfZxcv:   "asdfzxcv89",
		engine.SelKeyAsdfJkl:    "asdfjkl789",
		engine.SelKeyDvorakHome: "aoeuhtn789",
		engine.SelKeyQwerAs:     "1234qweras",
		engine.SelKeyColemak:    "dstnaeo789",
	}
	require.Len(t, engine.SelectionKeySets(), len(want))

	for set, keys := range want {
		got := set.Keys()
		assert.Equal(t, keys, string(got[:]), "set %d", set)
	}

	// Tables are values; mutating a copy must not leak.
	k := engine.SelKeyDigits.Keys()
	k[0] = 'x'
	assert.Equal(t, '1', engine.SelKeyDigits.Keys()[0])

	assert.Equal(t, engine.SelKeyDigits.Keys(), engine.SelectionKeySet(99).Keys())
}

func TestSelectionKeySetText(t *testing.T) {
	var s engine.SelectionKeySet
	require.NoError(t, s.UnmarshalText([]byte("aoeuhtn789")))
	assert.Equal(t, engine.SelKeyDvorakHome, s)

	b, err := engine.SelKeyQwerAs.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1234qweras", string(b))

	assert.Error(t, s.UnmarshalText([]byte("qwertyuiop")))
}

func TestKeyboardLayouts(t *testing.T) {
	layouts := engine.KeyboardLayouts()
	require.Len(t, layouts, 11)
	assert.Equal(t, "KB_DEFAULT", layouts[0].EngineID())
	assert.Equal(t, "KB_CARPALX", layouts[10].EngineID())

	tests := []struct {
		in   string
		want engine.KeyboardLayout
	}{
		{"hanyu-pinyin", engine.LayoutHanyuPinyin},
		{"Han-Yu PinYin Keyboard", engine.LayoutHanyuPinyin},
		{"KB_HANYU_PINYIN", engine.LayoutHanyuPinyin},
		{"DVORAK", engine.LayoutDvorak},
		{"Dvorak Keyboard with Hsu's support", engine.LayoutDvorakHsu},
		{"eten26", engine.LayoutETen26},
	}
	for _, tt := range tests {
		got, err := engine.ParseKeyboardLayout(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := engine.ParseKeyboardLayout("colemak")
	assert.Error(t, err)

	for _, l := range layouts {
		b, err := l.MarshalText()
		require.NoError(t, err)
		var back engine.KeyboardLayout
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, l, back)
	}
}

func TestSettingsComparable(t *testing.T) {
	a := engine.DefaultSettings()
	b := engine.DefaultSettings()
	assert.True(t, a == b)

	b.SelectionKeys = engine.SelKeyHomeRow.Keys()
	assert.False(t, a == b)
	assert.Equal(t, engine.MaxBufferLen, a.MaxBufferLen)
}

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		name     string
		ignored  bool
		absorbed bool
		commit   bool
		want     engine.Outcome
	}{
		{"ignored wins over everything", true, true, true, engine.Passed},
		{"absorbed wins over commit", false, true, true, engine.Outcome{Kind: engine.Consumed, Redraw: true}},
		{"commit", false, false, true, engine.Outcome{Kind: engine.Commit, Text: "分", Redraw: true}},
		{"default consumed", false, false, false, engine.Outcome{Kind: engine.Consumed, Redraw: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := enginetest.NewFake()
			f.Ignored, f.Absorbed, f.CommitReady, f.Commit = tt.ignored, tt.absorbed, tt.commit, "分"
			assert.Equal(t, tt.want, engine.Classify(f))
		})
	}
}

func TestOutcomeHandled(t *testing.T) {
	assert.False(t, engine.Passed.Handled())
	assert.True(t, engine.Outcome{Kind: engine.Consumed}.Handled())
	assert.True(t, engine.Outcome{Kind: engine.Commit}.Handled())
	assert.Equal(t, "Commit", engine.Commit.String())
	assert.Equal(t, "ShiftSpace", engine.ActionShiftSpace.String())
	assert.True(t, engine.ActionDelete.IsEdit())
	assert.False(t, engine.ActionEnter.IsEdit())
}

func TestRecorderCountsMutations(t *testing.T) {
	rec := enginetest.NewRecorder(enginetest.NewFake())
	rec.HandleDefault('z')
	rec.HandleAction(engine.ActionSpace)
	_ = rec.BufferText()
	_ = rec.IsAbsorbed()

	assert.Equal(t, 2, rec.Count(""))
	assert.Equal(t, 1, rec.Count("HandleDefault"))
	assert.Equal(t, "HandleAction(Space)", rec.Calls[1].String())

	rec.Clear()
	assert.Zero(t, rec.Count(""))
}
