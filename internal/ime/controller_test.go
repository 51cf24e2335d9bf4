package ime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chewingd/internal/candidate"
	"chewingd/internal/engine"
	"chewingd/internal/engine/enginetest"
	"chewingd/internal/zhuyin"
)

// press feeds key names through c and collects every commit.
func press(t *testing.T, c *Controller, keys ...string) Result {
	t.Helper()
	var res Result
	for _, k := range keys {
		ev, err := ParseKey(k)
		require.NoError(t, err, "key %q", k)
		r := c.ProcessKey(ev)
		res.Consumed = r.Consumed
		res.Commits = append(res.Commits, r.Commits...)
	}
	return res
}

func typeRunes(t *testing.T, c *Controller, s string) Result {
	t.Helper()
	keys := make([]string, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			keys = append(keys, "space")
			continue
		}
		keys = append(keys, string(r))
	}
	return press(t, c, keys...)
}

func newZhuyin(cfg SessionConfig) *Controller {
	return NewController(zhuyin.New(), cfg)
}

func TestSelectSeventhCandidate(t *testing.T) {
	c := newZhuyin(DefaultSessionConfig())
	typeRunes(t, c, "zp ")
	press(t, c, "Down")

	cands := c.View().Candidates
	require.NotNil(t, cands)
	want := cands.Items()[6].Text
	assert.Equal(t, "汾", want)

	for range 6 {
		assert.True(t, press(t, c, "Right").Consumed)
	}
	require.Equal(t, 6, c.View().Candidates.CursorIndex())

	res := press(t, c, "Return")
	assert.True(t, res.Consumed)
	assert.Empty(t, res.Commits)
	assert.Nil(t, c.View().Candidates)

	res = press(t, c, "Return")
	assert.Equal(t, []string{want}, res.Commits)
	assert.True(t, c.View().Preedit.Empty())
}

func TestHanyuPinyinScenario(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.Layout = engine.LayoutHanyuPinyin
	c := newZhuyin(cfg)

	res := typeRunes(t, c, "hu2jia3hu3wei1")
	assert.Empty(t, res.Commits)
	assert.Equal(t, "狐假虎威", c.View().Preedit.String())

	press(t, c, "space")
	require.NotNil(t, c.View().Candidates)
	press(t, c, "space")
	require.NotNil(t, c.View().Candidates)
	assert.Equal(t, "威", c.View().Candidates.Items()[0].Text)

	press(t, c, "Return")
	assert.Equal(t, "狐假虎威", c.View().Preedit.String())
	res = press(t, c, "Return")
	assert.Equal(t, []string{"狐假虎威"}, res.Commits)
}

func TestBackspaceEmptiesComposition(t *testing.T) {
	c := newZhuyin(DefaultSessionConfig())
	typeRunes(t, c, "zp ")
	require.Equal(t, "分", c.View().Preedit.String())

	res := press(t, c, "BackSpace")
	assert.True(t, res.Consumed)
	assert.True(t, c.View().Preedit.Empty())
	assert.Nil(t, c.View().Candidates)
}

func TestEmptyEditNeverReachesEngine(t *testing.T) {
	for _, key := range []string{"BackSpace", "Delete"} {
		t.Run(key, func(t *testing.T) {
			rec := enginetest.NewRecorder(zhuyin.New())
			c := NewController(rec, DefaultSessionConfig())
			rec.Clear()

			res := press(t, c, key)
			assert.False(t, res.Consumed)
			assert.Empty(t, res.Commits)
			assert.Zero(t, rec.Count(""), "calls: %v", rec.Calls)
		})
	}
}

func TestBackspaceAfterCommitPassesThrough(t *testing.T) {
	rec := enginetest.NewRecorder(zhuyin.New())
	c := NewController(rec, DefaultSessionConfig())
	res := typeRunes(t, c, "zp zp ")
	assert.Empty(t, res.Commits)

	res = press(t, c, "Return")
	assert.Equal(t, []string{"紛紛"}, res.Commits)

	rec.Clear()
	res = press(t, c, "BackSpace")
	assert.False(t, res.Consumed)
	assert.Zero(t, rec.Count(""))
}

func TestRepeatedBackspace(t *testing.T) {
	c := newZhuyin(DefaultSessionConfig())
	typeRunes(t, c, "zp zp ")

	assert.True(t, press(t, c, "BackSpace").Consumed)
	assert.Equal(t, "分", c.View().Preedit.String())
	assert.True(t, press(t, c, "BackSpace").Consumed)
	assert.True(t, c.View().Preedit.Empty())
	assert.False(t, press(t, c, "BackSpace").Consumed)
}

func TestDeactivatePolicies(t *testing.T) {
	tests := []struct {
		name     string
		behavior SwitchBehavior
		reason   DeactivateReason
		want     []string
	}{
		{"commit preedit", SwitchCommitPreedit, ReasonFocusOut, []string{"分ㄈㄣ"}},
		{"commit default", SwitchCommitDefault, ReasonSwitchInputMethod, []string{"分"}},
		{"clear", SwitchClear, ReasonFocusOut, nil},
		{"other reason", SwitchCommitPreedit, ReasonOther, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSessionConfig()
			cfg.SwitchBehavior = tt.behavior
			c := newZhuyin(cfg)
			c.Activate()
			typeRunes(t, c, "zp zp")
			shown := c.View().Preedit.String()
			require.Equal(t, "分ㄈㄣ", shown)

			got := c.Deactivate(tt.reason)
			assert.Equal(t, tt.want, got)
			assert.False(t, c.Active())
			assert.True(t, c.View().Preedit.Empty())
		})
	}
}

func TestIgnoredKeyPassesWithoutRedraw(t *testing.T) {
	f := enginetest.NewFake()
	f.OnDefault = func(f *enginetest.Fake, code rune) { f.Ignored = true }
	c := NewController(f, DefaultSessionConfig())
	f.Buffer = "測"

	res := c.ProcessKey(Key('A', ModShift))
	assert.False(t, res.Consumed)
	assert.Empty(t, res.Commits)
	assert.True(t, c.View().Preedit.Empty(), "view must not be rebuilt")
}

func TestKeysClaimedWhileSelecting(t *testing.T) {
	f := enginetest.NewFake()
	f.OnDefault = func(f *enginetest.Fake, code rune) { f.Ignored = true }
	f.OnAction = func(f *enginetest.Fake, a engine.Action) { f.Ignored = true }
	c := NewController(f, DefaultSessionConfig())
	f.Buffer = "甲"
	f.OpenCandidates("甲", "乙", "丙")
	c.Activate()
	require.NotNil(t, c.View().Candidates)

	claimed := []KeyEvent{
		Key('a', 0),
		Key('A', ModShift),
		Key(KeyTab, 0),
		Key(KeySpace, ModShift),
		Key(KeyReturn, ModShift),
		Key(KeyHome, 0),
		Key(KeyLeft, ModControl),
	}
	for _, ev := range claimed {
		assert.True(t, c.ProcessKey(ev).Consumed, "%s", ev)
	}
	assert.False(t, c.ProcessKey(Key('x', ModAlt)).Consumed)
	assert.False(t, c.ProcessKey(KeyEvent{Sym: 'a', Release: true}).Consumed)
}

func TestFlushBeforePrintable(t *testing.T) {
	f := enginetest.NewFake()
	f.OnDefault = func(f *enginetest.Fake, code rune) { f.Ignored = true }
	c := NewController(f, DefaultSessionConfig())
	f.Buffer, f.Phonetic, f.Cursor = "測", "ㄘ", 1

	res := c.ProcessKey(Key('!', 0))
	assert.False(t, res.Consumed, "the host still types the key")
	assert.Equal(t, []string{"測ㄘ"}, res.Commits)
	assert.Equal(t, 1, f.Resets)

	res = c.ProcessKey(Key('!', 0))
	assert.Empty(t, res.Commits, "nothing pending")
}

func TestPinyinGuard(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.Layout = engine.LayoutHanyuPinyin

	f := enginetest.NewFake()
	rec := enginetest.NewRecorder(f)
	c := NewController(rec, cfg)
	f.Phonetic = "zhuangzhu"
	rec.Clear()

	res := c.ProcessKey(Key('a', 0))
	assert.True(t, res.Consumed)
	assert.Zero(t, rec.Count("HandleDefault"))

	rec2 := enginetest.NewRecorder(f)
	c2 := NewController(rec2, cfg, WithKeyGuard(NoKeyGuard))
	c2.ProcessKey(Key('a', 0))
	assert.Equal(t, 1, rec2.Count("HandleDefault"))

	cfg.Layout = engine.LayoutDefault
	c.Reload(cfg)
	f.Phonetic = "zhuangzhu"
	rec.Clear()
	c.ProcessKey(Key('a', 0))
	assert.Equal(t, 1, rec.Count("HandleDefault"), "the guard only applies to pinyin")
}

func TestReloadAppliesSettingsOnce(t *testing.T) {
	rec := enginetest.NewRecorder(enginetest.NewFake())
	c := NewController(rec, DefaultSessionConfig())
	rec.Clear()

	cfg := DefaultSessionConfig()
	cfg.Layout = engine.LayoutHanyuPinyin
	cfg.PageSize = 5
	c.Reload(cfg)

	assert.Equal(t, []enginetest.Call{{Method: "ApplySettings", Arg: "hanyu-pinyin/5"}}, rec.Calls)
	assert.Equal(t, cfg, c.Config())
}

func TestKeypadSelection(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.UseKeypadAsSelectionKey = true
	c := newZhuyin(cfg)
	typeRunes(t, c, "zp ")
	press(t, c, "Down")

	assert.True(t, press(t, c, "KP_3").Consumed)
	assert.Equal(t, "紛", c.View().Preedit.String())

	press(t, c, "Down")
	press(t, c, "KP_0")
	assert.Equal(t, "雰", c.View().Preedit.String())
}

func TestKeypadOutOfRangeFallsThrough(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.UseKeypadAsSelectionKey = true
	rec := enginetest.NewRecorder(enginetest.NewFake())
	c := NewController(rec, cfg)
	rec.Client.(*enginetest.Fake).OpenCandidates("甲", "乙")
	c.Activate()
	rec.Clear()

	res := press(t, c, "KP_5")
	assert.False(t, res.Consumed)
	assert.Zero(t, rec.Count("HandleDefault"))
}

func TestVerticalArrowSelection(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.CandidateLayout = candidate.LayoutVertical
	cfg.PageSize = 4
	c := newZhuyin(cfg)
	typeRunes(t, c, "zp ")
	press(t, c, "Down")
	require.NotNil(t, c.View().Candidates)

	press(t, c, "Down")
	assert.Equal(t, 1, c.View().Candidates.CursorIndex())

	press(t, c, "Right")
	cur, total := c.View().Candidates.Page()
	assert.Equal(t, 1, cur)
	assert.Equal(t, 3, total)
	assert.Equal(t, 0, c.View().Candidates.CursorIndex())

	press(t, c, "Return")
	assert.Equal(t, "吩", c.View().Preedit.String())
}

func TestArrowSelectionDisabled(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.ArrowKeySelection = false
	c := newZhuyin(cfg)
	typeRunes(t, c, "zp ")
	press(t, c, "Down")
	require.NotNil(t, c.View().Candidates)
	assert.Equal(t, -1, c.View().Candidates.CursorIndex())

	press(t, c, "Return")
	assert.Equal(t, "分", c.View().Preedit.String(), "the engine picks the first item")
}

func TestHostNavigation(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.PageSize = 4
	c := newZhuyin(cfg)
	assert.Equal(t, Result{}, c.PageDown(), "no list, nothing to do")

	typeRunes(t, c, "zp ")
	press(t, c, "Down")

	c.PageDown()
	cur, _ := c.View().Candidates.Page()
	assert.Equal(t, 1, cur)
	c.PageUp()
	cur, _ = c.View().Candidates.Page()
	assert.Equal(t, 0, cur)

	c.CursorDown()
	c.CursorDown()
	c.CursorUp()
	assert.Equal(t, 1, c.View().Candidates.CursorIndex())

	res := c.SelectCandidate(42)
	assert.False(t, res.Consumed)
	require.NotNil(t, c.View().Candidates, "out of range selection is a no-op")

	res = c.SelectCandidate(2)
	assert.True(t, res.Consumed)
	assert.Equal(t, "紛", c.View().Preedit.String())
}

func TestCtrlNumShowsAux(t *testing.T) {
	c := newZhuyin(DefaultSessionConfig())
	typeRunes(t, c, "zp 2k7")

	assert.True(t, press(t, c, "Control+2").Consumed)
	assert.Contains(t, c.View().Aux, "分的")
}

func TestPreeditCursorAndFormat(t *testing.T) {
	c := newZhuyin(DefaultSessionConfig())
	typeRunes(t, c, "su3cl3")
	press(t, c, "Left")
	typeRunes(t, c, "zp")

	p := c.View().Preedit
	assert.Equal(t, "你ㄈㄣ好", p.String())
	assert.Equal(t, len("你"), p.Cursor)
}

func TestCloseResets(t *testing.T) {
	f := enginetest.NewFake()
	c := NewController(f, DefaultSessionConfig())
	f.Buffer = "測"
	require.NoError(t, c.Close())
	assert.Empty(t, f.Buffer)
	assert.Nil(t, c.View().Candidates)
}
