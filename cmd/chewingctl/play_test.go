package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chewingd/internal/candidate"
	"chewingd/internal/config"
	"chewingd/internal/ime"
	"chewingd/internal/logging"
	"chewingd/internal/preedit"
	"chewingd/internal/zhuyin"
)

func newTestPlay(t *testing.T, mutate func(*config.Config)) *playModel {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	logger, err := logging.New(&logging.Config{Output: "discard"})
	require.NoError(t, err)
	m := newPlayModel(zhuyin.New(), cfg, logger)
	t.Cleanup(func() { m.ctrl.Close() })
	return m
}

func runes(s string) []tea.Msg {
	var msgs []tea.Msg
	for _, r := range s {
		if r == ' ' {
			msgs = append(msgs, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

func feed(m *playModel, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want ime.KeyEvent
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}}, ime.Key('z', 0)},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Z'}}, ime.Key('Z', ime.ModShift)},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}, Alt: true}, ime.Key('x', ime.ModAlt)},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, ime.Key(ime.KeySpace, 0)},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, ime.Key(ime.KeyTab, ime.ModShift)},
		{tea.KeyMsg{Type: tea.KeyCtrlPgDown}, ime.Key(ime.KeyPageDown, ime.ModControl)},
		{tea.KeyMsg{Type: tea.KeyShiftLeft}, ime.Key(ime.KeyLeft, ime.ModShift)},
	}
	for _, tt := range tests {
		got, ok := keyEvent(tt.msg)
		require.True(t, ok, tt.msg.String())
		assert.Equal(t, tt.want, got, tt.msg.String())
	}

	_, ok := keyEvent(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ㄅ")})
	assert.False(t, ok, "non-ASCII input has no keysym")
	_, ok = keyEvent(tea.KeyMsg{Type: tea.KeyF5})
	assert.False(t, ok)
}

func TestPlayComposeAndCommit(t *testing.T) {
	m := newTestPlay(t, nil)

	feed(m, runes("zp ")...)
	assert.Equal(t, "分", m.ctrl.View().Preedit.String())
	assert.Contains(t, m.View(), "分")

	feed(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "分", m.committed.String())
	assert.True(t, m.ctrl.View().Preedit.Empty())

	feed(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "分\n", m.committed.String(), "Return passes through with nothing pending")

	feed(m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "分", m.committed.String())
}

func TestPlayCandidates(t *testing.T) {
	m := newTestPlay(t, func(c *config.Config) {
		c.Chewing.CandidateLayout = candidate.LayoutVertical
	})

	feed(m, runes("zp ")...)
	feed(m, tea.KeyMsg{Type: tea.KeyDown})
	cands := m.ctrl.View().Candidates
	require.NotNil(t, cands)
	assert.Equal(t, candidate.LayoutVertical, cands.Layout())

	out := renderCandidates(cands, 80)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, cands.Len()+1, "one line per candidate plus the page indicator")
	assert.Contains(t, lines[len(lines)-1], "1/")

	feed(m, runes("3")...)
	assert.Nil(t, m.ctrl.View().Candidates)
	assert.Equal(t, "紛", m.ctrl.View().Preedit.String())
}

func TestPlayFocusOut(t *testing.T) {
	m := newTestPlay(t, func(c *config.Config) {
		c.Chewing.SwitchInputMethodBehavior = ime.SwitchCommitPreedit
	})

	feed(m, runes("zp zp")...)
	feed(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, "分ㄈㄣ", m.committed.String())
	assert.True(t, m.ctrl.Active(), "session resumes after focus returns")

	feed(m, runes("z")...)
	feed(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.True(t, m.ctrl.View().Preedit.Empty())

	cmd := feed(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPlayPassthrough(t *testing.T) {
	m := newTestPlay(t, nil)
	feed(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}, Alt: true})
	assert.Equal(t, "Alt+x", m.passthrough)
	assert.Contains(t, m.View(), "passed through: Alt+x")
}

func TestRenderPreeditCursor(t *testing.T) {
	text := preedit.Text{
		Segments: []preedit.Segment{
			{Text: "你", Format: preedit.Underline},
			{Text: "ㄈㄣ", Format: preedit.Underline | preedit.HighLight},
		},
		Cursor: len("你"),
	}
	got := renderPreedit(text)
	assert.Less(t, strings.Index(got, "你"), strings.Index(got, cursorMark))
	assert.Less(t, strings.Index(got, cursorMark), strings.Index(got, "ㄈ"))

	assert.Equal(t, cursorMark, renderPreedit(preedit.Text{}))

	text.Cursor = len(text.String())
	assert.True(t, strings.HasSuffix(renderPreedit(text), cursorMark))
}
