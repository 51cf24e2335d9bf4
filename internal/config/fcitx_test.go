package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chewingd/internal/candidate"
	"chewingd/internal/engine"
	"chewingd/internal/ime"
)

const fcitxConf = `# fcitx5-chewing
SelectionKey=asdfghjkl;
PageSize=7
CandidateLayout=Vertical
UseKeypadAsSelection=True
AddPhraseForward=False
ChoiceBackward=True
AutoShiftCursor=True
SpaceAsSelection=False
Layout="Han-Yu PinYin Keyboard"
SwitchInputMethodBehavior="Commit current preedit"
EasySymbolInput=True

[Hidden]
Unknown=1
`

func TestImportFcitx(t *testing.T) {
	c, err := ImportFcitx(strings.NewReader(fcitxConf))
	require.NoError(t, err)

	want := DefaultChewingConfig()
	want.SelectionKey = engine.SelKeyHomeRow
	want.PageSize = 7
	want.CandidateLayout = candidate.LayoutVertical
	want.UseKeypadAsSelectionKey = true
	want.AddPhraseForward = false
	want.AutoShiftCursor = true
	want.SpaceAsSelection = false
	want.Layout = engine.LayoutHanyuPinyin
	want.SwitchInputMethodBehavior = ime.SwitchCommitPreedit
	want.EasySymbolInput = true
	assert.Equal(t, want, c)
}

func TestImportFcitxErrors(t *testing.T) {
	c, err := ImportFcitx(strings.NewReader("PageSize=20\nLayout=Colemak\nAutoShiftCursor=maybe\nChoiceBackward=yes\n"))
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"PageSize", "Layout", "AutoShiftCursor"}, verrs.Fields())
	assert.True(t, c.ChoiceBackward, "good keys still apply")

	_, err = ImportFcitx(strings.NewReader("PageSize=7\ngarbage\n"))
	require.Error(t, err)
	assert.False(t, errors.As(err, &verrs))
	assert.Contains(t, err.Error(), "parse fcitx config")
}

func TestImportFcitxFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chewing.conf")
	require.NoError(t, os.WriteFile(path, []byte("SwitchInputMethodBehavior=Clear\n"), 0600))

	c, err := ImportFcitxFile(path)
	require.NoError(t, err)
	assert.Equal(t, ime.SwitchClear, c.SwitchInputMethodBehavior)

	_, err = ImportFcitxFile(filepath.Join(t.TempDir(), "missing.conf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
