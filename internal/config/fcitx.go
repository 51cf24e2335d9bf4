package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/ini.v1"

	"chewingd/internal/candidate"
	"chewingd/internal/engine"
	"chewingd/internal/ime"
)

// fcitx5 stores enum options by display name.
var fcitxSwitchBehaviors = map[string]ime.SwitchBehavior{
	"Clear":                    ime.SwitchClear,
	"Commit current preedit":   ime.SwitchCommitPreedit,
	"Commit default selection": ime.SwitchCommitDefault,
}

var fcitxCandidateLayouts = map[string]candidate.Layout{
	"Not set":    candidate.LayoutNotSet,
	"Vertical":   candidate.LayoutVertical,
	"Horizontal": candidate.LayoutHorizontal,
}

// ImportFcitxFile reads an fcitx5 conf/chewing.conf file.
func ImportFcitxFile(path string) (ChewingConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return ChewingConfig{}, err
	}
	defer f.Close()
	return ImportFcitx(f)
}

// ImportFcitx converts the INI form fcitx5-chewing saves its options in.
// Options missing from the input keep their defaults and unknown keys are
// ignored. Every bad value is reported, not just the first. Input that is
// not INI at all fails without a partial result.
func ImportFcitx(r io.Reader) (ChewingConfig, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:       true,
		UnescapeValueDoubleQuotes: true,
	}, r)
	if err != nil {
		return ChewingConfig{}, fmt.Errorf("parse fcitx config: %w", err)
	}

	c := DefaultChewingConfig()
	var errs ValidationErrors
	bad := func(key, format string, args ...any) {
		errs = append(errs, ValidationError{Field: key, Message: fmt.Sprintf(format, args...)})
	}
	boolean := func(k *ini.Key, dst *bool) {
		b, err := k.Bool()
		if err != nil {
			bad(k.Name(), "expected True or False, got %q", k.String())
			return
		}
		*dst = b
	}

	for _, sec := range f.Sections() {
		for _, k := range sec.Keys() {
			value := k.String()
			switch k.Name() {
			case "SelectionKey":
				if err := c.SelectionKey.UnmarshalText([]byte(value)); err != nil {
					bad(k.Name(), "%v", err)
				}
			case "Layout":
				l, err := engine.ParseKeyboardLayout(value)
				if err != nil {
					bad(k.Name(), "%v", err)
					continue
				}
				c.Layout = l
			case "PageSize":
				n, err := k.Int()
				if err != nil || n < candidate.MinPageSize || n > candidate.MaxPageSize {
					errs = append(errs, *RangeError(k.Name(), candidate.MinPageSize, candidate.MaxPageSize))
					continue
				}
				c.PageSize = n
			case "CandidateLayout":
				l, ok := fcitxCandidateLayouts[value]
				if !ok {
					bad(k.Name(), "unknown candidate layout %q", value)
					continue
				}
				c.CandidateLayout = l
			case "SwitchInputMethodBehavior", "SwitchInputMethodBehaviour":
				b, ok := fcitxSwitchBehaviors[value]
				if !ok {
					bad(k.Name(), "unknown behavior %q", value)
					continue
				}
				c.SwitchInputMethodBehavior = b
			case "UseKeypadAsSelection", "UseKeypadAsSelectionKey":
				boolean(k, &c.UseKeypadAsSelectionKey)
			case "ArrowKeySelection":
				boolean(k, &c.ArrowKeySelection)
			case "AddPhraseForward":
				boolean(k, &c.AddPhraseForward)
			case "ChoiceBackward":
				boolean(k, &c.ChoiceBackward)
			case "AutoShiftCursor":
				boolean(k, &c.AutoShiftCursor)
			case "SpaceAsSelection":
				boolean(k, &c.SpaceAsSelection)
			case "EasySymbolInput":
				boolean(k, &c.EasySymbolInput)
			}
		}
	}
	if len(errs) > 0 {
		return c, errs
	}
	return c, nil
}
