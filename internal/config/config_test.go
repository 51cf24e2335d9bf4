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
	"chewingd/internal/logging"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("CHEWINGD_DATA_DIR", "/tmp/chewingd-data")
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, filepath.Join("/tmp/chewingd-data", "user-phrases.db"), cfg.Storage.Path)
	assert.True(t, cfg.Storage.Learn)
	assert.Equal(t, ime.ChewingdBusName, cfg.IBus.BusName)
	assert.Equal(t, ime.DefaultSessionConfig(), cfg.Chewing.Session())
}

func TestConfigPath(t *testing.T) {
	t.Setenv("CHEWINGD_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigPath(); !strings.HasSuffix(got, "config.toml") {
		t.Errorf("expected path ending with config.toml, got %s", got)
	}
	if got := ConfigDir(); !strings.HasSuffix(got, "chewingd") {
		t.Errorf("expected dir ending with chewingd, got %s", got)
	}
}

func TestSessionDerivation(t *testing.T) {
	c := DefaultChewingConfig()
	c.SelectionKey = engine.SelKeyHomeRow
	c.PageSize = 42
	c.Layout = engine.LayoutHanyuPinyin
	c.SwitchInputMethodBehavior = ime.SwitchClear
	c.CandidateLayout = candidate.LayoutVertical
	c.Paging = candidate.PagingClamp

	s := c.Session()
	assert.Equal(t, engine.SelKeyHomeRow, s.SelectionKeys)
	assert.Equal(t, candidate.MaxPageSize, s.PageSize, "page size is clamped")
	assert.Equal(t, ime.SwitchClear, s.SwitchBehavior)

	settings := s.Settings()
	assert.Equal(t, 'a', settings.SelectionKeys[0])
	assert.Equal(t, engine.LayoutHanyuPinyin, settings.Layout)
}

func TestLoadNonexistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultChewingConfig(), cfg.Chewing)
}

func TestLoadFormats(t *testing.T) {
	docs := map[string]string{
		"config.toml": `
version = 1
[chewing]
layout = "Han-Yu PinYin Keyboard"
selection_key = "asdfghjkl;"
page_size = 7
switch_input_method_behavior = "commit-preedit"
`,
		"config.json": `{"version": 1, "chewing": {"layout": "hanyu-pinyin", "selection_key": "asdfghjkl;", "page_size": 7, "switch_input_method_behavior": "commit-preedit"}}`,
		"config.yaml": `
version: 1
chewing:
  layout: KB_HANYU_PINYIN
  selection_key: "asdfghjkl;"
  page_size: 7
  switch_input_method_behavior: commit-preedit
`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, engine.LayoutHanyuPinyin, cfg.Chewing.Layout)
			assert.Equal(t, engine.SelKeyHomeRow, cfg.Chewing.SelectionKey)
			assert.Equal(t, 7, cfg.Chewing.PageSize)
			assert.Equal(t, ime.SwitchCommitPreedit, cfg.Chewing.SwitchInputMethodBehavior)
			// untouched options keep their defaults
			assert.True(t, cfg.Chewing.SpaceAsSelection)
			assert.Equal(t, "info", cfg.Logging.Level)
		})
	}
}

func TestLoadRejectsBadEnum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[chewing]\nlayout = \"qwerty\"\n"), 0600))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qwerty")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Chewing.Layout = engine.LayoutDvorakHsu
			cfg.Chewing.SelectionKey = engine.SelKeyColemak
			cfg.Chewing.CursorPolicy = candidate.CursorFollow
			cfg.Logging.Level = "debug"

			path := filepath.Join(t.TempDir(), "config"+ext)
			require.NoError(t, SaveConfig(cfg, path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.NoError(t, ValidateDocument(data, ext))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHEWINGD_LAYOUT", "eten26")
	t.Setenv("CHEWINGD_PAGE_SIZE", "5")
	t.Setenv("CHEWINGD_LEARN", "false")
	t.Setenv("CHEWINGD_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnvOverrides())
	assert.Equal(t, engine.LayoutETen26, cfg.Chewing.Layout)
	assert.Equal(t, 5, cfg.Chewing.PageSize)
	assert.False(t, cfg.Storage.Learn)
	assert.Equal(t, "debug", cfg.Logging.Level)

	t.Setenv("CHEWINGD_PAGE_SIZE", "five")
	t.Setenv("CHEWINGD_SWITCH_BEHAVIOR", "forget")
	err := DefaultConfig().ApplyEnvOverrides()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.ElementsMatch(t, []string{"CHEWINGD_PAGE_SIZE", "CHEWINGD_SWITCH_BEHAVIOR"}, verrs.Fields())
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{"defaults", func(*Config) {}, nil},
		{"page size low", func(c *Config) { c.Chewing.PageSize = 2 }, []string{"chewing.page_size"}},
		{"page size high", func(c *Config) { c.Chewing.PageSize = 11 }, []string{"chewing.page_size"}},
		{"paging", func(c *Config) { c.Chewing.Paging = "wrap" }, []string{"chewing.paging"}},
		{"layout", func(c *Config) { c.Chewing.Layout = 200 }, []string{"chewing.layout"}},
		{"version", func(c *Config) { c.Version = 9 }, []string{"version"}},
		{"learning without db", func(c *Config) { c.Storage.Path = "" }, []string{"storage.path"}},
		{"log file", func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }, []string{"logging.file_path"}},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, []string{"logging.level"}},
		{"bus name", func(c *Config) { c.IBus.BusName = "chewingd" }, []string{"ibus.bus_name"}},
		{"several", func(c *Config) { c.Chewing.PageSize = 0; c.IBus.EngineName = "" }, []string{"chewing.page_size", "ibus.engine_name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.fields, verrs.Fields())
		})
	}
}

func TestLoggerConfig(t *testing.T) {
	l := DefaultConfig().Logging
	l.Level = "warn"
	l.Format = "json"
	l.FilePath = "~/chewingd.log"
	l.LogText = true

	cfg, err := l.Logger()
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, cfg.Level)
	assert.Equal(t, logging.FormatJSON, cfg.Format)
	assert.True(t, cfg.LogText)
	assert.False(t, strings.HasPrefix(cfg.FilePath, "~"))

	l.Level = "loud"
	_, err = l.Logger()
	assert.Error(t, err)
}
