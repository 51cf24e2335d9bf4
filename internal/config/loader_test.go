package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"chewingd/internal/engine"
)

func waitConfig(t *testing.T, ch <-chan *Config) *Config {
	t.Helper()
	select {
	case cfg := <-ch:
		return cfg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
		return nil
	}
}

func TestLoaderHotReload(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	l := NewLoader(path)
	defer l.Close()
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, engine.LayoutDefault, cfg.Chewing.Layout)

	changed := make(chan *Config, 4)
	l.OnChange(func(c *Config) { changed <- c })
	require.NoError(t, l.Watch())

	require.NoError(t, os.WriteFile(path, []byte("version = 1\n[chewing]\nlayout = \"hanyu-pinyin\"\npage_size = 7\n"), 0600))
	got := waitConfig(t, changed)
	assert.Equal(t, engine.LayoutHanyuPinyin, got.Chewing.Layout)
	assert.Equal(t, 7, got.Chewing.PageSize)
	assert.Same(t, got, l.Config())
}

func TestLoaderKeepsConfigOnInvalidFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	l := NewLoader(path)
	defer l.Close()
	before, err := l.Load()
	require.NoError(t, err)

	l.OnChange(func(*Config) { t.Error("invalid configuration was applied") })
	require.NoError(t, l.Watch())

	require.NoError(t, os.WriteFile(path, []byte("[chewing]\npage_size = 42\n"), 0600))
	select {
	case err := <-l.Errors():
		assert.ErrorIs(t, err, ErrInvalidConfig)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}
	assert.Same(t, before, l.Config())
}

func TestLoaderIgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	l := NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err, "a missing file yields defaults")

	changed := make(chan *Config, 1)
	l.OnChange(func(c *Config) { changed <- c })
	require.NoError(t, l.Watch())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0600))
	select {
	case <-changed:
		t.Fatal("reloaded for an unrelated file")
	case <-time.After(3 * DefaultDebounce):
	}

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, DefaultConfig(), cfg)

	_, created, err = LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
}
