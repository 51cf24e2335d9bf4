package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir returns the platform-specific config directory.
//
// Platform paths:
//   - Linux: $XDG_CONFIG_HOME/chewingd or ~/.config/chewingd
//   - macOS: ~/Library/Application Support/chewingd
func ConfigDir() string {
	if dir := os.Getenv("CHEWINGD_CONFIG_DIR"); dir != "" {
		return dir
	}
	if runtime.GOOS == "darwin" {
		return macOSDir()
	}
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the platform-specific data directory, home of the user
// phrase database.
//
// Platform paths:
//   - Linux: $XDG_DATA_HOME/chewingd or ~/.local/share/chewingd
//   - macOS: ~/Library/Application Support/chewingd
func DataDir() string {
	if dir := os.Getenv("CHEWINGD_DATA_DIR"); dir != "" {
		return dir
	}
	if runtime.GOOS == "darwin" {
		return macOSDir()
	}
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// RuntimeDir returns the directory for the single-instance lock.
func RuntimeDir() string {
	if xdgRuntime := os.Getenv("XDG_RUNTIME_DIR"); xdgRuntime != "" {
		return filepath.Join(xdgRuntime, "chewingd")
	}
	return filepath.Join(os.TempDir(), "chewingd-"+getUserID())
}

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, "chewingd")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, fallback, "chewingd")
}

func macOSDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Application Support", "chewingd")
}

func getUserID() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "default"
}

func expandPath(path string) string {
	if len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// SupportedConfigFormats returns the list of supported config file formats.
func SupportedConfigFormats() []string {
	return []string{"toml", "json", "yaml", "yml"}
}

// FindConfigFile searches ConfigDir for config.<ext> and returns the
// first match, or an empty string.
func FindConfigFile() string {
	dir := ConfigDir()
	for _, ext := range SupportedConfigFormats() {
		path := filepath.Join(dir, "config."+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
