// Package config handles configuration loading, validation, and management
// for chewingd.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"chewingd/internal/candidate"
	"chewingd/internal/engine"
	"chewingd/internal/ime"
	"chewingd/internal/logging"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete daemon configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Chewing holds the input behaviour options.
	Chewing ChewingConfig `toml:"chewing" json:"chewing" yaml:"chewing"`

	// Storage configuration for learned phrases.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// IBus configuration for the D-Bus frontend.
	IBus IBusConfig `toml:"ibus" json:"ibus" yaml:"ibus"`
}

// ChewingConfig holds everything the user can tune about composition.
type ChewingConfig struct {
	// SelectionKey is the ten-key table used to pick candidates.
	SelectionKey engine.SelectionKeySet `toml:"selection_key" json:"selection_key" yaml:"selection_key"`

	// PageSize is the number of candidates per page (3-10).
	PageSize int `toml:"page_size" json:"page_size" yaml:"page_size"`

	// CandidateLayout is a hint for the candidate window orientation.
	CandidateLayout candidate.Layout `toml:"candidate_layout" json:"candidate_layout" yaml:"candidate_layout"`

	// Paging is "rotate", "clamp" or "vertical-boundary".
	Paging candidate.PagingMode `toml:"paging" json:"paging" yaml:"paging"`

	// CursorPolicy is "reset" or "follow".
	CursorPolicy candidate.CursorPolicy `toml:"cursor_policy" json:"cursor_policy" yaml:"cursor_policy"`

	UseKeypadAsSelectionKey bool `toml:"use_keypad_as_selection_key" json:"use_keypad_as_selection_key" yaml:"use_keypad_as_selection_key"`
	ArrowKeySelection       bool `toml:"arrow_key_selection" json:"arrow_key_selection" yaml:"arrow_key_selection"`

	// SwitchInputMethodBehavior is "clear", "commit-preedit" or "commit-default".
	SwitchInputMethodBehavior ime.SwitchBehavior `toml:"switch_input_method_behavior" json:"switch_input_method_behavior" yaml:"switch_input_method_behavior"`

	AddPhraseForward bool `toml:"add_phrase_forward" json:"add_phrase_forward" yaml:"add_phrase_forward"`
	ChoiceBackward   bool `toml:"choice_backward" json:"choice_backward" yaml:"choice_backward"`
	AutoShiftCursor  bool `toml:"auto_shift_cursor" json:"auto_shift_cursor" yaml:"auto_shift_cursor"`
	EasySymbolInput  bool `toml:"easy_symbol_input" json:"easy_symbol_input" yaml:"easy_symbol_input"`
	SpaceAsSelection bool `toml:"space_as_selection" json:"space_as_selection" yaml:"space_as_selection"`
	EscClearsAll     bool `toml:"esc_clears_all" json:"esc_clears_all" yaml:"esc_clears_all"`

	// Layout is the phonetic keyboard layout.
	Layout engine.KeyboardLayout `toml:"layout" json:"layout" yaml:"layout"`

	// HostUnderline leaves preedit underlining to the application.
	HostUnderline bool `toml:"host_underline" json:"host_underline" yaml:"host_underline"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// Path is the user phrase database.
	Path string `toml:"path" json:"path" yaml:"path"`

	// Learn records selected phrases so they rank higher next time.
	Learn bool `toml:"learn" json:"learn" yaml:"learn"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log destination: "stdout", "stderr", "file", "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file path when output includes a file.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`

	// LogText keeps typed text in debug logs.
	LogText bool `toml:"log_text" json:"log_text" yaml:"log_text"`
}

// IBusConfig holds IBus frontend configuration.
type IBusConfig struct {
	// BusName is the well-known name the component owns.
	BusName string `toml:"bus_name" json:"bus_name" yaml:"bus_name"`

	// EngineName is the engine name IBus asks the factory for.
	EngineName string `toml:"engine_name" json:"engine_name" yaml:"engine_name"`

	// Address overrides the IBus bus address. Empty asks ibus.
	Address string `toml:"address" json:"address" yaml:"address"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Chewing: DefaultChewingConfig(),
		Storage: StorageConfig{
			Path:  filepath.Join(DataDir(), "user-phrases.db"),
			Learn: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   logging.DefaultLogPath(),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		IBus: IBusConfig{
			BusName:    ime.ChewingdBusName,
			EngineName: ime.ChewingdEngineName,
		},
	}
}

// DefaultChewingConfig mirrors ime.DefaultSessionConfig.
func DefaultChewingConfig() ChewingConfig {
	s := ime.DefaultSessionConfig()
	return ChewingConfig{
		SelectionKey:              s.SelectionKeys,
		PageSize:                  s.PageSize,
		CandidateLayout:           s.CandidateLayout,
		Paging:                    s.Paging,
		CursorPolicy:              s.CursorPolicy,
		UseKeypadAsSelectionKey:   s.UseKeypadAsSelectionKey,
		ArrowKeySelection:         s.ArrowKeySelection,
		SwitchInputMethodBehavior: s.SwitchBehavior,
		AddPhraseForward:          s.AddPhraseForward,
		ChoiceBackward:            s.ChoiceBackward,
		AutoShiftCursor:           s.AutoShiftCursor,
		EasySymbolInput:           s.EasySymbolInput,
		SpaceAsSelection:          s.SpaceAsSelection,
		EscClearsAll:              s.EscClearsAll,
		Layout:                    s.Layout,
		HostUnderline:             s.HostUnderline,
	}
}

// Session derives the controller configuration.
func (c ChewingConfig) Session() ime.SessionConfig {
	return ime.SessionConfig{
		SelectionKeys:           c.SelectionKey,
		PageSize:                candidate.ClampPageSize(c.PageSize),
		CandidateLayout:         c.CandidateLayout,
		Paging:                  c.Paging,
		CursorPolicy:            c.CursorPolicy,
		UseKeypadAsSelectionKey: c.UseKeypadAsSelectionKey,
		ArrowKeySelection:       c.ArrowKeySelection,
		SwitchBehavior:          c.SwitchInputMethodBehavior,
		AddPhraseForward:        c.AddPhraseForward,
		ChoiceBackward:          c.ChoiceBackward,
		AutoShiftCursor:         c.AutoShiftCursor,
		EasySymbolInput:         c.EasySymbolInput,
		SpaceAsSelection:        c.SpaceAsSelection,
		EscClearsAll:            c.EscClearsAll,
		Layout:                  c.Layout,
		HostUnderline:           c.HostUnderline,
	}
}

// Logger builds the logging configuration.
func (l LoggingConfig) Logger() (*logging.Config, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(l.Format)
	if err != nil {
		return nil, err
	}
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = format
	cfg.Output = l.Output
	cfg.LogText = l.LogText
	if l.FilePath != "" {
		cfg.FilePath = expandPath(l.FilePath)
	}
	if l.MaxSizeMB > 0 {
		cfg.MaxSize = int64(l.MaxSizeMB)
	}
	cfg.MaxBackups = l.MaxBackups
	cfg.MaxAge = l.MaxAgeDays
	return cfg, nil
}

// IBusServer returns the frontend settings for ime.NewIBusServer. The caller fills
// in NewClient and Logger.
func (c *Config) IBusServer() ime.IBusConfig {
	return ime.IBusConfig{
		BusName:    c.IBus.BusName,
		EngineName: c.IBus.EngineName,
		Address:    c.IBus.Address,
		Session:    c.Chewing.Session(),
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			path = ConfigPath()
		}
	}

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFromFile reads and parses a config file based on its extension.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses a document over the defaults. ext selects the format;
// anything but ".json", ".yaml" and ".yml" is read as TOML.
func Decode(data []byte, ext string) (*Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Variables are prefixed with CHEWINGD_.
func (c *Config) ApplyEnvOverrides() error {
	var errs ValidationErrors
	text := func(name string, v interface{ UnmarshalText([]byte) error }) {
		if s, ok := os.LookupEnv(name); ok {
			if err := v.UnmarshalText([]byte(s)); err != nil {
				errs = append(errs, ValidationError{Field: name, Message: err.Error()})
			}
		}
	}
	boolean := func(name string, v *bool) {
		if s, ok := os.LookupEnv(name); ok {
			b, err := strconv.ParseBool(s)
			if err != nil {
				errs = append(errs, ValidationError{Field: name, Message: "expected a boolean"})
				return
			}
			*v = b
		}
	}

	text("CHEWINGD_LAYOUT", &c.Chewing.Layout)
	text("CHEWINGD_SELECTION_KEY", &c.Chewing.SelectionKey)
	text("CHEWINGD_SWITCH_BEHAVIOR", &c.Chewing.SwitchInputMethodBehavior)
	if s, ok := os.LookupEnv("CHEWINGD_PAGE_SIZE"); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, ValidationError{Field: "CHEWINGD_PAGE_SIZE", Message: "expected an integer"})
		} else {
			c.Chewing.PageSize = n
		}
	}
	boolean("CHEWINGD_LEARN", &c.Storage.Learn)
	boolean("CHEWINGD_LOG_TEXT", &c.Logging.LogText)
	if s := os.Getenv("CHEWINGD_DB_PATH"); s != "" {
		c.Storage.Path = s
	}
	if s := os.Getenv("CHEWINGD_LOG_LEVEL"); s != "" {
		c.Logging.Level = s
	}
	if s := os.Getenv("CHEWINGD_LOG_FORMAT"); s != "" {
		c.Logging.Format = s
	}
	if s := os.Getenv("CHEWINGD_IBUS_ADDRESS"); s != "" {
		c.IBus.Address = s
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// SaveConfig writes the configuration, choosing the format from the
// extension. TOML is the default.
func SaveConfig(cfg *Config, path string) error {
	data, err := Encode(cfg, filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Encode renders cfg in the format selected by ext.
func Encode(cfg *Config, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case ".yaml", ".yml":
		return yaml.Marshal(cfg)
	default:
		var b strings.Builder
		b.WriteString("# chewingd configuration\n\n")
		if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}
}

// DBPath returns Path with a leading ~/ expanded.
func (s StorageConfig) DBPath() string {
	return expandPath(s.Path)
}
