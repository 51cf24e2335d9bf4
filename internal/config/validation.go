package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"chewingd/internal/candidate"
	"chewingd/internal/engine"
	"chewingd/internal/ime"
)

// ErrInvalidConfig is matched by every ValidationErrors value.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError is one problem with one option. Field is the dotted
// document path, e.g. "chewing.page_size".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors lists every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Error()
	}
	return strings.Join(msgs, "; ")
}

// Is lets errors.Is match ErrInvalidConfig.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Fields lists the offending field names in order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i := range e {
		fields[i] = e[i].Field
	}
	return fields
}

func (e *ValidationErrors) addf(field, format string, args ...any) {
	*e = append(*e, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// err returns nil for an empty list so callers can return it directly.
func (e ValidationErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// RequiredFieldError reports a missing value.
func RequiredFieldError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "required field is missing"}
}

// RangeError reports a value outside [min, max].
func RangeError(field string, min, max any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf("value must be between %v and %v", min, max)}
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	logOutputs = []string{"stdout", "stderr", "file", "both", "discard"}
)

// ValidateConfig checks every section and returns ValidationErrors listing
// all problems, or nil.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors
	if c.Version < 1 || c.Version > Version {
		errs.addf("version", "unsupported version %d (current: %d)", c.Version, Version)
	}
	c.Chewing.validate(&errs)
	c.Storage.validate(&errs)
	c.Logging.validate(&errs)
	c.IBus.validate(&errs)
	return errs.err()
}

func (c *ChewingConfig) validate(errs *ValidationErrors) {
	if c.PageSize < candidate.MinPageSize || c.PageSize > candidate.MaxPageSize {
		*errs = append(*errs, *RangeError("chewing.page_size", candidate.MinPageSize, candidate.MaxPageSize))
	}
	if int(c.SelectionKey) >= len(engine.SelectionKeySets()) {
		errs.addf("chewing.selection_key", "unknown selection key set %d", c.SelectionKey)
	}
	if int(c.Layout) >= len(engine.KeyboardLayouts()) {
		errs.addf("chewing.layout", "unknown keyboard layout %d", c.Layout)
	}
	if c.CandidateLayout > candidate.LayoutHorizontal {
		errs.addf("chewing.candidate_layout", "unknown candidate layout %d", c.CandidateLayout)
	}
	if !c.Paging.Valid() {
		errs.addf("chewing.paging", "invalid paging mode %q (valid: rotate, clamp, vertical-boundary)", c.Paging)
	}
	if c.CursorPolicy > candidate.CursorFollow {
		errs.addf("chewing.cursor_policy", "unknown cursor policy %d", c.CursorPolicy)
	}
	if c.SwitchInputMethodBehavior > ime.SwitchCommitDefault {
		errs.addf("chewing.switch_input_method_behavior", "unknown behavior %d", c.SwitchInputMethodBehavior)
	}
}

func (s *StorageConfig) validate(errs *ValidationErrors) {
	if s.Learn && s.Path == "" {
		errs.addf("storage.path", "database path is required when learning is enabled")
	}
}

func (l *LoggingConfig) validate(errs *ValidationErrors) {
	if !slices.Contains(logLevels, l.Level) {
		errs.addf("logging.level", "invalid log level %q (valid: %s)", l.Level, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, l.Format) {
		errs.addf("logging.format", "invalid log format %q (valid: %s)", l.Format, strings.Join(logFormats, ", "))
	}
	if !slices.Contains(logOutputs, l.Output) {
		errs.addf("logging.output", "invalid log output %q (valid: %s)", l.Output, strings.Join(logOutputs, ", "))
	} else if (l.Output == "file" || l.Output == "both") && l.FilePath == "" {
		errs.addf("logging.file_path", "file path is required when output is %q", l.Output)
	}
	if l.MaxSizeMB < 1 {
		errs.addf("logging.max_size_mb", "max size must be at least 1 MB")
	}
	if l.MaxBackups < 0 {
		errs.addf("logging.max_backups", "max backups cannot be negative")
	}
	if l.MaxAgeDays < 0 {
		errs.addf("logging.max_age_days", "max age cannot be negative")
	}
}

func (i *IBusConfig) validate(errs *ValidationErrors) {
	switch {
	case i.BusName == "":
		*errs = append(*errs, *RequiredFieldError("ibus.bus_name"))
	case !strings.Contains(i.BusName, ".") || strings.HasPrefix(i.BusName, ".") || strings.HasSuffix(i.BusName, "."):
		errs.addf("ibus.bus_name", "%q is not a well-known bus name", i.BusName)
	}
	if i.EngineName == "" {
		*errs = append(*errs, *RequiredFieldError("ibus.engine_name"))
	}
}
