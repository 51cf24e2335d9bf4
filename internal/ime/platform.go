package ime

import (
	"log/slog"

	"chewingd/internal/engine"
)

const (
	ChewingdBusName    = "org.freedesktop.IBus.Chewingd"
	ChewingdEngineName = "chewingd"
	ChewingdVersion    = "0.3.0"
)

// Platform installs and selects the input method on one desktop.
type Platform interface {
	// Name returns the framework name (e.g., "ibus").
	Name() string

	// Available returns true if the framework is present.
	Available() bool

	// Install registers the input method for the current user.
	Install() error

	// Uninstall removes the registration.
	Uninstall() error

	// IsInstalled returns true if the input method is registered.
	IsInstalled() bool

	// IsActive returns true if the input method is currently selected.
	IsActive() bool

	// Activate makes this input method the active one.
	Activate() error
}

// PlatformConfig contains installation settings.
type PlatformConfig struct {
	// ExecPath is the daemon binary the framework launches. Empty means
	// the running executable.
	ExecPath string

	// ComponentDir overrides where the framework looks for components.
	ComponentDir string

	// EngineName is the name the framework selects the engine by.
	EngineName string

	// DisplayName is shown to users in system preferences.
	DisplayName string

	// Symbol is the short label shown in the panel.
	Symbol string

	// IconPath is the path to the icon.
	IconPath string
}

// DefaultConfig returns the default installation settings.
func DefaultConfig() PlatformConfig {
	return PlatformConfig{
		EngineName:  ChewingdEngineName,
		DisplayName: "Chewing (chewingd)",
		Symbol:      "酷",
	}
}

// IBusConfig configures the IBus service.
type IBusConfig struct {
	// BusName is requested on the bus. Defaults to ChewingdBusName.
	BusName string
	// EngineName is the only engine the factory creates.
	EngineName string
	// Address is the IBus bus address. Empty means IBUS_ADDRESS or the
	// session bus.
	Address string
	// Session is the configuration each new input context starts with.
	Session SessionConfig
	// NewClient opens a fresh engine for one input context.
	NewClient func() (engine.Client, error)
	Logger    *slog.Logger
}
