//go:build linux

package ime

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// LinuxPlatform registers the engine as an IBus component.
type LinuxPlatform struct {
	config PlatformConfig
}

// NewPlatform returns the platform for this system.
func NewPlatform(config PlatformConfig) Platform {
	return NewLinuxPlatform(config)
}

// NewLinuxPlatform creates a new Linux IME platform.
func NewLinuxPlatform(config PlatformConfig) *LinuxPlatform {
	def := DefaultConfig()
	if config.EngineName == "" {
		config.EngineName = def.EngineName
	}
	if config.DisplayName == "" {
		config.DisplayName = def.DisplayName
	}
	if config.Symbol == "" {
		config.Symbol = def.Symbol
	}
	return &LinuxPlatform{config: config}
}

func (p *LinuxPlatform) Name() string {
	return "ibus"
}

func (p *LinuxPlatform) Available() bool {
	if _, err := os.Stat("/usr/share/ibus/component"); err == nil {
		return true
	}
	_, err := exec.LookPath("ibus-daemon")
	return err == nil
}

func (p *LinuxPlatform) componentDir() (string, error) {
	if p.config.ComponentDir != "" {
		return p.config.ComponentDir, nil
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "ibus", "component"), nil
}

func (p *LinuxPlatform) componentPath() (string, error) {
	dir, err := p.componentDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p.config.EngineName+".xml"), nil
}

func (p *LinuxPlatform) Install() error {
	execPath := p.config.ExecPath
	if execPath == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate executable: %w", err)
		}
		execPath = exe
	}

	path, err := p.componentPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := p.component(execPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	p.restartIBus()
	return nil
}

type ibusComponent struct {
	XMLName     xml.Name     `xml:"component"`
	Name        string       `xml:"name"`
	Description string       `xml:"description"`
	Exec        string       `xml:"exec"`
	Version     string       `xml:"version"`
	Author      string       `xml:"author"`
	License     string       `xml:"license"`
	Textdomain  string       `xml:"textdomain"`
	Engines     []ibusEngine `xml:"engines>engine"`
}

type ibusEngine struct {
	Name        string `xml:"name"`
	Language    string `xml:"language"`
	License     string `xml:"license"`
	Author      string `xml:"author"`
	Icon        string `xml:"icon,omitempty"`
	Layout      string `xml:"layout"`
	Longname    string `xml:"longname"`
	Description string `xml:"description"`
	Rank        int    `xml:"rank"`
	Symbol      string `xml:"symbol"`
}

// component renders the IBus component XML.
func (p *LinuxPlatform) component(execPath string) ([]byte, error) {
	c := ibusComponent{
		Name:        ChewingdBusName,
		Description: "Chewing Zhuyin input method",
		Exec:        execPath + " -ibus",
		Version:     ChewingdVersion,
		Author:      "chewingd",
		License:     "LGPL-2.1-or-later",
		Textdomain:  "chewingd",
		Engines: []ibusEngine{{
			Name:        p.config.EngineName,
			Language:    "zh_TW",
			License:     "LGPL-2.1-or-later",
			Author:      "chewingd",
			Icon:        p.config.IconPath,
			Layout:      "us",
			Longname:    p.config.DisplayName,
			Description: "Zhuyin (Bopomofo) phonetic input",
			Rank:        99,
			Symbol:      p.config.Symbol,
		}},
	}
	out, err := xml.MarshalIndent(c, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode component: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func (p *LinuxPlatform) restartIBus() {
	exec.Command("ibus", "restart").Run()
}

func (p *LinuxPlatform) Uninstall() error {
	path, err := p.componentPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	p.restartIBus()
	return nil
}

func (p *LinuxPlatform) IsInstalled() bool {
	path, err := p.componentPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (p *LinuxPlatform) IsActive() bool {
	output, err := exec.Command("ibus", "engine").Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) == p.config.EngineName
}

func (p *LinuxPlatform) Activate() error {
	if err := exec.Command("ibus", "engine", p.config.EngineName).Run(); err != nil {
		return fmt.Errorf("please select %s in your input method settings: %w", p.config.DisplayName, err)
	}
	return nil
}

var _ Platform = (*LinuxPlatform)(nil)
