// chewingctl is the control CLI for chewingd: it checks and converts
// configuration, edits the learned phrase store and offers a terminal
// playground that drives the same session controller as the IBus engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chewingd/internal/config"
	"chewingd/internal/ime"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "chewingctl",
	Short:         "Control utility for chewingd",
	Version:       ime.ChewingdVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: $XDG_CONFIG_HOME/chewingd/config.toml)")

	configCmd.AddCommand(configCheckCmd, configDefaultsCmd, configImportFcitxCmd, configSchemaCmd)
	phrasesCmd.AddCommand(phrasesListCmd, phrasesAddCmd, phrasesRemoveCmd)

	rootCmd.AddCommand(configCmd, phrasesCmd, playCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveConfigPath returns the flag value or the first config file found
// in the standard location.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if p := config.FindConfigFile(); p != "" {
		return p
	}
	return config.ConfigPath()
}

func loadConfig() (*config.Config, error) {
	return config.NewLoader(resolveConfigPath()).Load()
}
