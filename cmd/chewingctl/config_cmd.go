package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"chewingd/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and convert configuration",
}

var configCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file against the schema and the option ranges.

Every problem is listed, one per line, with the option it concerns.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

var configDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration",
	RunE:  runConfigDefaults,
}

var configImportFcitxCmd = &cobra.Command{
	Use:   "import-fcitx <chewing.conf>",
	Short: "Convert an fcitx5-chewing configuration",
	Long: `Read the options fcitx5-chewing saved in conf/chewing.conf and write
them as a chewingd configuration. Options fcitx5 does not have keep their
defaults. Use --write to save the result instead of printing it.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigImportFcitx,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema for configuration files",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(config.Schema())
		return err
	},
}

var (
	outputFormat string
	writeConfig  bool
)

func init() {
	configDefaultsCmd.Flags().StringVarP(&outputFormat, "format", "f", "toml", "output format: toml, json or yaml")
	configImportFcitxCmd.Flags().StringVarP(&outputFormat, "format", "f", "toml", "output format: toml, json or yaml")
	configImportFcitxCmd.Flags().BoolVarP(&writeConfig, "write", "w", false, "save to the config file instead of printing")
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	if len(args) == 1 {
		path = args[0]
	}
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := config.ValidateDocument(data, filepath.Ext(path)); err != nil {
		return reportInvalid(cmd, path, err)
	}
	if _, err := config.NewLoader(path).Load(); err != nil {
		return reportInvalid(cmd, path, err)
	}
	fmt.Fprintf(out, "%s: ok\n", path)
	return nil
}

func reportInvalid(cmd *cobra.Command, path string, err error) error {
	var verrs config.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, e := range verrs {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", path, e.Field, e.Message)
	}
	return fmt.Errorf("%s: %d problem(s)", path, len(verrs))
}

func runConfigDefaults(cmd *cobra.Command, args []string) error {
	data, err := config.Encode(config.DefaultConfig(), "."+outputFormat)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigImportFcitx(cmd *cobra.Command, args []string) error {
	chewing, err := config.ImportFcitxFile(args[0])
	if err != nil {
		var verrs config.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s (kept default)\n", e.Field, e.Message)
		}
	}

	cfg := config.DefaultConfig()
	if writeConfig {
		if existing, err := loadConfig(); err == nil {
			cfg = existing
		}
	}
	cfg.Chewing = chewing
	if err := cfg.Validate(); err != nil {
		return err
	}

	if writeConfig {
		path := resolveConfigPath()
		if err := config.SaveConfig(cfg, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	}
	data, err := config.Encode(cfg, "."+outputFormat)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
