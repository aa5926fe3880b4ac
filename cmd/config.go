package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"ratemyrecipe/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the effective configuration to the config file",
	Long: `Write the configuration in effect (defaults, config file, environment
and flags) as YAML to --config, or ~/.ratemyrecipe/config.yaml.`,
	Example: `  ratemyrecipe config save --api http://localhost:8080/api --favorites local`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return saveConfig(cmd.OutOrStdout(), cfg, configPath)
	},
}

func init() {
	configCmd.AddCommand(configSaveCmd)
}

// saveConfig writes cfg to path, or to config.yaml in the config directory
// when path is empty.
func saveConfig(out io.Writer, cfg *config.Config, path string) error {
	if path == "" {
		path = filepath.Join(cfg.Dir, "config.yaml")
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Saved configuration to %s.\n", path)
	return err
}
