package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults, config file, environment
variables and flags were applied. The paging secret is masked.

Examples:
  webapp config                 # Show the configuration as YAML
  webapp config --path          # Show the config file in use`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("path", false, "show config file path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	showPath, _ := cmd.Flags().GetBool("path")
	if showPath {
		if cfgFile == "" {
			_, err := fmt.Fprintln(out, "No config file (using defaults and environment)")
			return err
		}

		_, err := fmt.Fprintf(out, "Config file: %s\n", cfgFile)
		return err
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Redacted()); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return enc.Close()
}
