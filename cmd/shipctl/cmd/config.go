package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Commands for inspecting the effective shipctl configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

type effectiveConfig struct {
	APIURL       string `yaml:"api_url"`
	APIKeySet    bool   `yaml:"api_key_set"`
	OutputFormat string `yaml:"output"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig{
		APIURL:       GetAPIURL(),
		APIKeySet:    apiKey != "",
		OutputFormat: outputFormat,
	}

	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return encoder.Close()
}
