package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shipgen/shipctl/internal/notify"
	"github.com/shipgen/shipctl/pkg/api"
)

var (
	cfgFile      string
	apiURL       string
	apiKey       string
	outputFormat string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shipctl",
	Short: "CLI for the shipment document conversion service",
	Long: `shipctl submits spreadsheets to the shipment document conversion
service, tracks the resulting jobs to completion and retrieves the
generated artifacts.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.shipctl/config)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "conversion service URL (default from config or http://localhost:8000)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "bearer token for the conversion service")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".shipctl")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	viper.BindEnv("api_url", "SHIPCTL_API_URL")
	viper.BindEnv("api_key", "SHIPCTL_API_KEY")

	// A missing config file is fine; flags and env still apply.
	viper.ReadInConfig()

	if apiURL == "" {
		apiURL = viper.GetString("api_url")
	}
	if apiKey == "" {
		apiKey = viper.GetString("api_key")
	}

	if apiURL == "" {
		apiURL = "http://localhost:8000"
	}
}

// GetAPIURL returns the configured service URL with trailing slashes removed
func GetAPIURL() string {
	return strings.TrimRight(apiURL, "/")
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}

// newClient builds an API client from the effective configuration
func newClient() *api.Client {
	client := api.NewClient(GetAPIURL())
	if apiKey != "" {
		client.SetAPIKey(apiKey)
	}
	return client
}

// printNotification renders a queue entry on stderr as it arrives
func printNotification(n notify.Notification) {
	display := notificationDisplay(n.Type)
	if n.Message != "" {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", display, n.Title, n.Message)
	} else {
		fmt.Fprintf(os.Stderr, "%s %s\n", display, n.Title)
	}
}
