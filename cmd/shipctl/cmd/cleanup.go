package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old jobs on the conversion service",
	Long:  `Ask the service to remove jobs and artifacts older than the given number of days.`,
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 7, "delete jobs older than this many days")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	result, err := newClient().Cleanup(context.Background(), cleanupDays)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("✓ %s (%d job(s) removed)\n", result.Message, result.JobsCleaned)
	return nil
}
