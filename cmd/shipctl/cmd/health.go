package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shipgen/shipctl/pkg/api"
)

var healthInterval time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the conversion service",
	Long: `Check whether the conversion service is reachable. With --interval the
probe repeats periodically, independent of any job tracking.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().DurationVar(&healthInterval, "interval", 0, "repeat the probe at this interval (0 = once)")
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := newClient()

	if healthInterval <= 0 {
		return probeOnce(context.Background(), client)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	// First probe immediately, then on each tick.
	if err := probeOnce(ctx, client); err != nil {
		fmt.Println(color.RedString("✗ %v", err))
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := probeOnce(ctx, client); err != nil {
				fmt.Println(color.RedString("✗ %v", err))
			}
		}
	}
}

func probeOnce(ctx context.Context, client *api.Client) error {
	health, err := client.Health(ctx)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, _ := json.MarshalIndent(health, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("%s service %s, %d active / %d total jobs\n",
		color.GreenString("✓"), health.Status, health.ActiveJobs, health.TotalJobs)
	return nil
}
