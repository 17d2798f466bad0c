package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shipgen/shipctl/internal/notify"
)

var downloadOutDir string

var downloadCmd = &cobra.Command{
	Use:   "download <job-id>",
	Short: "Download the artifacts of a completed job",
	Long: `Retrieve every result artifact of a completed job, in order, with a
short pause between files. The first failure aborts the remaining
sequence; files already saved are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&downloadOutDir, "out", ".", "directory for downloaded artifacts")
}

func runDownload(cmd *cobra.Command, args []string) error {
	jobID := args[0]
	client := newClient()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job, err := client.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	notifier := notify.NewQueue(notify.DefaultTTL)
	notifier.SetSink(printNotification)

	return downloadJob(ctx, client, notifier, *job, downloadOutDir)
}
