package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shipgen/shipctl/internal/notify"
	"github.com/shipgen/shipctl/internal/track"
	"github.com/shipgen/shipctl/pkg/models"
)

var (
	jobsLimit    int
	followStatus bool
)

// jobsCmd represents the jobs command
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage conversion jobs",
	Long:  `Commands for listing, inspecting, and deleting jobs on the conversion service.`,
	RunE:  runJobsList,
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Get job status",
	Long:  `Retrieve the status of a specific job. With --follow the job is polled every 2 seconds until it reaches a terminal state.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsStatus,
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job",
	Long:  `Remove the server-side record and artifacts of a job.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsDelete,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsStatusCmd)
	jobsCmd.AddCommand(jobsDeleteCmd)

	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 50, "maximum number of jobs to list")
	jobsStatusCmd.Flags().BoolVar(&followStatus, "follow", false, "poll job status every 2 seconds until completion")
}

func runJobsList(cmd *cobra.Command, args []string) error {
	client := newClient()

	list, err := client.ListJobs(context.Background(), jobsLimit)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Job ID", "Status", "Progress", "Type", "Files", "Started")

	for _, job := range list.Jobs {
		table.Append(
			shortID(job.JobID),
			statusCell(job.Status),
			fmt.Sprintf("%d%%", job.Progress),
			job.FileType,
			fmt.Sprintf("%d", len(job.ResultFiles)),
			formatTimestamp(job.StartedAt),
		)
	}

	table.Render()
	fmt.Printf("\nTotal jobs: %d\n", list.Total)
	return nil
}

func runJobsStatus(cmd *cobra.Command, args []string) error {
	jobID := args[0]
	client := newClient()

	if followStatus {
		notifier := notify.NewQueue(notify.DefaultTTL)
		notifier.SetSink(printNotification)
		tracker := track.New(track.Config{Service: client, Notifier: notifier})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		job, err := followToCompletion(ctx, tracker, jobID)
		if err != nil {
			return err
		}
		displayJob(job)
		return nil
	}

	job, err := client.GetJob(context.Background(), jobID)
	if err != nil {
		return err
	}
	displayJob(*job)
	return nil
}

func displayJob(job models.Job) {
	if IsJSONOutput() {
		output, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(output))
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")

	table.Append("Job ID", job.JobID)
	table.Append("Status", statusCell(job.Status))
	table.Append("Progress", fmt.Sprintf("%d%%", job.Progress))
	if job.Message != "" {
		table.Append("Message", job.Message)
	}
	if job.FileType != "" {
		table.Append("Type", job.FileType)
	}
	if job.FileDate != "" {
		table.Append("File Date", job.FileDate)
	}
	table.Append("Started At", formatTimestamp(job.StartedAt))
	if job.CompletedAt != nil {
		table.Append("Completed At", formatTimestamp(job.CompletedAt))
	}
	if job.Error != "" {
		table.Append("Error", job.Error)
	}
	for i, path := range job.ResultFiles {
		table.Append(fmt.Sprintf("Artifact %d", i+1), path)
	}
	if len(job.ValidationStats) > 0 {
		stats, _ := json.MarshalIndent(job.ValidationStats, "", "  ")
		table.Append("Validation", string(stats))
	}

	table.Render()
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	if err := newClient().DeleteJob(context.Background(), jobID); err != nil {
		return err
	}
	fmt.Printf("✓ Job %s deleted\n", jobID)
	return nil
}
