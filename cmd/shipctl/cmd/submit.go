package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shipgen/shipctl/internal/fetch"
	"github.com/shipgen/shipctl/internal/notify"
	"github.com/shipgen/shipctl/internal/track"
	"github.com/shipgen/shipctl/pkg/models"
)

// maxUploadSize mirrors the server-side limit; the server stays authoritative.
const maxUploadSize = 50 * 1024 * 1024

var (
	availabilityPath string
	usePlanta        bool
	skipPlacas       bool
	followJob        bool
	downloadResults  bool
	submitOutDir     string
)

var submitCmd = &cobra.Command{
	Use:   "submit <spreadsheet>",
	Short: "Submit a spreadsheet for conversion",
	Long: `Submit a spreadsheet to the conversion service. The service turns it
into shipment documents asynchronously; use --follow to track the job
until it finishes and --download to retrieve the artifacts on success.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&availabilityPath, "availability", "", "optional truck availability spreadsheet")
	submitCmd.Flags().BoolVar(&usePlanta, "use-planta-as-origen", false, "use the plant column as shipment origin")
	submitCmd.Flags().BoolVar(&skipPlacas, "skip-placas", false, "skip generation of the plate availability report")
	submitCmd.Flags().BoolVar(&followJob, "follow", false, "poll job status every 2 seconds until completion")
	submitCmd.Flags().BoolVar(&downloadResults, "download", false, "download result artifacts on completion (implies --follow)")
	submitCmd.Flags().StringVar(&submitOutDir, "out", ".", "directory for downloaded artifacts")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	if err := checkSpreadsheet(filePath); err != nil {
		return err
	}
	if availabilityPath != "" {
		if _, err := os.Stat(availabilityPath); err != nil {
			return fmt.Errorf("availability file: %w", err)
		}
	}

	client := newClient()
	notifier := notify.NewQueue(notify.DefaultTTL)
	notifier.SetSink(printNotification)

	tracker := track.New(track.Config{
		Service:  client,
		Notifier: notifier,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job, err := tracker.Submit(ctx, track.SubmitRequest{
		FilePath:         filePath,
		AvailabilityPath: availabilityPath,
		Options: models.ProcessingOptions{
			UsePlantaAsOrigen: usePlanta,
			SkipPlacas:        skipPlacas,
		},
	})
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
	} else {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Field", "Value")
		table.Append("Job ID", job.JobID)
		table.Append("Status", statusCell(job.Status))
		table.Append("File", job.Filename)
		table.Append("Size", formatSize(job.FileSize))
		table.Append("Type", job.FileType)
		if job.FileDate != "" {
			table.Append("File Date", job.FileDate)
		}
		table.Render()
	}

	if !followJob && !downloadResults {
		fmt.Printf("\nJob submitted. Track it with: shipctl jobs status %s --follow\n", job.JobID)
		return nil
	}

	final, err := followToCompletion(ctx, tracker, job.JobID)
	if err != nil {
		return err
	}

	if downloadResults {
		return downloadJob(ctx, client, notifier, final, submitOutDir)
	}
	return nil
}

func checkSpreadsheet(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
	default:
		return fmt.Errorf("only Excel spreadsheets are accepted (.xlsx, .xlsm, .xls): %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > maxUploadSize {
		return fmt.Errorf("%s exceeds the 50MB upload limit", path)
	}
	return nil
}

// followToCompletion runs a poller for jobID and echoes progress until
// the job reaches a terminal state or ctx is canceled.
func followToCompletion(ctx context.Context, tracker *track.Tracker, jobID string) (models.Job, error) {
	done, err := tracker.Follow(ctx, jobID)
	if err != nil {
		return models.Job{}, err
	}

	fmt.Printf("\nFollowing job %s (press Ctrl+C to stop)...\n", jobID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastLine string
	for {
		select {
		case err := <-done:
			job, _ := tracker.Store().Get(jobID)
			if err != nil {
				return job, err
			}
			return job, nil

		case <-ticker.C:
			job, ok := tracker.Store().Get(jobID)
			if !ok {
				continue
			}
			line := fmt.Sprintf("[%3d%%] %s", job.Progress, job.Message)
			if line != lastLine {
				fmt.Println(line)
				lastLine = line
			}
		}
	}
}

// downloadJob fetches every artifact of a completed job.
func downloadJob(ctx context.Context, source fetch.ArtifactSource, notifier *notify.Queue, job models.Job, outDir string) error {
	if job.Status != models.StatusCompleted {
		return fmt.Errorf("job %s is %s, nothing to download", job.JobID, job.Status)
	}
	if len(job.ResultFiles) == 0 {
		return fmt.Errorf("job %s produced no artifacts", job.JobID)
	}

	downloader := fetch.New(fetch.Config{
		Source:   source,
		Namer:    track.NewNamer(),
		OutDir:   outDir,
		Delay:    fetch.DefaultDelay,
		Notifier: notifier,
	})

	saved, err := downloader.FetchAll(ctx, job)
	for _, path := range saved {
		fmt.Printf("Saved %s\n", path)
	}
	return err
}
