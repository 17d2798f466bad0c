package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shipgen/shipctl/internal/metrics"
	"github.com/shipgen/shipctl/internal/notify"
	"github.com/shipgen/shipctl/pkg/models"
)

// DefaultDelay is the pause inserted between consecutive artifact
// retrievals to bound peak network and memory usage.
const DefaultDelay = 500 * time.Millisecond

// ArtifactSource opens a binary stream for one server-relative
// artifact path.
type ArtifactSource interface {
	Download(ctx context.Context, artifactPath string) (io.ReadCloser, error)
}

// Namer maps a job and artifact path to the local filename.
type Namer interface {
	Name(job models.Job, artifactPath string) string
}

// Downloader retrieves result artifacts. Multi-artifact retrieval is
// strictly sequential in result_files order and stops at the first
// failure; artifacts already written stay on disk.
type Downloader struct {
	source   ArtifactSource
	namer    Namer
	outDir   string
	delay    time.Duration
	notifier *notify.Queue
	metrics  *metrics.Metrics
	log      *logrus.Entry
}

// Config wires a Downloader. Source and Namer are required; OutDir
// defaults to the working directory and Delay to DefaultDelay.
type Config struct {
	Source   ArtifactSource
	Namer    Namer
	OutDir   string
	Delay    time.Duration
	Notifier *notify.Queue
	Metrics  *metrics.Metrics
}

// New creates a downloader from cfg.
func New(cfg Config) *Downloader {
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NewQueue(notify.DefaultTTL)
	}
	return &Downloader{
		source:   cfg.Source,
		namer:    cfg.Namer,
		outDir:   cfg.OutDir,
		delay:    cfg.Delay,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		log:      logrus.WithField("component", "downloader"),
	}
}

// FetchArtifact retrieves one artifact and writes it to displayName
// inside the output directory. The bytes land in a temporary file that
// is removed on every exit path, so a failed retrieval never leaves a
// partial file under the final name. Returns the saved path.
func (d *Downloader) FetchArtifact(ctx context.Context, artifactPath, displayName string) (string, error) {
	body, err := d.source.Download(ctx, artifactPath)
	if err != nil {
		d.metrics.DownloadFailure()
		return "", &DownloadError{Path: artifactPath, Err: err}
	}
	defer body.Close()

	if err := os.MkdirAll(d.outDir, 0755); err != nil {
		d.metrics.DownloadFailure()
		return "", &DownloadError{Path: artifactPath, Err: err}
	}

	finalPath := filepath.Join(d.outDir, displayName)
	tmpPath := finalPath + "." + uuid.NewString() + ".part"

	f, err := os.Create(tmpPath)
	if err != nil {
		d.metrics.DownloadFailure()
		return "", &DownloadError{Path: artifactPath, Err: err}
	}
	defer os.Remove(tmpPath)

	_, err = io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		d.metrics.DownloadFailure()
		return "", &DownloadError{Path: artifactPath, Err: err}
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		d.metrics.DownloadFailure()
		return "", &DownloadError{Path: artifactPath, Err: fmt.Errorf("failed to finalize download: %w", err)}
	}

	d.metrics.ArtifactDownloaded()
	d.log.WithFields(logrus.Fields{
		"artifact": artifactPath,
		"saved_as": finalPath,
	}).Info("artifact downloaded")
	return finalPath, nil
}

// FetchAll retrieves every result artifact of a completed job in
// result_files order, pausing between items. The first failure aborts
// the remainder of the sequence; the returned slice lists the paths
// already saved, which are not rolled back.
func (d *Downloader) FetchAll(ctx context.Context, job models.Job) ([]string, error) {
	saved := make([]string, 0, len(job.ResultFiles))

	for i, artifactPath := range job.ResultFiles {
		if i > 0 && d.delay > 0 {
			timer := time.NewTimer(d.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return saved, ctx.Err()
			case <-timer.C:
			}
		}

		name := d.namer.Name(job, artifactPath)
		path, err := d.FetchArtifact(ctx, artifactPath, name)
		if err != nil {
			d.notifier.Push(notify.TypeError, "Download failed", err.Error())
			return saved, &SequenceAbortError{
				JobID:     job.JobID,
				Index:     i,
				Path:      artifactPath,
				Remaining: len(job.ResultFiles) - i - 1,
				Err:       err,
			}
		}
		saved = append(saved, path)
	}

	if len(saved) > 0 {
		d.notifier.Push(notify.TypeSuccess, "Downloads finished",
			fmt.Sprintf("%d file(s) saved to %s", len(saved), d.outDir))
	}
	return saved, nil
}
