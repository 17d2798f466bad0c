package track

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shipgen/shipctl/internal/metrics"
	"github.com/shipgen/shipctl/internal/notify"
	"github.com/shipgen/shipctl/pkg/api"
	"github.com/shipgen/shipctl/pkg/models"
)

// Uploader submits one spreadsheet to the conversion service.
type Uploader interface {
	UploadFile(ctx context.Context, upload api.UploadRequest) (*api.UploadResponse, error)
}

// Service is the full client surface the tracker needs.
type Service interface {
	Uploader
	Fetcher
}

// Config wires a Tracker. Store, Notifier, Interval and Clock have
// working defaults; Service is required.
type Config struct {
	Service  Service
	Store    *Store
	Notifier *notify.Queue
	Metrics  *metrics.Metrics
	Interval time.Duration
	Clock    Clock
}

// Tracker owns the local job records and the pollers that advance
// them. It enforces at most one active poller per job id.
type Tracker struct {
	service  Service
	store    *Store
	notifier *notify.Queue
	metrics  *metrics.Metrics
	interval time.Duration
	clock    Clock
	log      *logrus.Entry

	mu     sync.Mutex
	active map[string]struct{}
}

// New creates a tracker from cfg.
func New(cfg Config) *Tracker {
	if cfg.Store == nil {
		cfg.Store = NewStore()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NewQueue(notify.DefaultTTL)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	return &Tracker{
		service:  cfg.Service,
		store:    cfg.Store,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		interval: cfg.Interval,
		clock:    cfg.Clock,
		log:      logrus.WithField("component", "tracker"),
		active:   make(map[string]struct{}),
	}
}

// Store exposes the job records for rendering.
func (t *Tracker) Store() *Store { return t.store }

// Notifier exposes the notification queue.
func (t *Tracker) Notifier() *notify.Queue { return t.notifier }

// ActiveCount returns the number of jobs with a running poller.
func (t *Tracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.active)
}

// SubmitRequest describes one submission.
type SubmitRequest struct {
	FilePath         string
	AvailabilityPath string
	Options          models.ProcessingOptions
}

// Submit uploads the spreadsheet and allocates the job's first record,
// tagged with the client-owned metadata the server never learns. A
// failed submission is reported once and never retried.
func (t *Tracker) Submit(ctx context.Context, req SubmitRequest) (models.Job, error) {
	if req.FilePath == "" {
		return models.Job{}, &SubmissionError{Err: errors.New("a primary spreadsheet is required")}
	}

	filename := filepath.Base(req.FilePath)

	var fileSize int64
	if info, err := os.Stat(req.FilePath); err == nil {
		fileSize = info.Size()
	}

	resp, err := t.service.UploadFile(ctx, api.UploadRequest{
		FilePath:         req.FilePath,
		AvailabilityPath: req.AvailabilityPath,
		Options:          req.Options,
	})
	if err != nil {
		t.notifier.Push(notify.TypeError, "Submission failed", err.Error())
		return models.Job{}, &SubmissionError{Filename: filename, Err: err}
	}

	now := t.clock.Now()
	status := resp.Status
	if status == "" {
		status = models.StatusPending
	}

	record := models.Job{
		JobID:    resp.JobID,
		Status:   status,
		Message:  resp.Message,
		Filename: filename,
		FileSize: fileSize,
		FileDate: ExtractFileDate(filename, now),
		FileType: InferFileType(filename),
		Options:  req.Options,
		// Placeholder for recency ordering until the server reports
		// its own timestamp on the first poll.
		StartedAt: &now,
	}
	job := t.store.Upsert(resp.JobID, record)

	t.notifier.Push(notify.TypeInfo, "Spreadsheet submitted", filename)
	t.log.WithFields(logrus.Fields{
		"job_id":   job.JobID,
		"filename": filename,
	}).Info("submission accepted")

	return job, nil
}

// Follow starts a poller for jobID and returns a channel that yields
// the poller's final result. It returns ErrAlreadyTracking when a
// poller for the id is still active; canceling ctx stops the poller.
func (t *Tracker) Follow(ctx context.Context, jobID string) (<-chan error, error) {
	t.mu.Lock()
	if _, ok := t.active[jobID]; ok {
		t.mu.Unlock()
		return nil, ErrAlreadyTracking
	}
	t.active[jobID] = struct{}{}
	t.mu.Unlock()

	poller := &Poller{
		jobID:    jobID,
		fetcher:  t.service,
		store:    t.store,
		notifier: t.notifier,
		metrics:  t.metrics,
		interval: t.interval,
		log:      t.log.WithField("job_id", jobID),
	}

	t.metrics.PollerStarted()
	done := make(chan error, 1)
	go func() {
		defer func() {
			t.mu.Lock()
			delete(t.active, jobID)
			t.mu.Unlock()
			t.metrics.PollerStopped()
		}()
		done <- poller.Run(ctx)
	}()
	return done, nil
}
