package track

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shipgen/shipctl/internal/metrics"
	"github.com/shipgen/shipctl/internal/notify"
	"github.com/shipgen/shipctl/pkg/models"
)

// DefaultPollInterval is the reference polling period.
const DefaultPollInterval = 2 * time.Second

// Fetcher retrieves the current server-side state of one job.
type Fetcher interface {
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
}

// Poller advances one job's tracked state until it becomes terminal.
// Ticks for the same job are strictly sequential; pollers for distinct
// jobs run independently and never touch each other's records.
type Poller struct {
	jobID    string
	fetcher  Fetcher
	store    *Store
	notifier *notify.Queue
	metrics  *metrics.Metrics
	interval time.Duration
	log      *logrus.Entry
}

// Run polls until the job reaches a terminal state, the fetch fails, or
// ctx is canceled. It returns nil when the job completed, a
// *JobProcessingError when the server reports failure, and a *PollError
// when a tick's fetch failed. A fetch failure is fatal to this poller
// only; nothing is retried.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller canceled")
			return ctx.Err()

		case <-ticker.C:
			p.metrics.PollTick()

			job, err := p.fetcher.GetJob(ctx, p.jobID)
			if err != nil {
				p.metrics.PollFailure()
				p.notifier.Push(notify.TypeError, "Tracking stopped", err.Error())
				p.log.WithError(err).Error("poll fetch failed")
				return &PollError{JobID: p.jobID, Err: err}
			}

			merged := p.store.Upsert(p.jobID, *job)
			p.log.WithFields(logrus.Fields{
				"status":   merged.Status,
				"progress": merged.Progress,
			}).Debug("merged poll result")

			switch {
			case merged.Status == models.StatusCompleted:
				p.metrics.JobCompleted()
				p.notifier.Push(notify.TypeSuccess, "Conversion finished", merged.Message)
				return nil
			case merged.Status == models.StatusError:
				p.metrics.JobFailed()
				p.notifier.Push(notify.TypeError, "Conversion failed", merged.Error)
				return &JobProcessingError{JobID: p.jobID, Detail: merged.Error}
			}
		}
	}
}
