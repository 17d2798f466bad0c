package track

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shipgen/shipctl/pkg/models"
)

// Store is the in-memory source of truth for tracked jobs, keyed by
// job_id. Reads may happen concurrently from any goroutine; writes go
// through Upsert, which applies owner-aware merge semantics: fields the
// client set at submission time survive every server payload.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
	log  *logrus.Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*models.Job),
		log:  logrus.WithField("component", "store"),
	}
}

// Upsert merges incoming into the record for jobID, creating it if
// absent, and returns a copy of the merged record. Records in a
// terminal state are frozen; late payloads for them are dropped.
func (s *Store) Upsert(jobID string, incoming models.Job) models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.jobs[jobID]
	if !ok {
		job := incoming
		job.JobID = jobID
		if job.Status == "" {
			job.Status = models.StatusPending
		}
		s.jobs[jobID] = &job
		return copyJob(&job)
	}

	if existing.Status.Terminal() {
		s.log.WithFields(logrus.Fields{
			"job_id": jobID,
			"status": existing.Status,
		}).Warn("dropping merge into terminal job")
		return copyJob(existing)
	}

	merge(existing, incoming)
	return copyJob(existing)
}

// Get returns a copy of the record for jobID.
func (s *Store) Get(jobID string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return models.Job{}, false
	}
	return copyJob(job), true
}

// Values returns a snapshot of all records ordered by StartedAt
// descending, so recency-sensitive callers see the newest job first.
func (s *Store) Values() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, copyJob(job))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return startedAt(out[i]).After(startedAt(out[j]))
	})
	return out
}

// Len returns the number of tracked jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.jobs)
}

// merge folds a server payload into an existing record. Server-owned
// fields are taken from incoming when present; client-owned fields are
// only adopted when the existing record has none, never replaced.
func merge(dst *models.Job, in models.Job) {
	if in.Status != "" {
		dst.Status = in.Status
		// The server always sends a message alongside the status, so a
		// status-bearing payload replaces the previous message outright.
		dst.Message = in.Message
	} else if in.Message != "" {
		dst.Message = in.Message
	}
	if in.Progress > dst.Progress {
		dst.Progress = in.Progress
	}
	if len(in.ResultFiles) > 0 {
		dst.ResultFiles = append([]string(nil), in.ResultFiles...)
	}
	if in.Error != "" {
		dst.Error = in.Error
	}
	if in.ValidationStats != nil {
		dst.ValidationStats = in.ValidationStats
	}
	if in.StartedAt != nil {
		t := *in.StartedAt
		dst.StartedAt = &t
	}
	if in.CompletedAt != nil {
		t := *in.CompletedAt
		dst.CompletedAt = &t
	}

	// Client-owned fields: fill gaps only.
	if dst.Filename == "" {
		dst.Filename = in.Filename
	}
	if dst.FileSize == 0 {
		dst.FileSize = in.FileSize
	}
	if dst.FileDate == "" {
		dst.FileDate = in.FileDate
	}
	if dst.FileType == "" {
		dst.FileType = in.FileType
	}
}

func copyJob(job *models.Job) models.Job {
	out := *job
	if job.ResultFiles != nil {
		out.ResultFiles = append([]string(nil), job.ResultFiles...)
	}
	if job.StartedAt != nil {
		t := *job.StartedAt
		out.StartedAt = &t
	}
	if job.CompletedAt != nil {
		t := *job.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

func startedAt(job models.Job) time.Time {
	if job.StartedAt == nil {
		return time.Time{}
	}
	return *job.StartedAt
}
