package track

import (
	"errors"
	"fmt"
)

// ErrAlreadyTracking is returned when a poller is already active for a
// job, preserving the single-writer-per-key discipline.
var ErrAlreadyTracking = errors.New("job is already being tracked")

// SubmissionError reports a failed upload, either because the transport
// broke or because the service rejected the spreadsheet. Submissions
// are never retried automatically.
type SubmissionError struct {
	Filename string
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission of %s failed: %v", e.Filename, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollError reports a failed poll tick. It is fatal to the poller that
// produced it and leaves every other job's tracking untouched.
type PollError struct {
	JobID string
	Err   error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("polling job %s failed: %v", e.JobID, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// JobProcessingError reports that the server finished a job in the
// error state. The server-side message is carried verbatim.
type JobProcessingError struct {
	JobID  string
	Detail string
}

func (e *JobProcessingError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("job %s failed on the server", e.JobID)
	}
	return fmt.Sprintf("job %s failed on the server: %s", e.JobID, e.Detail)
}
