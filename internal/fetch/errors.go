package fetch

import (
	"fmt"
)

// DownloadError reports a failed single-artifact retrieval.
type DownloadError struct {
	Path string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download of %s failed: %v", e.Path, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// SequenceAbortError reports a multi-artifact retrieval that stopped
// early. Artifacts before Index were saved and stay on disk.
type SequenceAbortError struct {
	JobID     string
	Index     int
	Path      string
	Remaining int
	Err       error
}

func (e *SequenceAbortError) Error() string {
	return fmt.Sprintf("download sequence for job %s aborted at %s (%d remaining): %v",
		e.JobID, e.Path, e.Remaining, e.Err)
}

func (e *SequenceAbortError) Unwrap() error { return e.Err }
