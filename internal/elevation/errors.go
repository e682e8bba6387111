package elevation

import "fmt"

// ResultUnavailableError reports that no result image URL exists for a task:
// it may have expired, failed, or still be running.
type ResultUnavailableError struct {
	TaskID string
}

func (e *ResultUnavailableError) Error() string {
	return fmt.Sprintf("no result image for task %s (maybe expired or failed)", e.TaskID)
}

// FetchFailedError reports that a result image URL exists but downloading it
// from the remote CDN failed.
type FetchFailedError struct {
	TaskID string
	Err    error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch result for task %s: %v", e.TaskID, e.Err)
}

func (e *FetchFailedError) Unwrap() error { return e.Err }
