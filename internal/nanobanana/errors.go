package nanobanana

import (
	"fmt"
	"time"
)

// SubmissionError reports a failed or malformed response while creating a
// generation task. Message carries the remote service's msg field when the
// envelope provided one.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("generation failed: %s", e.Message)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// JobFailedError reports that the remote service moved the task into a
// terminal failure state.
type JobFailedError struct {
	TaskID  string
	Message string
}

func (e *JobFailedError) Error() string { return e.Message }

// TimeoutError reports that no terminal state was observed within the
// maximum wait. Distinct from JobFailedError: a timed-out task may still
// succeed if the caller re-queries later.
type TimeoutError struct {
	TaskID string
	Wait   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timeout: task %s not finished after %s", e.TaskID, e.Wait)
}
