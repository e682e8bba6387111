// Package elevation orchestrates a plan-elevation generation end to end:
// persist the upload, resolve a publicly fetchable reference for it, submit
// the generation task, and poll until a terminal outcome.
package elevation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/JacobItopa/plan-elevation/internal/metrics"
	"github.com/JacobItopa/plan-elevation/internal/nanobanana"
	"github.com/JacobItopa/plan-elevation/internal/publicurl"
	"github.com/JacobItopa/plan-elevation/internal/storage"
)

// DefaultPrompt is the fixed instruction sent with every generation.
const DefaultPrompt = "I want you to show the elevations of this plan"

// fetchChunkSize is the buffer granularity for streaming result downloads.
const fetchChunkSize = 4096

// Result is the terminal outcome of a successful generation.
type Result struct {
	TaskID         string
	ResultImageURL string
	// Raw is the remote service's full status payload, passed through
	// unmodified.
	Raw map[string]any
}

// Options configure a Service.
type Options struct {
	Store   *storage.FileStore
	Locator *publicurl.Locator
	Client  *nanobanana.Client
	Wait    nanobanana.WaitOptions
	// HTTPClient downloads result images; defaults to a client with a
	// generous timeout since results can be large.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Service runs generation requests. Each call owns its upload, its public
// reference and its task; nothing is shared across concurrent requests and
// nothing is persisted beyond the uploaded file on disk.
type Service struct {
	store      *storage.FileStore
	locator    *publicurl.Locator
	client     *nanobanana.Client
	wait       nanobanana.WaitOptions
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewService constructs a Service.
func NewService(opts Options) *Service {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Service{
		store:      opts.Store,
		locator:    opts.Locator,
		client:     opts.Client,
		wait:       opts.Wait,
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// Generate runs the full flow for one uploaded plan and blocks until the
// task reaches a terminal state. The poll loop only ever blocks this
// request's goroutine; ctx cancellation aborts every network call in the
// chain, including the poll loop.
func (s *Service) Generate(ctx context.Context, originalFilename string, file io.Reader, requestOrigin string) (*Result, error) {
	stored, err := s.store.SaveUpload(ctx, originalFilename, file)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("file", stored.Name).Str("origin", requestOrigin).Msg("upload stored")

	ref, err := s.locator.Resolve(ctx, stored, requestOrigin)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("image_url", ref).Msg("submitting generation task")

	taskID, err := s.client.Generate(ctx, DefaultPrompt, []string{ref}, nanobanana.GenerateOptions{})
	if err != nil {
		metrics.IncreaseGenerationsTotalMetric(metrics.OutcomeRejected)
		return nil, err
	}
	s.logger.Info().Str("task_id", taskID).Msg("task submitted, waiting for completion")

	start := time.Now()
	status, err := s.client.WaitForCompletion(ctx, taskID, s.wait)
	if err != nil {
		var timeout *nanobanana.TimeoutError
		if errors.As(err, &timeout) {
			metrics.IncreaseGenerationsTotalMetric(metrics.OutcomeTimedOut)
		} else {
			metrics.IncreaseGenerationsTotalMetric(metrics.OutcomeFailed)
		}
		return nil, err
	}
	metrics.IncreaseGenerationsTotalMetric(metrics.OutcomeSucceeded)
	metrics.ObserveGenerationDurationMetric(time.Since(start))

	return &Result{
		TaskID:         taskID,
		ResultImageURL: status.ResultImageURL,
		Raw:            status.Raw,
	}, nil
}

// Fetch re-queries the task's status and streams the result image. The
// returned reader must be closed by the caller. Filename is derived from the
// result URL's last path segment, or synthesized from the task id when the
// segment carries no extension.
func (s *Service) Fetch(ctx context.Context, taskID string) (body io.ReadCloser, contentType, filename string, err error) {
	status, err := s.client.TaskStatus(ctx, taskID)
	if err != nil {
		return nil, "", "", err
	}
	if status.ResultImageURL == "" {
		metrics.IncreaseResultFetchesTotalMetric(metrics.OutcomeUnavailable)
		return nil, "", "", &ResultUnavailableError{TaskID: taskID}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, status.ResultImageURL, nil)
	if err != nil {
		return nil, "", "", &FetchFailedError{TaskID: taskID, Err: err}
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.IncreaseResultFetchesTotalMetric(metrics.OutcomeFetchFailed)
		return nil, "", "", &FetchFailedError{TaskID: taskID, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		metrics.IncreaseResultFetchesTotalMetric(metrics.OutcomeFetchFailed)
		return nil, "", "", &FetchFailedError{TaskID: taskID, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	contentType = resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	metrics.IncreaseResultFetchesTotalMetric(metrics.OutcomeFetched)
	return resp.Body, contentType, resultFilename(taskID, status.ResultImageURL), nil
}

// CopyResult streams a fetched result to w at a fixed chunk granularity,
// never buffering more than one chunk.
func CopyResult(w io.Writer, body io.Reader) error {
	buf := make([]byte, fetchChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func resultFilename(taskID, resultURL string) string {
	segment := resultURL
	if u, err := url.Parse(resultURL); err == nil && u.Path != "" {
		segment = u.Path
	}
	base := path.Base(segment)
	if strings.Contains(base, ".") {
		return base
	}
	return "elevation_" + taskID + ".jpg"
}
