// Package nanobanana is a client for the NanoBanana image generation API.
// The API is fire-and-forget: a generate call returns a task id, and the
// only way to learn the outcome is to poll the record-info endpoint.
package nanobanana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TypeTextToImage is the generation mode tag for prompt-only requests. The
// spelling is the API's, not ours.
const TypeTextToImage = "TEXTTOIAMGE"

// Task success flags as reported by record-info.
const (
	flagGenerating = 0
	flagSucceeded  = 1
	flagFailed     = 2
	flagRejected   = 3
)

// Options configure a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// Client talks to the NanoBanana HTTP API. Construct one per process and
// inject it; it holds no per-task state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     zerolog.Logger
}

// NewClient constructs a Client.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.nanobananaapi.ai/api/v1/nanobanana"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
		logger:     opts.Logger,
	}
}

// GenerateOptions carry the optional fields of a generate request.
type GenerateOptions struct {
	// Type defaults to TypeTextToImage when empty.
	Type        string
	NumImages   int
	CallBackURL string
	Watermark   *bool
}

type generateRequest struct {
	Prompt      string   `json:"prompt"`
	Type        string   `json:"type"`
	NumImages   int      `json:"numImages"`
	CallBackURL string   `json:"callBackUrl,omitempty"`
	Watermark   *bool    `json:"watermark,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
}

type generateResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
}

// Generate submits a generation task and returns its id. Any transport
// failure, non-200 envelope code or missing task id yields a
// *SubmissionError; no retries are attempted.
func (c *Client) Generate(ctx context.Context, prompt string, imageURLs []string, opts GenerateOptions) (string, error) {
	if c == nil {
		return "", errors.New("nanobanana client not configured")
	}
	if c.token == "" {
		return "", errors.New("nanobanana: API key is missing")
	}
	payload := generateRequest{
		Prompt:      prompt,
		Type:        opts.Type,
		NumImages:   opts.NumImages,
		CallBackURL: opts.CallBackURL,
		Watermark:   opts.Watermark,
	}
	if payload.Type == "" {
		payload.Type = TypeTextToImage
	}
	if payload.NumImages <= 0 {
		payload.NumImages = 1
	}
	if len(imageURLs) > 0 {
		payload.ImageURLs = imageURLs
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &SubmissionError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &SubmissionError{Message: fmt.Sprintf("invalid response (http %d)", resp.StatusCode), Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest || out.Code != 200 {
		msg := out.Msg
		if msg == "" {
			msg = "Unknown error"
		}
		return "", &SubmissionError{Message: msg}
	}
	if out.Data.TaskID == "" {
		return "", &SubmissionError{Message: "response missing taskId"}
	}
	return out.Data.TaskID, nil
}

// Status is the decoded state of a task as reported by record-info.
type Status struct {
	SuccessFlag    int
	ResultImageURL string
	ErrorMessage   string
	// Raw is the unwrapped status payload, passed through to callers.
	Raw map[string]any
}

// TaskStatus queries record-info for the given task. The fields of interest
// may be wrapped in a "data" object or appear at the top level; both shapes
// are accepted, preferring the nested one.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (Status, error) {
	if c == nil {
		return Status{}, errors.New("nanobanana client not configured")
	}
	endpoint := c.baseURL + "/record-info?taskId=" + url.QueryEscape(taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Status{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("query task status: %w", err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Status{}, fmt.Errorf("decode task status: %w", err)
	}
	data := payload
	if nested, ok := payload["data"].(map[string]any); ok {
		data = nested
	}

	st := Status{Raw: data}
	if f, ok := data["successFlag"].(float64); ok {
		st.SuccessFlag = int(f)
	}
	if s, ok := data["resultImageUrl"].(string); ok {
		st.ResultImageURL = s
	}
	if s, ok := data["errorMessage"].(string); ok {
		st.ErrorMessage = s
	}
	return st, nil
}

// WaitOptions bound the polling loop of WaitForCompletion.
type WaitOptions struct {
	// MaxWait defaults to 5 minutes.
	MaxWait time.Duration
	// PollInterval is a fixed delay between status queries, default 3s.
	PollInterval time.Duration
}

// WaitForCompletion polls the task until a terminal state or the deadline.
// It returns the terminal-success status payload, a *JobFailedError when the
// remote service rejects the task, a *TimeoutError when MaxWait elapses, or
// ctx.Err() on cancellation.
func (c *Client) WaitForCompletion(ctx context.Context, taskID string, opts WaitOptions) (Status, error) {
	maxWait := opts.MaxWait
	if maxWait <= 0 {
		maxWait = 5 * time.Minute
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		st, err := c.TaskStatus(ctx, taskID)
		if err != nil {
			return Status{}, err
		}
		switch st.SuccessFlag {
		case flagGenerating:
			c.logger.Debug().Str("task_id", taskID).Msg("task still generating")
		case flagSucceeded:
			return st, nil
		case flagFailed, flagRejected:
			msg := st.ErrorMessage
			if msg == "" {
				msg = fmt.Sprintf("generation failed (unknown error), full status: %v", st.Raw)
			}
			return Status{}, &JobFailedError{TaskID: taskID, Message: msg}
		}

		select {
		case <-ctx.Done():
			return Status{}, ctx.Err()
		case <-time.After(interval):
		}
	}
	return Status{}, &TimeoutError{TaskID: taskID, Wait: maxWait}
}
