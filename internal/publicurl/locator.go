// Package publicurl resolves uploaded assets to URLs the remote generation
// API can fetch. Locally served URLs are fine when the service runs behind a
// public hostname; when the derived URL points at a loopback address the
// asset is re-uploaded to an anonymous public file host instead.
package publicurl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/JacobItopa/plan-elevation/internal/storage"
)

// uploadsPathSegment is the route prefix under which stored uploads are served.
const uploadsPathSegment = "/uploads/"

// ResolutionError reports that the anonymous-host fallback was required but
// failed. It is only surfaced in strict mode; otherwise the locator degrades
// to the loopback URL and lets the remote call fail downstream.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve public asset url: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Options configure a Locator.
type Options struct {
	// UploadURL is the anonymous public file host endpoint.
	UploadURL string
	// Strict makes Resolve fail when the fallback upload errors instead of
	// returning the unreachable loopback URL.
	Strict     bool
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// Locator derives publicly fetchable references for stored uploads.
type Locator struct {
	uploadURL  string
	strict     bool
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewLocator constructs a Locator.
func NewLocator(opts Options) *Locator {
	uploadURL := strings.TrimSpace(opts.UploadURL)
	if uploadURL == "" {
		uploadURL = "https://0x0.st"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Locator{
		uploadURL:  uploadURL,
		strict:     opts.Strict,
		httpClient: client,
		logger:     opts.Logger,
	}
}

// Resolve produces a URL for the stored file that the remote API can fetch.
// requestOrigin is the externally visible base of this service, e.g.
// "http://localhost:8000" or "https://plans.example.com".
func (l *Locator) Resolve(ctx context.Context, file *storage.StoredFile, requestOrigin string) (string, error) {
	if l == nil {
		return "", errors.New("publicurl: locator not configured")
	}
	if file == nil || file.Name == "" {
		return "", errors.New("publicurl: stored file required")
	}
	candidate := strings.TrimRight(requestOrigin, "/") + uploadsPathSegment + file.Name
	if !isLoopbackURL(candidate) {
		return candidate, nil
	}

	l.logger.Warn().Str("url", candidate).Msg("loopback origin detected, uploading asset to public host")
	public, err := l.uploadPublic(ctx, file.Path)
	if err != nil {
		if l.strict {
			return "", &ResolutionError{Err: err}
		}
		l.logger.Warn().Err(err).Msg("public upload failed, falling back to local url")
		return candidate, nil
	}
	l.logger.Info().Str("url", public).Msg("temporary public url created")
	return public, nil
}

// uploadPublic POSTs the raw file bytes as a multipart "file" field and
// returns the trimmed plain-text response body.
func (l *Locator) uploadPublic(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read asset: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.uploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("public host returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	public := strings.TrimSpace(string(raw))
	if public == "" {
		return "", errors.New("public host returned empty body")
	}
	return public, nil
}

// isLoopbackURL matches only the two literal loopback forms the remote API
// can never reach. Other private hosts are deliberately not detected.
func isLoopbackURL(raw string) bool {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		host := u.Hostname()
		return host == "localhost" || host == "127.0.0.1"
	}
	return strings.Contains(raw, "localhost") || strings.Contains(raw, "127.0.0.1")
}
