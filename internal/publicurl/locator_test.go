package publicurl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/JacobItopa/plan-elevation/internal/storage"
)

func testStoredFile(t *testing.T) *storage.StoredFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.png")
	if err := os.WriteFile(path, []byte("plan-bytes"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return &storage.StoredFile{Name: "plan.png", Path: path, Original: "plan.png"}
}

func TestResolvePublicOriginSkipsFallback(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()

	locator := NewLocator(Options{UploadURL: ts.URL, Logger: zerolog.Nop()})
	got, err := locator.Resolve(context.Background(), testStoredFile(t), "https://plans.example.com")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got != "https://plans.example.com/uploads/plan.png" {
		t.Fatalf("unexpected url: %s", got)
	}
	if calls != 0 {
		t.Fatalf("public host should not be called for a public origin, got %d calls", calls)
	}
}

func TestResolveLoopbackUploadsToPublicHost(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		f.Close()
		w.Write([]byte("https://pub.example/abc\n"))
	}))
	defer ts.Close()

	locator := NewLocator(Options{UploadURL: ts.URL, Logger: zerolog.Nop()})
	for _, origin := range []string{"http://localhost:8000", "http://127.0.0.1:8000"} {
		got, err := locator.Resolve(context.Background(), testStoredFile(t), origin)
		if err != nil {
			t.Fatalf("Resolve(%s) error: %v", origin, err)
		}
		if got != "https://pub.example/abc" {
			t.Fatalf("Resolve(%s): expected trimmed public url, got %q", origin, got)
		}
	}
}

func TestResolveDegradesWhenFallbackFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no thanks", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	locator := NewLocator(Options{UploadURL: ts.URL, Logger: zerolog.Nop()})
	got, err := locator.Resolve(context.Background(), testStoredFile(t), "http://localhost:8000")
	if err != nil {
		t.Fatalf("Resolve should degrade, got error: %v", err)
	}
	if got != "http://localhost:8000/uploads/plan.png" {
		t.Fatalf("expected degraded loopback url, got %q", got)
	}
}

func TestResolveStrictFailsWhenFallbackFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no thanks", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	locator := NewLocator(Options{UploadURL: ts.URL, Strict: true, Logger: zerolog.Nop()})
	_, err := locator.Resolve(context.Background(), testStoredFile(t), "http://localhost:8000")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected *ResolutionError, got %v", err)
	}
}

func TestResolveRejectsMissingFile(t *testing.T) {
	locator := NewLocator(Options{Logger: zerolog.Nop()})
	if _, err := locator.Resolve(context.Background(), nil, "https://plans.example.com"); err == nil {
		t.Fatalf("expected error for nil stored file")
	}
}

func TestIsLoopbackURL(t *testing.T) {
	cases := map[string]bool{
		"http://localhost:8000/uploads/a.png":     true,
		"http://127.0.0.1/uploads/a.png":          true,
		"https://plans.example.com/uploads/a.png": false,
		"https://localhost.example.com/a.png":     false,
		"http://192.168.1.10/uploads/a.png":       false,
	}
	for raw, want := range cases {
		if got := isLoopbackURL(raw); got != want {
			t.Fatalf("isLoopbackURL(%q) = %v, want %v", raw, got, want)
		}
	}
}
