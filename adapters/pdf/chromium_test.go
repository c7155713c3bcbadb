package resumepdf

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-resume/resume"
)

func chromeBinaryPath(t *testing.T) string {
	t.Helper()

	chromePath := os.Getenv("CHROME_BIN")
	if chromePath == "" {
		paths := []string{"google-chrome", "chromium", "chromium-browser"}
		for _, candidate := range paths {
			if path, err := exec.LookPath(candidate); err == nil {
				chromePath = path
				break
			}
		}
	}
	if chromePath == "" {
		t.Skip("chromium binary not found; set CHROME_BIN to run this test")
	}

	return chromePath
}

func newTestViewer(t *testing.T) *ChromiumViewer {
	t.Helper()
	viewer := &ChromiumViewer{
		BrowserPath: chromeBinaryPath(t),
		Headless:    true,
		Timeout:     10 * time.Second,
		Args:        []string{"--no-sandbox", "--disable-dev-shm-usage"},
	}
	t.Cleanup(func() {
		_ = viewer.Close()
	})
	return viewer
}

func TestInjectBaseURL(t *testing.T) {
	input := []byte("<html><head><title>Test</title></head><body>ok</body></html>")
	out := injectBaseURL(input, "https://assets.local/")
	if !bytes.Contains(out, []byte(`<head><base href="https://assets.local/">`)) {
		t.Fatalf("expected base tag after head, got %s", out)
	}

	withBase := []byte(`<html><head><base href="/x/"></head></html>`)
	if out := injectBaseURL(withBase, "https://assets.local/"); !bytes.Equal(out, withBase) {
		t.Fatalf("expected existing base to be kept")
	}
	if out := injectBaseURL(input, " "); !bytes.Equal(out, input) {
		t.Fatalf("expected input unchanged without base url")
	}
}

func TestAllocatorOptionsFromArgs(t *testing.T) {
	opts := allocatorOptionsFromArgs([]string{"--no-sandbox", "", "--", "window-size=800,600"})
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}
}

func TestJSEncoding(t *testing.T) {
	if got := jsString(`a"b`); got != `"a\"b"` {
		t.Fatalf("unexpected js string %s", got)
	}
	if got := jsValue([]string{"transform"}); got != `["transform"]` {
		t.Fatalf("unexpected js value %s", got)
	}
	if got := jsValue(func() {}); got != "null" {
		t.Fatalf("expected null for unencodable value, got %s", got)
	}
}

func TestCaptureCleanupError(t *testing.T) {
	cause := errors.New("target closed")
	err := captureCleanupError(nil, cause)
	if !resume.IsKind(err, resume.KindCapture) || !errors.Is(err, cause) {
		t.Fatalf("expected capture error wrapping cleanup cause, got %v", err)
	}

	missing := resume.NewError(resume.KindNotFound, "resume preview not found", nil)
	err = captureCleanupError(missing, cause)
	if !resume.IsKind(err, resume.KindNotFound) {
		t.Fatalf("expected original kind to win, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cleanup cause to be kept")
	}
}

func TestChromiumViewerNil(t *testing.T) {
	var viewer *ChromiumViewer
	if _, err := viewer.Open(context.Background(), nil); !resume.IsKind(err, resume.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

const previewHTML = `<html><head><style>body{margin:0}</style></head><body>
<div style="transform: scale(0.5)">
<div data-resume-preview style="transform: scale(0.75); width: 600px; background: #fff">
<h1>Ada Lovelace</h1><p>Analyst</p>
</div></div></body></html>`

func TestChromiumViewer_Locate_Smoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chromium smoke test in short mode")
	}
	viewer := newTestViewer(t)

	surface, err := viewer.Open(context.Background(), []byte(previewHTML))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer surface.Close()

	if _, err := surface.Locate(context.Background(), "data-missing"); !resume.IsKind(err, resume.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}

	node, err := surface.Locate(context.Background(), resume.PreviewMarker)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if err := surface.FontsReady(context.Background()); err != nil {
		t.Fatalf("fonts: %v", err)
	}
	style, err := node.Style(context.Background(), "transform", "width")
	if err != nil {
		t.Fatalf("style: %v", err)
	}
	if style["transform"] != "scale(0.75)" || style["width"] != "600px" {
		t.Fatalf("unexpected inline style %+v", style)
	}
}

func TestChromiumPipeline_Export_Smoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chromium export test in short mode")
	}
	viewer := newTestViewer(t)

	surface, err := viewer.Open(context.Background(), []byte(previewHTML))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer surface.Close()

	pipeline := resume.NewPipeline(NewAssembler())
	pipeline.Raster.Scale = 1
	doc, err := pipeline.Export(context.Background(), surface)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(doc.Data, []byte("%PDF")) {
		t.Fatalf("expected pdf output")
	}
	if doc.CanvasWidth != 794 || doc.CanvasHeight < 1123 {
		t.Fatalf("unexpected canvas %dx%d", doc.CanvasWidth, doc.CanvasHeight)
	}

	node, err := surface.Locate(context.Background(), resume.PreviewMarker)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	style, err := node.Style(context.Background(), "transform")
	if err != nil {
		t.Fatalf("style: %v", err)
	}
	if style["transform"] != "scale(0.75)" {
		t.Fatalf("expected transform restored, got %q", style["transform"])
	}
}

func TestChromiumViewer_BlocksExternalAssets(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chromium external asset test in short mode")
	}

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	viewer := newTestViewer(t)
	viewer.BlockExternalAssets = true

	html := []byte("<html><body><div data-resume-preview><img src=\"" + server.URL + "/asset.png\"></div></body></html>")
	surface, err := viewer.Open(context.Background(), html)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer surface.Close()

	node, err := surface.Locate(context.Background(), resume.PreviewMarker)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := node.AwaitImage(ctx, 0); err != nil {
		t.Fatalf("await blocked image: %v", err)
	}

	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected external assets to be blocked, got %d request(s)", hits)
	}
}
