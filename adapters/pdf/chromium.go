package resumepdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"image"
	"image/png"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/goliatone/go-resume/resume"
)

const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 1024
	imagePollInterval     = 50 * time.Millisecond
	captureHostAttr       = "data-resume-capture"
)

// ChromiumViewer hosts rendered previews in tabs of a shared headless Chromium
// instance.
type ChromiumViewer struct {
	BrowserPath string
	Headless    bool
	// Timeout bounds document load in Open. Capture steps are bounded by the
	// caller's context only.
	Timeout time.Duration
	Args    []string
	BaseURL string
	// BlockExternalAssets rejects http(s) requests made by the document.
	BlockExternalAssets bool
	ViewportWidth       int64
	ViewportHeight      int64

	initOnce      sync.Once
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Open loads html into a new tab and returns the live surface.
func (v *ChromiumViewer) Open(ctx context.Context, htmlInput []byte) (resume.Surface, error) {
	if v == nil {
		return nil, resume.NewError(resume.KindInternal, "chromium viewer is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := v.ensureBrowser(); err != nil {
		return nil, resume.NewError(resume.KindInternal, "chromium viewer init failed", err)
	}

	tabCtx, cancel := chromedp.NewContext(v.browserCtx)
	// The first Run binds the tab to the context it is given; use tabCtx so
	// the tab survives per-call cancellation.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, resume.NewError(resume.KindCapture, "chromium tab start failed", err)
	}
	surface := &chromiumSurface{tabCtx: tabCtx, cancel: cancel}

	loadCtx := ctx
	if v.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		loadCtx, cancelTimeout = context.WithTimeout(ctx, v.Timeout)
		defer cancelTimeout()
	}

	width, height := v.viewport()
	actions := []chromedp.Action{}
	if v.BlockExternalAssets {
		actions = append(actions,
			network.Enable(),
			network.SetBlockedURLs([]string{"http://*", "https://*"}),
		)
	}
	content := injectBaseURL(htmlInput, v.BaseURL)
	actions = append(actions,
		chromedp.EmulateViewport(width, height),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(content)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)

	if err := surface.run(loadCtx, actions...); err != nil {
		cancel()
		return nil, resume.NewError(resume.KindCapture, "chromium document load failed", err)
	}
	return surface, nil
}

// Close releases Chromium resources if they have been initialized.
func (v *ChromiumViewer) Close() error {
	if v == nil {
		return nil
	}
	if v.browserCancel != nil {
		v.browserCancel()
	}
	if v.allocCancel != nil {
		v.allocCancel()
	}
	return nil
}

func (v *ChromiumViewer) ensureBrowser() error {
	v.initOnce.Do(func() {
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if v.BrowserPath != "" {
			options = append(options, chromedp.ExecPath(v.BrowserPath))
		}
		options = append(options, chromedp.Flag("headless", v.Headless))
		options = append(options, allocatorOptionsFromArgs(v.Args)...)

		v.allocCtx, v.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		v.browserCtx, v.browserCancel = chromedp.NewContext(v.allocCtx)
	})
	if v.allocCtx == nil || v.browserCtx == nil {
		return errors.New("chromium allocator unavailable")
	}
	return nil
}

func (v *ChromiumViewer) viewport() (int64, int64) {
	width, height := v.ViewportWidth, v.ViewportHeight
	if width <= 0 {
		width = defaultViewportWidth
	}
	if height <= 0 {
		height = defaultViewportHeight
	}
	return width, height
}

type chromiumSurface struct {
	tabCtx context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// run executes actions in the tab, aborting them when ctx is done. The tab
// itself outlives ctx until Close.
func (s *chromiumSurface) run(ctx context.Context, actions ...chromedp.Action) error {
	execCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(execCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *chromiumSurface) Locate(ctx context.Context, marker string) (resume.Node, error) {
	selector := "[" + marker + "]"
	var found bool
	script := fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
	if err := s.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return nil, err
	}
	if !found {
		return nil, resume.NewError(resume.KindNotFound, "resume preview not found", nil)
	}
	return &chromiumNode{surface: s, selector: selector, marker: marker}, nil
}

func (s *chromiumSurface) FontsReady(ctx context.Context) error {
	var ready bool
	return s.run(ctx, chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &ready, awaitPromise))
}

func (s *chromiumSurface) Close() error {
	s.once.Do(s.cancel)
	return nil
}

type chromiumNode struct {
	surface  *chromiumSurface
	selector string
	marker   string
}

func (n *chromiumNode) element() string {
	return fmt.Sprintf(`document.querySelector(%s)`, jsString(n.selector))
}

func (n *chromiumNode) Style(ctx context.Context, props ...string) (resume.Style, error) {
	if props == nil {
		props = []string{}
	}
	script := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) { throw new Error("resume preview detached"); }
		const out = {};
		for (const prop of %s) { out[prop] = el.style.getPropertyValue(prop); }
		return out;
	})()`, n.element(), jsValue(props))

	out := resume.Style{}
	if err := n.surface.run(ctx, chromedp.Evaluate(script, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

func (n *chromiumNode) SetStyle(ctx context.Context, style resume.Style) error {
	if len(style) == 0 {
		return nil
	}
	script := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) { throw new Error("resume preview detached"); }
		for (const [prop, value] of Object.entries(%s)) {
			if (value === "") { el.style.removeProperty(prop); } else { el.style.setProperty(prop, value); }
		}
		return true;
	})()`, n.element(), jsValue(style))

	var ok bool
	return n.surface.run(ctx, chromedp.Evaluate(script, &ok))
}

func (n *chromiumNode) ImageCount(ctx context.Context) (int, error) {
	script := fmt.Sprintf(`(() => { const el = %s; return el ? el.querySelectorAll("img").length : 0; })()`, n.element())
	var count int
	if err := n.surface.run(ctx, chromedp.Evaluate(script, &count)); err != nil {
		return 0, err
	}
	return count, nil
}

// AwaitImage polls until the image is complete. Broken images report complete
// as well, so a failed load never stalls the export.
func (n *chromiumNode) AwaitImage(ctx context.Context, index int) error {
	script := fmt.Sprintf(`(() => {
		const el = %s;
		const img = el ? el.querySelectorAll("img")[%d] : null;
		return !img || img.complete;
	})()`, n.element(), index)

	var done bool
	return n.surface.run(ctx, chromedp.Poll(script, &done,
		chromedp.WithPollingInterval(imagePollInterval),
		chromedp.WithPollingTimeout(0),
	))
}

type captureRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type stageOptions struct {
	Marker        string            `json:"marker"`
	HostAttr      string            `json:"hostAttr"`
	Width         int               `json:"width"`
	MinHeight     int               `json:"minHeight"`
	Background    string            `json:"background"`
	Root          map[string]string `json:"root"`
	StripAncestor []string          `json:"stripAncestor"`
	Eager         bool              `json:"eager"`
	CrossOrigin   string            `json:"crossOrigin"`
	AvoidBreaks   string            `json:"avoidBreaks"`
}

// Rasterize stages a normalized clone of the node at the end of the body,
// screenshots it, and removes it. The live node is left as it was; a failed
// cleanup fails the capture.
func (n *chromiumNode) Rasterize(ctx context.Context, opts resume.RasterOptions) (img image.Image, err error) {
	if opts.Width <= 0 {
		return nil, resume.NewError(resume.KindValidation, "raster width is required", nil)
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	stage := stageOptions{
		Marker:        n.marker,
		HostAttr:      captureHostAttr,
		Width:         opts.Width,
		MinHeight:     opts.MinHeight,
		Background:    opts.Background,
		Root:          opts.Clone.Root,
		StripAncestor: opts.Clone.StripAncestor,
		Eager:         opts.Clone.Eager,
		CrossOrigin:   opts.Clone.CrossOrigin,
		AvoidBreaks:   strings.Join(opts.Clone.AvoidBreaks, ", "),
	}
	if stage.Background == "" {
		stage.Background = "#ffffff"
	}

	var rect *captureRect
	stageScript := fmt.Sprintf(stageCloneJS, n.element(), jsValue(stage))
	if err := n.surface.run(ctx, chromedp.Evaluate(stageScript, &rect)); err != nil {
		return nil, err
	}
	defer func() {
		cleanup := fmt.Sprintf(removeCloneJS, jsString("["+captureHostAttr+"]"))
		var removed bool
		cleanupErr := n.surface.run(context.WithoutCancel(ctx), chromedp.Evaluate(cleanup, &removed))
		if cleanupErr == nil && !removed {
			cleanupErr = errors.New("capture clone still attached")
		}
		if cleanupErr != nil {
			img = nil
			err = captureCleanupError(err, cleanupErr)
		}
	}()
	if rect == nil {
		return nil, resume.NewError(resume.KindNotFound, "resume preview not found", nil)
	}

	var shot []byte
	waitClone := fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).every((img) => img.complete)`,
		jsString("["+captureHostAttr+"] img"))
	var ready bool
	err = n.surface.run(ctx,
		chromedp.Poll(waitClone, &ready,
			chromedp.WithPollingInterval(imagePollInterval),
			chromedp.WithPollingTimeout(0),
		),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			shot, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				WithFromSurface(true).
				WithClip(&page.Viewport{
					X:      rect.X,
					Y:      rect.Y,
					Width:  rect.Width,
					Height: rect.Height,
					Scale:  scale,
				}).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	img, err = png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, resume.NewError(resume.KindCapture, "decode screenshot", err)
	}
	return img, nil
}

// captureCleanupError folds a clone removal failure into the capture result.
func captureCleanupError(captureErr, cleanupErr error) error {
	cleanup := resume.NewError(resume.KindCapture, "remove capture clone", cleanupErr)
	if captureErr == nil {
		return cleanup
	}
	return errors.Join(captureErr, cleanup)
}

const stageCloneJS = `(() => {
	const src = %s;
	if (!src) { return null; }
	const opts = %s;
	document.querySelectorAll("[" + opts.hostAttr + "]").forEach((el) => el.remove());

	const host = document.createElement("div");
	host.setAttribute(opts.hostAttr, "");
	host.style.cssText = "position:absolute;left:0;top:0;margin:0;padding:0;z-index:2147483647;";
	host.style.width = opts.width + "px";
	host.style.background = opts.background;

	const clone = src.cloneNode(true);
	clone.removeAttribute(opts.marker);
	for (const [prop, value] of Object.entries(opts.root || {})) { clone.style.setProperty(prop, value); }
	clone.querySelectorAll("img").forEach((img) => {
		if (opts.crossOrigin) { img.setAttribute("crossorigin", opts.crossOrigin); }
		if (opts.eager) { img.loading = "eager"; }
	});
	if (opts.avoidBreaks) {
		clone.querySelectorAll(opts.avoidBreaks).forEach((el) => {
			el.style.breakInside = "avoid";
			el.style.pageBreakInside = "avoid";
			el.style.boxSizing = "border-box";
		});
	}
	host.appendChild(clone);
	document.body.appendChild(host);

	const saved = [];
	for (let el = host; el; el = el.parentElement) {
		for (const prop of opts.stripAncestor || []) {
			saved.push([el, prop, el.style.getPropertyValue(prop)]);
			el.style.setProperty(prop, "none");
		}
	}
	window.__resumeCaptureRestore = () => {
		for (const [el, prop, value] of saved) {
			if (value === "") { el.style.removeProperty(prop); } else { el.style.setProperty(prop, value); }
		}
	};

	const box = clone.getBoundingClientRect();
	return {
		x: box.left + window.scrollX,
		y: box.top + window.scrollY,
		width: opts.width,
		height: Math.max(opts.minHeight, Math.ceil(box.height)),
	};
})()`

const removeCloneJS = `(() => {
	if (window.__resumeCaptureRestore) {
		window.__resumeCaptureRestore();
		delete window.__resumeCaptureRestore;
	}
	const sel = %s;
	document.querySelectorAll(sel).forEach((el) => el.remove());
	return document.querySelectorAll(sel).length === 0 && !window.__resumeCaptureRestore;
})()`

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func jsString(value string) string {
	encoded, _ := json.Marshal(value)
	return string(encoded)
}

func jsValue(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "null"
	}
	return string(encoded)
}

func injectBaseURL(htmlInput []byte, baseURL string) []byte {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return htmlInput
	}

	lower := strings.ToLower(string(htmlInput))
	if strings.Contains(lower, "<base") {
		return htmlInput
	}

	baseTag := fmt.Sprintf(`<base href="%s">`, html.EscapeString(baseURL))
	if headIdx := strings.Index(lower, "<head"); headIdx >= 0 {
		if end := strings.Index(lower[headIdx:], ">"); end >= 0 {
			insertPos := headIdx + end + 1
			return append(append([]byte{}, htmlInput[:insertPos]...), append([]byte(baseTag), htmlInput[insertPos:]...)...)
		}
	}

	return append([]byte(baseTag), htmlInput...)
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		arg = strings.TrimPrefix(arg, "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}
