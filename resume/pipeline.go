package resume

import (
	"context"
	"image"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// PreviewMarker is the attribute carried by the live preview node.
	PreviewMarker = "data-resume-preview"
	// DefaultFilename is the name of the delivered document.
	DefaultFilename = "resume.pdf"
	// DefaultSettleDelay lets layout settle after the style override.
	DefaultSettleDelay = 500 * time.Millisecond
)

// Pipeline turns a live preview surface into a paginated PDF document.
type Pipeline struct {
	Marker      string
	SettleDelay time.Duration
	Raster      RasterOptions
	Geometry    PageGeometry
	Placement   PlacementMode
	JPEGQuality int
	Filename    string
	Title       string
	Assembler   Assembler
	Logger      Logger
	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPipeline creates a pipeline with the A4 defaults.
func NewPipeline(assembler Assembler) *Pipeline {
	return &Pipeline{
		Marker:      PreviewMarker,
		SettleDelay: DefaultSettleDelay,
		Raster:      DefaultRasterOptions(),
		Geometry:    A4,
		Placement:   PlacementShift,
		JPEGQuality: DefaultJPEGQuality,
		Filename:    DefaultFilename,
		Assembler:   assembler,
		Logger:      NopLogger{},
		Sleep:       sleepContext,
	}
}

// Export captures the marked node of surface and assembles the PDF. The live
// node's inline styles are restored on every exit path. Nothing is written
// anywhere: delivery is left to the caller.
func (p *Pipeline) Export(ctx context.Context, surface Surface) (doc Document, err error) {
	if p == nil {
		return Document{}, NewError(KindInternal, "pipeline is nil", nil)
	}
	if surface == nil {
		return Document{}, NewError(KindInternal, "surface is required", nil)
	}
	if p.Assembler == nil {
		return Document{}, NewError(KindNotImpl, "pdf assembler not configured", nil)
	}
	logger := loggerOrNop(p.Logger)

	node, err := p.locate(ctx, surface)
	if err != nil {
		return Document{}, err
	}

	scope, err := p.prepare(ctx, surface, node)
	if err != nil {
		return Document{}, captureError(err)
	}
	defer func() {
		if restoreErr := scope.Restore(ctx); restoreErr != nil {
			logger.Errorf("restore preview styles: %v", restoreErr)
			if err == nil {
				doc = Document{}
				err = captureError(restoreErr)
			}
		}
	}()

	if err := p.settle(ctx); err != nil {
		return Document{}, captureError(err)
	}
	if err := p.awaitImages(ctx, node); err != nil {
		return Document{}, captureError(err)
	}

	raster, err := node.Rasterize(ctx, p.Raster)
	if err != nil {
		return Document{}, captureError(err)
	}
	if err := scope.Restore(ctx); err != nil {
		return Document{}, captureError(err)
	}

	return p.assemble(ctx, raster)
}

func (p *Pipeline) locate(ctx context.Context, surface Surface) (Node, error) {
	marker := p.Marker
	if marker == "" {
		marker = PreviewMarker
	}
	node, err := surface.Locate(ctx, marker)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return nil, err
		}
		return nil, captureError(err)
	}
	if node == nil {
		return nil, NewError(KindNotFound, "resume preview not found", nil)
	}
	return node, nil
}

// prepare waits for fonts, then applies the export style to the live node.
func (p *Pipeline) prepare(ctx context.Context, surface Surface, node Node) (*styleScope, error) {
	if err := surface.FontsReady(ctx); err != nil {
		return nil, err
	}
	return applyStyleScope(ctx, node, ExportStyle())
}

func (p *Pipeline) settle(ctx context.Context) error {
	if p.SettleDelay <= 0 {
		return ctx.Err()
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, p.SettleDelay)
}

// awaitImages waits for every image under node to finish loading or fail.
// There is no overall deadline besides ctx.
func (p *Pipeline) awaitImages(ctx context.Context, node Node) error {
	count, err := node.ImageCount(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	group, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		group.Go(func() error {
			return node.AwaitImage(gctx, i)
		})
	}
	return group.Wait()
}

// assemble paginates the raster, encodes it, and builds the PDF.
func (p *Pipeline) assemble(ctx context.Context, raster image.Image) (Document, error) {
	if raster == nil {
		return Document{}, captureError(NewError(KindCapture, "rasterization returned no image", nil))
	}
	bounds := raster.Bounds()
	geometry := p.Geometry
	if geometry == (PageGeometry{}) {
		geometry = A4
	}
	layout, err := Paginate(bounds.Dx(), bounds.Dy(), geometry, p.Placement)
	if err != nil {
		return Document{}, captureError(err)
	}

	images, err := encodeForLayout(raster, layout, p.JPEGQuality)
	if err != nil {
		return Document{}, encodingError(err)
	}

	data, err := p.Assembler.Assemble(ctx, AssemblyRequest{
		Layout: layout,
		Images: images,
		Title:  p.Title,
	})
	if err != nil {
		return Document{}, encodingError(err)
	}

	filename := p.Filename
	if filename == "" {
		filename = DefaultFilename
	}
	loggerOrNop(p.Logger).Debugf("assembled %s: %d page(s), %dx%d raster", filename, layout.Pages(), bounds.Dx(), bounds.Dy())

	return Document{
		Filename:     filename,
		ContentType:  "application/pdf",
		Data:         data,
		Layout:       layout,
		CanvasWidth:  bounds.Dx(),
		CanvasHeight: bounds.Dy(),
		ImageDigest:  Digest(images[0].Data),
	}, nil
}

func captureError(err error) error {
	return NewError(KindCapture, MsgExportFailed, err)
}

func encodingError(err error) error {
	return NewError(KindEncoding, MsgExportFailed, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
