package resumepdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/goliatone/go-resume/resume"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultMaxPDFBytes guards in-memory PDF assembly.
const DefaultMaxPDFBytes int64 = 64 * 1024 * 1024

var disableConfigDir sync.Once

// AssemblerFunc adapts a function to a resume.Assembler.
type AssemblerFunc func(ctx context.Context, req resume.AssemblyRequest) ([]byte, error)

func (f AssemblerFunc) Assemble(ctx context.Context, req resume.AssemblyRequest) ([]byte, error) {
	if f == nil {
		return nil, errors.New("pdf assembler func is nil")
	}
	return f(ctx, req)
}

// Assembler places encoded rasters on A4 pages with fpdf and checks the
// result with pdfcpu.
type Assembler struct {
	Creator  string
	Producer string
	// Now stamps the document dates. A fixed clock yields identical bytes for
	// identical input.
	Now      func() time.Time
	MaxBytes int64
	// SkipValidation disables the pdfcpu page count check.
	SkipValidation bool
}

// NewAssembler creates an assembler with default metadata.
func NewAssembler() *Assembler {
	return &Assembler{
		Creator:  "go-resume",
		Producer: "go-resume",
		Now:      time.Now,
		MaxBytes: DefaultMaxPDFBytes,
	}
}

// Assemble builds the PDF described by req.
func (a *Assembler) Assemble(ctx context.Context, req resume.AssemblyRequest) ([]byte, error) {
	if a == nil {
		return nil, resume.NewError(resume.KindInternal, "pdf assembler is nil", nil)
	}
	layout := req.Layout
	if layout.Pages() == 0 {
		return nil, resume.NewError(resume.KindValidation, "layout has no pages", nil)
	}
	if len(req.Images) == 0 {
		return nil, resume.NewError(resume.KindValidation, "no images to place", nil)
	}
	if layout.Mode == resume.PlacementCrop && len(req.Images) != layout.Pages() {
		return nil, resume.NewError(resume.KindValidation,
			fmt.Sprintf("crop layout needs %d images, got %d", layout.Pages(), len(req.Images)), nil)
	}

	geo := layout.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: geo.Width, Ht: geo.Height},
	})
	pdf.SetCompression(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(geo.Margin, 0, geo.Margin)
	pdf.SetCatalogSort(true)
	if req.Title != "" {
		pdf.SetTitle(req.Title, true)
	}
	if a.Creator != "" {
		pdf.SetCreator(a.Creator, true)
	}
	if a.Producer != "" {
		pdf.SetProducer(a.Producer, true)
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	stamp := now()
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)

	for _, img := range req.Images {
		pdf.RegisterImageOptionsReader(img.Name, fpdf.ImageOptions{ImageType: imageType(img)}, bytes.NewReader(img.Data))
	}

	for _, p := range layout.Placements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img := req.Images[0]
		if layout.Mode == resume.PlacementCrop {
			img = req.Images[p.Page]
		}
		pdf.AddPage()
		pdf.ImageOptions(img.Name, p.X, p.Y, p.W, p.H, false, fpdf.ImageOptions{ImageType: imageType(img)}, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, resume.NewError(resume.KindEncoding, "pdf assembly failed", err)
	}

	out := newLimitedBuffer(a.MaxBytes)
	if err := pdf.Output(out); err != nil {
		return nil, resume.NewError(resume.KindEncoding, "pdf output failed", err)
	}
	data := out.Bytes()

	if !a.SkipValidation {
		pages, err := PageCount(data)
		if err != nil {
			return nil, resume.NewError(resume.KindEncoding, "pdf validation failed", err)
		}
		if pages != layout.Pages() {
			return nil, resume.NewError(resume.KindEncoding,
				fmt.Sprintf("pdf has %d pages, expected %d", pages, layout.Pages()), nil)
		}
	}
	return data, nil
}

// PageCount reads the page count of a PDF with relaxed validation.
func PageCount(data []byte) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}

func imageType(img resume.EncodedImage) string {
	if img.Type != "" {
		return img.Type
	}
	return "JPG"
}

type limitedBuffer struct {
	buf     bytes.Buffer
	maxSize int64
}

func newLimitedBuffer(maxSize int64) *limitedBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxPDFBytes
	}
	return &limitedBuffer{maxSize: maxSize}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.maxSize > 0 && int64(b.buf.Len()+len(p)) > b.maxSize {
		return 0, resume.NewError(resume.KindEncoding, "pdf exceeds max bytes", nil)
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}
