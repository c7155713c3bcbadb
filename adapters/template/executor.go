package resumetemplate

import (
	"embed"
	"errors"
	"io"
	"io/fs"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// TemplateExecutor executes a named template with data.
type TemplateExecutor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// Pongo2Executor adapts a pongo2 template set to TemplateExecutor. Data is
// exposed to templates as "view".
type Pongo2Executor struct {
	Set *pongo2.TemplateSet
}

var _ TemplateExecutor = (*Pongo2Executor)(nil)

// NewPongo2Executor creates an executor that loads templates from fsys.
func NewPongo2Executor(fsys fs.FS) *Pongo2Executor {
	return &Pongo2Executor{Set: pongo2.NewSet("resume", pongo2.NewFSLoader(fsys))}
}

// DefaultExecutor loads the embedded resume templates.
func DefaultExecutor() (*Pongo2Executor, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, err
	}
	return NewPongo2Executor(sub), nil
}

// ExecuteTemplate renders a named template into the provided writer.
func (e *Pongo2Executor) ExecuteTemplate(w io.Writer, name string, data any) error {
	if e == nil || e.Set == nil {
		return errors.New("pongo2 executor requires a template set")
	}
	tpl, err := e.Set.FromCache(name)
	if err != nil {
		return err
	}
	ctx, ok := data.(pongo2.Context)
	if !ok {
		ctx = pongo2.Context{"view": data}
	}
	return tpl.ExecuteWriter(ctx, w)
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
