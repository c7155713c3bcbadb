package resume

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// DataFormat selects a data export encoding.
type DataFormat string

const (
	FormatJSON DataFormat = "json"
	FormatXLSX DataFormat = "xlsx"
)

// DataRenderer writes a copy of the resume data graph.
type DataRenderer interface {
	Render(ctx context.Context, data Data, w io.Writer) (int64, error)
	ContentType() string
	Extension() string
}

// RendererFor returns the renderer for format.
func RendererFor(format DataFormat) (DataRenderer, error) {
	switch format {
	case FormatJSON, "":
		return JSONRenderer{Indent: "  "}, nil
	case FormatXLSX:
		return XLSXRenderer{}, nil
	default:
		return nil, NewError(KindValidation, fmt.Sprintf("unsupported data format %q", format), nil)
	}
}

// JSONRenderer renders the data graph as JSON.
type JSONRenderer struct {
	Indent string
}

// Render writes data as a single JSON document.
func (r JSONRenderer) Render(ctx context.Context, data Data, w io.Writer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cw := &countingWriter{w: w}
	encoder := json.NewEncoder(cw)
	if r.Indent != "" {
		encoder.SetIndent("", r.Indent)
	}
	if err := encoder.Encode(data); err != nil {
		return cw.count, NewError(KindEncoding, "json encode failed", err)
	}
	return cw.count, nil
}

func (JSONRenderer) ContentType() string { return "application/json" }
func (JSONRenderer) Extension() string   { return "json" }

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
