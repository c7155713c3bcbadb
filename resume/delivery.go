package resume

import (
	"context"
	"fmt"
	"io"
	"mime"
)

// Deliverer hands a finished document to the user.
type Deliverer interface {
	Deliver(ctx context.Context, doc Document) error
}

// DelivererFunc adapts a function to a Deliverer.
type DelivererFunc func(ctx context.Context, doc Document) error

func (f DelivererFunc) Deliver(ctx context.Context, doc Document) error {
	if f == nil {
		return NewError(KindInternal, "deliverer func is nil", nil)
	}
	return f(ctx, doc)
}

// WriterDeliverer streams the document bytes to W.
type WriterDeliverer struct {
	W io.Writer
}

// Deliver writes the document to the underlying writer.
func (d WriterDeliverer) Deliver(ctx context.Context, doc Document) error {
	if d.W == nil {
		return NewError(KindInternal, "delivery writer is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := d.W.Write(doc.Data)
	if err != nil {
		return NewError(KindInternal, "delivery write failed", err)
	}
	if n != len(doc.Data) {
		return NewError(KindInternal, fmt.Sprintf("short delivery write: %d of %d bytes", n, len(doc.Data)), io.ErrShortWrite)
	}
	return nil
}

// AttachmentDisposition returns the Content-Disposition header value that
// makes a browser download filename.
func AttachmentDisposition(filename string) string {
	if filename == "" {
		filename = DefaultFilename
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

// MultiDeliverer hands the document to every deliverer in order and stops at
// the first error.
type MultiDeliverer []Deliverer

func (m MultiDeliverer) Deliver(ctx context.Context, doc Document) error {
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Deliver(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
