package resume

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWriterDeliverer(t *testing.T) {
	var buf bytes.Buffer
	doc := Document{Filename: DefaultFilename, Data: []byte("%PDF-1.4")}
	if err := (WriterDeliverer{W: &buf}).Deliver(context.Background(), doc); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if buf.String() != "%PDF-1.4" {
		t.Fatalf("unexpected bytes %q", buf.String())
	}
	if err := (WriterDeliverer{}).Deliver(context.Background(), doc); !IsKind(err, KindInternal) {
		t.Fatalf("expected internal error for nil writer, got %v", err)
	}
}

func TestMultiDelivererStopsAtFirstError(t *testing.T) {
	first := NewMemoryDownloads()
	third := NewMemoryDownloads()
	boom := errors.New("bucket unavailable")
	multi := MultiDeliverer{
		first,
		nil,
		DelivererFunc(func(context.Context, Document) error { return boom }),
		third,
	}

	err := multi.Deliver(context.Background(), Document{Filename: DefaultFilename})
	if !errors.Is(err, boom) {
		t.Fatalf("expected delivery error, got %v", err)
	}
	if len(first.Documents()) != 1 || len(third.Documents()) != 0 {
		t.Fatalf("expected delivery to stop after failure")
	}
}

func TestAttachmentDisposition(t *testing.T) {
	if got := AttachmentDisposition(""); !strings.Contains(got, `filename=resume.pdf`) {
		t.Fatalf("unexpected disposition %q", got)
	}
	if got := AttachmentDisposition("my resume.pdf"); got != `attachment; filename="my resume.pdf"` {
		t.Fatalf("unexpected quoted disposition %q", got)
	}
}
