package notify

import "context"

// Outcome reports how an export finished.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ExportNotifier signals export outcomes to the user.
type ExportNotifier interface {
	Send(ctx context.Context, evt ExportEvent) error
}

// ExportEvent describes a finished export.
type ExportEvent struct {
	ExportID    string
	Outcome     Outcome
	Filename    string
	ContentType string
	Pages       int
	Bytes       int64
	Message     string
	Recipients  []string
	Channels    []string
	Attachments []Attachment
}

// Attachment carries the exported file for channels that can send it.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
	Size        int64
}

// NotifierFunc adapts a function to an ExportNotifier.
type NotifierFunc func(ctx context.Context, evt ExportEvent) error

func (f NotifierFunc) Send(ctx context.Context, evt ExportEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, evt)
}

// Multi fans an event out to every notifier and returns the first error.
type Multi []ExportNotifier

func (m Multi) Send(ctx context.Context, evt ExportEvent) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, evt); err != nil && first == nil {
			first = err
		}
	}
	return first
}
