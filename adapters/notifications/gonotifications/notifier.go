package gonotifications

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-notifications/pkg/onready"
	"github.com/goliatone/go-resume/resume"
	"github.com/goliatone/go-resume/resume/notify"
)

// Notifier adapts go-notifications OnReadyNotifier to resume export events.
type Notifier struct {
	delegate onready.OnReadyNotifier

	// Recipients and Channels apply when the event does not carry its own.
	Recipients []string
	Channels   []string
	Locale     string
	// URL is the download link included in ready notifications.
	URL string
	// IncludeFailures forwards failed exports as well. Only successful
	// exports are forwarded by default.
	IncludeFailures bool
}

var _ notify.ExportNotifier = (*Notifier)(nil)

// NewNotifier wraps a go-notifications notifier.
func NewNotifier(delegate onready.OnReadyNotifier) *Notifier {
	return &Notifier{delegate: delegate}
}

// Send forwards the event to the underlying go-notifications notifier.
func (n *Notifier) Send(ctx context.Context, evt notify.ExportEvent) error {
	if n == nil || n.delegate == nil {
		return resume.NewError(resume.KindNotImpl, "go-notifications notifier not configured", nil)
	}
	if evt.Outcome == notify.OutcomeFailure && !n.IncludeFailures {
		return nil
	}

	recipients := evt.Recipients
	if len(recipients) == 0 {
		recipients = n.Recipients
	}
	if len(recipients) == 0 {
		return nil
	}
	channels := evt.Channels
	if len(channels) == 0 {
		channels = n.Channels
	}
	if len(channels) == 0 {
		channels = []string{"email"}
	}

	payload := onready.OnReadyEvent{
		Recipients: recipients,
		Locale:     n.Locale,
		Channels:   channels,
		FileName:   evt.Filename,
		Format:     formatFromFilename(evt.Filename),
		URL:        n.URL,
		Rows:       evt.Pages,
		Parts:      1,
		Message:    evt.Message,
	}
	if evt.ExportID != "" || evt.Outcome != "" {
		payload.ChannelOverrides = map[string]map[string]any{}
		for _, channel := range channels {
			payload.ChannelOverrides[channel] = map[string]any{
				"export_id": evt.ExportID,
				"outcome":   string(evt.Outcome),
				"bytes":     evt.Bytes,
			}
		}
	}

	return n.delegate.Send(ctx, payload)
}

func formatFromFilename(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "pdf"
	}
	return ext
}
