package gonotifications

import (
	"context"
	"testing"

	"github.com/goliatone/go-notifications/pkg/onready"
	"github.com/goliatone/go-resume/resume"
	"github.com/goliatone/go-resume/resume/notify"
)

type captureNotifier struct {
	events []onready.OnReadyEvent
}

func (c *captureNotifier) Send(ctx context.Context, evt onready.OnReadyEvent) error {
	_ = ctx
	c.events = append(c.events, evt)
	return nil
}

func TestNotifier_SendMapsFields(t *testing.T) {
	capture := &captureNotifier{}
	notifier := NewNotifier(capture)
	notifier.Recipients = []string{"user@example.com"}
	notifier.Locale = "en"
	notifier.URL = "https://cv.example.com/downloads/resume.pdf"

	err := notifier.Send(context.Background(), notify.ExportEvent{
		ExportID: "exp-1",
		Outcome:  notify.OutcomeSuccess,
		Filename: "resume.pdf",
		Pages:    2,
		Bytes:    2048,
		Message:  "Resume downloaded",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(capture.events) != 1 {
		t.Fatalf("expected one event, got %d", len(capture.events))
	}
	evt := capture.events[0]
	if evt.FileName != "resume.pdf" || evt.Format != "pdf" {
		t.Fatalf("unexpected file fields %s %s", evt.FileName, evt.Format)
	}
	if evt.Rows != 2 || evt.Parts != 1 {
		t.Fatalf("expected page count in rows, got %d/%d", evt.Rows, evt.Parts)
	}
	if len(evt.Channels) != 1 || evt.Channels[0] != "email" {
		t.Fatalf("expected default email channel, got %v", evt.Channels)
	}
	if evt.ChannelOverrides["email"]["export_id"] != "exp-1" {
		t.Fatalf("expected export id override, got %v", evt.ChannelOverrides)
	}
}

func TestNotifier_SkipsFailuresAndMissingRecipients(t *testing.T) {
	capture := &captureNotifier{}
	notifier := NewNotifier(capture)

	if err := notifier.Send(context.Background(), notify.ExportEvent{Outcome: notify.OutcomeSuccess}); err != nil {
		t.Fatalf("send: %v", err)
	}
	notifier.Recipients = []string{"user@example.com"}
	if err := notifier.Send(context.Background(), notify.ExportEvent{Outcome: notify.OutcomeFailure}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(capture.events) != 0 {
		t.Fatalf("expected no events, got %d", len(capture.events))
	}

	notifier.IncludeFailures = true
	if err := notifier.Send(context.Background(), notify.ExportEvent{Outcome: notify.OutcomeFailure, Message: "failed"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(capture.events) != 1 || capture.events[0].Message != "failed" {
		t.Fatalf("expected failure event, got %+v", capture.events)
	}
}

func TestNotifier_NotConfigured(t *testing.T) {
	var notifier *Notifier
	err := notifier.Send(context.Background(), notify.ExportEvent{})
	if !resume.IsKind(err, resume.KindNotImpl) {
		t.Fatalf("expected not implemented, got %v", err)
	}
}
