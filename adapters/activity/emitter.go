package resumeactivity

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-resume/resume"
	"github.com/goliatone/go-resume/resume/notify"
	"github.com/goliatone/go-users/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Config configures the activity emitter adapter.
type Config struct {
	Sink       types.ActivitySink
	Channel    string
	ObjectType string
	// ActorID attributes records to a user. Empty or invalid IDs log as nil.
	ActorID string
	Now     func() time.Time
}

// Emitter records export outcomes as go-users activity entries.
type Emitter struct {
	sink       types.ActivitySink
	channel    string
	objectType string
	actor      uuid.UUID
	now        func() time.Time
}

var _ notify.ExportNotifier = (*Emitter)(nil)

// NewEmitter creates a new activity emitter.
func NewEmitter(cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = "resume"
	}
	objectType := strings.TrimSpace(cfg.ObjectType)
	if objectType == "" {
		objectType = "resume_export"
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Emitter{
		sink:       cfg.Sink,
		channel:    channel,
		objectType: objectType,
		actor:      parseUUID(cfg.ActorID),
		now:        now,
	}
}

// Send logs the export event to the configured ActivitySink.
func (e *Emitter) Send(ctx context.Context, evt notify.ExportEvent) error {
	if e == nil {
		return resume.NewError(resume.KindInternal, "activity emitter is nil", nil)
	}
	if e.sink == nil {
		return resume.NewError(resume.KindNotImpl, "activity sink not configured", nil)
	}
	objectID := strings.TrimSpace(evt.ExportID)
	if objectID == "" {
		return resume.NewError(resume.KindValidation, "activity object ID is required", nil)
	}

	record, err := activity.BuildRecordFromUUID(
		e.actor,
		verbFor(evt.Outcome),
		e.objectType,
		objectID,
		buildMetadata(evt),
		activity.WithChannel(e.channel),
		activity.WithOccurredAt(e.now()),
	)
	if err != nil {
		return err
	}
	return e.sink.Log(ctx, record)
}

func verbFor(outcome notify.Outcome) string {
	if outcome == notify.OutcomeFailure {
		return "resume.export.failed"
	}
	return "resume.export.completed"
}

func buildMetadata(evt notify.ExportEvent) map[string]any {
	meta := make(map[string]any, 5)
	if evt.Filename != "" {
		meta["filename"] = evt.Filename
	}
	if evt.ContentType != "" {
		meta["content_type"] = evt.ContentType
	}
	if evt.Pages > 0 {
		meta["pages"] = evt.Pages
	}
	if evt.Bytes > 0 {
		meta["bytes"] = evt.Bytes
	}
	if evt.Message != "" {
		meta["message"] = evt.Message
	}
	return meta
}

func parseUUID(value string) uuid.UUID {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
