package resumejob

import (
	"context"
	"strings"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-resume/resume"
	"github.com/google/uuid"
)

// Enqueuer delivers execution messages to go-job.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg *job.ExecutionMessage) error
}

// EnqueuerFunc adapts a function to an Enqueuer.
type EnqueuerFunc func(ctx context.Context, msg *job.ExecutionMessage) error

func (f EnqueuerFunc) Enqueue(ctx context.Context, msg *job.ExecutionMessage) error {
	if f == nil {
		return resume.NewError(resume.KindInternal, "enqueuer is nil", nil)
	}
	return f(ctx, msg)
}

// MessageBuilderConfig configures execution message building.
type MessageBuilderConfig struct {
	TaskID      string
	TaskPath    string
	Config      job.Config
	IDGenerator func() string
}

// MessageBuilder builds execution messages for resume jobs.
type MessageBuilder struct {
	taskID      string
	taskPath    string
	config      job.Config
	idGenerator func() string
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(cfg MessageBuilderConfig) *MessageBuilder {
	taskID := cfg.TaskID
	if taskID == "" {
		taskID = DefaultTaskID
	}
	taskPath := cfg.TaskPath
	if taskPath == "" {
		taskPath = DefaultTaskPath
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return &MessageBuilder{
		taskID:      taskID,
		taskPath:    taskPath,
		config:      cfg.Config,
		idGenerator: idGen,
	}
}

// Build validates payload, assigns a run ID when missing, and wraps it in an
// execution message.
func (b *MessageBuilder) Build(payload Payload) (*job.ExecutionMessage, Payload, error) {
	if b == nil {
		return nil, payload, resume.NewError(resume.KindInternal, "message builder is nil", nil)
	}
	payload.Action = strings.TrimSpace(payload.Action)
	if payload.Action == "" {
		return nil, payload, resume.NewError(resume.KindValidation, "job action is required", nil)
	}
	if payload.RunID == "" {
		payload.RunID = b.idGenerator()
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return nil, payload, err
	}
	msg := &job.ExecutionMessage{
		JobID:          b.taskID,
		ScriptPath:     b.taskPath,
		Config:         b.config,
		Parameters:     map[string]any{"payload": encoded},
		IdempotencyKey: payload.RunID,
		DedupPolicy:    job.DedupPolicyMerge,
	}
	return msg, payload, nil
}

// SchedulerConfig configures the Scheduler.
type SchedulerConfig struct {
	Builder  *MessageBuilder
	Enqueuer Enqueuer
	Logger   resume.Logger
}

// Scheduler enqueues resume jobs.
type Scheduler struct {
	builder  *MessageBuilder
	enqueuer Enqueuer
	logger   resume.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	builder := cfg.Builder
	if builder == nil {
		builder = NewMessageBuilder(MessageBuilderConfig{})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = resume.NopLogger{}
	}
	return &Scheduler{builder: builder, enqueuer: cfg.Enqueuer, logger: logger}
}

// Request builds and enqueues a job. It returns the payload with its run ID.
func (s *Scheduler) Request(ctx context.Context, payload Payload) (Payload, error) {
	if s == nil {
		return payload, resume.NewError(resume.KindInternal, "scheduler is nil", nil)
	}
	if s.enqueuer == nil {
		return payload, resume.NewError(resume.KindNotImpl, "job enqueuer not configured", nil)
	}
	msg, payload, err := s.builder.Build(payload)
	if err != nil {
		return payload, err
	}
	if err := s.enqueuer.Enqueue(ctx, msg); err != nil {
		return payload, err
	}
	s.logger.Infof("job %s enqueued (%s)", payload.RunID, payload.Action)
	return payload, nil
}
