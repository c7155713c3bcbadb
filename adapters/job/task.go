package resumejob

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net"
	"sync"
	"time"

	errorslib "github.com/goliatone/go-errors"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-resume/resume"
)

const (
	DefaultTaskID   = "resume:ops"
	DefaultTaskPath = "resume:ops"
)

const (
	ActionExportPDF = "export_pdf"
	ActionBackup    = "backup"
)

var (
	backoffRand   = rand.New(rand.NewSource(time.Now().UnixNano()))
	backoffRandMu sync.Mutex
)

// Payload captures the job execution input.
type Payload struct {
	RunID  string `json:"run_id"`
	Action string `json:"action"`
	From   string `json:"from,omitempty"`
	Out    string `json:"out,omitempty"`
}

// Runner performs a resume operation and returns the written path.
type Runner interface {
	Run(ctx context.Context, from, out string) (string, error)
}

// RunnerFunc adapts a function to a Runner.
type RunnerFunc func(ctx context.Context, from, out string) (string, error)

func (f RunnerFunc) Run(ctx context.Context, from, out string) (string, error) {
	if f == nil {
		return "", resume.NewError(resume.KindInternal, "runner is nil", nil)
	}
	return f(ctx, from, out)
}

// MessageBuilderFunc builds an execution message for non-queue paths.
type MessageBuilderFunc func(ctx context.Context) (*job.ExecutionMessage, error)

// TaskConfig configures the resume ops task.
type TaskConfig struct {
	ID             string
	Path           string
	Config         job.Config
	HandlerOptions job.HandlerOptions
	RetryPolicy    RetryPolicy
	CancelRegistry *CancelRegistry
	// Runners maps payload actions to operations.
	Runners        map[string]Runner
	Logger         resume.Logger
	MessageBuilder MessageBuilderFunc
	// OnComplete observes every finished run.
	OnComplete func(payload Payload, path string, err error)
}

// Task executes resume operations as go-job tasks.
type Task struct {
	id             string
	path           string
	config         job.Config
	handlerOptions job.HandlerOptions
	retryPolicy    RetryPolicy
	cancelRegistry *CancelRegistry
	runners        map[string]Runner
	logger         resume.Logger
	messageBuilder MessageBuilderFunc
	onComplete     func(Payload, string, error)
}

// NewTask creates a new resume ops task.
func NewTask(cfg TaskConfig) *Task {
	logger := cfg.Logger
	if logger == nil {
		logger = resume.NopLogger{}
	}
	id := cfg.ID
	if id == "" {
		id = DefaultTaskID
	}
	path := cfg.Path
	if path == "" {
		path = DefaultTaskPath
	}
	runners := make(map[string]Runner, len(cfg.Runners))
	for action, runner := range cfg.Runners {
		if runner != nil {
			runners[action] = runner
		}
	}

	return &Task{
		id:             id,
		path:           path,
		config:         cfg.Config,
		handlerOptions: cfg.HandlerOptions,
		retryPolicy:    cfg.RetryPolicy,
		cancelRegistry: cfg.CancelRegistry,
		runners:        runners,
		logger:         logger,
		messageBuilder: cfg.MessageBuilder,
		onComplete:     cfg.OnComplete,
	}
}

// GetID returns the task identifier.
func (t *Task) GetID() string { return t.id }

// GetHandler returns a handler for non-queue execution paths.
func (t *Task) GetHandler() func() error {
	return func() error {
		if t == nil {
			return resume.NewError(resume.KindInternal, "task is nil", nil)
		}
		if t.messageBuilder == nil {
			return resume.NewError(resume.KindNotImpl, "job message builder not configured", nil)
		}

		ctx := context.Background()
		msg, err := t.messageBuilder(ctx)
		if err != nil {
			return err
		}
		if msg == nil {
			return resume.NewError(resume.KindValidation, "execution message is required", nil)
		}
		return t.Execute(ctx, msg)
	}
}

// GetHandlerConfig returns scheduler options for the task.
func (t *Task) GetHandlerConfig() job.HandlerOptions { return t.handlerOptions }

// GetConfig returns task config defaults.
func (t *Task) GetConfig() job.Config { return t.config }

// GetPath returns the task path.
func (t *Task) GetPath() string { return t.path }

// GetEngine returns nil because this task is code-driven.
func (t *Task) GetEngine() job.Engine { return nil }

// Execute runs the operation named by the message payload, retrying per the
// task's RetryPolicy.
func (t *Task) Execute(ctx context.Context, msg *job.ExecutionMessage) error {
	if t == nil {
		return resume.NewError(resume.KindInternal, "task is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}
	runner, ok := t.runners[payload.Action]
	if !ok {
		return resume.NewError(resume.KindValidation, "unknown job action: "+payload.Action, nil)
	}

	execCtx := ctx
	if t.cancelRegistry != nil {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithCancel(ctx)
		defer cancel()
		release := t.cancelRegistry.Register(payload.RunID, cancel)
		defer release()
	}

	path, err := t.runWithRetry(execCtx, runner, payload)
	if err != nil {
		t.logger.Errorf("job %s (%s) failed: %v", payload.RunID, payload.Action, err)
	} else {
		t.logger.Infof("job %s (%s) wrote %s", payload.RunID, payload.Action, path)
	}
	if t.onComplete != nil {
		t.onComplete(payload, path, err)
	}
	return err
}

func (t *Task) runWithRetry(ctx context.Context, runner Runner, payload Payload) (string, error) {
	policy := t.retryPolicy
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		path, err := runner.Run(ctx, payload.From, payload.Out)
		if err == nil {
			return path, nil
		}
		if !policy.shouldRetry(err) || attempt >= policy.MaxRetries {
			return "", err
		}

		attempt++
		t.logger.Debugf("job %s retry %d after: %v", payload.RunID, attempt, err)
		if serr := sleepWithContext(ctx, policy.backoffDelay(attempt)); serr != nil {
			return "", serr
		}
	}
}

func encodePayload(payload Payload) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, resume.NewError(resume.KindValidation, "payload is not serializable", err)
	}
	return json.RawMessage(raw), nil
}

func decodePayload(msg *job.ExecutionMessage) (Payload, error) {
	if msg == nil || msg.Parameters == nil {
		return Payload{}, resume.NewError(resume.KindValidation, "job payload is required", nil)
	}

	raw, ok := msg.Parameters["payload"]
	if !ok {
		return Payload{}, resume.NewError(resume.KindValidation, "job payload missing", nil)
	}

	switch value := raw.(type) {
	case Payload:
		return value, nil
	case *Payload:
		if value == nil {
			return Payload{}, resume.NewError(resume.KindValidation, "job payload is nil", nil)
		}
		return *value, nil
	case json.RawMessage:
		return unmarshalPayload(value)
	case []byte:
		return unmarshalPayload(value)
	case string:
		return unmarshalPayload([]byte(value))
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return Payload{}, resume.NewError(resume.KindValidation, "job payload is invalid", err)
		}
		return unmarshalPayload(data)
	}
}

func unmarshalPayload(data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{}, resume.NewError(resume.KindValidation, "job payload is empty", nil)
	}
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Payload{}, resume.NewError(resume.KindValidation, "job payload is invalid", err)
	}
	return payload, nil
}

// RetryPolicy determines retry behavior for retryable errors.
type RetryPolicy struct {
	MaxRetries int
	Backoff    job.BackoffConfig
	Retryable  func(error) bool
}

func (p RetryPolicy) shouldRetry(err error) bool {
	if err == nil || p.MaxRetries <= 0 {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return defaultRetryable(err)
}

func (p RetryPolicy) backoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return computeBackoffDelay(attempt, p.Backoff)
}

func defaultRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errorslib.IsRetryableError(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	switch resume.KindFromError(err) {
	case resume.KindTimeout, resume.KindConflict:
		return true
	}
	return false
}

func computeBackoffDelay(attempt int, cfg job.BackoffConfig) time.Duration {
	if attempt <= 0 {
		return 0
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	maxInterval := cfg.MaxInterval
	if maxInterval <= 0 {
		maxInterval = 5 * time.Second
	}

	switch cfg.Strategy {
	case job.BackoffFixed:
		return applyJitter(interval, cfg.Jitter)
	case job.BackoffExponential:
		delay := interval
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay > maxInterval {
				delay = maxInterval
				break
			}
		}
		return applyJitter(delay, cfg.Jitter)
	default:
		return 0
	}
}

func applyJitter(delay time.Duration, jitter bool) time.Duration {
	if !jitter || delay <= 0 {
		return delay
	}
	// +/-50%
	half := float64(delay) * 0.5
	backoffRandMu.Lock()
	offset := (backoffRand.Float64()*2 - 1) * half
	backoffRandMu.Unlock()
	jittered := float64(delay) + offset
	if jittered < 0 {
		return 0
	}
	return time.Duration(jittered)
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
