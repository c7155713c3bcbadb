package resumejob

import (
	"context"
	"sync"

	"github.com/goliatone/go-resume/resume"
)

// CancelRegistry tracks running jobs for cancellation.
type CancelRegistry struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewCancelRegistry creates a new registry for job cancellation.
func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{cancels: make(map[string]context.CancelFunc)}
}

// Register associates a cancel func with a run ID.
func (r *CancelRegistry) Register(runID string, cancel context.CancelFunc) func() {
	if r == nil || runID == "" || cancel == nil {
		return func() {}
	}
	r.mu.Lock()
	r.cancels[runID] = cancel
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.cancels, runID)
		r.mu.Unlock()
	}
}

// Cancel triggers context cancellation for a running job.
func (r *CancelRegistry) Cancel(ctx context.Context, runID string) error {
	_ = ctx
	if r == nil {
		return resume.NewError(resume.KindInternal, "cancel registry is nil", nil)
	}
	if runID == "" {
		return resume.NewError(resume.KindValidation, "run ID is required", nil)
	}

	r.mu.Lock()
	cancel, ok := r.cancels[runID]
	r.mu.Unlock()
	if !ok {
		return resume.NewError(resume.KindNotFound, "job not running", nil)
	}
	cancel()
	return nil
}

// Running reports whether runID is registered.
func (r *CancelRegistry) Running(runID string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cancels[runID]
	return ok
}
