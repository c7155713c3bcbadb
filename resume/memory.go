package resume

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryKV stores slots in memory (test/dev only).
type MemoryKV struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryKV creates an in-memory slot store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{slots: make(map[string][]byte)}
}

// Get returns a copy of the slot value.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx
	m.mu.RLock()
	value, ok := m.slots[key]
	m.mu.RUnlock()
	if !ok {
		return nil, NewError(KindNotFound, fmt.Sprintf("slot %q not found", key), nil)
	}
	return append([]byte(nil), value...), nil
}

// Set overwrites the slot value.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte) error {
	_ = ctx
	if key == "" {
		return NewError(KindValidation, "slot key is required", nil)
	}
	m.mu.Lock()
	m.slots[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

// Delete removes the slot.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	_ = ctx
	m.mu.Lock()
	delete(m.slots, key)
	m.mu.Unlock()
	return nil
}

// MemoryDownloads keeps delivered documents in memory (test/dev only).
type MemoryDownloads struct {
	mu        sync.RWMutex
	documents []Document
}

// NewMemoryDownloads creates an in-memory deliverer.
func NewMemoryDownloads() *MemoryDownloads {
	return &MemoryDownloads{}
}

// Deliver stores the document.
func (m *MemoryDownloads) Deliver(ctx context.Context, doc Document) error {
	_ = ctx
	doc.Data = append([]byte(nil), doc.Data...)
	m.mu.Lock()
	m.documents = append(m.documents, doc)
	m.mu.Unlock()
	return nil
}

// Documents returns the delivered documents in delivery order.
func (m *MemoryDownloads) Documents() []Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Document(nil), m.documents...)
}

// Last returns the most recent document.
func (m *MemoryDownloads) Last() (Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.documents) == 0 {
		return Document{}, false
	}
	return m.documents[len(m.documents)-1], true
}

// MemoryTracker stores export history in memory (test/dev only).
type MemoryTracker struct {
	Now func() time.Time

	mu      sync.RWMutex
	records map[string]ExportRecord
	counter uint64
}

// NewMemoryTracker creates an in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{records: make(map[string]ExportRecord)}
}

// Start creates a new record.
func (t *MemoryTracker) Start(ctx context.Context, record ExportRecord) (string, error) {
	_ = ctx
	if record.ID == "" {
		record.ID = t.nextID()
	}
	if record.State == "" {
		record.State = StateRunning
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = t.now()
	}

	t.mu.Lock()
	t.records[record.ID] = record
	t.mu.Unlock()
	return record.ID, nil
}

// Complete marks the export as completed.
func (t *MemoryTracker) Complete(ctx context.Context, id string, doc Document) error {
	_ = ctx
	t.mu.Lock()
	defer t.mu.Unlock()
	record, ok := t.records[id]
	if !ok {
		return NewError(KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	record.State = StateCompleted
	record.Filename = doc.Filename
	record.Pages = doc.Pages()
	record.Bytes = int64(len(doc.Data))
	record.CompletedAt = t.now()
	t.records[id] = record
	return nil
}

// Fail records failure state.
func (t *MemoryTracker) Fail(ctx context.Context, id string, err error) error {
	_ = ctx
	t.mu.Lock()
	defer t.mu.Unlock()
	record, ok := t.records[id]
	if !ok {
		return NewError(KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	record.State = StateFailed
	if err != nil {
		record.Error = err.Error()
	}
	record.CompletedAt = t.now()
	t.records[id] = record
	return nil
}

// Status returns a record by ID.
func (t *MemoryTracker) Status(ctx context.Context, id string) (ExportRecord, error) {
	_ = ctx
	t.mu.RLock()
	record, ok := t.records[id]
	t.mu.RUnlock()
	if !ok {
		return ExportRecord{}, NewError(KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	return record, nil
}

// List returns records matching a filter, newest first.
func (t *MemoryTracker) List(ctx context.Context, filter ExportFilter) ([]ExportRecord, error) {
	_ = ctx
	result := []ExportRecord{}

	t.mu.RLock()
	for _, record := range t.records {
		if filter.State != "" && record.State != filter.State {
			continue
		}
		if !filter.Since.IsZero() && record.CreatedAt.Before(filter.Since) {
			continue
		}
		result = append(result, record)
	}
	t.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (t *MemoryTracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *MemoryTracker) nextID() string {
	id := atomic.AddUint64(&t.counter, 1)
	return fmt.Sprintf("exp-%d", id)
}
