package resume

import (
	"context"
	"encoding/json"
)

const (
	// AutoSaveKey is the slot holding the plain JSON mirror of the data graph.
	AutoSaveKey = "resume-builder-data"
	// PersistKey is the slot holding the versioned store envelope.
	PersistKey = "resume-builder-store"
	// PersistVersion is the envelope version written by Persister.
	PersistVersion = 0
)

type envelope struct {
	State   Data `json:"state"`
	Version int  `json:"version"`
}

// AutoSaver mirrors every store change into the AutoSaveKey slot.
type AutoSaver struct {
	KV     KeyValueStore
	Logger Logger
}

// NewAutoSaver creates an auto saver writing to kv.
func NewAutoSaver(kv KeyValueStore, logger Logger) *AutoSaver {
	return &AutoSaver{KV: kv, Logger: logger}
}

// OnChange writes data to the mirror slot. Write failures are logged only.
func (a *AutoSaver) OnChange(ctx context.Context, data Data) {
	if a == nil {
		return
	}
	if err := a.Save(ctx, data); err != nil {
		loggerOrNop(a.Logger).Errorf("auto-save failed: %v", err)
	}
}

// Save writes data to the mirror slot.
func (a *AutoSaver) Save(ctx context.Context, data Data) error {
	if a.KV == nil {
		return NewError(KindPersistence, "auto-save store not configured", nil)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return NewError(KindPersistence, "auto-save encode failed", err)
	}
	if err := a.KV.Set(ctx, AutoSaveKey, payload); err != nil {
		return NewError(KindPersistence, "auto-save write failed", err)
	}
	return nil
}

// Persister writes the versioned envelope into the PersistKey slot.
type Persister struct {
	KV     KeyValueStore
	Logger Logger
}

// NewPersister creates a persister writing to kv.
func NewPersister(kv KeyValueStore, logger Logger) *Persister {
	return &Persister{KV: kv, Logger: logger}
}

// OnChange writes the envelope. Write failures are logged only.
func (p *Persister) OnChange(ctx context.Context, data Data) {
	if p == nil {
		return
	}
	if err := p.Save(ctx, data); err != nil {
		loggerOrNop(p.Logger).Errorf("persist failed: %v", err)
	}
}

// Save writes the envelope for data.
func (p *Persister) Save(ctx context.Context, data Data) error {
	if p.KV == nil {
		return NewError(KindPersistence, "persist store not configured", nil)
	}
	payload, err := json.Marshal(envelope{State: data, Version: PersistVersion})
	if err != nil {
		return NewError(KindPersistence, "persist encode failed", err)
	}
	if err := p.KV.Set(ctx, PersistKey, payload); err != nil {
		return NewError(KindPersistence, "persist write failed", err)
	}
	return nil
}

// LoadAutoSave reads the mirror slot. Missing or unreadable data reports false.
func LoadAutoSave(ctx context.Context, kv KeyValueStore) (Data, bool) {
	if kv == nil {
		return Data{}, false
	}
	payload, err := kv.Get(ctx, AutoSaveKey)
	if err != nil || len(payload) == 0 {
		return Data{}, false
	}
	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return Data{}, false
	}
	return data, true
}

// LoadPersisted reads the envelope slot. Missing, unreadable, or newer
// envelopes report false.
func LoadPersisted(ctx context.Context, kv KeyValueStore) (Data, bool) {
	if kv == nil {
		return Data{}, false
	}
	payload, err := kv.Get(ctx, PersistKey)
	if err != nil || len(payload) == 0 {
		return Data{}, false
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Data{}, false
	}
	if env.Version > PersistVersion {
		return Data{}, false
	}
	return env.State, true
}

// HydrateSource names the slot the store was hydrated from.
type HydrateSource string

const (
	HydrateFromStore    HydrateSource = "store"
	HydrateFromAutoSave HydrateSource = "autosave"
	HydrateFromDefaults HydrateSource = "defaults"
)

// Hydrate loads the store from the envelope slot, then the mirror slot. When
// neither holds valid data the store keeps its defaults.
func Hydrate(ctx context.Context, store *Store, kv KeyValueStore) (HydrateSource, error) {
	if store == nil {
		return "", NewError(KindInternal, "store is required", nil)
	}
	if data, ok := LoadPersisted(ctx, kv); ok {
		if err := store.Replace(ctx, data); err == nil {
			return HydrateFromStore, nil
		}
	}
	if data, ok := LoadAutoSave(ctx, kv); ok {
		if err := store.Replace(ctx, data); err == nil {
			return HydrateFromAutoSave, nil
		}
	}
	return HydrateFromDefaults, nil
}

func loggerOrNop(logger Logger) Logger {
	if logger == nil {
		return NopLogger{}
	}
	return logger
}
