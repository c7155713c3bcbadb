package storebun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-resume/resume"
	"github.com/uptrace/bun"
)

// Store keeps persistence slots in a Bun-backed table.
type Store struct {
	DB  *bun.DB
	Now func() time.Time
}

var _ resume.KeyValueStore = (*Store)(nil)

// NewStore creates a Bun-backed slot store.
func NewStore(db *bun.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

// CreateSchema creates the slot table if it does not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return resume.NewError(resume.KindNotImpl, "slot database not configured", nil)
	}
	_, err := s.DB.NewCreateTable().Model((*slotModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Get reads a slot.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.check(key); err != nil {
		return nil, err
	}
	model := new(slotModel)
	err := s.DB.NewSelect().Model(model).Where("slot = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resume.NewError(resume.KindNotFound, fmt.Sprintf("slot %q not found", key), nil)
		}
		return nil, resume.NewError(resume.KindPersistence, fmt.Sprintf("read slot %q", key), err)
	}
	return model.Value, nil
}

// Set overwrites a slot.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.check(key); err != nil {
		return err
	}
	model := &slotModel{Slot: key, Value: value, UpdatedAt: s.now()}
	_, err := s.DB.NewInsert().Model(model).
		On("CONFLICT (slot) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return resume.NewError(resume.KindPersistence, fmt.Sprintf("write slot %q", key), err)
	}
	return nil
}

// Delete removes a slot. Missing slots are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.check(key); err != nil {
		return err
	}
	if _, err := s.DB.NewDelete().Model((*slotModel)(nil)).Where("slot = ?", key).Exec(ctx); err != nil {
		return resume.NewError(resume.KindPersistence, fmt.Sprintf("delete slot %q", key), err)
	}
	return nil
}

func (s *Store) check(key string) error {
	if s == nil || s.DB == nil {
		return resume.NewError(resume.KindNotImpl, "slot database not configured", nil)
	}
	if key == "" {
		return resume.NewError(resume.KindValidation, "slot key is required", nil)
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type slotModel struct {
	bun.BaseModel `bun:"table:resume_slots,alias:resume_slots"`

	Slot      string    `bun:",pk"`
	Value     []byte    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at"`
}
