package trackerbun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-resume/resume"
	"github.com/uptrace/bun"
)

// Tracker stores export history in a Bun-backed database.
type Tracker struct {
	DB          *bun.DB
	Now         func() time.Time
	IDGenerator func() string
}

var _ resume.Tracker = (*Tracker)(nil)

// NewTracker creates a Bun-backed tracker.
func NewTracker(db *bun.DB) *Tracker {
	return &Tracker{DB: db, Now: time.Now, IDGenerator: defaultIDGenerator()}
}

// CreateSchema creates the export table if it does not exist.
func (t *Tracker) CreateSchema(ctx context.Context) error {
	if t == nil || t.DB == nil {
		return resume.NewError(resume.KindNotImpl, "tracker database not configured", nil)
	}
	_, err := t.DB.NewCreateTable().Model((*recordModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Start creates a new export record.
func (t *Tracker) Start(ctx context.Context, record resume.ExportRecord) (string, error) {
	if t == nil || t.DB == nil {
		return "", resume.NewError(resume.KindNotImpl, "tracker database not configured", nil)
	}
	if record.ID == "" {
		record.ID = t.nextID()
	}
	if record.State == "" {
		record.State = resume.StateRunning
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = t.now()
	}

	model := modelFromRecord(record)
	if _, err := t.DB.NewInsert().Model(&model).Exec(ctx); err != nil {
		return "", err
	}
	return record.ID, nil
}

// Complete marks the export as completed and records the document size.
func (t *Tracker) Complete(ctx context.Context, id string, doc resume.Document) error {
	if t == nil || t.DB == nil {
		return resume.NewError(resume.KindNotImpl, "tracker database not configured", nil)
	}
	if id == "" {
		return resume.NewError(resume.KindValidation, "export ID is required", nil)
	}

	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("state = ?", resume.StateCompleted).
		Set("pages = ?", doc.Pages()).
		Set("bytes = ?", int64(len(doc.Data))).
		Set("completed_at = COALESCE(completed_at, ?)", t.now()).
		Where("id = ?", id)
	if doc.Filename != "" {
		query = query.Set("filename = ?", doc.Filename)
	}
	return t.exec(ctx, id, query)
}

// Fail marks the export as failed.
func (t *Tracker) Fail(ctx context.Context, id string, cause error) error {
	if t == nil || t.DB == nil {
		return resume.NewError(resume.KindNotImpl, "tracker database not configured", nil)
	}
	if id == "" {
		return resume.NewError(resume.KindValidation, "export ID is required", nil)
	}

	message := ""
	if cause != nil {
		message = cause.Error()
	}
	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("state = ?", resume.StateFailed).
		Set("error = ?", message).
		Set("completed_at = COALESCE(completed_at, ?)", t.now()).
		Where("id = ?", id)
	return t.exec(ctx, id, query)
}

// Status returns a record by ID.
func (t *Tracker) Status(ctx context.Context, id string) (resume.ExportRecord, error) {
	if t == nil || t.DB == nil {
		return resume.ExportRecord{}, resume.NewError(resume.KindNotImpl, "tracker database not configured", nil)
	}
	if id == "" {
		return resume.ExportRecord{}, resume.NewError(resume.KindValidation, "export ID is required", nil)
	}

	model := new(recordModel)
	err := t.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return resume.ExportRecord{}, resume.NewError(resume.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
		}
		return resume.ExportRecord{}, err
	}
	return model.toRecord(), nil
}

// List returns records matching a filter, newest first.
func (t *Tracker) List(ctx context.Context, filter resume.ExportFilter) ([]resume.ExportRecord, error) {
	if t == nil || t.DB == nil {
		return nil, resume.NewError(resume.KindNotImpl, "tracker database not configured", nil)
	}

	models := make([]recordModel, 0)
	query := t.DB.NewSelect().Model(&models)
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	query = query.Order("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	records := make([]resume.ExportRecord, 0, len(models))
	for _, model := range models {
		records = append(records, model.toRecord())
	}
	return records, nil
}

// Delete removes a record from the tracker.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if t == nil || t.DB == nil {
		return resume.NewError(resume.KindNotImpl, "tracker database not configured", nil)
	}
	if id == "" {
		return resume.NewError(resume.KindValidation, "export ID is required", nil)
	}

	res, err := t.DB.NewDelete().Model((*recordModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return resume.NewError(resume.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	return nil
}

func (t *Tracker) exec(ctx context.Context, id string, query *bun.UpdateQuery) error {
	res, err := query.Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return resume.NewError(resume.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	return nil
}

type recordModel struct {
	bun.BaseModel `bun:"table:resume_exports,alias:resume_exports"`

	ID          string    `bun:",pk"`
	State       string    `bun:",notnull"`
	Filename    string    `bun:"filename"`
	Template    string    `bun:"template"`
	Font        string    `bun:"font"`
	Pages       int       `bun:"pages"`
	Bytes       int64     `bun:"bytes"`
	Error       string    `bun:"error"`
	CreatedAt   time.Time `bun:"created_at"`
	CompletedAt time.Time `bun:"completed_at,nullzero"`
}

func modelFromRecord(record resume.ExportRecord) recordModel {
	return recordModel{
		ID:          record.ID,
		State:       string(record.State),
		Filename:    record.Filename,
		Template:    string(record.Template),
		Font:        string(record.Font),
		Pages:       record.Pages,
		Bytes:       record.Bytes,
		Error:       record.Error,
		CreatedAt:   record.CreatedAt,
		CompletedAt: record.CompletedAt,
	}
}

func (m recordModel) toRecord() resume.ExportRecord {
	return resume.ExportRecord{
		ID:          m.ID,
		State:       resume.ExportState(m.State),
		Filename:    m.Filename,
		Template:    resume.Template(m.Template),
		Font:        resume.Font(m.Font),
		Pages:       m.Pages,
		Bytes:       m.Bytes,
		Error:       m.Error,
		CreatedAt:   m.CreatedAt,
		CompletedAt: m.CompletedAt,
	}
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Tracker) nextID() string {
	if t.IDGenerator != nil {
		return t.IDGenerator()
	}
	return defaultIDGenerator()()
}

func defaultIDGenerator() func() string {
	var counter uint64
	return func() string {
		id := atomic.AddUint64(&counter, 1)
		return fmt.Sprintf("exp-%d", id)
	}
}
