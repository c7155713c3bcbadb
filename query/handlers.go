package query

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-resume/resume"
)

// Service is the read side of resume.Service.
type Service interface {
	ExportStatus(ctx context.Context, id string) (resume.ExportRecord, error)
	History(ctx context.Context, filter resume.ExportFilter) ([]resume.ExportRecord, error)
	Preview(ctx context.Context, opts resume.PreviewOptions) ([]byte, error)
	Store() *resume.Store
}

func serviceRequired() error {
	return errors.New("resume service is required", errors.CategoryInternal).
		WithTextCode("SERVICE_REQUIRED")
}

// ExportStatusHandler returns a single export record.
type ExportStatusHandler struct {
	Service Service
}

func NewExportStatusHandler(svc Service) *ExportStatusHandler {
	return &ExportStatusHandler{Service: svc}
}

func (h *ExportStatusHandler) Query(ctx context.Context, msg ExportStatus) (resume.ExportRecord, error) {
	if h == nil || h.Service == nil {
		return resume.ExportRecord{}, serviceRequired()
	}
	return h.Service.ExportStatus(ctx, msg.ExportID)
}

// ExportHistoryHandler returns export history.
type ExportHistoryHandler struct {
	Service Service
}

func NewExportHistoryHandler(svc Service) *ExportHistoryHandler {
	return &ExportHistoryHandler{Service: svc}
}

func (h *ExportHistoryHandler) Query(ctx context.Context, msg ExportHistory) ([]resume.ExportRecord, error) {
	if h == nil || h.Service == nil {
		return nil, serviceRequired()
	}
	return h.Service.History(ctx, msg.Filter)
}

// ResumeSnapshotHandler returns a copy of the current resume.
type ResumeSnapshotHandler struct {
	Service Service
}

func NewResumeSnapshotHandler(svc Service) *ResumeSnapshotHandler {
	return &ResumeSnapshotHandler{Service: svc}
}

func (h *ResumeSnapshotHandler) Query(ctx context.Context, msg ResumeSnapshot) (resume.Data, error) {
	if h == nil || h.Service == nil || h.Service.Store() == nil {
		return resume.Data{}, serviceRequired()
	}
	return h.Service.Store().Snapshot(), nil
}

// PreviewHandler renders the preview document.
type PreviewHandler struct {
	Service Service
}

func NewPreviewHandler(svc Service) *PreviewHandler {
	return &PreviewHandler{Service: svc}
}

func (h *PreviewHandler) Query(ctx context.Context, msg Preview) ([]byte, error) {
	if h == nil || h.Service == nil {
		return nil, serviceRequired()
	}
	return h.Service.Preview(ctx, msg.Options)
}
