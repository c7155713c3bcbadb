package resume

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/goliatone/go-resume/resume/notify"
	"github.com/google/uuid"
)

// ServiceConfig supplies dependencies for Service.
type ServiceConfig struct {
	Store    *Store
	Renderer PreviewRenderer
	Viewer   Viewer
	Pipeline *Pipeline
	Tracker  Tracker
	Notifier notify.ExportNotifier
	Logger   Logger
	// PreviewScale is the on-screen display scale of the rendered preview.
	PreviewScale float64
	// AttachDocument includes the PDF in success notifications.
	AttachDocument bool
	IDGenerator    func() string
	// DataRenderers adds or overrides data export formats.
	DataRenderers map[DataFormat]DataRenderer
}

// Service coordinates the store, preview rendering, and the export pipeline.
type Service struct {
	store          *Store
	renderer       PreviewRenderer
	viewer         Viewer
	pipeline       *Pipeline
	tracker        Tracker
	notifier       notify.ExportNotifier
	logger         Logger
	previewScale   float64
	attachDocument bool
	idGenerator    func() string
	dataRenderers  map[DataFormat]DataRenderer

	exporting sync.Mutex
}

// DataExport describes a written data export.
type DataExport struct {
	Filename    string
	ContentType string
	Bytes       int64
}

// NewService creates a Service with the provided configuration.
func NewService(cfg ServiceConfig) *Service {
	store := cfg.Store
	if store == nil {
		store = NewStore()
	}
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = NewMemoryTracker()
	}
	logger := loggerOrNop(cfg.Logger)
	pipeline := cfg.Pipeline
	if pipeline != nil && pipeline.Logger == nil {
		pipeline.Logger = logger
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return &Service{
		store:          store,
		renderer:       cfg.Renderer,
		viewer:         cfg.Viewer,
		pipeline:       pipeline,
		tracker:        tracker,
		notifier:       cfg.Notifier,
		logger:         logger,
		previewScale:   cfg.PreviewScale,
		attachDocument: cfg.AttachDocument,
		idGenerator:    idGen,
		dataRenderers:  cfg.DataRenderers,
	}
}

// Store returns the underlying state store.
func (s *Service) Store() *Store {
	return s.store
}

// Preview renders the current state as an HTML document.
func (s *Service) Preview(ctx context.Context, opts PreviewOptions) ([]byte, error) {
	if s.renderer == nil {
		return nil, NewError(KindNotImpl, "preview renderer not configured", nil)
	}
	return s.renderer.Render(ctx, s.store.Snapshot(), opts)
}

// ExportPDF renders the current state, captures it, and hands resume.pdf to
// deliverer. Only one export runs at a time; a concurrent call fails with
// KindConflict.
func (s *Service) ExportPDF(ctx context.Context, deliverer Deliverer) (Document, error) {
	if deliverer == nil {
		return Document{}, NewError(KindValidation, "deliverer is required", nil)
	}
	if s.renderer == nil || s.viewer == nil || s.pipeline == nil {
		return Document{}, NewError(KindNotImpl, "pdf export not configured", nil)
	}
	if !s.exporting.TryLock() {
		return Document{}, NewError(KindConflict, "export already in progress", nil)
	}
	defer s.exporting.Unlock()

	data := s.store.Snapshot()
	exportID, err := s.tracker.Start(ctx, ExportRecord{
		ID:       s.idGenerator(),
		State:    StateRunning,
		Filename: s.filename(),
		Template: data.Template,
		Font:     data.Font,
	})
	if err != nil {
		s.logger.Errorf("export tracker start failed: %v", err)
	}

	doc, err := s.runExport(ctx, data, deliverer)
	if err != nil {
		s.logger.Errorf("export %s failed: %v", exportID, err)
		if exportID != "" {
			if trackErr := s.tracker.Fail(context.WithoutCancel(ctx), exportID, err); trackErr != nil {
				s.logger.Errorf("export tracker fail failed: %v", trackErr)
			}
		}
		s.notify(ctx, notify.ExportEvent{
			ExportID: exportID,
			Outcome:  notify.OutcomeFailure,
			Filename: s.filename(),
			Message:  failureMessage(err),
		})
		return Document{}, err
	}

	if exportID != "" {
		if trackErr := s.tracker.Complete(ctx, exportID, doc); trackErr != nil {
			s.logger.Errorf("export tracker complete failed: %v", trackErr)
		}
	}
	evt := notify.ExportEvent{
		ExportID:    exportID,
		Outcome:     notify.OutcomeSuccess,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Pages:       doc.Pages(),
		Bytes:       int64(len(doc.Data)),
		Message:     "Resume downloaded",
	}
	if s.attachDocument {
		evt.Attachments = []notify.Attachment{{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Data:        doc.Data,
			Size:        int64(len(doc.Data)),
		}}
	}
	s.notify(ctx, evt)
	s.logger.Infof("export %s delivered %s (%d pages)", exportID, doc.Filename, doc.Pages())
	return doc, nil
}

func (s *Service) runExport(ctx context.Context, data Data, deliverer Deliverer) (Document, error) {
	html, err := s.renderer.Render(ctx, data, PreviewOptions{DisplayScale: s.previewScale})
	if err != nil {
		return Document{}, captureError(err)
	}
	surface, err := s.viewer.Open(ctx, html)
	if err != nil {
		return Document{}, captureError(err)
	}
	defer func() {
		if closeErr := surface.Close(); closeErr != nil {
			s.logger.Errorf("close export view: %v", closeErr)
		}
	}()

	doc, err := s.pipeline.Export(ctx, surface)
	if err != nil {
		return Document{}, err
	}
	if err := deliverer.Deliver(ctx, doc); err != nil {
		if KindFromError(err) == KindInternal {
			return Document{}, NewError(KindInternal, MsgExportFailed, err)
		}
		return Document{}, err
	}
	return doc, nil
}

// ExportData writes a copy of the current state to w. JSON and XLSX are
// built in; DataRenderers supplies the rest.
func (s *Service) ExportData(ctx context.Context, format DataFormat, w io.Writer) (DataExport, error) {
	format = DataFormat(strings.ToLower(string(format)))
	renderer, ok := s.dataRenderers[format]
	if !ok || renderer == nil {
		var err error
		renderer, err = RendererFor(format)
		if err != nil {
			return DataExport{}, err
		}
	}
	n, err := renderer.Render(ctx, s.store.Snapshot(), w)
	if err != nil {
		return DataExport{}, err
	}
	return DataExport{
		Filename:    "resume." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Bytes:       n,
	}, nil
}

// Share generates share links for the current resume under origin.
func (s *Service) Share(ctx context.Context, origin string) (ShareLinks, error) {
	_ = ctx
	return NewShareLinks(origin, s.idGenerator())
}

// History lists recorded export runs.
func (s *Service) History(ctx context.Context, filter ExportFilter) ([]ExportRecord, error) {
	return s.tracker.List(ctx, filter)
}

// ExportStatus returns a recorded export run.
func (s *Service) ExportStatus(ctx context.Context, id string) (ExportRecord, error) {
	return s.tracker.Status(ctx, id)
}

func (s *Service) filename() string {
	if s.pipeline != nil && s.pipeline.Filename != "" {
		return s.pipeline.Filename
	}
	return DefaultFilename
}

func (s *Service) notify(ctx context.Context, evt notify.ExportEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(context.WithoutCancel(ctx), evt); err != nil {
		s.logger.Errorf("export notification failed: %v", err)
	}
}

func failureMessage(err error) string {
	if IsKind(err, KindNotFound) {
		return "Resume preview not found"
	}
	if IsKind(err, KindConflict) {
		return "Export already in progress"
	}
	return "Failed to generate PDF. Please try again."
}
