package query

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-resume/resume"
)

// ExportStatus requests an export record.
type ExportStatus struct {
	ExportID string
}

func (ExportStatus) Type() string { return "resume:export:status" }

func (msg ExportStatus) Validate() error {
	if strings.TrimSpace(msg.ExportID) == "" {
		return errors.New("export ID is required", errors.CategoryValidation).
			WithTextCode("EXPORT_ID_REQUIRED")
	}
	return nil
}

// ExportHistory requests recorded export runs.
type ExportHistory struct {
	Filter resume.ExportFilter
}

func (ExportHistory) Type() string { return "resume:export:history" }

func (msg ExportHistory) Validate() error {
	if msg.Filter.Limit < 0 {
		return errors.New("limit must not be negative", errors.CategoryValidation).
			WithTextCode("LIMIT_INVALID")
	}
	return nil
}

// ResumeSnapshot requests the current resume data.
type ResumeSnapshot struct{}

func (ResumeSnapshot) Type() string { return "resume:snapshot" }

func (ResumeSnapshot) Validate() error { return nil }

// Preview requests the rendered preview document.
type Preview struct {
	Options resume.PreviewOptions
}

func (Preview) Type() string { return "resume:preview" }

func (msg Preview) Validate() error {
	if msg.Options.DisplayScale < 0 {
		return errors.New("display scale must not be negative", errors.CategoryValidation).
			WithTextCode("SCALE_INVALID")
	}
	return nil
}
