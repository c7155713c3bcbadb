package command

import (
	"context"
	"io"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-resume/resume"
)

// Exporter runs resume exports.
type Exporter interface {
	ExportPDF(ctx context.Context, deliverer resume.Deliverer) (resume.Document, error)
	ExportData(ctx context.Context, format resume.DataFormat, w io.Writer) (resume.DataExport, error)
	Share(ctx context.Context, origin string) (resume.ShareLinks, error)
}

func storeRequired() error {
	return errors.New("resume store is required", errors.CategoryInternal).
		WithTextCode("STORE_REQUIRED")
}

func exporterRequired() error {
	return errors.New("resume exporter is required", errors.CategoryInternal).
		WithTextCode("SERVICE_REQUIRED")
}

func storeResult[T any](ctx context.Context, dst *T, value T) {
	if dst != nil {
		*dst = value
	}
	if res := gcmd.ResultFromContext[T](ctx); res != nil {
		res.Store(value)
	}
}

// UpdatePersonalInfoHandler applies personal info patches.
type UpdatePersonalInfoHandler struct {
	Store *resume.Store
}

func NewUpdatePersonalInfoHandler(store *resume.Store) *UpdatePersonalInfoHandler {
	return &UpdatePersonalInfoHandler{Store: store}
}

func (h *UpdatePersonalInfoHandler) Execute(ctx context.Context, msg UpdatePersonalInfo) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	info, err := h.Store.UpdatePersonalInfo(ctx, msg.Patch)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, info)
	return nil
}

// AddEducationHandler appends education entries.
type AddEducationHandler struct {
	Store *resume.Store
}

func NewAddEducationHandler(store *resume.Store) *AddEducationHandler {
	return &AddEducationHandler{Store: store}
}

func (h *AddEducationHandler) Execute(ctx context.Context, msg AddEducation) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	entry, err := h.Store.AddEducation(ctx, msg.Entry)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, entry)
	return nil
}

// UpdateEducationHandler patches education entries.
type UpdateEducationHandler struct {
	Store *resume.Store
}

func NewUpdateEducationHandler(store *resume.Store) *UpdateEducationHandler {
	return &UpdateEducationHandler{Store: store}
}

func (h *UpdateEducationHandler) Execute(ctx context.Context, msg UpdateEducation) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	entry, err := h.Store.UpdateEducation(ctx, msg.ID, msg.Patch)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, entry)
	return nil
}

// RemoveEducationHandler deletes education entries.
type RemoveEducationHandler struct {
	Store *resume.Store
}

func NewRemoveEducationHandler(store *resume.Store) *RemoveEducationHandler {
	return &RemoveEducationHandler{Store: store}
}

func (h *RemoveEducationHandler) Execute(ctx context.Context, msg RemoveEducation) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	return h.Store.RemoveEducation(ctx, msg.ID)
}

// AddExperienceHandler appends experience entries.
type AddExperienceHandler struct {
	Store *resume.Store
}

func NewAddExperienceHandler(store *resume.Store) *AddExperienceHandler {
	return &AddExperienceHandler{Store: store}
}

func (h *AddExperienceHandler) Execute(ctx context.Context, msg AddExperience) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	entry, err := h.Store.AddExperience(ctx, msg.Entry)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, entry)
	return nil
}

// UpdateExperienceHandler patches experience entries.
type UpdateExperienceHandler struct {
	Store *resume.Store
}

func NewUpdateExperienceHandler(store *resume.Store) *UpdateExperienceHandler {
	return &UpdateExperienceHandler{Store: store}
}

func (h *UpdateExperienceHandler) Execute(ctx context.Context, msg UpdateExperience) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	entry, err := h.Store.UpdateExperience(ctx, msg.ID, msg.Patch)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, entry)
	return nil
}

// RemoveExperienceHandler deletes experience entries.
type RemoveExperienceHandler struct {
	Store *resume.Store
}

func NewRemoveExperienceHandler(store *resume.Store) *RemoveExperienceHandler {
	return &RemoveExperienceHandler{Store: store}
}

func (h *RemoveExperienceHandler) Execute(ctx context.Context, msg RemoveExperience) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	return h.Store.RemoveExperience(ctx, msg.ID)
}

// AddSkillHandler appends skills.
type AddSkillHandler struct {
	Store *resume.Store
}

func NewAddSkillHandler(store *resume.Store) *AddSkillHandler {
	return &AddSkillHandler{Store: store}
}

func (h *AddSkillHandler) Execute(ctx context.Context, msg AddSkill) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	skill, err := h.Store.AddSkill(ctx, msg.Skill)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, skill)
	return nil
}

// UpdateSkillHandler replaces skills by index.
type UpdateSkillHandler struct {
	Store *resume.Store
}

func NewUpdateSkillHandler(store *resume.Store) *UpdateSkillHandler {
	return &UpdateSkillHandler{Store: store}
}

func (h *UpdateSkillHandler) Execute(ctx context.Context, msg UpdateSkill) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	skill, err := h.Store.UpdateSkill(ctx, msg.Index, msg.Skill)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, skill)
	return nil
}

// RemoveSkillHandler deletes skills by index.
type RemoveSkillHandler struct {
	Store *resume.Store
}

func NewRemoveSkillHandler(store *resume.Store) *RemoveSkillHandler {
	return &RemoveSkillHandler{Store: store}
}

func (h *RemoveSkillHandler) Execute(ctx context.Context, msg RemoveSkill) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	return h.Store.RemoveSkill(ctx, msg.Index)
}

// SetAppearanceHandler updates template, theme, and font.
type SetAppearanceHandler struct {
	Store *resume.Store
}

func NewSetAppearanceHandler(store *resume.Store) *SetAppearanceHandler {
	return &SetAppearanceHandler{Store: store}
}

func (h *SetAppearanceHandler) Execute(ctx context.Context, msg SetAppearance) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	if msg.Template != "" {
		if err := h.Store.SetTemplate(ctx, msg.Template); err != nil {
			return err
		}
	}
	if msg.Theme != "" {
		if err := h.Store.SetTheme(ctx, msg.Theme); err != nil {
			return err
		}
	}
	if msg.Font != "" {
		if err := h.Store.SetFont(ctx, msg.Font); err != nil {
			return err
		}
	}
	return nil
}

// ResetResumeHandler restores the default resume.
type ResetResumeHandler struct {
	Store *resume.Store
}

func NewResetResumeHandler(store *resume.Store) *ResetResumeHandler {
	return &ResetResumeHandler{Store: store}
}

func (h *ResetResumeHandler) Execute(ctx context.Context, msg ResetResume) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	return h.Store.Reset(ctx)
}

// ImportResumeHandler replaces the whole resume.
type ImportResumeHandler struct {
	Store *resume.Store
}

func NewImportResumeHandler(store *resume.Store) *ImportResumeHandler {
	return &ImportResumeHandler{Store: store}
}

func (h *ImportResumeHandler) Execute(ctx context.Context, msg ImportResume) error {
	if h == nil || h.Store == nil {
		return storeRequired()
	}
	return h.Store.Replace(ctx, msg.Data)
}

// ExportPDFHandler runs PDF exports.
type ExportPDFHandler struct {
	Service Exporter
}

func NewExportPDFHandler(svc Exporter) *ExportPDFHandler {
	return &ExportPDFHandler{Service: svc}
}

func (h *ExportPDFHandler) Execute(ctx context.Context, msg ExportPDF) error {
	if h == nil || h.Service == nil {
		return exporterRequired()
	}
	doc, err := h.Service.ExportPDF(ctx, msg.Deliverer)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, doc)
	return nil
}

// ExportDataHandler writes data exports.
type ExportDataHandler struct {
	Service Exporter
}

func NewExportDataHandler(svc Exporter) *ExportDataHandler {
	return &ExportDataHandler{Service: svc}
}

func (h *ExportDataHandler) Execute(ctx context.Context, msg ExportData) error {
	if h == nil || h.Service == nil {
		return exporterRequired()
	}
	result, err := h.Service.ExportData(ctx, msg.Format, msg.Writer)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, result)
	return nil
}

// ShareResumeHandler generates share links.
type ShareResumeHandler struct {
	Service Exporter
}

func NewShareResumeHandler(svc Exporter) *ShareResumeHandler {
	return &ShareResumeHandler{Service: svc}
}

func (h *ShareResumeHandler) Execute(ctx context.Context, msg ShareResume) error {
	if h == nil || h.Service == nil {
		return exporterRequired()
	}
	links, err := h.Service.Share(ctx, msg.Origin)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, links)
	return nil
}
