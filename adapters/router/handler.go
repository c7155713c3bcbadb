package resumerouter

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-resume/command"
	"github.com/goliatone/go-resume/query"
	"github.com/goliatone/go-resume/resume"
	"github.com/goliatone/go-router"
)

const (
	defaultBasePath    = "/api"
	defaultPreviewPath = "/preview"
)

// Config configures the go-router adapter.
type Config struct {
	Service *resume.Service
	// BasePath prefixes the JSON API. Defaults to /api.
	BasePath string
	// PreviewPath serves the rendered preview. Defaults to /preview.
	PreviewPath string
	// ShareOrigin is used for share links when the request does not name one.
	ShareOrigin string
	// PreviewScale is the display scale of GET /preview.
	PreviewScale float64
}

// Handler exposes resume routes for go-router.
type Handler struct {
	cfg Config

	personal         *command.UpdatePersonalInfoHandler
	addEducation     *command.AddEducationHandler
	updateEducation  *command.UpdateEducationHandler
	removeEducation  *command.RemoveEducationHandler
	addExperience    *command.AddExperienceHandler
	updateExperience *command.UpdateExperienceHandler
	removeExperience *command.RemoveExperienceHandler
	addSkill         *command.AddSkillHandler
	updateSkill      *command.UpdateSkillHandler
	removeSkill      *command.RemoveSkillHandler
	appearance       *command.SetAppearanceHandler
	reset            *command.ResetResumeHandler
	exportPDF        *command.ExportPDFHandler
	exportData       *command.ExportDataHandler
	share            *command.ShareResumeHandler

	snapshot *query.ResumeSnapshotHandler
	preview  *query.PreviewHandler
	history  *query.ExportHistoryHandler
	status   *query.ExportStatusHandler
}

// NewHandler creates a go-router handler.
func NewHandler(cfg Config) *Handler {
	h := &Handler{cfg: cfg}
	svc := cfg.Service
	if svc == nil {
		return h
	}
	store := svc.Store()
	h.personal = command.NewUpdatePersonalInfoHandler(store)
	h.addEducation = command.NewAddEducationHandler(store)
	h.updateEducation = command.NewUpdateEducationHandler(store)
	h.removeEducation = command.NewRemoveEducationHandler(store)
	h.addExperience = command.NewAddExperienceHandler(store)
	h.updateExperience = command.NewUpdateExperienceHandler(store)
	h.removeExperience = command.NewRemoveExperienceHandler(store)
	h.addSkill = command.NewAddSkillHandler(store)
	h.updateSkill = command.NewUpdateSkillHandler(store)
	h.removeSkill = command.NewRemoveSkillHandler(store)
	h.appearance = command.NewSetAppearanceHandler(store)
	h.reset = command.NewResetResumeHandler(store)
	h.exportPDF = command.NewExportPDFHandler(svc)
	h.exportData = command.NewExportDataHandler(svc)
	h.share = command.NewShareResumeHandler(svc)
	h.snapshot = query.NewResumeSnapshotHandler(svc)
	h.preview = query.NewPreviewHandler(svc)
	h.history = query.NewExportHistoryHandler(svc)
	h.status = query.NewExportStatusHandler(svc)
	return h
}

// RegisterRoutes registers routes on a compatible go-router router.
func (h *Handler) RegisterRoutes(router any) {
	r, ok := router.(routeRegistrar)
	if !ok {
		return
	}
	base := h.basePath()
	res := base + "/resume"

	r.Get(res, h.GetResume)
	r.Patch(res+"/personal", h.UpdatePersonal)
	r.Post(res+"/education", h.AddEducation)
	r.Patch(res+"/education/:id", h.UpdateEducation)
	r.Delete(res+"/education/:id", h.RemoveEducation)
	r.Post(res+"/experience", h.AddExperience)
	r.Patch(res+"/experience/:id", h.UpdateExperience)
	r.Delete(res+"/experience/:id", h.RemoveExperience)
	r.Post(res+"/skills", h.AddSkill)
	r.Patch(res+"/skills/:index", h.UpdateSkill)
	r.Delete(res+"/skills/:index", h.RemoveSkill)
	r.Patch(res+"/appearance", h.SetAppearance)
	r.Post(res+"/reset", h.Reset)

	r.Post(base+"/export/pdf", h.ExportPDF)
	r.Get(base+"/export/data", h.ExportData)
	r.Get(base+"/exports", h.History)
	r.Get(base+"/exports/:id", h.ExportStatus)
	r.Post(base+"/share", h.Share)

	r.Get(h.previewPath(), h.Preview)
}

// GetResume returns the current resume.
func (h *Handler) GetResume(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	data, err := h.snapshot.Query(c.Context(), query.ResumeSnapshot{})
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

// UpdatePersonal patches the personal info block.
func (h *Handler) UpdatePersonal(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	var msg command.UpdatePersonalInfo
	if err := decodeJSON(c, &msg.Patch); err != nil {
		return WriteError(c, err)
	}
	var info resume.PersonalInfo
	msg.Result = &info
	if err := execute(c.Context(), h.personal, msg); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// AddEducation appends an education entry.
func (h *Handler) AddEducation(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	var msg command.AddEducation
	if err := decodeJSON(c, &msg.Entry); err != nil {
		return WriteError(c, err)
	}
	var entry resume.Education
	msg.Result = &entry
	if err := execute(c.Context(), h.addEducation, msg); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// UpdateEducation patches an education entry.
func (h *Handler) UpdateEducation(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	msg := command.UpdateEducation{ID: c.Param("id")}
	if err := decodeJSON(c, &msg.Patch); err != nil {
		return WriteError(c, err)
	}
	var entry resume.Education
	msg.Result = &entry
	if err := execute(c.Context(), h.updateEducation, msg); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// RemoveEducation deletes an education entry.
func (h *Handler) RemoveEducation(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	if err := execute(c.Context(), h.removeEducation, command.RemoveEducation{ID: c.Param("id")}); err != nil {
		return WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddExperience appends an experience entry.
func (h *Handler) AddExperience(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	var msg command.AddExperience
	if err := decodeJSON(c, &msg.Entry); err != nil {
		return WriteError(c, err)
	}
	var entry resume.Experience
	msg.Result = &entry
	if err := execute(c.Context(), h.addExperience, msg); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// UpdateExperience patches an experience entry.
func (h *Handler) UpdateExperience(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	msg := command.UpdateExperience{ID: c.Param("id")}
	if err := decodeJSON(c, &msg.Patch); err != nil {
		return WriteError(c, err)
	}
	var entry resume.Experience
	msg.Result = &entry
	if err := execute(c.Context(), h.updateExperience, msg); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// RemoveExperience deletes an experience entry.
func (h *Handler) RemoveExperience(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	if err := execute(c.Context(), h.removeExperience, command.RemoveExperience{ID: c.Param("id")}); err != nil {
		return WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddSkill appends a skill.
func (h *Handler) AddSkill(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	var msg command.AddSkill
	if err := decodeJSON(c, &msg.Skill); err != nil {
		return WriteError(c, err)
	}
	var skill resume.Skill
	msg.Result = &skill
	if err := execute(c.Context(), h.addSkill, msg); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, skill)
}

// UpdateSkill replaces a skill by index.
func (h *Handler) UpdateSkill(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	index, err := skillIndex(c)
	if err != nil {
		return WriteError(c, err)
	}
	msg := command.UpdateSkill{Index: index}
	if err := decodeJSON(c, &msg.Skill); err != nil {
		return WriteError(c, err)
	}
	var skill resume.Skill
	msg.Result = &skill
	if err := execute(c.Context(), h.updateSkill, msg); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusOK, skill)
}

// RemoveSkill deletes a skill by index.
func (h *Handler) RemoveSkill(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	index, err := skillIndex(c)
	if err != nil {
		return WriteError(c, err)
	}
	if err := execute(c.Context(), h.removeSkill, command.RemoveSkill{Index: index}); err != nil {
		return WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type appearanceRequest struct {
	Template resume.Template `json:"template"`
	Theme    resume.Theme    `json:"theme"`
	Font     resume.Font     `json:"font"`
}

// SetAppearance updates template, theme, and font.
func (h *Handler) SetAppearance(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	var req appearanceRequest
	if err := decodeJSON(c, &req); err != nil {
		return WriteError(c, err)
	}
	msg := command.SetAppearance{Template: req.Template, Theme: req.Theme, Font: req.Font}
	if err := execute(c.Context(), h.appearance, msg); err != nil {
		return WriteError(c, err)
	}
	return h.GetResume(c)
}

// Reset restores the default resume.
func (h *Handler) Reset(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	if err := execute(c.Context(), h.reset, command.ResetResume{}); err != nil {
		return WriteError(c, err)
	}
	return h.GetResume(c)
}

// Preview serves the rendered preview document.
func (h *Handler) Preview(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	opts := resume.PreviewOptions{DisplayScale: h.cfg.PreviewScale}
	if raw := strings.TrimSpace(c.Query("scale")); raw != "" {
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return WriteError(c, resume.NewError(resume.KindValidation, "invalid scale", err))
		}
		opts.DisplayScale = scale
	}
	msg := query.Preview{Options: opts}
	if err := msg.Validate(); err != nil {
		return WriteError(c, err)
	}
	html, err := h.preview.Query(c.Context(), msg)
	if err != nil {
		return WriteError(c, err)
	}
	c.SetHeader("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	return c.Send(html)
}

// ExportPDF renders resume.pdf and returns it as an attachment.
func (h *Handler) ExportPDF(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	downloads := resume.NewMemoryDownloads()
	var doc resume.Document
	msg := command.ExportPDF{Deliverer: downloads, Result: &doc}
	if err := execute(c.Context(), h.exportPDF, msg); err != nil {
		return WriteError(c, err)
	}
	c.SetHeader("X-Resume-Pages", strconv.Itoa(doc.Pages()))
	return attachment(c, doc.Filename, doc.ContentType, doc.Data)
}

// ExportData returns a JSON or XLSX copy of the resume as an attachment.
func (h *Handler) ExportData(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	format := resume.DataFormat(strings.ToLower(strings.TrimSpace(c.Query("format", string(resume.FormatJSON)))))
	var buf bytes.Buffer
	var result resume.DataExport
	msg := command.ExportData{Format: format, Writer: &buf, Result: &result}
	if err := execute(c.Context(), h.exportData, msg); err != nil {
		return WriteError(c, err)
	}
	return attachment(c, result.Filename, result.ContentType, buf.Bytes())
}

// History lists recorded export runs.
func (h *Handler) History(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	filter, err := parseFilter(c)
	if err != nil {
		return WriteError(c, err)
	}
	msg := query.ExportHistory{Filter: filter}
	if err := msg.Validate(); err != nil {
		return WriteError(c, err)
	}
	records, err := h.history.Query(c.Context(), msg)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusOK, records)
}

// ExportStatus returns a recorded export run.
func (h *Handler) ExportStatus(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	msg := query.ExportStatus{ExportID: c.Param("id")}
	if err := msg.Validate(); err != nil {
		return WriteError(c, err)
	}
	record, err := h.status.Query(c.Context(), msg)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusOK, record)
}

type shareRequest struct {
	Origin string `json:"origin"`
}

// Share generates share links.
func (h *Handler) Share(c router.Context) error {
	if !h.ready() {
		return notConfigured(c)
	}
	var req shareRequest
	if len(bytes.TrimSpace(c.Body())) > 0 {
		if err := decodeJSON(c, &req); err != nil {
			return WriteError(c, err)
		}
	}
	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		origin = h.cfg.ShareOrigin
	}
	if origin == "" {
		origin = requestOrigin(c)
	}
	var links resume.ShareLinks
	if err := execute(c.Context(), h.share, command.ShareResume{Origin: origin, Result: &links}); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(http.StatusOK, links)
}

func (h *Handler) ready() bool {
	return h != nil && h.cfg.Service != nil
}

func (h *Handler) basePath() string {
	if h == nil || strings.TrimSpace(h.cfg.BasePath) == "" {
		return defaultBasePath
	}
	return strings.TrimRight(h.cfg.BasePath, "/")
}

func (h *Handler) previewPath() string {
	if h == nil || strings.TrimSpace(h.cfg.PreviewPath) == "" {
		return defaultPreviewPath
	}
	return h.cfg.PreviewPath
}

type validatingMessage interface {
	Validate() error
}

type executor[T validatingMessage] interface {
	Execute(ctx context.Context, msg T) error
}

func execute[T validatingMessage](ctx context.Context, handler executor[T], msg T) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	return handler.Execute(ctx, msg)
}

func notConfigured(c router.Context) error {
	return WriteError(c, resume.NewError(resume.KindInternal, "resume service is not configured", nil))
}

func skillIndex(c router.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, resume.NewError(resume.KindValidation, "skill index must be an integer", err)
	}
	return index, nil
}

func parseFilter(c router.Context) (resume.ExportFilter, error) {
	filter := resume.ExportFilter{
		State: resume.ExportState(c.Query("state")),
		Limit: c.QueryInt("limit", 0),
	}
	if since := c.Query("since"); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return resume.ExportFilter{}, resume.NewError(resume.KindValidation, "invalid since timestamp", err)
		}
		filter.Since = ts
	}
	return filter, nil
}

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
