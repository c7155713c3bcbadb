package command

import (
	"bytes"
	"context"
	"io"
	"testing"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-resume/resume"
)

type stubExporter struct {
	exportPDF  func(ctx context.Context, deliverer resume.Deliverer) (resume.Document, error)
	exportData func(ctx context.Context, format resume.DataFormat, w io.Writer) (resume.DataExport, error)
	share      func(ctx context.Context, origin string) (resume.ShareLinks, error)
}

func (s *stubExporter) ExportPDF(ctx context.Context, deliverer resume.Deliverer) (resume.Document, error) {
	if s.exportPDF != nil {
		return s.exportPDF(ctx, deliverer)
	}
	return resume.Document{}, nil
}

func (s *stubExporter) ExportData(ctx context.Context, format resume.DataFormat, w io.Writer) (resume.DataExport, error) {
	if s.exportData != nil {
		return s.exportData(ctx, format, w)
	}
	return resume.DataExport{}, nil
}

func (s *stubExporter) Share(ctx context.Context, origin string) (resume.ShareLinks, error) {
	if s.share != nil {
		return s.share(ctx, origin)
	}
	return resume.ShareLinks{}, nil
}

func strPtr(v string) *string { return &v }

func TestUpdatePersonalInfoHandler_StoresResult(t *testing.T) {
	store := resume.NewStore()
	handler := NewUpdatePersonalInfoHandler(store)

	result := gcmd.NewResult[resume.PersonalInfo]()
	ctx := gcmd.ContextWithResult(context.Background(), result)

	var direct resume.PersonalInfo
	err := handler.Execute(ctx, UpdatePersonalInfo{
		Patch:  resume.PersonalInfoPatch{FullName: strPtr("Grace Hopper")},
		Result: &direct,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if direct.FullName != "Grace Hopper" {
		t.Fatalf("expected direct result, got %+v", direct)
	}
	stored, ok := result.Load()
	if !ok || stored.FullName != "Grace Hopper" {
		t.Fatalf("expected context result, got %+v", stored)
	}
	if store.Snapshot().PersonalInfo.FullName != "Grace Hopper" {
		t.Fatalf("expected store updated")
	}
}

func TestEducationHandlers_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := resume.NewStore()

	var added resume.Education
	if err := NewAddEducationHandler(store).Execute(ctx, AddEducation{
		Entry:  resume.Education{Institution: "MIT", Degree: "BSc"},
		Result: &added,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.ID == "" {
		t.Fatalf("expected generated ID")
	}

	var updated resume.Education
	if err := NewUpdateEducationHandler(store).Execute(ctx, UpdateEducation{
		ID:     added.ID,
		Patch:  resume.EducationPatch{Field: strPtr("Physics")},
		Result: &updated,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Field != "Physics" || updated.Institution != "MIT" {
		t.Fatalf("unexpected update %+v", updated)
	}

	if err := NewRemoveEducationHandler(store).Execute(ctx, RemoveEducation{ID: added.ID}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(store.Snapshot().Education) != 0 {
		t.Fatalf("expected education removed")
	}
}

func TestExperienceHandlers_UnknownIDIsNotFound(t *testing.T) {
	store := resume.NewStore()
	err := NewUpdateExperienceHandler(store).Execute(context.Background(), UpdateExperience{
		ID:    "missing",
		Patch: resume.ExperiencePatch{Company: strPtr("Acme")},
	})
	if !resume.IsKind(err, resume.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSkillHandlers_ByIndex(t *testing.T) {
	ctx := context.Background()
	store := resume.NewStore()

	for _, name := range []string{"Go", "SQL"} {
		if err := NewAddSkillHandler(store).Execute(ctx, AddSkill{Skill: resume.Skill{Name: name}}); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	if err := NewUpdateSkillHandler(store).Execute(ctx, UpdateSkill{
		Index: 1,
		Skill: resume.Skill{Name: "PostgreSQL", Level: resume.LevelExpert},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := NewRemoveSkillHandler(store).Execute(ctx, RemoveSkill{Index: 0}); err != nil {
		t.Fatalf("remove: %v", err)
	}

	skills := store.Snapshot().Skills
	if len(skills) != 1 || skills[0].Name != "PostgreSQL" {
		t.Fatalf("unexpected skills %+v", skills)
	}
	if err := NewRemoveSkillHandler(store).Execute(ctx, RemoveSkill{Index: 4}); !resume.IsKind(err, resume.KindNotFound) {
		t.Fatalf("expected not_found for out of range index, got %v", err)
	}
}

func TestSetAppearanceHandler_AppliesSetFields(t *testing.T) {
	store := resume.NewStore()
	err := NewSetAppearanceHandler(store).Execute(context.Background(), SetAppearance{
		Template: resume.TemplateModern,
		Font:     resume.FontRoboto,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	data := store.Snapshot()
	if data.Template != resume.TemplateModern || data.Font != resume.FontRoboto || data.Theme != resume.ThemeLight {
		t.Fatalf("unexpected appearance %s/%s/%s", data.Template, data.Theme, data.Font)
	}

	err = NewSetAppearanceHandler(store).Execute(context.Background(), SetAppearance{Template: "neon"})
	if !resume.IsKind(err, resume.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResetAndImportHandlers(t *testing.T) {
	ctx := context.Background()
	store := resume.NewStore()

	data := resume.DefaultData()
	data.PersonalInfo.FullName = "Ada"
	data.Template = resume.TemplateClassic
	if err := NewImportResumeHandler(store).Execute(ctx, ImportResume{Data: data}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if store.Snapshot().Template != resume.TemplateClassic {
		t.Fatalf("expected imported template")
	}

	if err := NewResetResumeHandler(store).Execute(ctx, ResetResume{}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if store.Snapshot().HasContent() {
		t.Fatalf("expected empty resume after reset")
	}
}

func TestExportPDFHandler_StoresResult(t *testing.T) {
	svc := &stubExporter{
		exportPDF: func(ctx context.Context, deliverer resume.Deliverer) (resume.Document, error) {
			doc := resume.Document{Filename: "resume.pdf", Data: []byte("%PDF")}
			return doc, deliverer.Deliver(ctx, doc)
		},
	}
	downloads := resume.NewMemoryDownloads()

	result := gcmd.NewResult[resume.Document]()
	ctx := gcmd.ContextWithResult(context.Background(), result)
	if err := NewExportPDFHandler(svc).Execute(ctx, ExportPDF{Deliverer: downloads}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	stored, ok := result.Load()
	if !ok || stored.Filename != "resume.pdf" {
		t.Fatalf("expected stored document, got %+v", stored)
	}
	if _, ok := downloads.Last(); !ok {
		t.Fatalf("expected delivery")
	}
}

func TestExportPDFHandler_PropagatesError(t *testing.T) {
	svc := &stubExporter{
		exportPDF: func(ctx context.Context, deliverer resume.Deliverer) (resume.Document, error) {
			return resume.Document{}, resume.NewError(resume.KindConflict, "export already in progress", nil)
		},
	}
	err := NewExportPDFHandler(svc).Execute(context.Background(), ExportPDF{Deliverer: resume.NewMemoryDownloads()})
	if !resume.IsKind(err, resume.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestExportDataHandler_WritesToWriter(t *testing.T) {
	svc := &stubExporter{
		exportData: func(ctx context.Context, format resume.DataFormat, w io.Writer) (resume.DataExport, error) {
			n, err := io.WriteString(w, `{"template":"crimson"}`)
			return resume.DataExport{Filename: "resume." + string(format), Bytes: int64(n)}, err
		},
	}
	var buf bytes.Buffer
	var out resume.DataExport
	err := NewExportDataHandler(svc).Execute(context.Background(), ExportData{
		Format: resume.FormatJSON,
		Writer: &buf,
		Result: &out,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.Filename != "resume.json" || out.Bytes != int64(buf.Len()) {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestShareResumeHandler_StoresLinks(t *testing.T) {
	svc := &stubExporter{
		share: func(ctx context.Context, origin string) (resume.ShareLinks, error) {
			return resume.NewShareLinks(origin, "abc")
		},
	}
	var links resume.ShareLinks
	if err := NewShareResumeHandler(svc).Execute(context.Background(), ShareResume{Origin: "https://cv.example.com", Result: &links}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if links.Link != "https://cv.example.com/resume/abc" {
		t.Fatalf("unexpected link %q", links.Link)
	}
}

func TestHandlers_RequireDependencies(t *testing.T) {
	ctx := context.Background()
	if err := (&AddSkillHandler{}).Execute(ctx, AddSkill{Skill: resume.Skill{Name: "Go"}}); err == nil {
		t.Fatalf("expected store required error")
	}
	if err := (&ExportPDFHandler{}).Execute(ctx, ExportPDF{Deliverer: resume.NewMemoryDownloads()}); err == nil {
		t.Fatalf("expected service required error")
	}
}

func TestMessages_Validate(t *testing.T) {
	cases := []struct {
		name string
		msg  interface{ Validate() error }
	}{
		{"education id", UpdateEducation{}},
		{"experience id", RemoveExperience{}},
		{"skill name", AddSkill{}},
		{"skill index", RemoveSkill{Index: -1}},
		{"appearance", SetAppearance{}},
		{"deliverer", ExportPDF{}},
		{"writer", ExportData{Format: resume.FormatJSON}},
		{"origin", ShareResume{Origin: "  "}},
	}
	for _, tc := range cases {
		if err := tc.msg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
	if err := (ExportData{Format: resume.FormatXLSX, Writer: io.Discard}).Validate(); err != nil {
		t.Fatalf("expected valid export data message, got %v", err)
	}
	if err := (AddSkill{Skill: resume.Skill{Name: "Go"}}).Validate(); err != nil {
		t.Fatalf("expected valid skill message, got %v", err)
	}
}
