package command

import (
	"io"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-resume/resume"
)

// UpdatePersonalInfo patches the personal info block.
type UpdatePersonalInfo struct {
	Patch  resume.PersonalInfoPatch
	Result *resume.PersonalInfo
}

func (UpdatePersonalInfo) Type() string { return "resume:personal:update" }

func (UpdatePersonalInfo) Validate() error { return nil }

// AddEducation appends an education entry.
type AddEducation struct {
	Entry  resume.Education
	Result *resume.Education
}

func (AddEducation) Type() string { return "resume:education:add" }

func (AddEducation) Validate() error { return nil }

// UpdateEducation patches an education entry.
type UpdateEducation struct {
	ID     string
	Patch  resume.EducationPatch
	Result *resume.Education
}

func (UpdateEducation) Type() string { return "resume:education:update" }

func (msg UpdateEducation) Validate() error {
	return requireID(msg.ID, "education ID is required", "EDUCATION_ID_REQUIRED")
}

// RemoveEducation deletes an education entry.
type RemoveEducation struct {
	ID string
}

func (RemoveEducation) Type() string { return "resume:education:remove" }

func (msg RemoveEducation) Validate() error {
	return requireID(msg.ID, "education ID is required", "EDUCATION_ID_REQUIRED")
}

// AddExperience appends an experience entry.
type AddExperience struct {
	Entry  resume.Experience
	Result *resume.Experience
}

func (AddExperience) Type() string { return "resume:experience:add" }

func (AddExperience) Validate() error { return nil }

// UpdateExperience patches an experience entry.
type UpdateExperience struct {
	ID     string
	Patch  resume.ExperiencePatch
	Result *resume.Experience
}

func (UpdateExperience) Type() string { return "resume:experience:update" }

func (msg UpdateExperience) Validate() error {
	return requireID(msg.ID, "experience ID is required", "EXPERIENCE_ID_REQUIRED")
}

// RemoveExperience deletes an experience entry.
type RemoveExperience struct {
	ID string
}

func (RemoveExperience) Type() string { return "resume:experience:remove" }

func (msg RemoveExperience) Validate() error {
	return requireID(msg.ID, "experience ID is required", "EXPERIENCE_ID_REQUIRED")
}

// AddSkill appends a skill.
type AddSkill struct {
	Skill  resume.Skill
	Result *resume.Skill
}

func (AddSkill) Type() string { return "resume:skill:add" }

func (msg AddSkill) Validate() error {
	if strings.TrimSpace(msg.Skill.Name) == "" {
		return errors.New("skill name is required", errors.CategoryValidation).
			WithTextCode("SKILL_NAME_REQUIRED")
	}
	return nil
}

// UpdateSkill replaces the skill at Index.
type UpdateSkill struct {
	Index  int
	Skill  resume.Skill
	Result *resume.Skill
}

func (UpdateSkill) Type() string { return "resume:skill:update" }

func (msg UpdateSkill) Validate() error {
	if msg.Index < 0 {
		return errors.New("skill index must not be negative", errors.CategoryValidation).
			WithTextCode("SKILL_INDEX_INVALID")
	}
	if strings.TrimSpace(msg.Skill.Name) == "" {
		return errors.New("skill name is required", errors.CategoryValidation).
			WithTextCode("SKILL_NAME_REQUIRED")
	}
	return nil
}

// RemoveSkill deletes the skill at Index.
type RemoveSkill struct {
	Index int
}

func (RemoveSkill) Type() string { return "resume:skill:remove" }

func (msg RemoveSkill) Validate() error {
	if msg.Index < 0 {
		return errors.New("skill index must not be negative", errors.CategoryValidation).
			WithTextCode("SKILL_INDEX_INVALID")
	}
	return nil
}

// SetAppearance changes template, theme, and font. Empty fields are left as
// they are.
type SetAppearance struct {
	Template resume.Template
	Theme    resume.Theme
	Font     resume.Font
}

func (SetAppearance) Type() string { return "resume:appearance:set" }

func (msg SetAppearance) Validate() error {
	if msg.Template == "" && msg.Theme == "" && msg.Font == "" {
		return errors.New("template, theme, or font is required", errors.CategoryValidation).
			WithTextCode("APPEARANCE_REQUIRED")
	}
	return nil
}

// ResetResume restores the default, empty resume.
type ResetResume struct{}

func (ResetResume) Type() string { return "resume:reset" }

func (ResetResume) Validate() error { return nil }

// ImportResume replaces the whole resume.
type ImportResume struct {
	Data resume.Data
}

func (ImportResume) Type() string { return "resume:import" }

func (ImportResume) Validate() error { return nil }

// ExportPDF renders the resume to resume.pdf and hands it to Deliverer.
type ExportPDF struct {
	Deliverer resume.Deliverer
	Result    *resume.Document
}

func (ExportPDF) Type() string { return "resume:export:pdf" }

func (msg ExportPDF) Validate() error {
	if msg.Deliverer == nil {
		return errors.New("deliverer is required", errors.CategoryValidation).
			WithTextCode("DELIVERER_REQUIRED")
	}
	return nil
}

// ExportData writes a JSON or XLSX copy of the resume.
type ExportData struct {
	Format resume.DataFormat
	Writer io.Writer
	Result *resume.DataExport
}

func (ExportData) Type() string { return "resume:export:data" }

func (msg ExportData) Validate() error {
	if msg.Writer == nil {
		return errors.New("writer is required", errors.CategoryValidation).
			WithTextCode("WRITER_REQUIRED")
	}
	if msg.Format == "" {
		return errors.New("format is required", errors.CategoryValidation).
			WithTextCode("FORMAT_REQUIRED")
	}
	return nil
}

// ShareResume generates share links under Origin.
type ShareResume struct {
	Origin string
	Result *resume.ShareLinks
}

func (ShareResume) Type() string { return "resume:share" }

func (msg ShareResume) Validate() error {
	if strings.TrimSpace(msg.Origin) == "" {
		return errors.New("origin is required", errors.CategoryValidation).
			WithTextCode("ORIGIN_REQUIRED")
	}
	return nil
}

func requireID(id, message, code string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New(message, errors.CategoryValidation).WithTextCode(code)
	}
	return nil
}
