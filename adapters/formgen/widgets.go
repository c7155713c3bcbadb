package resumeformgen

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-resume/resume"
)

// Field defines a form field for formgen-style UIs.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
	Hint     string   `json:"hint,omitempty"`
}

// Form defines an editor section form.
type Form struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Action      string  `json:"action"`
	Method      string  `json:"method"`
	SubmitLabel string  `json:"submit_label"`
	Fields      []Field `json:"fields"`
}

// TableColumn defines a column in the history table.
type TableColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// TableAction defines a table action that maps to an HTTP endpoint.
type TableAction struct {
	Label       string `json:"label"`
	Method      string `json:"method"`
	URLTemplate string `json:"url_template"`
}

// Table defines a history widget.
type Table struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	DataURL string        `json:"data_url"`
	Columns []TableColumn `json:"columns"`
	Actions []TableAction `json:"actions,omitempty"`
}

// Theme captures theme tokens for builder styling.
type Theme struct {
	Name   string            `json:"name"`
	Tokens map[string]string `json:"tokens"`
}

// UI bundles the widgets of the resume builder.
type UI struct {
	PersonalInfo Form  `json:"personal_info"`
	Education    Form  `json:"education"`
	Experience   Form  `json:"experience"`
	Skill        Form  `json:"skill"`
	Appearance   Form  `json:"appearance"`
	History      Table `json:"history"`
	Theme        Theme `json:"theme"`
}

// DefaultUI returns the builder widgets rooted at basePath.
func DefaultUI(basePath string, theme resume.Theme) UI {
	basePath = strings.TrimRight(basePath, "/")
	if basePath == "" {
		basePath = "/api"
	}
	return UI{
		PersonalInfo: PersonalInfoForm(basePath),
		Education:    EducationForm(basePath),
		Experience:   ExperienceForm(basePath),
		Skill:        SkillForm(basePath),
		Appearance:   AppearanceForm(basePath),
		History:      ExportHistoryTable(basePath),
		Theme:        ThemeFor(theme),
	}
}

// PersonalInfoForm builds the header block form.
func PersonalInfoForm(basePath string) Form {
	return Form{
		ID:          "personal-info",
		Title:       "Personal Information",
		Action:      basePath + "/resume/personal",
		Method:      "PATCH",
		SubmitLabel: "Save",
		Fields: []Field{
			{Name: "fullName", Label: "Full Name", Type: "text", Required: true},
			{Name: "email", Label: "Email", Type: "email", Required: true},
			{Name: "phone", Label: "Phone", Type: "tel"},
			{Name: "location", Label: "Location", Type: "text"},
			{Name: "linkedin", Label: "LinkedIn", Type: "url"},
			{Name: "github", Label: "GitHub", Type: "url"},
			{Name: "portfolio", Label: "Portfolio", Type: "url"},
			{Name: "summary", Label: "Professional Summary", Type: "textarea"},
		},
	}
}

// EducationForm builds the education entry form.
func EducationForm(basePath string) Form {
	return Form{
		ID:          "education",
		Title:       "Education",
		Action:      basePath + "/resume/education",
		Method:      "POST",
		SubmitLabel: "Add Education",
		Fields: []Field{
			{Name: "institution", Label: "Institution", Type: "text", Required: true},
			{Name: "degree", Label: "Degree", Type: "text", Required: true},
			{Name: "field", Label: "Field of Study", Type: "text"},
			{Name: "startDate", Label: "Start Date", Type: "month"},
			{Name: "endDate", Label: "End Date", Type: "month"},
			{Name: "gpa", Label: "GPA", Type: "text"},
			{Name: "achievements", Label: "Achievements", Type: "list", Hint: "One per line"},
		},
	}
}

// ExperienceForm builds the experience entry form.
func ExperienceForm(basePath string) Form {
	return Form{
		ID:          "experience",
		Title:       "Work Experience",
		Action:      basePath + "/resume/experience",
		Method:      "POST",
		SubmitLabel: "Add Experience",
		Fields: []Field{
			{Name: "company", Label: "Company", Type: "text", Required: true},
			{Name: "position", Label: "Position", Type: "text", Required: true},
			{Name: "location", Label: "Location", Type: "text"},
			{Name: "startDate", Label: "Start Date", Type: "month"},
			{Name: "endDate", Label: "End Date", Type: "month", Hint: "Ignored while current"},
			{Name: "current", Label: "Current Position", Type: "checkbox"},
			{Name: "description", Label: "Description", Type: "list", Hint: "One bullet per line"},
		},
	}
}

// SkillForm builds the skill form.
func SkillForm(basePath string) Form {
	return Form{
		ID:          "skill",
		Title:       "Skills",
		Action:      basePath + "/resume/skills",
		Method:      "POST",
		SubmitLabel: "Add Skill",
		Fields: []Field{
			{Name: "name", Label: "Skill", Type: "text", Required: true},
			{Name: "level", Label: "Level", Type: "select", Options: stringsOf(
				resume.LevelBeginner, resume.LevelIntermediate, resume.LevelAdvanced, resume.LevelExpert)},
			{Name: "category", Label: "Category", Type: "select", Options: stringsOf(
				resume.CategoryTechnical, resume.CategorySoft, resume.CategoryLanguage, resume.CategoryTool)},
		},
	}
}

// AppearanceForm builds the template, theme, and font picker.
func AppearanceForm(basePath string) Form {
	return Form{
		ID:          "appearance",
		Title:       "Appearance",
		Action:      basePath + "/resume/appearance",
		Method:      "PATCH",
		SubmitLabel: "Apply",
		Fields: []Field{
			{Name: "template", Label: "Template", Type: "select", Options: stringsOf(
				resume.TemplateCrimson, resume.TemplateModern, resume.TemplateClassic)},
			{Name: "theme", Label: "Theme", Type: "select", Options: stringsOf(resume.ThemeLight, resume.ThemeDark)},
			{Name: "font", Label: "Font", Type: "select", Options: stringsOf(
				resume.FontInter, resume.FontRoboto, resume.FontCrimson, resume.FontMontserrat)},
		},
	}
}

// ExportHistoryTable builds a table definition for export history.
func ExportHistoryTable(basePath string) Table {
	return Table{
		ID:      "export-history",
		Title:   "Export History",
		DataURL: basePath + "/exports",
		Columns: []TableColumn{
			{Key: "ID", Label: "ID"},
			{Key: "Filename", Label: "File"},
			{Key: "Template", Label: "Template"},
			{Key: "State", Label: "Status"},
			{Key: "Pages", Label: "Pages"},
			{Key: "CreatedAt", Label: "Created"},
		},
		Actions: []TableAction{
			{Label: "Details", Method: "GET", URLTemplate: fmt.Sprintf("%s/exports/{id}", basePath)},
			{Label: "Export Again", Method: "POST", URLTemplate: basePath + "/export/pdf"},
		},
	}
}

// ThemeFor returns the token set of a builder theme. Unknown themes fall back
// to light.
func ThemeFor(theme resume.Theme) Theme {
	if theme == resume.ThemeDark {
		return Theme{
			Name: string(resume.ThemeDark),
			Tokens: map[string]string{
				"primary": "#f87171",
				"surface": "#111827",
				"text":    "#f9fafb",
				"muted":   "#9ca3af",
				"border":  "#374151",
				"danger":  "#fca5a5",
				"success": "#4ade80",
			},
		}
	}
	return Theme{
		Name: string(resume.ThemeLight),
		Tokens: map[string]string{
			"primary": "#b91c1c",
			"surface": "#ffffff",
			"text":    "#1f2937",
			"muted":   "#6b7280",
			"border":  "#e5e7eb",
			"danger":  "#b91c1c",
			"success": "#15803d",
		},
	}
}

func stringsOf[T ~string](values ...T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
