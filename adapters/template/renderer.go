package resumetemplate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-resume/resume"
)

// Renderer renders resume previews with the template named after the
// selected resume.Template.
type Renderer struct {
	Templates TemplateExecutor
	// FontStylesheet is linked from the document head when set, for example a
	// web font CSS URL.
	FontStylesheet string
	Lang           string
}

var _ resume.PreviewRenderer = (*Renderer)(nil)

// NewRenderer creates a renderer backed by the embedded templates.
func NewRenderer() (*Renderer, error) {
	executor, err := DefaultExecutor()
	if err != nil {
		return nil, resume.NewError(resume.KindInternal, "load preview templates", err)
	}
	return &Renderer{Templates: executor, Lang: "en"}, nil
}

// Render returns the preview document for data.
func (r *Renderer) Render(ctx context.Context, data resume.Data, opts resume.PreviewOptions) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := r.RenderTo(ctx, data, opts, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderTo writes the preview document to w and returns the bytes written.
func (r *Renderer) RenderTo(ctx context.Context, data resume.Data, opts resume.PreviewOptions, w io.Writer) (int64, error) {
	if r == nil || r.Templates == nil {
		return 0, resume.NewError(resume.KindValidation, "preview renderer requires templates", nil)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if data.Template == "" {
		data.Template = resume.TemplateCrimson
	}
	if err := resume.ValidateTemplate(data.Template); err != nil {
		return 0, err
	}
	if data.Font == "" {
		data.Font = resume.FontInter
	}
	if err := resume.ValidateFont(data.Font); err != nil {
		return 0, err
	}

	view := buildView(data, opts)
	view.FontStylesheet = r.FontStylesheet
	view.Lang = r.Lang
	if view.Lang == "" {
		view.Lang = "en"
	}

	cw := &countingWriter{w: w}
	if err := r.Templates.ExecuteTemplate(cw, string(data.Template)+".html", view); err != nil {
		return cw.count, resume.NewError(resume.KindInternal, "render preview", err)
	}
	return cw.count, nil
}

type previewView struct {
	Title          string
	Lang           string
	Template       string
	FontFamily     string
	FontStylesheet string
	RootStyle      string
	HasContentAttr string
	ShowEmpty      bool
	Name           string
	Info           resume.PersonalInfo
	Experience     []experienceView
	Education      []educationView
	SkillGroups    []skillGroupView
}

type experienceView struct {
	Position    string
	Company     string
	Location    string
	Period      string
	Description []string
}

type educationView struct {
	Degree       string
	Institution  string
	Field        string
	GPA          string
	Period       string
	Achievements []string
}

type skillGroupView struct {
	Category string
	Skills   []skillView
}

type skillView struct {
	Name  string
	Level string
	Badge string
}

func buildView(data resume.Data, opts resume.PreviewOptions) previewView {
	info := data.PersonalInfo
	view := previewView{
		Title:          opts.Title,
		Template:       string(data.Template),
		FontFamily:     FontFamily(data.Font),
		RootStyle:      rootStyle(opts.DisplayScale),
		HasContentAttr: strconv.FormatBool(data.HasContent()),
		ShowEmpty:      info.FullName == "" && len(data.Experience) == 0 && len(data.Education) == 0 && len(data.Skills) == 0,
		Name:           info.FullName,
		Info:           info,
	}
	if view.Name == "" {
		view.Name = "Your Name"
	}
	if view.Title == "" {
		view.Title = "Resume"
		if info.FullName != "" {
			view.Title = info.FullName + " - Resume"
		}
	}

	for _, exp := range data.Experience {
		view.Experience = append(view.Experience, experienceView{
			Position:    exp.Position,
			Company:     exp.Company,
			Location:    exp.Location,
			Period:      experiencePeriod(exp),
			Description: nonEmpty(exp.Description),
		})
	}
	for _, edu := range data.Education {
		period := ""
		if edu.StartDate != "" && edu.EndDate != "" {
			period = FormatDate(edu.StartDate) + " - " + FormatDate(edu.EndDate)
		}
		view.Education = append(view.Education, educationView{
			Degree:       edu.Degree,
			Institution:  edu.Institution,
			Field:        edu.Field,
			GPA:          edu.GPA,
			Period:       period,
			Achievements: nonEmpty(edu.Achievements),
		})
	}
	view.SkillGroups = groupSkills(data.Skills)
	return view
}

// groupSkills groups skills by category in first-seen order.
func groupSkills(skills []resume.Skill) []skillGroupView {
	var groups []skillGroupView
	index := map[resume.SkillCategory]int{}
	for _, skill := range skills {
		pos, ok := index[skill.Category]
		if !ok {
			pos = len(groups)
			index[skill.Category] = pos
			groups = append(groups, skillGroupView{Category: string(skill.Category)})
		}
		groups[pos].Skills = append(groups[pos].Skills, skillView{
			Name:  skill.Name,
			Level: string(skill.Level),
			Badge: badgeClass(skill.Level),
		})
	}
	return groups
}

func badgeClass(level resume.SkillLevel) string {
	switch level {
	case resume.LevelExpert, resume.LevelAdvanced, resume.LevelIntermediate:
		return "badge-" + strings.ToLower(string(level))
	default:
		return "badge-beginner"
	}
}

func experiencePeriod(exp resume.Experience) string {
	if exp.StartDate == "" {
		return ""
	}
	start := FormatDate(exp.StartDate)
	switch {
	case exp.Current:
		return start + " - Present"
	case exp.EndDate != "":
		return start + " - " + FormatDate(exp.EndDate)
	default:
		return start
	}
}

// FormatDate renders YYYY-MM and YYYY-MM-DD values as "Jan 2006". Other
// values are returned unchanged.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("Jan 2006")
		}
	}
	return value
}

// FontFamily returns the CSS font stack for font.
func FontFamily(font resume.Font) string {
	switch font {
	case resume.FontRoboto:
		return `"Roboto", ui-sans-serif, system-ui, sans-serif`
	case resume.FontCrimson:
		return `"Crimson Text", ui-serif, Georgia, serif`
	case resume.FontMontserrat:
		return `"Montserrat", ui-sans-serif, system-ui, sans-serif`
	default:
		return `"Inter", ui-sans-serif, system-ui, sans-serif`
	}
}

func rootStyle(scale float64) string {
	parts := []string{
		"font-size: 14px",
		"line-height: 1.6",
		"color: #111827",
		"background-color: #ffffff",
		"min-height: 11in",
		"position: relative",
	}
	if scale > 0 && scale != 1 {
		parts = append(parts,
			fmt.Sprintf("transform: scale(%s)", strconv.FormatFloat(scale, 'f', -1, 64)),
			"transform-origin: top center",
		)
	}
	return strings.Join(parts, "; ")
}

func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
