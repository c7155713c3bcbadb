package resumetemplate

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-resume/resume"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func filledData() resume.Data {
	data := resume.DefaultData()
	data.PersonalInfo = resume.PersonalInfo{
		FullName: "Grace Hopper",
		Email:    "grace@example.com",
		LinkedIn: "https://linkedin.com/in/grace",
		Summary:  "Compiler pioneer <b>bold</b>",
	}
	data.Experience = []resume.Experience{{
		ID:          "e1",
		Company:     "US Navy",
		Position:    "Rear Admiral",
		StartDate:   "1943-12",
		Current:     true,
		Description: []string{"Led COBOL work", ""},
	}}
	data.Education = []resume.Education{{
		ID:          "d1",
		Institution: "Yale",
		Degree:      "PhD",
		Field:       "Mathematics",
		StartDate:   "1930-09",
		EndDate:     "1934-06-01",
	}}
	data.Skills = []resume.Skill{
		{Name: "COBOL", Level: resume.LevelExpert, Category: resume.CategoryTechnical},
		{Name: "Leadership", Level: resume.LevelAdvanced, Category: resume.CategorySoft},
		{Name: "FLOW-MATIC", Level: resume.LevelIntermediate, Category: resume.CategoryTechnical},
	}
	return data
}

func TestRendererMarksPreviewNode(t *testing.T) {
	out, err := newTestRenderer(t).Render(context.Background(), filledData(), resume.PreviewOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if strings.Count(html, resume.PreviewMarker) != 1 {
		t.Fatalf("expected exactly one preview marker")
	}
	if !strings.Contains(html, `data-has-content="true"`) {
		t.Fatalf("expected has-content flag")
	}
	if !strings.Contains(html, "resume-crimson") {
		t.Fatalf("expected crimson layout")
	}
	if strings.Contains(html, "transform: scale") {
		t.Fatalf("expected no display transform at scale 1")
	}
	if strings.Contains(html, "<b>bold</b>") {
		t.Fatalf("expected user content to be escaped")
	}
}

func TestRendererSections(t *testing.T) {
	out, err := newTestRenderer(t).Render(context.Background(), filledData(), resume.PreviewOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		"Grace Hopper - Resume",
		"Professional Summary",
		"Dec 1943 - Present",
		"Sep 1930 - Jun 1934",
		"Major: Mathematics",
		">LinkedIn<",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
	if strings.Contains(html, "Your Resume Preview") {
		t.Fatalf("expected no empty state")
	}
	if strings.Count(html, `<li class="resume-text">`) != 1 {
		t.Fatalf("expected blank description lines to be dropped")
	}

	technical := strings.Index(html, "<h3>Technical</h3>")
	soft := strings.Index(html, "<h3>Soft</h3>")
	if technical < 0 || soft < 0 || technical > soft {
		t.Fatalf("expected skill groups in first-seen order")
	}
	if strings.Count(html, "<h3>Technical</h3>") != 1 {
		t.Fatalf("expected one technical group")
	}
}

func TestRendererEmptyState(t *testing.T) {
	out, err := newTestRenderer(t).Render(context.Background(), resume.DefaultData(), resume.PreviewOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "Your Resume Preview") || !strings.Contains(html, "Fill out the form to see your resume come to life!") {
		t.Fatalf("expected empty state")
	}
	if !strings.Contains(html, `data-has-content="false"`) {
		t.Fatalf("expected has-content false")
	}
	if !strings.Contains(html, "Your Name") {
		t.Fatalf("expected name placeholder")
	}
}

func TestRendererDisplayScaleAndFont(t *testing.T) {
	data := filledData()
	data.Template = resume.TemplateModern
	data.Font = resume.FontMontserrat
	out, err := newTestRenderer(t).Render(context.Background(), data, resume.PreviewOptions{DisplayScale: 0.75})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "transform: scale(0.75)") {
		t.Fatalf("expected display transform")
	}
	if !strings.Contains(html, `"Montserrat"`) {
		t.Fatalf("expected montserrat font stack")
	}
	if !strings.Contains(html, "resume-modern") {
		t.Fatalf("expected modern layout")
	}
}

func TestRendererAllTemplates(t *testing.T) {
	renderer := newTestRenderer(t)
	for _, tmpl := range []resume.Template{resume.TemplateCrimson, resume.TemplateModern, resume.TemplateClassic} {
		data := filledData()
		data.Template = tmpl
		out, err := renderer.Render(context.Background(), data, resume.PreviewOptions{})
		if err != nil {
			t.Fatalf("render %s: %v", tmpl, err)
		}
		if !strings.Contains(string(out), `class="resume resume-`+string(tmpl)+`"`) {
			t.Fatalf("expected %s layout class", tmpl)
		}
	}
}

func TestRendererValidation(t *testing.T) {
	data := filledData()
	data.Template = "fancy"
	if _, err := newTestRenderer(t).Render(context.Background(), data, resume.PreviewOptions{}); !resume.IsKind(err, resume.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var empty Renderer
	if _, err := empty.Render(context.Background(), filledData(), resume.PreviewOptions{}); !resume.IsKind(err, resume.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type failingExecutor struct{}

func (failingExecutor) ExecuteTemplate(io.Writer, string, any) error {
	return errors.New("boom")
}

func TestRendererExecutorFailure(t *testing.T) {
	renderer := &Renderer{Templates: failingExecutor{}}
	if _, err := renderer.Render(context.Background(), filledData(), resume.PreviewOptions{}); !resume.IsKind(err, resume.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2021-03":    "Mar 2021",
		"2021-03-15": "Mar 2021",
		"Spring 21":  "Spring 21",
		"":           "",
	}
	for input, want := range tests {
		if got := FormatDate(input); got != want {
			t.Fatalf("FormatDate(%q): expected %q, got %q", input, want, got)
		}
	}
}
