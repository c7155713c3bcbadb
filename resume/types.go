package resume

import (
	"context"
	"image"
	"time"
)

// Template selects the visual layout of the preview.
type Template string

const (
	TemplateCrimson Template = "crimson"
	TemplateModern  Template = "modern"
	TemplateClassic Template = "classic"
)

// Theme selects the color scheme of the builder.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Font selects the typeface used by the preview.
type Font string

const (
	FontInter      Font = "inter"
	FontRoboto     Font = "roboto"
	FontCrimson    Font = "crimson"
	FontMontserrat Font = "montserrat"
)

// SkillLevel grades a skill.
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "Beginner"
	LevelIntermediate SkillLevel = "Intermediate"
	LevelAdvanced     SkillLevel = "Advanced"
	LevelExpert       SkillLevel = "Expert"
)

// SkillCategory groups skills in the preview.
type SkillCategory string

const (
	CategoryTechnical SkillCategory = "Technical"
	CategorySoft      SkillCategory = "Soft"
	CategoryLanguage  SkillCategory = "Language"
	CategoryTool      SkillCategory = "Tool"
)

// PersonalInfo holds the header block of a resume.
type PersonalInfo struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
	Summary   string `json:"summary"`
}

// Education is a single education entry.
type Education struct {
	ID           string   `json:"id"`
	Institution  string   `json:"institution"`
	Degree       string   `json:"degree"`
	Field        string   `json:"field"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	GPA          string   `json:"gpa,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// Experience is a single work experience entry.
type Experience struct {
	ID          string   `json:"id"`
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Location    string   `json:"location"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Current     bool     `json:"current"`
	Description []string `json:"description"`
}

// Skill is a named skill with a level and category.
type Skill struct {
	Name     string        `json:"name"`
	Level    SkillLevel    `json:"level"`
	Category SkillCategory `json:"category"`
}

// Data is the full resume data graph.
type Data struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Education    []Education  `json:"education"`
	Experience   []Experience `json:"experience"`
	Skills       []Skill      `json:"skills"`
	Template     Template     `json:"template"`
	Theme        Theme        `json:"theme"`
	Font         Font         `json:"font"`
}

// DefaultData returns the initial, empty resume.
func DefaultData() Data {
	return Data{
		Education:  []Education{},
		Experience: []Experience{},
		Skills:     []Skill{},
		Template:   TemplateCrimson,
		Theme:      ThemeLight,
		Font:       FontInter,
	}
}

// HasContent reports whether the resume has anything worth rendering.
func (d Data) HasContent() bool {
	return d.PersonalInfo.FullName != "" ||
		d.PersonalInfo.Summary != "" ||
		len(d.Education) > 0 ||
		len(d.Experience) > 0 ||
		len(d.Skills) > 0
}

// Clone returns a deep copy of the data graph.
func (d Data) Clone() Data {
	out := d
	out.Education = make([]Education, len(d.Education))
	for i, edu := range d.Education {
		edu.Achievements = cloneStrings(edu.Achievements)
		out.Education[i] = edu
	}
	out.Experience = make([]Experience, len(d.Experience))
	for i, exp := range d.Experience {
		exp.Description = cloneStrings(exp.Description)
		out.Experience[i] = exp
	}
	out.Skills = append([]Skill{}, d.Skills...)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

// PersonalInfoPatch updates the fields that are set.
type PersonalInfoPatch struct {
	FullName  *string `json:"fullName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Location  *string `json:"location,omitempty"`
	LinkedIn  *string `json:"linkedin,omitempty"`
	GitHub    *string `json:"github,omitempty"`
	Portfolio *string `json:"portfolio,omitempty"`
	Summary   *string `json:"summary,omitempty"`
}

// EducationPatch updates the fields that are set.
type EducationPatch struct {
	Institution  *string   `json:"institution,omitempty"`
	Degree       *string   `json:"degree,omitempty"`
	Field        *string   `json:"field,omitempty"`
	StartDate    *string   `json:"startDate,omitempty"`
	EndDate      *string   `json:"endDate,omitempty"`
	GPA          *string   `json:"gpa,omitempty"`
	Achievements *[]string `json:"achievements,omitempty"`
}

// ExperiencePatch updates the fields that are set.
type ExperiencePatch struct {
	Company     *string   `json:"company,omitempty"`
	Position    *string   `json:"position,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartDate   *string   `json:"startDate,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	Current     *bool     `json:"current,omitempty"`
	Description *[]string `json:"description,omitempty"`
}

// Observer is notified after every store mutation with a copy of the new state.
type Observer interface {
	OnChange(ctx context.Context, data Data)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(ctx context.Context, data Data)

func (f ObserverFunc) OnChange(ctx context.Context, data Data) {
	if f == nil {
		return
	}
	f(ctx, data)
}

// KeyValueStore is a local persistent slot store.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// PreviewOptions tune how the preview document is rendered.
type PreviewOptions struct {
	// DisplayScale shrinks the preview for on-screen display. Zero means 1.
	DisplayScale float64
	Title        string
}

// PreviewRenderer turns resume data into an HTML document that contains the
// marked preview node.
type PreviewRenderer interface {
	Render(ctx context.Context, data Data, opts PreviewOptions) ([]byte, error)
}

// Viewer opens a rendered document in a live view.
type Viewer interface {
	Open(ctx context.Context, html []byte) (Surface, error)
}

// Surface is a live, laid out document.
type Surface interface {
	// Locate returns the node carrying the marker attribute. It returns a
	// KindNotFound error when no such node exists.
	Locate(ctx context.Context, marker string) (Node, error)
	// FontsReady blocks until the document fonts have loaded.
	FontsReady(ctx context.Context) error
	Close() error
}

// Style maps CSS property names to inline values. An empty value clears the
// inline property.
type Style map[string]string

// Node is a handle on a live document node.
type Node interface {
	Style(ctx context.Context, props ...string) (Style, error)
	SetStyle(ctx context.Context, style Style) error
	ImageCount(ctx context.Context) (int, error)
	// AwaitImage blocks until the image at index has loaded or errored.
	AwaitImage(ctx context.Context, index int) error
	// Rasterize captures an isolated, normalized copy of the node.
	Rasterize(ctx context.Context, opts RasterOptions) (image.Image, error)
}

// CloneStyle describes the normalization applied to the captured copy.
type CloneStyle struct {
	Root          Style
	StripAncestor []string
	Eager         bool
	CrossOrigin   string
	AvoidBreaks   []string
}

// RasterOptions configure rasterization.
type RasterOptions struct {
	Width      int
	MinHeight  int
	Scale      float64
	Background string
	Clone      CloneStyle
}

// PlacementMode selects how a tall raster is split across pages.
type PlacementMode string

const (
	// PlacementShift places the full image on every page, shifted up one page
	// height per page; the page boundary clips it.
	PlacementShift PlacementMode = "shift"
	// PlacementCrop slices the raster and places one slice per page.
	PlacementCrop PlacementMode = "crop"
)

// PageGeometry describes the physical page in millimetres.
type PageGeometry struct {
	Width  float64
	Height float64
	Margin float64
}

// Placement positions the raster (or a slice of it) on a page.
type Placement struct {
	Page int
	X    float64
	Y    float64
	W    float64
	H    float64
	// SliceTop and SliceHeight select raster rows for PlacementCrop.
	SliceTop    int
	SliceHeight int
}

// Layout is the computed pagination plan.
type Layout struct {
	Mode       PlacementMode
	Geometry   PageGeometry
	ImgWidth   float64
	ImgHeight  float64
	Placements []Placement
}

// Pages returns the number of pages in the layout.
func (l Layout) Pages() int {
	return len(l.Placements)
}

// EncodedImage is a compressed raster ready to embed.
type EncodedImage struct {
	Name   string
	Type   string
	Width  int
	Height int
	Data   []byte
}

// AssemblyRequest is passed to the Assembler.
type AssemblyRequest struct {
	Layout Layout
	// Images holds one entry for PlacementShift, one per page for PlacementCrop.
	Images []EncodedImage
	Title  string
}

// Assembler builds a paginated PDF from placed images.
type Assembler interface {
	Assemble(ctx context.Context, req AssemblyRequest) ([]byte, error)
}

// Document is the finished export artifact.
type Document struct {
	Filename     string
	ContentType  string
	Data         []byte
	Layout       Layout
	CanvasWidth  int
	CanvasHeight int
	ImageDigest  string
}

// Pages returns the number of pages in the document.
func (d Document) Pages() int {
	return d.Layout.Pages()
}

// ExportState captures export progress states.
type ExportState string

const (
	StateRunning   ExportState = "running"
	StateCompleted ExportState = "completed"
	StateFailed    ExportState = "failed"
)

// ExportRecord captures tracker state for an export run.
type ExportRecord struct {
	ID          string
	State       ExportState
	Filename    string
	Template    Template
	Font        Font
	Pages       int
	Bytes       int64
	Error       string
	CreatedAt   time.Time
	CompletedAt time.Time
}

// ExportFilter narrows tracker listings.
type ExportFilter struct {
	State ExportState
	Since time.Time
	Limit int
}

// Tracker records export runs.
type Tracker interface {
	Start(ctx context.Context, record ExportRecord) (string, error)
	Complete(ctx context.Context, id string, doc Document) error
	Fail(ctx context.Context, id string, err error) error
	Status(ctx context.Context, id string) (ExportRecord, error)
	List(ctx context.Context, filter ExportFilter) ([]ExportRecord, error)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
