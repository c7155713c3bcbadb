package resumesqlite

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/goliatone/go-resume/resume"
)

func sampleResume() resume.Data {
	data := resume.DefaultData()
	data.PersonalInfo = resume.PersonalInfo{FullName: "Ada Lovelace", Email: "ada@example.com"}
	data.Experience = []resume.Experience{
		{ID: "exp-1", Company: "Analytical Engines", Position: "Programmer", StartDate: "1842-01", Current: true, Description: []string{"Wrote notes", "Computed Bernoulli numbers"}},
		{ID: "exp-2", Company: "Royal Society", Position: "Translator", StartDate: "1840-01", EndDate: "1841-12"},
	}
	data.Education = []resume.Education{{ID: "edu-1", Institution: "Home", Degree: "Private tutoring", Field: "Mathematics"}}
	data.Skills = []resume.Skill{
		{Name: "Mathematics", Level: resume.LevelExpert, Category: resume.CategoryTechnical},
		{Name: "French", Level: resume.LevelAdvanced, Category: resume.CategoryLanguage},
	}
	return data
}

func TestRenderer_RendersSQLite(t *testing.T) {
	renderer := Renderer{Enabled: true}
	buf := &bytes.Buffer{}
	n, err := renderer.Render(context.Background(), sampleResume(), buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Fatalf("expected %d bytes counted, got %d", buf.Len(), n)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("SQLite format 3")) {
		t.Fatalf("expected sqlite header")
	}

	db, err := sql.Open("sqlite", writeTempSQLite(t, buf.Bytes()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	var name, template string
	if err := db.QueryRow(`SELECT full_name FROM personal_info`).Scan(&name); err != nil {
		t.Fatalf("query personal_info: %v", err)
	}
	if err := db.QueryRow(`SELECT template FROM settings`).Scan(&template); err != nil {
		t.Fatalf("query settings: %v", err)
	}
	if name != "Ada Lovelace" || template != string(resume.TemplateCrimson) {
		t.Fatalf("unexpected header row %q %q", name, template)
	}

	rows, err := db.Query(`SELECT id, current, description FROM experience ORDER BY ord`)
	if err != nil {
		t.Fatalf("query experience: %v", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	type expRow struct {
		id          string
		current     int
		description string
	}
	var results []expRow
	for rows.Next() {
		var row expRow
		if err := rows.Scan(&row.id, &row.current, &row.description); err != nil {
			t.Fatalf("scan: %v", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(results) != 2 || results[0].id != "exp-1" || results[0].current != 1 {
		t.Fatalf("unexpected experience rows: %+v", results)
	}
	if results[0].description != "Wrote notes\nComputed Bernoulli numbers" {
		t.Fatalf("unexpected description: %q", results[0].description)
	}

	var skills int
	if err := db.QueryRow(`SELECT COUNT(*) FROM skills`).Scan(&skills); err != nil {
		t.Fatalf("count skills: %v", err)
	}
	if skills != 2 {
		t.Fatalf("expected 2 skills, got %d", skills)
	}
}

func TestRenderer_Disabled(t *testing.T) {
	_, err := Renderer{}.Render(context.Background(), sampleResume(), &bytes.Buffer{})
	if !resume.IsKind(err, resume.KindNotImpl) {
		t.Fatalf("expected not implemented, got %v", err)
	}
}

func TestRenderer_ServiceExport(t *testing.T) {
	svc := resume.NewService(resume.ServiceConfig{
		DataRenderers: map[resume.DataFormat]resume.DataRenderer{
			FormatSQLite: Renderer{Enabled: true},
		},
	})
	buf := &bytes.Buffer{}
	result, err := svc.ExportData(context.Background(), FormatSQLite, buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Filename != "resume.sqlite" || result.ContentType != "application/vnd.sqlite3" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRenderer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Renderer{Enabled: true}).Render(ctx, sampleResume(), &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}

func writeTempSQLite(t *testing.T, data []byte) string {
	t.Helper()

	file, err := os.CreateTemp("", "sqlite-test-*.sqlite")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		t.Fatalf("write temp file: %v", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		t.Fatalf("close temp file: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Remove(file.Name())
	})
	return file.Name()
}
