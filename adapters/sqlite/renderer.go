package resumesqlite

import (
	"context"
	"database/sql"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-resume/resume"
	_ "modernc.org/sqlite"
)

// FormatSQLite selects the SQLite data export.
const FormatSQLite resume.DataFormat = "sqlite"

var schemaSQL = []string{
	`CREATE TABLE settings (template TEXT, theme TEXT, font TEXT)`,
	`CREATE TABLE personal_info (full_name TEXT, email TEXT, phone TEXT, location TEXT, linkedin TEXT, github TEXT, portfolio TEXT, summary TEXT)`,
	`CREATE TABLE experience (ord INTEGER, id TEXT, company TEXT, title TEXT, location TEXT, start_date TEXT, end_date TEXT, current INTEGER, description TEXT)`,
	`CREATE TABLE education (ord INTEGER, id TEXT, institution TEXT, degree TEXT, field TEXT, start_date TEXT, end_date TEXT, gpa TEXT, achievements TEXT)`,
	`CREATE TABLE skills (ord INTEGER, name TEXT, level TEXT, category TEXT)`,
}

// Renderer writes the resume into a temp SQLite database and streams it.
type Renderer struct {
	Enabled bool
}

var _ resume.DataRenderer = Renderer{}

func (Renderer) ContentType() string { return "application/vnd.sqlite3" }
func (Renderer) Extension() string   { return "sqlite" }

// Render writes data to w as a SQLite database file.
func (r Renderer) Render(ctx context.Context, data resume.Data, w io.Writer) (int64, error) {
	if !r.Enabled {
		return 0, resume.NewError(resume.KindNotImpl, "sqlite renderer is disabled", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tempFile, err := os.CreateTemp("", "go-resume-*.sqlite")
	if err != nil {
		return 0, resume.NewError(resume.KindInternal, "sqlite temp file create failed", err)
	}
	path := tempFile.Name()
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(path)
		return 0, resume.NewError(resume.KindInternal, "sqlite temp file close failed", err)
	}
	defer func() {
		_ = os.Remove(path)
	}()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, resume.NewError(resume.KindInternal, "sqlite open failed", err)
	}
	if err := writeResume(ctx, db, data); err != nil {
		_ = db.Close()
		return 0, err
	}
	if err := db.Close(); err != nil {
		return 0, resume.NewError(resume.KindInternal, "sqlite close failed", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, resume.NewError(resume.KindInternal, "sqlite temp file open failed", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cw := &countingWriter{w: w}
	if _, err := io.Copy(cw, file); err != nil {
		return cw.count, resume.NewError(resume.KindInternal, "sqlite stream failed", err)
	}
	return cw.count, nil
}

func writeResume(ctx context.Context, db *sql.DB, data resume.Data) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return resume.NewError(resume.KindInternal, "sqlite begin transaction failed", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range schemaSQL {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return resume.NewError(resume.KindInternal, "sqlite create table failed", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO settings VALUES (?, ?, ?)`,
		string(data.Template), string(data.Theme), string(data.Font)); err != nil {
		return insertError(err)
	}

	info := data.PersonalInfo
	if _, err := tx.ExecContext(ctx, `INSERT INTO personal_info VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.FullName, info.Email, info.Phone, info.Location, info.LinkedIn, info.GitHub, info.Portfolio, info.Summary); err != nil {
		return insertError(err)
	}

	for i, exp := range data.Experience {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO experience VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, exp.ID, exp.Company, exp.Position, exp.Location, exp.StartDate, exp.EndDate, boolInt(exp.Current), joinLines(exp.Description)); err != nil {
			return insertError(err)
		}
	}

	for i, edu := range data.Education {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO education VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, edu.ID, edu.Institution, edu.Degree, edu.Field, edu.StartDate, edu.EndDate, edu.GPA, joinLines(edu.Achievements)); err != nil {
			return insertError(err)
		}
	}

	for i, skill := range data.Skills {
		if _, err := tx.ExecContext(ctx, `INSERT INTO skills VALUES (?, ?, ?, ?)`,
			i, skill.Name, string(skill.Level), string(skill.Category)); err != nil {
			return insertError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return resume.NewError(resume.KindInternal, "sqlite commit failed", err)
	}
	return nil
}

func insertError(err error) error {
	return resume.NewError(resume.KindInternal, "sqlite insert failed", err)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
