package resume

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	sheetPersonal   = "Personal"
	sheetExperience = "Experience"
	sheetEducation  = "Education"
	sheetSkills     = "Skills"
)

// XLSXRenderer renders the data graph as a workbook with one sheet per section.
type XLSXRenderer struct{}

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXRenderer) Extension() string { return "xlsx" }

// Render writes the workbook to w.
func (r XLSXRenderer) Render(ctx context.Context, data Data, w io.Writer) (int64, error) {
	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	defaultSheet := file.GetSheetName(0)
	if defaultSheet != sheetPersonal {
		if err := file.SetSheetName(defaultSheet, sheetPersonal); err != nil {
			return 0, NewError(KindEncoding, "xlsx sheet setup failed", err)
		}
	}
	for _, name := range []string{sheetExperience, sheetEducation, sheetSkills} {
		if _, err := file.NewSheet(name); err != nil {
			return 0, NewError(KindEncoding, "xlsx sheet setup failed", err)
		}
	}

	headerID, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, NewError(KindEncoding, "xlsx style setup failed", err)
	}

	info := data.PersonalInfo
	personal := [][]any{
		{"Field", "Value"},
		{"Full name", info.FullName},
		{"Email", info.Email},
		{"Phone", info.Phone},
		{"Location", info.Location},
		{"LinkedIn", info.LinkedIn},
		{"GitHub", info.GitHub},
		{"Portfolio", info.Portfolio},
		{"Summary", info.Summary},
		{"Template", string(data.Template)},
		{"Theme", string(data.Theme)},
		{"Font", string(data.Font)},
	}

	experience := [][]any{{"Company", "Position", "Location", "Start", "End", "Current", "Description"}}
	for _, exp := range data.Experience {
		experience = append(experience, []any{
			exp.Company, exp.Position, exp.Location, exp.StartDate, exp.EndDate, exp.Current,
			strings.Join(exp.Description, "\n"),
		})
	}

	education := [][]any{{"Institution", "Degree", "Field", "Start", "End", "GPA", "Achievements"}}
	for _, edu := range data.Education {
		education = append(education, []any{
			edu.Institution, edu.Degree, edu.Field, edu.StartDate, edu.EndDate, edu.GPA,
			strings.Join(edu.Achievements, "\n"),
		})
	}

	skills := [][]any{{"Name", "Level", "Category"}}
	for _, skill := range data.Skills {
		skills = append(skills, []any{skill.Name, string(skill.Level), string(skill.Category)})
	}

	for _, sheet := range []struct {
		name string
		rows [][]any
	}{
		{sheetPersonal, personal},
		{sheetExperience, experience},
		{sheetEducation, education},
		{sheetSkills, skills},
	} {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := writeSheet(file, sheet.name, sheet.rows, headerID); err != nil {
			return 0, NewError(KindEncoding, fmt.Sprintf("xlsx sheet %s failed", sheet.name), err)
		}
	}

	cw := &countingWriter{w: w}
	if _, err := file.WriteTo(cw); err != nil {
		return cw.count, NewError(KindEncoding, "xlsx write failed", err)
	}
	return cw.count, nil
}

func writeSheet(file *excelize.File, name string, rows [][]any, headerID int) error {
	stream, err := file.NewStreamWriter(name)
	if err != nil {
		return err
	}
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, value := range row {
			if i == 0 {
				cells[j] = excelize.Cell{StyleID: headerID, Value: value}
				continue
			}
			cells[j] = value
		}
		if err := stream.SetRow(fmt.Sprintf("A%d", i+1), cells); err != nil {
			return err
		}
	}
	return stream.Flush()
}
