// Package resumesqlite exports a resume as a standalone SQLite database file.
//
// Renderer is disabled by default; enable it and register it on the service:
//
//	svc := resume.NewService(resume.ServiceConfig{
//		DataRenderers: map[resume.DataFormat]resume.DataRenderer{
//			resumesqlite.FormatSQLite: resumesqlite.Renderer{Enabled: true},
//		},
//	})
//
// The file holds one table per section: settings, personal_info, experience,
// education, and skills. List rows keep their order in an ord column.
package resumesqlite
