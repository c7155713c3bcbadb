// Package resumetemplate renders the resume preview document.
//
// Renderer turns resume data into a full HTML page whose root resume node
// carries the data-resume-preview marker used by the export pipeline. The
// crimson, modern, and classic layouts are pongo2 templates embedded in the
// binary; they extend a shared base and only override the theme block.
//
// A custom TemplateExecutor can be supplied to render from a different set,
// for example templates on disk during development.
package resumetemplate
