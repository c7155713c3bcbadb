// Package resumepdf provides the headless browser view and PDF assembly
// adapters for the resume export pipeline.
//
// ChromiumViewer hosts a rendered preview in a chromedp tab and exposes the
// marked preview node for capture. Assembler places the captured raster on A4
// pages with fpdf and verifies the page count with pdfcpu.
package resumepdf
