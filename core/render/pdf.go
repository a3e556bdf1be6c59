// Package render: PDF renderer.
// Lays out a ParsedDocument as a one-column A4 report using gofpdf.
// Scanned inner HTML is flattened to text first; images are listed by URL,
// not embedded.
package render

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/microcosm-cc/bluemonday"

	"github.com/gaurav-prasanna/pagemeta/core"
)

// PDFRenderer renders a ParsedDocument as a PDF report.
type PDFRenderer struct {
	policy *bluemonday.Policy
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{policy: bluemonday.StrictPolicy()}
}

// Render converts doc into PDF bytes.
func (r *PDFRenderer) Render(doc *core.ParsedDocument) ([]byte, error) {
	if doc == nil {
		doc = &core.ParsedDocument{}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := r.plainText(doc.Title)
	if title == "" {
		title = "Untitled document"
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, tr(title), "", "L", false)
	pdf.Ln(2)

	if doc.URL != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, tr("Source: "+doc.URL), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	renderField(pdf, tr, "Description", doc.Description)
	renderField(pdf, tr, "Keywords", doc.Keywords)

	if len(doc.Headlines) > 0 {
		renderHeading(pdf, tr, "Headlines")
		pdf.SetFont("Helvetica", "", 10)
		for _, h := range doc.Headlines {
			pdf.MultiCell(0, 5, tr("• "+r.plainText(h)), "", "L", false)
		}
	}

	renderProperties(pdf, tr, "Open Graph", doc.OpenGraph)
	renderProperties(pdf, tr, "Twitter Card", doc.Twitter)

	if len(doc.Images) > 0 {
		renderHeading(pdf, tr, "Images")
		pdf.SetFont("Courier", "", 8)
		for _, img := range doc.Images {
			pdf.MultiCell(0, 4.5, tr(img), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// plainText strips markup and decodes entities from a scanned fragment.
func (r *PDFRenderer) plainText(fragment string) string {
	text := stdhtml.UnescapeString(r.policy.Sanitize(fragment))
	return strings.Join(strings.Fields(text), " ")
}

func renderHeading(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.MultiCell(0, 7, tr(text), "", "L", false)
	pdf.Ln(1)
}

func renderField(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.MultiCell(0, 5, tr(label), "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, tr(value), "", "L", false)
	pdf.Ln(2)
}

func renderProperties(pdf *gofpdf.Fpdf, tr func(string) string, title string, props map[string]string) {
	if len(props) == 0 {
		return
	}
	renderHeading(pdf, tr, title)
	for _, key := range sortedKeys(props) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 5, tr(key), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(props[key]), "", "L", false)
	}
}
