package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/geniusisme/falldice/internal/attack"
)

const (
	pdfMargin     = 36.0
	pdfNameWidth  = 150.0
	pdfColWidth   = 80.0
	pdfRowHeight  = 18.0
	pdfTitleSize  = 16.0
	pdfFontSize   = 9.0
	pdfMaxNameLen = 28
)

// RenderPDF renders entries as a one-table landscape PDF.
func RenderPDF(entries []Entry, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("falldice report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", pdfTitleSize)
	pdf.CellFormat(0, 24, "Expected attack scores", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", pdfFontSize)
	pdf.CellFormat(0, 14, "Generated "+generated.UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	facets := attack.Facets()

	// Header row
	pdf.SetFont("Helvetica", "B", pdfFontSize)
	pdf.SetFillColor(220, 220, 220)
	pdf.CellFormat(pdfNameWidth, pdfRowHeight, "cast", "1", 0, "L", true, 0, "")
	for _, f := range facets {
		pdf.CellFormat(pdfColWidth, pdfRowHeight, strings.ReplaceAll(f.String(), "_", " "), "1", 0, "C", true, 0, "")
	}
	pdf.CellFormat(pdfColWidth, pdfRowHeight, "mass", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", pdfFontSize)
	for i, e := range entries {
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)

		name := e.Name
		if len(name) > pdfMaxNameLen {
			name = name[:pdfMaxNameLen-3] + "..."
		}
		pdf.CellFormat(pdfNameWidth, pdfRowHeight, name, "1", 0, "L", fill, 0, "")
		for _, f := range facets {
			pdf.CellFormat(pdfColWidth, pdfRowHeight, fmt.Sprintf("%.4f", e.Scores.Get(f)), "1", 0, "R", fill, 0, "")
		}
		pdf.CellFormat(pdfColWidth, pdfRowHeight, fmt.Sprintf("%.6f", e.Mass), "1", 1, "R", fill, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
