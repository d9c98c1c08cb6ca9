package view

import (
	"io"

	"github.com/phpdave11/gofpdf"
)

// WritePDF renders m as an A4 report, adding pages as the sections need
// them. The loading model yields a page holding only the placeholder.
func WritePDF(w io.Writer, m Model) error {
	return newReport(m).Output(w)
}

func newReport(m Model) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("hey, Wrap", true)
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if m.Loading {
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 8, tr(LoadingText))
		return pdf
	}

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(20, 20, 20)
	pdf.Cell(0, 10, "hey, Wrap")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	if m.Range != "" {
		pdf.Cell(0, 6, tr(m.Range))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	for _, sec := range Sections(m) {
		if pdf.GetY() > 260 {
			pdf.AddPage()
		}
		if sec.Title == "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetTextColor(180, 30, 30)
			for _, line := range sec.Lines {
				pdf.MultiCell(0, 6, tr(line), "", "L", false)
			}
			pdf.Ln(4)
			continue
		}
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(0, 8, tr(sec.Title), "", 1, "L", true, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(30, 30, 30)
		for _, line := range sec.Lines {
			pdf.MultiCell(0, 6, tr(line), "", "L", false)
		}
		pdf.Ln(4)
	}

	return pdf
}
