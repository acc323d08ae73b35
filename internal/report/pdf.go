package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/rbright/mockview/internal/session"
)

const (
	pdfMargin     = 20.0
	pdfLineHeight = 6.0
)

// PDF writes an A4 summary: a cover page with the final score, then one page per response.
func PDF(w io.Writer, responses []session.Response) error {
	return writePDF(w, responses, true)
}

func writePDF(w io.Writer, responses []session.Response, compress bool) error {
	doc := buildPDF(responses)
	doc.SetCompression(compress)
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render report pdf: %w", err)
	}
	return nil
}

func buildPDF(responses []session.Response) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, pdfMargin)
	doc.SetTitle(Title, false)
	doc.SetCreator("mockview", false)

	// Core fonts are cp1252; answers may carry typographic quotes.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, tr(Title), "", 1, "C", false, 0, "")
	doc.Ln(4)
	doc.SetFont("Helvetica", "B", 15)
	doc.CellFormat(0, 10, fmt.Sprintf("Final Score: %s/10", FormatAverage(responses)), "", 1, "L", false, 0, "")

	for i, r := range responses {
		doc.AddPage()
		doc.SetFont("Helvetica", "B", 13)
		doc.MultiCell(0, 8, tr(fmt.Sprintf("Q%d: %s", i+1, r.Question)), "", "L", false)
		doc.Ln(2)
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, pdfLineHeight, tr("Answer: "+r.Answer), "", "L", false)
		doc.Ln(2)
		doc.MultiCell(0, pdfLineHeight, tr("Feedback: "+r.Feedback), "", "L", false)
		doc.Ln(2)
		doc.MultiCell(0, pdfLineHeight, fmt.Sprintf("Score: %d/10", r.Score), "", "L", false)
	}
	return doc
}
