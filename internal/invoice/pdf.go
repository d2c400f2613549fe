package invoice

import (
	_ "embed"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFont = "DejaVu"

	pdfMargin     = 72.0
	pdfLabelWidth = 150.0
	pdfValueWidth = 300.0
	pdfRowHeight  = 20.0
)

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

// PDFEncoder draws a Document on letter-size pages.
type PDFEncoder struct {
	// Compress toggles stream compression. Tests turn it off to inspect the text.
	Compress bool
}

// Ext is the file extension of the document.
func (e PDFEncoder) Ext() string { return "pdf" }

// Encode writes doc as a PDF with an embedded DejaVu font.
func (e PDFEncoder) Encode(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(e.Compress)
	pdf.SetTitle(doc.Title+" "+doc.BookingID, true)
	pdf.SetCreator("invoice-bot", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddUTF8FontFromBytes(pdfFont, "", dejaVuRegular)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", dejaVuBold)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 16)
	pdf.SetTextColor(139, 0, 0)
	pdf.CellFormat(0, 20, pdfText(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(pdfFont, "", 10)
	pdf.CellFormat(0, 14, pdfText("Booking ID: "+doc.BookingID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 14, pdfText("Date: "+doc.GeneratedOn), "", 1, "L", false, 0, "")
	pdf.Ln(12)

	for _, section := range doc.Sections {
		pdf.SetFont(pdfFont, "B", 14)
		pdf.CellFormat(0, 18, pdfText(section.Heading), "", 1, "L", false, 0, "")
		pdf.Ln(4)

		if len(section.Rows) > 0 {
			drawPDFTable(pdf, section.Rows)
		}

		for _, note := range section.Notes {
			pdf.SetFont(pdfFont, "B", 11)
			pdf.CellFormat(0, 16, pdfText(note.Title), "", 1, "L", false, 0, "")
			pdf.SetFont(pdfFont, "", 10)
			pdf.MultiCell(0, 14, pdfText(note.Body), "", "L", false)
			pdf.Ln(6)
		}
		pdf.Ln(12)
	}

	return pdf.Output(w)
}

// drawPDFTable renders label/value rows with a grey, bold first row and a grid.
func drawPDFTable(pdf *fpdf.Fpdf, rows []Row) {
	pdf.SetDrawColor(128, 128, 128)
	pdf.SetLineWidth(0.5)
	pdf.SetFillColor(211, 211, 211)

	for i, row := range rows {
		header := i == 0
		if header {
			pdf.SetFont(pdfFont, "B", 10)
		} else {
			pdf.SetFont(pdfFont, "", 10)
		}

		pdf.CellFormat(pdfLabelWidth, pdfRowHeight, pdfText(row.Label), "1", 0, "L", header, 0, "")

		if row.Link != "" {
			pdf.SetTextColor(0, 0, 238)
			pdf.CellFormat(pdfValueWidth, pdfRowHeight, pdfText(row.Value), "1", 1, "L", header, 0, row.Link)
			pdf.SetTextColor(0, 0, 0)
			continue
		}
		pdf.CellFormat(pdfValueWidth, pdfRowHeight, pdfText(row.Value), "1", 1, "L", header, 0, "")
	}
}

// pdfText keeps text within what the embedded font encoding can carry: valid
// UTF-8 in the Basic Multilingual Plane. Other runes become U+FFFD.
func pdfText(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return utf8.RuneError
		}
		return r
	}, strings.ToValidUTF8(s, string(utf8.RuneError)))
}
