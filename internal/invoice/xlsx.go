package invoice

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxSheet = "Invoice"
	// excelize paper size code for US Letter.
	xlsxPaperLetter = 1
)

// XLSXEncoder writes a Document as a single-sheet workbook laid out for
// letter-size printing.
type XLSXEncoder struct{}

// Ext is the file extension of the workbook.
func (XLSXEncoder) Ext() string { return "xlsx" }

// Encode writes doc as a single-sheet workbook.
func (XLSXEncoder) Encode(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	s := &xlsxSheetWriter{f: f}
	s.styles()
	s.setup(doc)

	row := 1
	s.mergedText(row, doc.Title, s.titleStyle)
	row += 2
	s.mergedText(row, "Booking ID: "+doc.BookingID, 0)
	row++
	s.mergedText(row, "Date: "+doc.GeneratedOn, 0)
	row += 2

	for _, section := range doc.Sections {
		s.mergedText(row, section.Heading, s.headingStyle)
		row++

		for i, r := range section.Rows {
			style := s.cellStyle
			if i == 0 {
				style = s.headerStyle
			}
			s.cell(1, row, r.Label, style)
			s.cell(2, row, r.Value, style)
			if r.Link != "" {
				s.link(2, row, r.Link)
			}
			row++
		}

		for _, note := range section.Notes {
			s.mergedText(row, note.Title, s.noteTitleStyle)
			row++
			s.mergedText(row, note.Body, 0)
			row++
		}
		row++
	}

	if s.err != nil {
		return s.err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// xlsxSheetWriter keeps the first error so layout code reads straight through.
type xlsxSheetWriter struct {
	f   *excelize.File
	err error

	titleStyle     int
	headingStyle   int
	noteTitleStyle int
	headerStyle    int
	cellStyle      int
}

func (s *xlsxSheetWriter) fail(err error) {
	if s.err == nil && err != nil {
		s.err = err
	}
}

func (s *xlsxSheetWriter) newStyle(style *excelize.Style) int {
	id, err := s.f.NewStyle(style)
	s.fail(err)
	return id
}

func (s *xlsxSheetWriter) styles() {
	grid := []excelize.Border{
		{Type: "left", Color: "808080", Style: 1},
		{Type: "right", Color: "808080", Style: 1},
		{Type: "top", Color: "808080", Style: 1},
		{Type: "bottom", Color: "808080", Style: 1},
	}

	s.titleStyle = s.newStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "8B0000"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.headingStyle = s.newStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	s.noteTitleStyle = s.newStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	s.headerStyle = s.newStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "left"},
		Border:    grid,
	})
	s.cellStyle = s.newStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", WrapText: true},
		Border:    grid,
	})
}

func (s *xlsxSheetWriter) setup(doc Document) {
	size := xlsxPaperLetter
	orientation := "portrait"
	s.fail(s.f.SetPageLayout(xlsxSheet, &excelize.PageLayoutOptions{
		Size:        &size,
		Orientation: &orientation,
	}))
	s.fail(s.f.SetColWidth(xlsxSheet, "A", "A", 25))
	s.fail(s.f.SetColWidth(xlsxSheet, "B", "B", 50))
	s.fail(s.f.SetDocProps(&excelize.DocProperties{
		Title:   doc.Title + " " + doc.BookingID,
		Creator: "invoice-bot",
	}))
}

func (s *xlsxSheetWriter) cell(col, row int, value string, style int) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		s.fail(err)
		return
	}
	s.fail(s.f.SetCellValue(xlsxSheet, name, value))
	if style != 0 {
		s.fail(s.f.SetCellStyle(xlsxSheet, name, name, style))
	}
}

// mergedText writes value across columns A:B of the given row.
func (s *xlsxSheetWriter) mergedText(row int, value string, style int) {
	s.cell(1, row, value, style)
	s.fail(s.f.MergeCell(xlsxSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row)))
}

func (s *xlsxSheetWriter) link(col, row int, target string) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		s.fail(err)
		return
	}
	s.fail(s.f.SetCellHyperLink(xlsxSheet, name, target, "External"))
}
