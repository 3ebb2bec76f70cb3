package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
)

const (
	pdfPageWidth = 277.0
	pdfRowHeight = 6.0
)

var (
	headerColor       = [3]int{40, 40, 40}
	headerTextColor   = [3]int{255, 255, 255}
	sectionTitleColor = [3]int{0, 0, 0}
	bodyTextColor     = [3]int{50, 50, 50}
	lineColor         = [3]int{200, 200, 200}
)

// PDFTransformer renders all reports into a landscape A4 document.
type PDFTransformer struct {
	now func() time.Time
}

// NewPDFTransformer is the transformer factory of the pdf format.
func NewPDFTransformer() repository.Transformer {
	return &PDFTransformer{now: time.Now}
}

func (p *PDFTransformer) Extension() string {
	return "pdf"
}

func (p *PDFTransformer) Render(reports []entity.Report, settings entity.RunSettings) ([]byte, error) {
	sections, err := documentSections(reports)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	footerText := fmt.Sprintf("Generated by Costlocker reports | %s", p.now().Format("2006-01-02"))

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  %s", settings.Title)), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	for _, s := range sections {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(s.heading))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+pdfPageWidth, pdf.GetY())
		pdf.Ln(2)

		widths := columnWidths(s.table.Columns)
		drawRow := func(cells []string, columns []entity.Column, style string, fill bool) {
			pdf.SetFont("Arial", style, 9)
			for c, text := range cells {
				align := "L"
				if c > 0 && columns[c].Numeric() {
					align = "R"
				}
				pdf.CellFormat(widths[c], pdfRowHeight, tr(fitText(pdf, text, widths[c])), "B", 0, align, fill, 0, "")
			}
			pdf.Ln(-1)
		}

		headers := make([]string, len(s.table.Columns))
		for c, column := range s.table.Columns {
			headers[c] = column.Header
		}
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		drawRow(headers, s.table.Columns, "B", true)

		for _, row := range s.table.Rows {
			drawRow(pdfCells(s.table.Columns, row), s.table.Columns, "", false)
		}
		if s.table.TotalValues != nil {
			drawRow(pdfCells(s.table.Columns, s.table.TotalValues), s.table.Columns, "B", false)
		}
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error writing PDF file: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfCells(columns []entity.Column, row []any) []string {
	cells := make([]string, len(columns))
	for c, column := range columns {
		if c < len(row) {
			cells[c] = formatValue(column, row[c])
		}
	}
	return cells
}

// columnWidths splits the page width giving text columns twice the room of
// numeric ones.
func columnWidths(columns []entity.Column) []float64 {
	units := 0.0
	for _, c := range columns {
		units += columnUnits(c)
	}
	widths := make([]float64, len(columns))
	for i, c := range columns {
		widths[i] = pdfPageWidth * columnUnits(c) / units
	}
	return widths
}

func columnUnits(c entity.Column) float64 {
	if c.Numeric() {
		return 1
	}
	return 2
}

func fitText(pdf *gofpdf.Fpdf, text string, width float64) string {
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes))+2 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
