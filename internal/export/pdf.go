package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF renders the paginated report into PDF bytes. Page breaks
// come from Paginate, not from the PDF library's auto break, so the
// layout under test is exactly the layout that prints.
func RenderPDF(doc ReportDocument, layout Layout) ([]byte, error) {
	pages := Paginate(doc, layout)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(layout.Margin, layout.Margin, layout.Margin)
	pdf.SetAutoPageBreak(false, layout.Margin)

	for _, page := range pages {
		pdf.AddPage()
		y := layout.Margin
		for _, block := range page.Blocks {
			renderBlock(pdf, doc, layout, block, y)
			y += block.Height
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderBlock(pdf *gofpdf.Fpdf, doc ReportDocument, layout Layout, block Block, y float64) {
	switch block.Kind {
	case BlockTitle:
		pdf.SetFont("Helvetica", "B", 18)
		pdf.SetXY(layout.Margin, y)
		pdf.CellFormat(layout.ContentWidth(), block.Height, firstLine(block), "", 0, "C", false, 0, "")
	case BlockMeta:
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetXY(layout.Margin, y)
		pdf.CellFormat(layout.ContentWidth(), block.Height, firstLine(block), "", 0, "C", false, 0, "")
	case BlockChart:
		renderChart(pdf, doc, layout, block, y)
	default:
		pdf.SetFont("Helvetica", "", 11)
		for i, line := range block.Lines {
			pdf.SetXY(layout.Margin, y+float64(i)*layout.LineHeight)
			pdf.CellFormat(layout.ContentWidth(), layout.LineHeight, line, "", 0, "L", false, 0, "")
		}
	}
}

// renderChart draws the chart raster when one was injected by
// reference, otherwise an outlined placeholder region.
func renderChart(pdf *gofpdf.Fpdf, doc ReportDocument, layout Layout, block Block, y float64) {
	if doc.ChartImagePath != "" {
		pdf.ImageOptions(doc.ChartImagePath, layout.Margin, y, layout.ContentWidth(), block.Height,
			false, gofpdf.ImageOptions{}, 0, "")
		return
	}
	pdf.SetDrawColor(150, 150, 150)
	pdf.Rect(layout.Margin, y, layout.ContentWidth(), block.Height, "D")
	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetXY(layout.Margin, y+block.Height/2-layout.LineHeight/2)
	pdf.CellFormat(layout.ContentWidth(), layout.LineHeight, "Water level chart", "", 0, "C", false, 0, "")
}

func firstLine(block Block) string {
	if len(block.Lines) == 0 {
		return ""
	}
	return block.Lines[0]
}
