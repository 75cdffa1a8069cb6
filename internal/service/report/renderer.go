package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 12.0
	rowHeight  = 7.0
)

// Table is a titled grid ready to be laid out on A4 pages.
type Table struct {
	Title    string
	Subtitle []string
	Header   []string
	Widths   []float64
	Rows     [][]string
	Footer   []string
}

// Renderer lays Tables out as PDF documents.
type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render produces the PDF bytes for t. Widths are in millimetres; when absent the
// printable width is split evenly across the header.
func (r *Renderer) Render(t Table) ([]byte, error) {
	if len(t.Header) == 0 {
		return nil, fmt.Errorf("report table %q has no columns", t.Title)
	}
	widths := t.Widths
	if len(widths) != len(t.Header) {
		widths = evenWidths(len(t.Header))
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin+5)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	generatedAt := r.now().UTC().Format("2006-01-02 15:04 MST")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		half := (210.0 - 2*pageMargin) / 2
		pdf.CellFormat(half, 5, tr(fmt.Sprintf("Generated %s", generatedAt)), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(30, 64, 120)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range t.Header {
			pdf.CellFormat(widths[i], rowHeight+1, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(t.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range t.Subtitle {
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
	header()

	_, pageHeight := pdf.GetPageSize()
	for n, row := range t.Rows {
		if pdf.GetY()+rowHeight > pageHeight-pageMargin-5 {
			pdf.AddPage()
			header()
		}
		fill := n%2 == 1
		pdf.SetFillColor(236, 241, 248)
		for i := range t.Header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(widths[i], rowHeight, tr(cell), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(t.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(sum(widths), rowHeight, "No records", "1", 1, "C", false, 0, "")
	}

	if len(t.Footer) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		for _, line := range t.Footer {
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func evenWidths(n int) []float64 {
	printable := 210.0 - 2*pageMargin
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = printable / float64(n)
	}
	return widths
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Filename builds a download name such as "history-2026-01-16.pdf".
func Filename(prefix string, parts ...string) string {
	name := prefix
	for _, p := range parts {
		if p != "" {
			name += "-" + p
		}
	}
	return name + ".pdf"
}
