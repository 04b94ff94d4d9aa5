package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jwalitptl/pdf-api/internal/document"
)

const (
	fpdfModule = "github.com/go-pdf/fpdf"

	fontFamily  = "Helvetica"
	lineHeight  = 5.0
	cellPadding = 1.5
	margin      = 15.0
)

// epoch is stamped as creation and modification date so output is stable.
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Options configures the fpdf renderer.
type Options struct {
	PageSize string
	Creator  string
}

// FPDF draws documents directly with go-pdf/fpdf core fonts.
type FPDF struct {
	opts Options
}

func NewFPDF(opts Options) *FPDF {
	switch opts.PageSize {
	case "A4", "A5", "Letter", "Legal":
	default:
		opts.PageSize = "A4"
	}
	return &FPDF{opts: opts}
}

func (r *FPDF) Engine() EngineInfo {
	return EngineInfo{
		Name:    "go-pdf/fpdf",
		Version: moduleVersion(fpdfModule),
		Formats: []string{"PDF"},
	}
}

// Ping renders a minimal document.
func (r *FPDF) Ping(ctx context.Context) error {
	out, err := r.Render(ctx, probeDocument())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		return fmt.Errorf("%w: probe produced no PDF header", ErrEngineUnavailable)
	}
	return nil
}

func (r *FPDF) Render(ctx context.Context, doc *document.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	pdf := fpdf.New("P", "mm", r.opts.PageSize, "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(epoch)
	pdf.SetModificationDate(epoch)
	pdf.SetCompression(true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Author, true)
	pdf.SetSubject(doc.Subject, true)
	if r.opts.Creator != "" {
		pdf.SetCreator(r.opts.Creator, true)
	}

	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin+5)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(110, 110, 110)
		if doc.Footer != "" {
			pdf.CellFormat(0, 4, tr(doc.Footer), "", 1, "C", false, 0, "")
		}
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	w := &writer{pdf: pdf, tr: tr}
	for _, section := range doc.Sections {
		if err := w.section(section); err != nil {
			return nil, fmt.Errorf("section %s: %w", section.Name, err)
		}
		if pdf.Err() {
			return nil, pdf.Error()
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type writer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *writer) contentWidth() float64 {
	pageW, _ := w.pdf.GetPageSize()
	left, _, right, _ := w.pdf.GetMargins()
	return pageW - left - right
}

func (w *writer) section(s document.Section) error {
	if s.Heading != "" {
		w.pdf.SetFont(fontFamily, "B", 12)
		w.pdf.SetTextColor(31, 56, 100)
		w.pdf.CellFormat(0, 8, w.tr(s.Heading), "", 1, "L", false, 0, "")
		w.pdf.SetTextColor(0, 0, 0)
	}

	for _, b := range s.Blocks {
		switch b.Type {
		case document.BlockTitle:
			w.pdf.SetFont(fontFamily, "B", 18)
			w.pdf.CellFormat(0, 10, w.tr(b.Text), "", 1, align(b.Align, "C"), false, 0, "")
		case document.BlockField:
			w.field(b)
		case document.BlockParagraph:
			w.pdf.SetFont(fontFamily, style(b.Emphasis), 10)
			w.pdf.MultiCell(0, lineHeight, w.tr(b.Text), "", align(b.Align, "L"), false)
		case document.BlockList:
			w.pdf.SetFont(fontFamily, "", 10)
			for _, item := range b.Items {
				w.pdf.MultiCell(0, lineHeight, w.tr("- "+item), "", "L", false)
			}
		case document.BlockLink:
			w.pdf.SetFont(fontFamily, "U", 10)
			w.pdf.SetTextColor(0, 70, 160)
			text := b.Text
			if b.Label != "" {
				text = b.Label + ": " + b.Text
			}
			w.pdf.CellFormat(0, lineHeight, w.tr(text), "", 1, "L", false, 0, b.Text)
			w.pdf.SetTextColor(0, 0, 0)
		case document.BlockTable:
			w.table(b)
		case document.BlockSpacer:
			w.pdf.Ln(b.Height)
		case document.BlockRule:
			left, _, _, _ := w.pdf.GetMargins()
			y := w.pdf.GetY() + 1
			w.pdf.Line(left, y, left+w.contentWidth(), y)
			w.pdf.Ln(3)
		default:
			return fmt.Errorf("unsupported block type %q", b.Type)
		}
	}

	w.pdf.Ln(3)
	return nil
}

func (w *writer) field(b document.Block) {
	size := 10.0
	if b.Emphasis {
		size = 12
	}
	label := w.tr(b.Label + ": ")
	value := w.tr(b.Text)

	if b.Align == document.AlignRight {
		total := w.contentWidth()
		w.pdf.SetFont(fontFamily, "B", size)
		w.pdf.CellFormat(total*0.7, lineHeight+1, label, "", 0, "R", false, 0, "")
		w.pdf.SetFont(fontFamily, style(b.Emphasis), size)
		w.pdf.CellFormat(total*0.3, lineHeight+1, value, "", 1, "R", false, 0, "")
		return
	}

	w.pdf.SetFont(fontFamily, "B", size)
	labelW := w.pdf.GetStringWidth(label) + 1
	w.pdf.CellFormat(labelW, lineHeight, label, "", 0, "L", false, 0, "")
	w.pdf.SetFont(fontFamily, style(b.Emphasis), size)
	w.pdf.MultiCell(w.contentWidth()-labelW, lineHeight, value, "", "L", false)
}

func (w *writer) columnWidths(cols []document.Column) []float64 {
	var sum float64
	for _, c := range cols {
		sum += weight(c)
	}
	total := w.contentWidth()
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = total * weight(c) / sum
	}
	return widths
}

func (w *writer) tableHeader(cols []document.Column, widths []float64) {
	w.pdf.SetFont(fontFamily, "B", 9)
	w.pdf.SetFillColor(220, 226, 236)
	for i, c := range cols {
		w.pdf.CellFormat(widths[i], lineHeight+2, w.tr(c.Header), "1", 0, align(c.Align, "L"), true, 0, "")
	}
	w.pdf.Ln(-1)
}

func (w *writer) table(b document.Block) {
	if len(b.Columns) == 0 {
		return
	}
	widths := w.columnWidths(b.Columns)
	_, pageH := w.pdf.GetPageSize()
	_, bottom := w.pdf.GetAutoPageBreak()

	w.tableHeader(b.Columns, widths)
	w.pdf.SetFont(fontFamily, "", 9)

	for _, row := range b.Rows {
		cells := make([][][]byte, len(widths))
		maxLines := 1
		for i, width := range widths {
			text := ""
			if i < len(row) {
				text = w.tr(row[i])
			}
			cells[i] = w.pdf.SplitLines([]byte(text), width-2*cellPadding)
			if len(cells[i]) > maxLines {
				maxLines = len(cells[i])
			}
		}
		h := float64(maxLines)*lineHeight + cellPadding

		if w.pdf.GetY()+h > pageH-bottom {
			w.pdf.AddPage()
			w.tableHeader(b.Columns, widths)
			w.pdf.SetFont(fontFamily, "", 9)
		}

		x0, y := w.pdf.GetX(), w.pdf.GetY()
		x := x0
		for i, width := range widths {
			w.pdf.Rect(x, y, width, h, "D")
			for j, line := range cells[i] {
				w.pdf.SetXY(x+cellPadding, y+cellPadding/2+float64(j)*lineHeight)
				w.pdf.CellFormat(width-2*cellPadding, lineHeight, string(line), "", 0, align(b.Columns[i].Align, "L"), false, 0, "")
			}
			x += width
		}
		w.pdf.SetXY(x0, y+h)
	}
}

func weight(c document.Column) float64 {
	if c.Width <= 0 {
		return 1
	}
	return c.Width
}

func align(a document.Align, fallback string) string {
	if a == "" {
		return fallback
	}
	return string(a)
}

func style(emphasis bool) string {
	if emphasis {
		return "B"
	}
	return ""
}
