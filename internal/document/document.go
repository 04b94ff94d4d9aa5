// Package document turns validated requests into a render-ready model.
//
// A Document is an ordered list of sections holding display-ready strings.
// Renderers only lay the blocks out; every value is formatted here.
package document

import (
	"strings"
)

// Kind names a document template.
type Kind string

const (
	KindPrescription Kind = "prescription"
	KindInvoice      Kind = "invoice"
)

// Kinds lists the supported document kinds in display order.
var Kinds = []Kind{KindPrescription, KindInvoice}

// NotAvailable is shown in place of absent optional values.
const NotAvailable = "N/A"

// BlockType selects how a block is drawn.
type BlockType string

const (
	BlockTitle     BlockType = "title"
	BlockField     BlockType = "field"
	BlockParagraph BlockType = "paragraph"
	BlockList      BlockType = "list"
	BlockLink      BlockType = "link"
	BlockTable     BlockType = "table"
	BlockSpacer    BlockType = "spacer"
	BlockRule      BlockType = "rule"
)

// Align is a horizontal alignment understood by renderers: L, C or R.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Column describes a table column. Width is a relative weight.
type Column struct {
	Header string  `json:"header"`
	Width  float64 `json:"width"`
	Align  Align   `json:"align,omitempty"`
}

// Block is one drawable element.
type Block struct {
	Type     BlockType  `json:"type"`
	Label    string     `json:"label,omitempty"`
	Text     string     `json:"text,omitempty"`
	Items    []string   `json:"items,omitempty"`
	Columns  []Column   `json:"columns,omitempty"`
	Rows     [][]string `json:"rows,omitempty"`
	Align    Align      `json:"align,omitempty"`
	Emphasis bool       `json:"emphasis,omitempty"`
	Height   float64    `json:"height,omitempty"`
}

// Section groups blocks under an optional heading.
type Section struct {
	Name    string  `json:"name"`
	Heading string  `json:"heading,omitempty"`
	Blocks  []Block `json:"blocks"`
}

// Document is the render-ready model of one PDF.
type Document struct {
	Kind     Kind      `json:"kind"`
	Title    string    `json:"title"`
	Author   string    `json:"author,omitempty"`
	Subject  string    `json:"subject,omitempty"`
	Filename string    `json:"filename"`
	Footer   string    `json:"footer,omitempty"`
	Sections []Section `json:"sections"`
}

// SectionNames returns the names of the document sections in order.
func (d *Document) SectionNames() []string {
	names := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		names = append(names, s.Name)
	}
	return names
}

// Section returns the named section, or nil.
func (d *Document) Section(name string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i]
		}
	}
	return nil
}

// Size is the number of text bytes the renderer will lay out.
func (d *Document) Size() int {
	n := len(d.Title) + len(d.Footer)
	for _, s := range d.Sections {
		n += len(s.Heading)
		for _, b := range s.Blocks {
			n += len(b.Label) + len(b.Text)
			for _, item := range b.Items {
				n += len(item)
			}
			for _, c := range b.Columns {
				n += len(c.Header)
			}
			for _, row := range b.Rows {
				for _, cell := range row {
					n += len(cell)
				}
			}
		}
	}
	return n
}

func field(label, value string) Block {
	return Block{Type: BlockField, Label: label, Text: orNA(value)}
}

func emphasized(label, value string) Block {
	b := field(label, value)
	b.Emphasis = true
	return b
}

func paragraph(text string) Block {
	return Block{Type: BlockParagraph, Text: text}
}

func spacer(height float64) Block {
	return Block{Type: BlockSpacer, Height: height}
}

func rule() Block {
	return Block{Type: BlockRule}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func joinOrNA(values []string, sep string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return orNA(strings.Join(parts, sep))
}
