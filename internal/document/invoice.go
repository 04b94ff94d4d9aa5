package document

import (
	"strings"

	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/money"
)

// Invoice section names.
const (
	SectionInvoiceHeader = "header"
	SectionBusiness      = "business"
	SectionCustomer      = "customer"
	SectionItems         = "items"
	SectionTotals        = "totals"
	SectionPayment       = "payment"
	SectionNotes         = "notes"
	SectionTerms         = "terms"
)

// InvoiceSections lists every section an invoice may contain.
var InvoiceSections = []string{
	SectionInvoiceHeader, SectionBusiness, SectionCustomer, SectionItems,
	SectionTotals, SectionPayment, SectionNotes, SectionTerms,
}

var itemColumns = []Column{
	{Header: "Description", Width: 34},
	{Header: "Qty", Width: 9, Align: AlignRight},
	{Header: "Unit Price", Width: 16, Align: AlignRight},
	{Header: "Discount %", Width: 12, Align: AlignRight},
	{Header: "Tax %", Width: 10, Align: AlignRight},
	{Header: "Total", Width: 19, Align: AlignRight},
}

// Invoice is an assembled invoice with the amounts it displays.
type Invoice struct {
	Document *Document
	Lines    []money.LineAmounts
	Totals   money.Totals
}

// BuildInvoice computes line and document totals and assembles the invoice.
// The request must be validated and have its defaults applied.
func BuildInvoice(req *model.InvoiceRequest) (*Invoice, error) {
	if req == nil {
		return nil, errNilRequest
	}

	cur := req.Currency
	lines := make([]money.LineAmounts, 0, len(req.Items))
	rows := make([][]string, 0, len(req.Items))
	for _, item := range req.Items {
		l := money.Line(item.Qty(), item.Price(), item.DiscountPercent, item.TaxPercent)
		lines = append(lines, l)
		rows = append(rows, []string{
			item.Description,
			money.Quantity(item.Qty()),
			money.Format(cur, item.Price()),
			money.Percent(item.DiscountPercent),
			money.Percent(item.TaxPercent),
			money.Format(cur, l.Total),
		})
	}
	totals := money.Sum(lines)

	business := req.Business
	customer := req.Customer

	doc := &Document{
		Kind:     KindInvoice,
		Title:    "Invoice " + req.InvoiceNumber,
		Author:   business.Name,
		Subject:  "Invoice for " + customer.Name,
		Filename: InvoiceFilename(req.InvoiceNumber, customer.Name, req.InvoiceDate),
		Footer:   "Thank you for your business!",
	}

	header := Section{Name: SectionInvoiceHeader, Blocks: []Block{
		{Type: BlockTitle, Text: "INVOICE", Align: AlignCenter},
		field("Invoice Number", req.InvoiceNumber),
		field("Invoice Date", req.InvoiceDate),
		field("Currency", cur),
		rule(),
	}}

	from := Section{Name: SectionBusiness, Heading: "From:", Blocks: []Block{
		{Type: BlockParagraph, Text: business.Name, Emphasis: true},
		paragraph(business.Address),
		field("Phone", business.Phone),
		field("Email", business.Email),
	}}
	if business.Website != "" {
		from.Blocks = append(from.Blocks, Block{Type: BlockLink, Label: "Website", Text: business.Website})
	}
	if business.TaxID != "" {
		from.Blocks = append(from.Blocks, field("Tax ID", business.TaxID))
	}

	billTo := Section{Name: SectionCustomer, Heading: "Bill To:", Blocks: []Block{
		{Type: BlockParagraph, Text: customer.Name, Emphasis: true},
		paragraph(customer.Address),
	}}
	for _, f := range []struct{ label, value string }{
		{"Phone", customer.Phone},
		{"Email", customer.Email},
		{"Customer ID", customer.CustomerID},
		{"Tax ID", customer.TaxID},
	} {
		if f.value != "" {
			billTo.Blocks = append(billTo.Blocks, field(f.label, f.value))
		}
	}

	items := Section{Name: SectionItems, Heading: "Items", Blocks: []Block{
		{Type: BlockTable, Columns: itemColumns, Rows: rows},
	}}

	totalsSection := Section{Name: SectionTotals, Blocks: []Block{
		{Type: BlockField, Label: "Subtotal", Text: money.Format(cur, totals.Subtotal), Align: AlignRight},
		{Type: BlockField, Label: "Total Discount", Text: money.Format(cur, totals.TotalDiscount), Align: AlignRight},
		{Type: BlockField, Label: "Total Tax", Text: money.Format(cur, totals.TotalTax), Align: AlignRight},
		{Type: BlockField, Label: "Total Amount", Text: money.Format(cur, totals.TotalAmount), Align: AlignRight, Emphasis: true},
	}}

	payment := req.Payment
	paymentSection := Section{Name: SectionPayment, Heading: "Payment Information", Blocks: []Block{
		field("Payment Terms", payment.PaymentTerms),
		field("Due Date", payment.DueDate),
	}}
	if payment.PaymentMethod != "" {
		paymentSection.Blocks = append(paymentSection.Blocks, field("Payment Method", payment.PaymentMethod))
	}
	if payment.BankDetails != "" {
		paymentSection.Blocks = append(paymentSection.Blocks, field("Bank Details", payment.BankDetails))
	}
	if payment.Notes != "" {
		paymentSection.Blocks = append(paymentSection.Blocks, field("Payment Notes", payment.Notes))
	}

	doc.Sections = append(doc.Sections, header, from, billTo, items, totalsSection, paymentSection)

	if strings.TrimSpace(req.Notes) != "" {
		doc.Sections = append(doc.Sections, Section{Name: SectionNotes, Heading: "Notes", Blocks: []Block{
			paragraph(req.Notes),
		}})
	}
	if strings.TrimSpace(req.TermsConditions) != "" {
		doc.Sections = append(doc.Sections, Section{Name: SectionTerms, Heading: "Terms & Conditions", Blocks: []Block{
			paragraph(req.TermsConditions),
		}})
	}

	return &Invoice{Document: doc, Lines: lines, Totals: totals}, nil
}
