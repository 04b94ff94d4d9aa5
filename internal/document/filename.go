package document

import (
	"strings"
	"unicode"
)

// PrescriptionFilename suggests prescription_<patient>_<date digits>.pdf.
func PrescriptionFilename(patientName, date string) string {
	return "prescription_" + underscored(patientName) + "_" + digitsOnly(date) + ".pdf"
}

// InvoiceFilename suggests invoice_<number>_<customer>.pdf, falling back to
// the invoice date digits when the customer name is blank.
func InvoiceFilename(invoiceNumber, customerName, invoiceDate string) string {
	suffix := underscored(customerName)
	if suffix == "" {
		suffix = digitsOnly(invoiceDate)
	}
	return "invoice_" + underscored(invoiceNumber) + "_" + suffix + ".pdf"
}

func underscored(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || unicode.IsSpace(r):
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
