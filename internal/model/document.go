package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout of request dates.
const DateLayout = "2006-01-02"

// ContentTypePDF is the content type of every generated document.
const ContentTypePDF = "application/pdf"

const (
	DefaultCurrency     = "USD"
	DefaultPaymentTerms = "Net 30"
)

// PatientInfo identifies the patient on a prescription
type PatientInfo struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Age       *int   `json:"age" binding:"required,gte=0,lte=150"`
	Gender    string `json:"gender" binding:"required,oneof=M F Other"`
	PatientID string `json:"patient_id,omitempty" binding:"max=50"`
	Phone     string `json:"phone,omitempty" binding:"omitempty,max=20,phone"`
	Email     string `json:"email,omitempty" binding:"omitempty,email"`
	Address   string `json:"address,omitempty" binding:"max=200"`
}

// DoctorInfo identifies the prescribing doctor
type DoctorInfo struct {
	Name               string `json:"name" binding:"required,min=1,max=100"`
	Qualifications     string `json:"qualifications,omitempty" binding:"max=200"`
	Specialization     string `json:"specialization,omitempty" binding:"max=200"`
	RegistrationNumber string `json:"registration_number,omitempty" binding:"max=50"`
	ClinicName         string `json:"clinic_name,omitempty" binding:"max=100"`
	ClinicAddress      string `json:"clinic_address,omitempty" binding:"max=200"`
	Phone              string `json:"phone" binding:"required,max=20,phone"`
	Email              string `json:"email,omitempty" binding:"omitempty,email"`
}

// Medication is one row of the prescription table
type Medication struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Dosage    string `json:"dosage" binding:"required,min=1,max=50"`
	Timing    string `json:"timing,omitempty" binding:"max=100"`
	Duration  string `json:"duration" binding:"required,min=1,max=50"`
	StartDate string `json:"start_date,omitempty" binding:"max=30"`
	Note      string `json:"note,omitempty" binding:"max=200"`
}

// PrescriptionRequest is the body of a prescription generation request
type PrescriptionRequest struct {
	PrescriptionID   string       `json:"prescription_id,omitempty" binding:"max=50"`
	PrescriptionDate string       `json:"prescription_date,omitempty" binding:"max=30"`
	Patient          PatientInfo  `json:"patient"`
	Doctor           DoctorInfo   `json:"doctor"`
	Medications      []Medication `json:"medications" binding:"required,min=1,dive"`
	Symptoms         string       `json:"symptoms,omitempty" binding:"max=1000"`
	Tests            []string     `json:"tests,omitempty" binding:"omitempty,dive,max=200"`
	Hyperlinks       []string     `json:"hyperlinks,omitempty" binding:"omitempty,dive,url"`
	Reports          []string     `json:"reports,omitempty" binding:"omitempty,dive,max=200"`
	Advice           string       `json:"advice,omitempty" binding:"max=1000"`
	NextFollowUp     string       `json:"next_followup,omitempty" binding:"max=100"`
}

// ApplyDefaults fills optional fields that have a default.
func (r *PrescriptionRequest) ApplyDefaults(now time.Time) {
	if r.PrescriptionDate == "" {
		r.PrescriptionDate = now.Format(DateLayout)
	}
}

// BusinessInfo is the issuer of an invoice
type BusinessInfo struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Address string `json:"address" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"required,min=1,max=20,phone"`
	Email   string `json:"email" binding:"required,email"`
	Website string `json:"website,omitempty" binding:"omitempty,url"`
	TaxID   string `json:"tax_id,omitempty" binding:"max=50"`
	LogoURL string `json:"logo_url,omitempty" binding:"omitempty,url"`
}

// CustomerInfo is the recipient of an invoice
type CustomerInfo struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	Address    string `json:"address" binding:"required,min=1,max=200"`
	Phone      string `json:"phone,omitempty" binding:"omitempty,max=20,phone"`
	Email      string `json:"email,omitempty" binding:"omitempty,email"`
	CustomerID string `json:"customer_id,omitempty" binding:"max=50"`
	TaxID      string `json:"tax_id,omitempty" binding:"max=50"`
}

// InvoiceItem is one billable line
type InvoiceItem struct {
	Description     string           `json:"description" binding:"required,min=1,max=200"`
	Quantity        *decimal.Decimal `json:"quantity" binding:"required,decimal_bounds,gt=0,lte=1000000"`
	UnitPrice       *decimal.Decimal `json:"unit_price" binding:"required,decimal_bounds,gte=0,lte=1000000000"`
	DiscountPercent decimal.Decimal  `json:"discount_percent" binding:"decimal_bounds,gte=0,lte=100"`
	TaxPercent      decimal.Decimal  `json:"tax_percent" binding:"decimal_bounds,gte=0,lte=100"`
}

// Qty returns the quantity, zero when absent.
func (i InvoiceItem) Qty() decimal.Decimal {
	if i.Quantity == nil {
		return decimal.Zero
	}
	return *i.Quantity
}

// Price returns the unit price, zero when absent.
func (i InvoiceItem) Price() decimal.Decimal {
	if i.UnitPrice == nil {
		return decimal.Zero
	}
	return *i.UnitPrice
}

// PaymentInfo carries payment terms of an invoice
type PaymentInfo struct {
	PaymentTerms  string `json:"payment_terms,omitempty" binding:"max=100"`
	DueDate       string `json:"due_date" binding:"required,datetime=2006-01-02"`
	PaymentMethod string `json:"payment_method,omitempty" binding:"max=50"`
	BankDetails   string `json:"bank_details,omitempty" binding:"max=500"`
	Notes         string `json:"notes,omitempty" binding:"max=500"`
}

// InvoiceRequest is the body of an invoice generation request
type InvoiceRequest struct {
	InvoiceNumber   string        `json:"invoice_number" binding:"required,min=1,max=50"`
	InvoiceDate     string        `json:"invoice_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Business        BusinessInfo  `json:"business"`
	Customer        CustomerInfo  `json:"customer"`
	Items           []InvoiceItem `json:"items" binding:"required,min=1,dive"`
	Payment         PaymentInfo   `json:"payment"`
	Currency        string        `json:"currency,omitempty" binding:"omitempty,len=3,alpha,uppercase"`
	Notes           string        `json:"notes,omitempty" binding:"max=500"`
	TermsConditions string        `json:"terms_conditions,omitempty" binding:"max=1000"`
}

// ApplyDefaults fills optional fields that have a default.
func (r *InvoiceRequest) ApplyDefaults(now time.Time) {
	if r.InvoiceDate == "" {
		r.InvoiceDate = now.Format(DateLayout)
	}
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	if r.Payment.PaymentTerms == "" {
		r.Payment.PaymentTerms = DefaultPaymentTerms
	}
}

// DocumentResponse is the transport shape of a generation result. On failure
// only Success, Message and ContentType are set.
type DocumentResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	PDFData     string `json:"pdf_data,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type"`
	SizeBytes   int    `json:"size_bytes,omitempty"`
}
