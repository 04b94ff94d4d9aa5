// Package modeltest provides request fixtures for tests.
package modeltest

import (
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/pdf-api/internal/model"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

// Prescription returns a valid prescription request with defaults applied.
func Prescription() *model.PrescriptionRequest {
	return &model.PrescriptionRequest{
		PrescriptionID:   "RX-2024-001",
		PrescriptionDate: "2024-03-15",
		Patient: model.PatientInfo{
			Name:      "John Doe",
			Age:       intPtr(45),
			Gender:    "M",
			PatientID: "P-1001",
			Phone:     "+1-555-0100",
		},
		Doctor: model.DoctorInfo{
			Name:               "Jane Smith",
			Qualifications:     "MBBS, MD",
			Specialization:     "Internal Medicine",
			RegistrationNumber: "REG-12345",
			ClinicName:         "City Health Clinic",
			ClinicAddress:      "12 Main Street",
			Phone:              "+1-555-0123",
			Email:              "jane.smith@example.com",
		},
		Medications: []model.Medication{
			{Name: "Amoxicillin", Dosage: "1-0-1", Timing: "After meals", Duration: "7 days", StartDate: "2024-03-15"},
			{Name: "Paracetamol", Dosage: "500mg", Timing: "When needed", Duration: "5 days", Note: "Max 4 per day"},
		},
		Symptoms:     "Fever and sore throat",
		Tests:        []string{"CBC"},
		Hyperlinks:   []string{"https://example.com/reports/1"},
		Advice:       "Drink plenty of fluids.",
		NextFollowUp: "2024-03-22",
	}
}

// Invoice returns a valid invoice request with defaults applied. Its single
// item is 40 x 75.00 at 8.5% tax.
func Invoice() *model.InvoiceRequest {
	return &model.InvoiceRequest{
		InvoiceNumber: "INV-2024/001",
		InvoiceDate:   "2024-03-15",
		Currency:      "USD",
		Business: model.BusinessInfo{
			Name:    "Acme Medical Supplies",
			Address: "1 Industrial Way",
			Phone:   "+1-555-0199",
			Email:   "billing@acme.example.com",
		},
		Customer: model.CustomerInfo{
			Name:    "City Health Clinic",
			Address: "12 Main Street",
		},
		Items: []model.InvoiceItem{
			{Description: "Consultation hours", Quantity: dec("40"), UnitPrice: dec("75.00"), TaxPercent: decimal.RequireFromString("8.5")},
		},
		Payment: model.PaymentInfo{
			PaymentTerms: model.DefaultPaymentTerms,
			DueDate:      "2024-04-14",
		},
	}
}

// Item returns an invoice item.
func Item(description, quantity, unitPrice, discountPercent, taxPercent string) model.InvoiceItem {
	return model.InvoiceItem{
		Description:     description,
		Quantity:        dec(quantity),
		UnitPrice:       dec(unitPrice),
		DiscountPercent: decimal.RequireFromString(discountPercent),
		TaxPercent:      decimal.RequireFromString(taxPercent),
	}
}
