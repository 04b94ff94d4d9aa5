package document

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jwalitptl/pdf-api/internal/model"
)

// Prescription section names.
const (
	SectionHeader      = "header"
	SectionDoctor      = "doctor"
	SectionPatient     = "patient"
	SectionDetails     = "details"
	SectionMedications = "medications"
	SectionAdvice      = "advice"
	SectionFollowUp    = "follow_up"
	SectionSignature   = "signature"
)

// PrescriptionSections lists every section a prescription may contain.
var PrescriptionSections = []string{
	SectionHeader, SectionDoctor, SectionPatient, SectionDetails,
	SectionMedications, SectionAdvice, SectionFollowUp, SectionSignature,
}

var medicationColumns = []Column{
	{Header: "Medication", Width: 32},
	{Header: "Dosage", Width: 14, Align: AlignCenter},
	{Header: "Timing", Width: 18},
	{Header: "Duration", Width: 14},
	{Header: "Notes", Width: 28},
}

var errNilRequest = errors.New("nil request")

// BuildPrescription assembles a prescription. The request must be validated
// and have its defaults applied.
func BuildPrescription(req *model.PrescriptionRequest) (*Document, error) {
	if req == nil {
		return nil, errNilRequest
	}

	doctor := req.Doctor
	patient := req.Patient

	doc := &Document{
		Kind:     KindPrescription,
		Title:    "Medical Prescription",
		Author:   "Dr. " + doctor.Name,
		Subject:  "Prescription for " + patient.Name,
		Filename: PrescriptionFilename(patient.Name, req.PrescriptionDate),
		Footer:   "This prescription is valid only with the signature of the prescribing doctor.",
	}

	header := Section{Name: SectionHeader, Blocks: []Block{
		{Type: BlockTitle, Text: "MEDICAL PRESCRIPTION", Align: AlignCenter},
	}}
	if doctor.ClinicName != "" {
		header.Blocks = append(header.Blocks, Block{Type: BlockParagraph, Text: doctor.ClinicName, Align: AlignCenter})
	}
	header.Blocks = append(header.Blocks,
		field("Prescription ID", req.PrescriptionID),
		field("Date", req.PrescriptionDate),
		rule(),
	)

	doctorSection := Section{Name: SectionDoctor, Heading: "Doctor Information", Blocks: []Block{
		{Type: BlockParagraph, Text: "Dr. " + doctor.Name, Emphasis: true},
		field("Qualifications", doctor.Qualifications),
		field("Specialization", doctor.Specialization),
		field("Registration No", doctor.RegistrationNumber),
		field("Clinic", doctor.ClinicName),
		field("Address", doctor.ClinicAddress),
		field("Phone", doctor.Phone),
	}}
	if doctor.Email != "" {
		doctorSection.Blocks = append(doctorSection.Blocks, field("Email", doctor.Email))
	}

	age := NotAvailable
	if patient.Age != nil {
		age = strconv.Itoa(*patient.Age) + " years"
	}
	patientSection := Section{Name: SectionPatient, Heading: "Patient Information", Blocks: []Block{
		field("Name", patient.Name),
		field("Age", age),
		field("Gender", patient.Gender),
		field("Patient ID", patient.PatientID),
		field("Phone", patient.Phone),
		field("Address", patient.Address),
	}}

	details := Section{Name: SectionDetails, Heading: "Prescription Details", Blocks: []Block{
		field("Symptoms", req.Symptoms),
		field("Tests", joinOrNA(req.Tests, ", ")),
		field("Reports", joinOrNA(req.Reports, ", ")),
	}}
	for _, link := range req.Hyperlinks {
		if link = strings.TrimSpace(link); link != "" {
			details.Blocks = append(details.Blocks, Block{Type: BlockLink, Label: "Link", Text: link})
		}
	}

	rows := make([][]string, 0, len(req.Medications))
	for _, m := range req.Medications {
		rows = append(rows, []string{
			m.Name,
			m.Dosage,
			orNA(m.Timing),
			durationCell(m),
			orNA(m.Note),
		})
	}
	medications := Section{Name: SectionMedications, Heading: "Medications", Blocks: []Block{
		{Type: BlockTable, Columns: medicationColumns, Rows: rows},
	}}

	doc.Sections = append(doc.Sections, header, doctorSection, patientSection, details, medications)

	if strings.TrimSpace(req.Advice) != "" {
		doc.Sections = append(doc.Sections, Section{Name: SectionAdvice, Heading: "Medical Advice", Blocks: []Block{
			paragraph(req.Advice),
		}})
	}
	if strings.TrimSpace(req.NextFollowUp) != "" {
		doc.Sections = append(doc.Sections, Section{Name: SectionFollowUp, Blocks: []Block{
			emphasized("Next Follow-up", req.NextFollowUp),
		}})
	}

	doc.Sections = append(doc.Sections, Section{Name: SectionSignature, Blocks: []Block{
		spacer(12),
		{Type: BlockParagraph, Text: "Dr. " + doctor.Name, Align: AlignRight, Emphasis: true},
		{Type: BlockParagraph, Text: orNA(doctor.RegistrationNumber), Align: AlignRight},
	}})

	return doc, nil
}

func durationCell(m model.Medication) string {
	if m.StartDate == "" {
		return m.Duration
	}
	return m.Duration + " from " + m.StartDate
}
