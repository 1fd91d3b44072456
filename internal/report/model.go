package report

import (
	"time"

	"healthscreen/internal/patient"
)

// Letter is the structured document handed to the PDF renderer: everything the
// referral letter contains, with no layout concerns.
type Letter struct {
	Title           string
	Date            time.Time
	PatientName     string
	DateOfBirth     time.Time
	Diagnosis       string
	Symptoms        []string
	Notes           string
	AdditionalNotes string
	SignatureLine   string
}

// Purpose is one reason a patient can request a medical certificate for.
type Purpose struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Purposes lists the selectable certificate purposes.
func Purposes() []Purpose {
	return []Purpose{
		{ID: "work", Label: "Medical certificate for sick leave from work"},
		{ID: "school", Label: "Medical certificate for school or university"},
		{ID: "insurance", Label: "Medical certificate for an insurance claim"},
		{ID: "other", Label: "Other"},
	}
}

// BuildLetter assembles the referral letter from the profile and its most
// recent record. The record may be nil when the history is empty.
func BuildLetter(profile patient.Profile, record *patient.MedicalRecord, additionalNotes string) Letter {
	letter := Letter{
		Title:           "Medical Referral Letter",
		Date:            time.Now(),
		PatientName:     profile.Name,
		DateOfBirth:     profile.DateOfBirth,
		AdditionalNotes: additionalNotes,
		SignatureLine:   "Examining physician",
	}
	if record != nil {
		letter.Diagnosis = record.Diagnosis
		letter.Symptoms = record.Symptoms
		letter.Notes = record.Notes
	}
	return letter
}
