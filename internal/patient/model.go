package patient

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// MedicalRecord is a single consultation outcome. Records are immutable after
// creation except for the active -> resolved status transition.
type MedicalRecord struct {
	ID        uuid.UUID `json:"id"`
	Date      time.Time `json:"date"`
	Symptoms  []string  `json:"symptoms"`
	Diagnosis string    `json:"diagnosis"`
	Notes     string    `json:"notes"`
	Images    []string  `json:"images,omitempty"`
	Severity  Severity  `json:"severity"`
	Status    Status    `json:"status"`
}

// Profile is the patient owning a session. It owns its medical history
// exclusively; the history is append-only.
type Profile struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	DateOfBirth    time.Time       `json:"date_of_birth"`
	MedicalHistory []MedicalRecord `json:"medical_history"`
}

// LatestRecord returns the most recently appended record, or nil when the
// history is empty.
func (p *Profile) LatestRecord() *MedicalRecord {
	if len(p.MedicalHistory) == 0 {
		return nil
	}
	r := p.MedicalHistory[len(p.MedicalHistory)-1]
	return &r
}
