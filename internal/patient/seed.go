package patient

import (
	"time"

	"github.com/google/uuid"
)

// DemoProfile builds the demo patient every new session starts with: one
// resolved flu episode and one still-active gastritis episode.
func DemoProfile() *Profile {
	return &Profile{
		ID:          uuid.New(),
		Email:       "patient@example.com",
		Name:        "Jai Dee",
		DateOfBirth: time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		MedicalHistory: []MedicalRecord{
			{
				ID:        uuid.New(),
				Date:      time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
				Symptoms:  []string{"fever", "cough", "sore throat"},
				Diagnosis: "Influenza",
				Notes:     "Improved after three days of medication",
				Severity:  SeverityModerate,
				Status:    StatusResolved,
			},
			{
				ID:        uuid.New(),
				Date:      time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC),
				Symptoms:  []string{"stomach ache", "nausea"},
				Diagnosis: "Gastritis",
				Notes:     "Avoid spicy food, get enough rest",
				Severity:  SeverityMild,
				Status:    StatusActive,
			},
		},
	}
}
