package agent

import (
	"context"

	"healthscreen/internal/patient"
)

// Assessment is the structured output of the diagnosis-inference capability
// for one free-text symptom description.
type Assessment struct {
	Symptoms  []string
	Diagnosis string
	Severity  patient.Severity
	// Reply is the assistant message shown to the patient.
	Reply string
}

// Assessor turns a free-text symptom description into a structured assessment.
// The pipeline only depends on this contract, so a real inference backend can
// be substituted for the canned client.
type Assessor interface {
	Assess(ctx context.Context, text string) (Assessment, error)
}

type cannedClient struct {
	apiKey string
}

// NewCannedClient returns the stand-in assessor. It yields a fixed suspected
// diagnosis regardless of input. The API key is accepted so a real backend can
// slot in later, but it is never sent anywhere.
func NewCannedClient(apiKey string) Assessor {
	return &cannedClient{apiKey: apiKey}
}

func (c *cannedClient) Assess(ctx context.Context, text string) (Assessment, error) {
	return Assessment{
		Symptoms:  []string{"fever", "cough"},
		Diagnosis: "Suspected common cold",
		Severity:  patient.SeverityMild,
		Reply: "Your symptoms have been recorded. You should rest well and drink " +
			"plenty of water. If you do not feel better within 2-3 days, please see a doctor.",
	}, nil
}
