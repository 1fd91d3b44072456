// Package symptom holds the static symptom-category reference data shown in
// the sidebar, and lookup/search over it.
package symptom

import "strings"

// Category is static reference data: loaded at startup, never mutated.
type Category struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Symptoms         []string `json:"symptoms"`
	InitialTreatment []string `json:"initial_treatment"`
}

// Catalog is the full category list in display order.
func Catalog() []Category {
	return []Category{
		{
			ID:    "fever",
			Title: "Fever and flu",
			Description: "A fever is a body temperature above 37.5°C, often accompanied " +
				"by body aches, fatigue, a runny nose and coughing.",
			Symptoms: []string{"high fever", "body aches", "runny nose", "cough", "sore throat"},
			InitialTreatment: []string{
				"Get plenty of rest",
				"Drink plenty of warm water",
				"Use a sponge bath to bring the fever down",
				"Take paracetamol if the fever is high",
				"Monitor symptoms; see a doctor if there is no improvement within 2-3 days",
			},
		},
		{
			ID:    "respiratory",
			Title: "Respiratory system",
			Description: "Breathing problems such as asthma, shortness of breath or " +
				"chest tightness.",
			Symptoms: []string{"shortness of breath", "chest tightness", "wheezing", "chronic cough"},
			InitialTreatment: []string{
				"Avoid triggers such as dust and smoke",
				"Sit upright and breathe slowly",
				"Use an inhaler if available",
				"Stay in a well-ventilated area",
				"Seek medical care urgently if symptoms are severe",
			},
		},
		{
			ID:    "digestive",
			Title: "Digestive system",
			Description: "Digestive problems such as diarrhoea, constipation, nausea " +
				"or vomiting.",
			Symptoms: []string{"diarrhoea", "constipation", "nausea", "vomiting", "stomach ache"},
			InitialTreatment: []string{
				"Avoid spicy food",
				"Drink oral rehydration solution",
				"Eat soft, bland food",
				"Rest the stomach for 4-6 hours",
				"Take an antacid or activated charcoal",
			},
		},
		{
			ID:    "pain",
			Title: "Aches and pains",
			Description: "Pain in various parts of the body, such as headaches, muscle " +
				"pain or joint pain.",
			Symptoms: []string{"headache", "muscle pain", "joint pain", "back pain"},
			InitialTreatment: []string{
				"Rest the painful area",
				"Apply a cold or warm compress as appropriate",
				"Take a painkiller if necessary",
				"Stretch gently",
				"Massage to relieve the pain",
			},
		},
	}
}

// Find returns the category with the given id.
func Find(categories []Category, id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Search matches the query case-insensitively against category titles and
// symptom labels, preserving catalog order. An empty query returns everything.
func Search(categories []Category, query string) []Category {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return categories
	}
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c.Title), query) {
			out = append(out, c)
			continue
		}
		for _, s := range c.Symptoms {
			if strings.Contains(strings.ToLower(s), query) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
