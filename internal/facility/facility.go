// Package facility holds the mock medical-facility reference list and the
// name search over it.
package facility

import "strings"

type Type string

const (
	TypeHospital Type = "hospital"
	TypeClinic   Type = "clinic"
)

// Facility is static reference data, immutable within a session.
type Facility struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       Type    `json:"type"`
	DistanceKm float64 `json:"distance_km"`
	Address    string  `json:"address"`
	OpenHours  string  `json:"open_hours"`
	Rating     float64 `json:"rating"`
}

// Directory is the mock facility list in display order.
func Directory() []Facility {
	return []Facility{
		{
			ID:         "1",
			Name:       "Bangkok Hospital",
			Type:       TypeHospital,
			DistanceKm: 1.2,
			Address:    "New Phetchaburi Road, Bang Kapi, Huai Khwang, Bangkok",
			OpenHours:  "24 hours",
			Rating:     4.5,
		},
		{
			ID:         "2",
			Name:       "Sukkhaphap Dee Medical Clinic",
			Type:       TypeClinic,
			DistanceKm: 0.5,
			Address:    "Lat Phrao Road, Chom Phon, Chatuchak, Bangkok",
			OpenHours:  "08:00 - 20:00",
			Rating:     4.2,
		},
		{
			ID:         "3",
			Name:       "Paolo Hospital",
			Type:       TypeHospital,
			DistanceKm: 2.1,
			Address:    "Phahonyothin Road, Samsen Nai, Phaya Thai, Bangkok",
			OpenHours:  "24 hours",
			Rating:     4.4,
		},
	}
}

// Search filters facilities by case-insensitive substring match on the name,
// preserving the original order. An empty query returns the full list.
func Search(facilities []Facility, query string) []Facility {
	query = strings.ToLower(query)
	out := make([]Facility, 0, len(facilities))
	for _, f := range facilities {
		if strings.Contains(strings.ToLower(f.Name), query) {
			out = append(out, f)
		}
	}
	return out
}
