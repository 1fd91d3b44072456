package patient

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrRecordNotFound = errors.New("medical record not found")

// RecordsForMonth filters records to the given calendar month, preserving
// insertion order.
func RecordsForMonth(records []MedicalRecord, month time.Month, year int) []MedicalRecord {
	out := make([]MedicalRecord, 0, len(records))
	for _, r := range records {
		if r.Date.Month() == month && r.Date.Year() == year {
			out = append(out, r)
		}
	}
	return out
}

// CurrentMonthRecords is the "this month" history view.
func CurrentMonthRecords(records []MedicalRecord, now time.Time) []MedicalRecord {
	return RecordsForMonth(records, now.Month(), now.Year())
}

// FindRecord returns the record with the given id.
func FindRecord(records []MedicalRecord, id uuid.UUID) (*MedicalRecord, error) {
	for i := range records {
		if records[i].ID == id {
			r := records[i]
			return &r, nil
		}
	}
	return nil, ErrRecordNotFound
}

// Resolve marks an active record as resolved and returns the updated copy.
// Resolving an already resolved record is a no-op.
func Resolve(records []MedicalRecord, id uuid.UUID) ([]MedicalRecord, *MedicalRecord, error) {
	out := make([]MedicalRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].ID == id {
			out[i].Status = StatusResolved
			r := out[i]
			return out, &r, nil
		}
	}
	return nil, nil, ErrRecordNotFound
}
